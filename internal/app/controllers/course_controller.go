package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/middleware"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
)

// CourseController serves the course catalog
type CourseController struct {
	catalogService *services.CatalogService
}

// NewCourseController creates a new CourseController
func NewCourseController(catalogService *services.CatalogService) *CourseController {
	return &CourseController{
		catalogService: catalogService,
	}
}

// GetCatalogInfo describes the loaded catalog
// @Summary Catalog status
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CatalogInfoResponse}
// @Failure 503 {object} dto.ErrorResponse "Catalog not loaded"
// @Router /catalog [get]
func (c *CourseController) GetCatalogInfo(ctx *gin.Context) {
	if !c.catalogService.Loaded() {
		middleware.HandleAPIError(ctx, apperrors.ErrCatalogEmpty)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(catalogInfoResponse(c.catalogService.Info()), ""))
}

// RefreshCatalog refetches the catalog from the lecture API
// @Summary Refresh catalog
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CatalogInfoResponse}
// @Failure 502 {object} dto.ErrorResponse "Lecture API unavailable"
// @Router /catalog/refresh [post]
func (c *CourseController) RefreshCatalog(ctx *gin.Context) {
	info, err := c.catalogService.Refresh(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(catalogInfoResponse(info), "Catalog refreshed"))
}

// GetDepartments lists departments in catalog order
// @Summary List departments
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]string}
// @Router /departments [get]
func (c *CourseController) GetDepartments(ctx *gin.Context) {
	departments, err := c.catalogService.Departments()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(departments, ""))
}

// ListCourses returns one page of filtered courses
// @Summary Search courses
// @Tags courses
// @Produce json
// @Param department query string false "Exact department name"
// @Param grade query []string false "Grades" collectionFormat(multi)
// @Param type query []string false "Course type substrings" collectionFormat(multi)
// @Param day query []string false "Day labels" collectionFormat(multi)
// @Param credit query []string false "Credits" collectionFormat(multi)
// @Param q query string false "Search term"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filters"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var query dto.CourseSearchQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, c.catalogService.BatchSize())

	result, err := c.catalogService.Search(services.CourseFilter{
		Department: query.Department,
		Grades:     query.Grades,
		Types:      query.Types,
		Days:       query.Days,
		Credits:    query.Credits,
		Query:      query.Query,
	}, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.CourseResponse, len(result.Items))
	for i := range result.Items {
		items[i] = dto.FromCourse(&result.Items[i], helpers.NormalizePlaces(result.Items[i].Place))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CourseListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(int64(result.Total), result.Page, result.Size),
		Query:      result.Query,
		Message:    result.Message,
	}, ""))
}

// GetCourse returns one course
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.catalogService.Course(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromCourse(course, helpers.NormalizePlaces(course.Place)), ""))
}

func catalogInfoResponse(info services.CatalogInfo) dto.CatalogInfoResponse {
	return dto.CatalogInfoResponse{
		FetchedAt:   info.FetchedAt,
		CourseCount: info.CourseCount,
		Departments: info.Departments,
		FromCache:   info.FromCache,
	}
}
