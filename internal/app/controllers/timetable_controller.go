package controllers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/middleware"
	"github.com/yigit/lecturetable/internal/pkg/logger"
	"github.com/yigit/lecturetable/internal/pkg/sharecode"
)

const (
	pngFileName  = "timetable.png"
	xlsxFileName = "timetable.xlsx"
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CookieConfig controls the cookie that remembers the selection.
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

// TimetableController serves the weekly grid of a selection. The selection
// travels as a share code: the share query parameter wins over the cookie.
type TimetableController struct {
	timetableService *services.TimetableService
	cookie           CookieConfig
	logger           zerolog.Logger
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService *services.TimetableService, cookie CookieConfig) *TimetableController {
	return &TimetableController{
		timetableService: timetableService,
		cookie:           cookie,
		logger:           logger.Component("timetable_controller"),
	}
}

// requestSelection is the share code a request carries.
type requestSelection struct {
	code     string
	fromLink bool
	// stale marks a cookie that could not be decoded; it is dropped and
	// the selection starts empty.
	stale bool
}

func (c *TimetableController) readSelection(ctx *gin.Context) requestSelection {
	if code := strings.TrimSpace(ctx.Query(sharecode.QueryParam)); code != "" {
		return requestSelection{code: code, fromLink: true}
	}
	code, err := ctx.Cookie(c.cookie.Name)
	if err != nil || strings.TrimSpace(code) == "" || sharecode.IsEmpty(code) {
		return requestSelection{}
	}
	if _, err := sharecode.Decode(code); err != nil {
		c.logger.Warn().Err(err).Str("cookie", c.cookie.Name).Msg("Discarding unreadable selection cookie")
		return requestSelection{stale: true}
	}
	return requestSelection{code: code}
}

// ids decodes the selection. Only a malformed share link is an error.
func (rs requestSelection) ids() ([]string, error) {
	if rs.code == "" || sharecode.IsEmpty(rs.code) {
		return nil, nil
	}
	return sharecode.Decode(rs.code)
}

// storeSelection writes the cookie for a non-empty selection and clears it
// otherwise.
func (c *TimetableController) storeSelection(ctx *gin.Context, t *domain.Timetable) {
	if t.Len() == 0 {
		c.clearSelection(ctx)
		return
	}
	ctx.SetCookie(c.cookie.Name, sharecode.Encode(t.IDs()), c.cookie.MaxAge, "/", "", c.cookie.Secure, false)
}

func (c *TimetableController) clearSelection(ctx *gin.Context) {
	ctx.SetCookie(c.cookie.Name, "", -1, "/", "", c.cookie.Secure, false)
}

// fail reports err and drops a stale cookie on the way out.
func (c *TimetableController) fail(ctx *gin.Context, rs requestSelection, err error) {
	if rs.stale {
		c.clearSelection(ctx)
	}
	middleware.HandleAPIError(ctx, err)
}

func (c *TimetableController) restore(ctx *gin.Context) (*services.Selection, bool) {
	rs := c.readSelection(ctx)
	sel, err := c.timetableService.Restore(rs.code)
	if err != nil {
		c.fail(ctx, rs, err)
		return nil, false
	}
	if rs.stale {
		c.clearSelection(ctx)
	}
	return sel, true
}

// GetTimetable restores the selection from the share parameter or cookie
// @Summary Restore timetable
// @Tags timetable
// @Produce json
// @Param share query string false "Share code"
// @Success 200 {object} dto.APIResponse{data=dto.TimetableResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid share code"
// @Router /timetable [get]
func (c *TimetableController) GetTimetable(ctx *gin.Context) {
	rs := c.readSelection(ctx)
	sel, err := c.timetableService.Restore(rs.code)
	if err != nil {
		c.fail(ctx, rs, err)
		return
	}
	if rs.fromLink || rs.stale {
		c.storeSelection(ctx, sel.Timetable)
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(timetableResponse(sel, c.timetableService.ShareLink(sel.Timetable)), ""))
}

// AddCourse adds a course to the current selection
// @Summary Add course
// @Tags timetable
// @Accept json
// @Produce json
// @Param share query string false "Share code"
// @Param request body dto.AddCourseRequest true "Course to add"
// @Success 201 {object} dto.APIResponse{data=dto.TimetableResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Already selected or time conflict"
// @Router /timetable/courses [post]
func (c *TimetableController) AddCourse(ctx *gin.Context) {
	req := ctx.MustGet(middleware.ValidatedBodyKey).(*dto.AddCourseRequest)

	rs := c.readSelection(ctx)
	ids, err := rs.ids()
	if err != nil {
		c.fail(ctx, rs, err)
		return
	}

	sel, err := c.timetableService.Add(ids, req.CourseID)
	if err != nil {
		c.fail(ctx, rs, err)
		return
	}

	c.storeSelection(ctx, sel.Timetable)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(timetableResponse(sel, c.timetableService.ShareLink(sel.Timetable)), "Course added"))
}

// RemoveCourse removes a course from the current selection
// @Summary Remove course
// @Tags timetable
// @Produce json
// @Param id path string true "Course ID"
// @Param share query string false "Share code"
// @Success 200 {object} dto.APIResponse{data=dto.TimetableResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not in timetable"
// @Router /timetable/courses/{id} [delete]
func (c *TimetableController) RemoveCourse(ctx *gin.Context) {
	rs := c.readSelection(ctx)
	ids, err := rs.ids()
	if err != nil {
		c.fail(ctx, rs, err)
		return
	}

	sel, err := c.timetableService.Remove(ids, ctx.Param("id"))
	if err != nil {
		c.fail(ctx, rs, err)
		return
	}

	c.storeSelection(ctx, sel.Timetable)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(timetableResponse(sel, c.timetableService.ShareLink(sel.Timetable)), "Course removed"))
}

// GetShareLink returns the share code and link of the current selection
// @Summary Share link
// @Tags timetable
// @Produce json
// @Param share query string false "Share code"
// @Success 200 {object} dto.APIResponse{data=dto.ShareResponse}
// @Router /timetable/share [get]
func (c *TimetableController) GetShareLink(ctx *gin.Context) {
	sel, ok := c.restore(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ShareResponse{
		Code: sel.ShareCode(),
		Link: c.timetableService.ShareLink(sel.Timetable),
	}, ""))
}

// GetImage downloads the grid as a PNG
// @Summary Timetable image
// @Tags timetable
// @Produce png
// @Param share query string false "Share code"
// @Success 200 {file} binary
// @Failure 500 {object} dto.ErrorResponse "Image conversion failed"
// @Router /timetable/image [get]
func (c *TimetableController) GetImage(ctx *gin.Context) {
	sel, ok := c.restore(ctx)
	if !ok {
		return
	}
	data, err := c.timetableService.RenderPNG(sel.Timetable)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+pngFileName+`"`)
	ctx.Data(http.StatusOK, "image/png", data)
}

// GetSpreadsheet downloads the grid as an XLSX workbook
// @Summary Timetable spreadsheet
// @Tags timetable
// @Produce octet-stream
// @Param share query string false "Share code"
// @Success 200 {file} binary
// @Router /timetable/xlsx [get]
func (c *TimetableController) GetSpreadsheet(ctx *gin.Context) {
	sel, ok := c.restore(ctx)
	if !ok {
		return
	}
	data, err := c.timetableService.RenderXLSX(sel.Timetable)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+xlsxFileName+`"`)
	ctx.Data(http.StatusOK, xlsxMimeType, data)
}

// CreateExport renders the PNG and stores it for later download
// @Summary Store timetable image
// @Tags timetable
// @Produce json
// @Param share query string false "Share code"
// @Success 201 {object} dto.APIResponse{data=dto.ExportResponse}
// @Router /timetable/exports [post]
func (c *TimetableController) CreateExport(ctx *gin.Context) {
	sel, ok := c.restore(ctx)
	if !ok {
		return
	}
	info, err := c.timetableService.StoreExport(sel.Timetable)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ExportResponse{
		FileName: info.Name,
		URL:      info.URL,
		FileSize: info.FileSize,
		MimeType: info.MimeType,
	}, "Export stored"))
}

// DownloadExport streams a stored export. It is mounted at /exports, outside
// the versioned API.
func (c *TimetableController) DownloadExport(ctx *gin.Context) {
	name := ctx.Param("name")
	rc, err := c.timetableService.OpenExport(name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// DeleteExport removes a stored export
// @Summary Delete stored image
// @Tags timetable
// @Produce json
// @Param name path string true "Export file name"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown export"
// @Router /timetable/exports/{name} [delete]
func (c *TimetableController) DeleteExport(ctx *gin.Context) {
	if err := c.timetableService.DeleteExport(ctx.Param("name")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Export deleted"))
}

// SaveTimetable stores a selection under a new ID
// @Summary Save timetable
// @Tags timetables
// @Accept json
// @Produce json
// @Param request body dto.SaveTimetableRequest true "Course IDs"
// @Success 201 {object} dto.APIResponse{data=dto.SavedTimetableResponse}
// @Failure 400 {object} dto.ErrorResponse "No known courses"
// @Router /timetables [post]
func (c *TimetableController) SaveTimetable(ctx *gin.Context) {
	req := ctx.MustGet(middleware.ValidatedBodyKey).(*dto.SaveTimetableRequest)

	saved, sel, err := c.timetableService.Save(ctx.Request.Context(), req.CourseIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SavedTimetableResponse{
		ID:        saved.ID,
		CreatedAt: saved.CreatedAt,
		Timetable: timetableResponse(sel, c.timetableService.ShareLink(sel.Timetable)),
	}, "Timetable saved"))
}

// GetSavedTimetable loads a stored selection
// @Summary Get saved timetable
// @Tags timetables
// @Produce json
// @Param id path string true "Saved timetable ID"
// @Success 200 {object} dto.APIResponse{data=dto.SavedTimetableResponse}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /timetables/{id} [get]
func (c *TimetableController) GetSavedTimetable(ctx *gin.Context) {
	saved, sel, err := c.timetableService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SavedTimetableResponse{
		ID:        saved.ID,
		CreatedAt: saved.CreatedAt,
		Timetable: timetableResponse(sel, c.timetableService.ShareLink(sel.Timetable)),
	}, ""))
}
