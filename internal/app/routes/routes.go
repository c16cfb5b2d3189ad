package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturetable/internal/app/controllers"
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	courseController *controllers.CourseController,
	timetableController *controllers.TimetableController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.SuccessResponse{Message: "pong"})
	})

	// Catalog routes
	catalog := v1.Group("/catalog")
	{
		catalog.GET("", courseController.GetCatalogInfo)
		catalog.POST("/refresh", courseController.RefreshCatalog)
	}
	v1.GET("/departments", courseController.GetDepartments)

	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.ListCourses)
		courses.GET("/:id", courseController.GetCourse)
	}

	// Timetable routes; the selection comes from ?share= or the cookie
	timetable := v1.Group("/timetable")
	{
		timetable.GET("", timetableController.GetTimetable)
		timetable.POST("/courses", middleware.ValidateRequest(&dto.AddCourseRequest{}), timetableController.AddCourse)
		timetable.DELETE("/courses/:id", timetableController.RemoveCourse)
		timetable.GET("/share", timetableController.GetShareLink)
		timetable.GET("/image", timetableController.GetImage)
		timetable.GET("/xlsx", timetableController.GetSpreadsheet)
		timetable.POST("/exports", timetableController.CreateExport)
		timetable.DELETE("/exports/:name", timetableController.DeleteExport)
	}

	saved := v1.Group("/timetables")
	{
		saved.POST("", middleware.ValidateRequest(&dto.SaveTimetableRequest{}), timetableController.SaveTimetable)
		saved.GET("/:id", timetableController.GetSavedTimetable)
	}

	// Stored exports, served from the export storage
	router.GET("/exports/:name", timetableController.DownloadExport)
}
