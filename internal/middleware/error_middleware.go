package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request rejected")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	var conflict *domain.ConflictError
	var custom *apperrors.CustomError

	switch {
	case errors.As(err, &conflict):
		cells := make([]string, len(conflict.Cells))
		for i, k := range conflict.Cells {
			cells[i] = k.String()
		}
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeTimeConflict, conflict.Error()).
			WithField("courseId").
			WithDetails(gin.H{"courseId": conflict.Course.ID, "cells": cells, "conflictsWith": conflict.Conflicting})
	case errors.Is(err, apperrors.ErrAlreadySelected):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAlreadySelected, apperrors.ErrAlreadySelected.Error()).
			WithField("courseId").WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrNotSelected):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeNotSelected, "Course is not in the timetable")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Course not found")
	case errors.Is(err, apperrors.ErrTimetableNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Saved timetable not found")
	case errors.Is(err, apperrors.ErrInvalidTimeSlot):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidTimeSlot, "Course has an invalid time slot").WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrInvalidShareCode):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidShareCode, "Invalid share code").WithField("share")
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrCatalogEmpty):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeCatalogUnavailable, "Course catalog is not loaded yet")
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Lecture API is unavailable")
	case errors.Is(err, apperrors.ErrExportFailed):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeExportFailed, apperrors.ErrExportFailed.Error())
	case errors.As(err, &custom) && errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, customDetail(custom, dto.ErrorCodeResourceNotFound)
	case errors.As(err, &custom) && errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, customDetail(custom, dto.ErrorCodeConflict)
	case errors.As(err, &custom) && errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, customDetail(custom, dto.ErrorCodeBadRequest)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func customDetail(e *apperrors.CustomError, code dto.ErrorCode) *dto.ErrorDetail {
	return dto.NewErrorDetail(code, e.Error())
}
