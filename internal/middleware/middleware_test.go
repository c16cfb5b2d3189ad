package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(err error) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	HandleAPIError(c, err)

	var body dto.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHandleAPIError(t *testing.T) {
	conflict := &domain.ConflictError{
		Course:      models.Course{ID: "B", Name: "운영체제", Time: "월2"},
		Cells:       []domain.Key{{Day: timeslot.Monday, Period: 2}},
		Conflicting: []string{"A"},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
		wantMsg    string
	}{
		{"time conflict", conflict, http.StatusConflict, dto.ErrorCodeTimeConflict, conflict.Error()},
		{"duplicate", apperrors.ErrAlreadySelected, http.StatusConflict, dto.ErrorCodeAlreadySelected, "이미 선택한 과목이에요!"},
		{"course missing", fmt.Errorf("wrap: %w", apperrors.ErrCourseNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
		{"share code", apperrors.ErrInvalidShareCode, http.StatusBadRequest, dto.ErrorCodeInvalidShareCode, "Invalid share code"},
		{"catalog empty", apperrors.ErrCatalogEmpty, http.StatusServiceUnavailable, dto.ErrorCodeCatalogUnavailable, "Course catalog is not loaded yet"},
		{"upstream", fmt.Errorf("%w: 502", apperrors.ErrUpstreamUnavailable), http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Lecture API is unavailable"},
		{"export", apperrors.ErrExportFailed, http.StatusInternalServerError, dto.ErrorCodeExportFailed, apperrors.ErrExportFailed.Error()},
		{"custom bad request", apperrors.NewBadRequestError("no known courses to save"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "no known courses to save"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, body.Error)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestHandleAPIError_ConflictDetails(t *testing.T) {
	conflict := &domain.ConflictError{
		Course:      models.Course{ID: "B", Name: "운영체제", Time: "월2"},
		Cells:       []domain.Key{{Day: timeslot.Monday, Period: 2}},
		Conflicting: []string{"A"},
	}
	_, body := respond(conflict)

	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "B", details["courseId"])
	assert.Equal(t, []interface{}{"월2"}, details["cells"])
	assert.Equal(t, []interface{}{"A"}, details["conflictsWith"])
}

type sampleBody struct {
	CourseID string `json:"courseId" validate:"required,max=5"`
}

func TestValidateRequest(t *testing.T) {
	r := gin.New()
	r.POST("/x", ValidateRequest(&sampleBody{}), func(c *gin.Context) {
		body := c.MustGet(ValidatedBodyKey).(*sampleBody)
		c.String(http.StatusOK, body.CourseID)
	})

	send := func(payload string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"courseId":"A1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A1", w.Body.String())

	w = send(`{"courseId":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CourseID is required")

	w = send(`{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request format")
}

func TestRequestLogger(t *testing.T) {
	var sb strings.Builder
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&sb)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, sb.String(), `"requestId":"req-1"`)
	assert.Contains(t, sb.String(), `"status":200`)
}
