package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/config"
)

const upstreamBody = `{"api":{"time":"2025-03-01 09:00","api":[
 {"강좌번호":"A1","과목명":"자료구조","학부(과)":"컴퓨터공학부","학년":"2","수업시간":"월1~3","학점":3,"교수명":"김교수","장소":"공학관 301호"},
 {"강좌번호":"C3","과목명":"채플","학부(과)":"교양대학","학년":1,"수업시간":"","학점":"0","교수명":""}
]}}`

func testApp(t *testing.T) (*config.Config, http.Handler, *Dependencies) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/lecture/timetable", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBody))
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.Server.Mode = "production"
	cfg.Server.ExportPath = t.TempDir()
	cfg.LectureAPI.BaseURL = upstream.URL

	deps, err := BuildDependencies(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	LoadCatalog(context.Background(), deps, zerolog.Nop())

	return cfg, WrapCORS(cfg, SetupRouter(cfg, deps, zerolog.Nop())), deps
}

func TestApplicationWiring(t *testing.T) {
	_, handler, deps := testApp(t)
	require.True(t, deps.CatalogService.Loaded())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses/A1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"자료구조"`)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courseCount":2`)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/timetable/courses/{id}"`)
	assert.Contains(t, w.Body.String(), `"/api/v1"`)
}

func TestWrapCORS(t *testing.T) {
	_, handler, _ := testApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/timetable/courses", nil)
	req.Header.Set("Origin", "https://lecture.syu.kr")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://lecture.syu.kr", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
