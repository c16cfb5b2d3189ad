package lectureapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const samplePayload = `{"api":{"time":"2025-02-10 09:00","api":[
 {"강좌번호":"A1","과목명":"자료구조","학부(과)":"컴퓨터공학부","학년":2,"수업시간":"월1~2","학점":3,"교수명":"김교수"},
 {"강좌번호":"B2","과목명":"채플","학부(과)":"교양","학년":"1","수업시간":"","학점":"0","교수명":""}
]}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", 2*time.Second, zerolog.Nop())
}

func TestFetchCatalog_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, TimetablePath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	})

	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-02-10 09:00", catalog.FetchedAt)
	require.Len(t, catalog.Courses, 2)
	assert.Equal(t, "A1", catalog.Courses[0].ID)
	assert.EqualValues(t, 1, catalog.Courses[1].Grade)
}

func TestFetchCatalog_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchCatalog(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFetchCatalog_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"api":`))
	})

	_, err := client.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFetchCatalog_MissingAPIField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.FetchCatalog(context.Background())
	assert.Error(t, err)
}

func TestFetchCatalog_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePayload))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchCatalog(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}
