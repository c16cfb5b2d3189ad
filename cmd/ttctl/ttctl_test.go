package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/lecturetable/internal/pkg/sharecode"
)

const catalogJSON = `{"api":{"time":"2025-03-01","api":[
 {"강좌번호":"A1","과목명":"Algorithms","학부(과)":"CS","학년":2,"수업시간":"월1~3","학점":3,"교수명":"Kim"},
 {"강좌번호":"B2","과목명":"Biology","학부(과)":"BIO","학년":1,"수업시간":"화2","학점":2,"교수명":""}
]}}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func upstream(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(catalogJSON))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestShareEncodeDecode(t *testing.T) {
	out, err := run(t, "share", "encode", "A1", "B2")
	require.NoError(t, err)
	code := sharecode.Encode([]string{"A1", "B2"})
	assert.Equal(t, code+"\nhttps://lecture.syu.kr/timetable?share="+code+"\n", out)

	out, err = run(t, "share", "decode", code)
	require.NoError(t, err)
	assert.Equal(t, "A1\nB2\n", out)

	_, err = run(t, "share", "decode", "%%%")
	assert.Error(t, err)
}

func TestCoursesCmd(t *testing.T) {
	api := upstream(t)
	noConfig := filepath.Join(t.TempDir(), "none.yaml")

	out, err := run(t, "--config", noConfig, "--api", api, "courses")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "B2"), out)
	assert.Contains(t, out, "2 of 2 courses")

	out, err = run(t, "--config", noConfig, "--api", api, "courses", "-q", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "“nothing” 에 대한 검색 결과가 없어요.\n", out)

	out, err = run(t, "--config", noConfig, "--api", api, "courses", "--grade", "2", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "A1"`)
	assert.NotContains(t, out, `"id": "B2"`)
}

func TestRenderCmd(t *testing.T) {
	fs = afero.NewMemMapFs()
	defer func() { fs = afero.NewOsFs() }()

	api := upstream(t)
	noConfig := filepath.Join(t.TempDir(), "none.yaml")
	code := sharecode.Encode([]string{"A1", "B2"})

	out, err := run(t, "--config", noConfig, "--api", api, "render", "--share", code, "-o", "tt.png", "--pixel-ratio", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "tt.png: 2 courses, 5 credits")

	data, err := afero.ReadFile(fs, "tt.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	_, err = run(t, "--config", noConfig, "--api", api, "render", "--share", code, "--xlsx")
	require.NoError(t, err)
	ok, err := afero.Exists(fs, "timetable.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)
}
