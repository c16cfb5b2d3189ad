package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/app/repositories"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

type fakeFetcher struct {
	mu      sync.Mutex
	catalog *models.Catalog
	err     error
	calls   int32
	release chan struct{}
}

func (f *fakeFetcher) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.catalog
	cp.Courses = append([]models.Course(nil), f.catalog.Courses...)
	return &cp, nil
}

func (f *fakeFetcher) set(c *models.Catalog, err error) {
	f.mu.Lock()
	f.catalog, f.err = c, err
	f.mu.Unlock()
}

func sampleCatalog() *models.Catalog {
	return &models.Catalog{
		FetchedAt: "2025-03-01 09:00",
		Courses: []models.Course{
			{ID: "C300", Name: "운영체제", Department: "컴퓨터공학부", Grade: 3, Time: "화1~3", Credits: models.CreditsOf(3), Professor: "김교수", Type: "전공필수"},
			{ID: "C101", Name: "파이썬", Department: "컴퓨터공학부", Grade: 1, Time: "월1~2", Credits: models.CreditsOf(2), Professor: "이교수", Type: "전공선택"},
			{ID: "E100", Name: "대학영어", Department: "교양대학", Grade: 1, Time: "수5~6", Credits: models.CreditsOf(2), Professor: "", Type: "교양필수"},
			{ID: "C102", Name: "가상현실", Department: "컴퓨터공학부", Grade: 1, Time: "목3~4", Credits: models.CreditsOf(3), Professor: "박교수", Type: "전공선택"},
			{ID: "X001", Name: "현장실습", Department: "교양대학", Grade: 4, Time: "", Credits: models.CreditsOf(1), Professor: "", Type: "일반선택"},
		},
	}
}

func newCatalogService(t *testing.T, f *fakeFetcher) *CatalogService {
	t.Helper()
	return NewCatalogService(f, repositories.NewMemoryCatalogSnapshotRepository(), 2, zerolog.Nop())
}

func ids(courses []models.Course) []string {
	out := make([]string, len(courses))
	for i := range courses {
		out[i] = courses[i].ID
	}
	return out
}

func TestCatalogService_RefreshSortsAndIndexes(t *testing.T) {
	svc := newCatalogService(t, &fakeFetcher{catalog: sampleCatalog()})

	_, err := svc.Search(CourseFilter{}, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrCatalogEmpty)

	info, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, info.CourseCount)
	assert.Equal(t, 2, info.Departments)
	assert.False(t, info.FromCache)

	res, err := svc.Search(CourseFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"C102", "E100", "C101", "C300", "X001"}, ids(res.Items))

	deps, err := svc.Departments()
	require.NoError(t, err)
	assert.Equal(t, []string{"컴퓨터공학부", "교양대학"}, deps)

	c, err := svc.Course("E100")
	require.NoError(t, err)
	assert.Equal(t, models.ColorFor("E100"), c.Color)

	_, err = svc.Course("nope")
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCatalogService_Search(t *testing.T) {
	svc := newCatalogService(t, &fakeFetcher{catalog: sampleCatalog()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter CourseFilter
		want   []string
	}{
		{"department", CourseFilter{Department: "교양대학"}, []string{"E100", "X001"}},
		{"grades ignore blanks", CourseFilter{Grades: []string{"", "3"}}, []string{"C300"}},
		{"type substring", CourseFilter{Types: []string{"필수"}}, []string{"E100", "C300"}},
		{"day substring", CourseFilter{Days: []string{"월", "목"}}, []string{"C102", "C101"}},
		{"credits numeric", CourseFilter{Credits: []string{"3", "x"}}, []string{"C102", "C300"}},
		{"credits all invalid", CourseFilter{Credits: []string{"x"}}, []string{"C102", "E100", "C101", "C300", "X001"}},
		{"search by professor", CourseFilter{Query: "  김교수 "}, []string{"C300"}},
		{"search by grade label", CourseFilter{Query: "4학년"}, []string{"X001"}},
		{"combined", CourseFilter{Department: "컴퓨터공학부", Grades: []string{"1"}, Query: "파이"}, []string{"C101"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Search(tt.filter, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Empty(t, res.Message)
		})
	}
}

func TestCatalogService_SearchPagingAndMessages(t *testing.T) {
	svc := newCatalogService(t, &fakeFetcher{catalog: sampleCatalog()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	res, err := svc.Search(CourseFilter{}, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{"X001"}, ids(res.Items))

	res, err = svc.Search(CourseFilter{Query: " 없는과목 "}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, "없는과목", res.Query)
	assert.Equal(t, "“없는과목” 에 대한 검색 결과가 없어요.", res.Message)

	res, err = svc.Search(CourseFilter{Query: " NoSuchCourse "}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "nosuchcourse", res.Query)
	assert.Equal(t, "“nosuchcourse” 에 대한 검색 결과가 없어요.", res.Message)

	res, err = svc.Search(CourseFilter{Department: "없음"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "검색 결과가 없어요.", res.Message)
}

func TestCatalogService_FallsBackToSnapshot(t *testing.T) {
	f := &fakeFetcher{catalog: sampleCatalog()}
	svc := newCatalogService(t, f)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	f.set(nil, apperrors.ErrUpstreamUnavailable)
	info, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, info.FromCache)
	assert.Equal(t, 5, info.CourseCount)
}

func TestCatalogService_FailsWithoutSnapshot(t *testing.T) {
	upstream := errors.New("boom")
	svc := newCatalogService(t, &fakeFetcher{err: upstream})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, upstream)
	assert.False(t, svc.Loaded())
}

func TestCatalogService_ConcurrentRefreshSharesFetch(t *testing.T) {
	f := &fakeFetcher{catalog: sampleCatalog(), release: make(chan struct{})}
	svc := newCatalogService(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

func TestCatalogService_RefreshSurvivesCallerCancel(t *testing.T) {
	f := &fakeFetcher{catalog: sampleCatalog(), release: make(chan struct{})}
	svc := newCatalogService(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		second <- err
	}()

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(f.release)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("joined caller did not return")
	}
	assert.True(t, svc.Loaded())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

func TestCatalogService_RefreshTimeout(t *testing.T) {
	f := &fakeFetcher{catalog: sampleCatalog(), release: make(chan struct{})}
	defer close(f.release)
	svc := newCatalogService(t, f)
	svc.SetRefreshTimeout(20 * time.Millisecond)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, svc.Loaded())
}

func TestCatalogService_CreditFilterSkipsNonNumeric(t *testing.T) {
	catalog := sampleCatalog()
	catalog.Courses = append(catalog.Courses,
		models.Course{ID: "Z000", Name: "채플", Department: "교양대학", Grade: 1, Credits: models.CreditsOf(0)},
		models.Course{ID: "Z999", Name: "미정과목", Department: "교양대학", Grade: 1, Credits: models.Credits{}},
	)
	svc := newCatalogService(t, &fakeFetcher{catalog: catalog})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	res, err := svc.Search(CourseFilter{Credits: []string{"0"}}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z000"}, ids(res.Items))
}

func TestCatalogService_Run(t *testing.T) {
	f := &fakeFetcher{catalog: sampleCatalog()}
	svc := newCatalogService(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, svc.Loaded, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
