package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/app/repositories"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
	"github.com/yigit/lecturetable/internal/pkg/lectureapi"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CourseFilter is the set of browser filters. Empty fields match everything.
type CourseFilter struct {
	Department string
	Grades     []string
	Types      []string
	Days       []string
	Credits    []string
	Query      string
}

// SearchResult is one page of filtered courses.
type SearchResult struct {
	Items []models.Course
	Total int
	Page  int
	Size  int
	Query string
	// Message is set only when nothing matched.
	Message string
}

// CatalogInfo summarises the loaded catalog.
type CatalogInfo struct {
	FetchedAt   string
	CourseCount int
	Departments int
	FromCache   bool
	LoadedAt    time.Time
}

// NoResultsMessage is the notice shown for an empty result.
func NoResultsMessage(term string) string {
	if term != "" {
		return fmt.Sprintf("“%s” 에 대한 검색 결과가 없어요.", term)
	}
	return "검색 결과가 없어요."
}

// DefaultRefreshTimeout bounds one upstream refresh including the snapshot
// fallback.
const DefaultRefreshTimeout = 30 * time.Second

// CatalogService owns the course catalog: loading, refreshing and querying.
type CatalogService struct {
	fetcher   lectureapi.Fetcher
	snapshots repositories.CatalogSnapshotRepository
	batchSize int
	logger    zerolog.Logger

	refresh        singleflight.Group
	refreshTimeout time.Duration

	mu          sync.RWMutex
	courses     []models.Course
	index       map[string]int
	departments []string
	info        CatalogInfo
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(fetcher lectureapi.Fetcher, snapshots repositories.CatalogSnapshotRepository, batchSize int, logger zerolog.Logger) *CatalogService {
	if batchSize <= 0 {
		batchSize = helpers.DefaultPageSize
	}
	return &CatalogService{
		fetcher:        fetcher,
		snapshots:      snapshots,
		batchSize:      batchSize,
		logger:         logger,
		refreshTimeout: DefaultRefreshTimeout,
		index:          make(map[string]int),
	}
}

// SetRefreshTimeout bounds a single upstream refresh.
func (s *CatalogService) SetRefreshTimeout(d time.Duration) {
	if d > 0 {
		s.refreshTimeout = d
	}
}

// BatchSize is the default page size of Search.
func (s *CatalogService) BatchSize() int {
	return s.batchSize
}

// Refresh fetches the catalog upstream. Concurrent callers share one fetch,
// which runs detached from any single caller's cancellation and is bounded
// by the refresh timeout instead. When the upstream fails the latest stored
// snapshot is used.
func (s *CatalogService) Refresh(ctx context.Context) (CatalogInfo, error) {
	ch := s.refresh.DoChan("catalog", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return CatalogInfo{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug().Msg("Catalog refresh joined an in-flight fetch")
		}
		if res.Err != nil {
			return CatalogInfo{}, res.Err
		}
		return res.Val.(CatalogInfo), nil
	}
}

func (s *CatalogService) load(ctx context.Context) (CatalogInfo, error) {
	catalog, fetchErr := s.fetcher.FetchCatalog(ctx)
	if fetchErr == nil {
		if err := s.snapshots.Save(ctx, catalog); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to store catalog snapshot")
		}
		return s.install(catalog, false), nil
	}

	s.logger.Error().Err(fetchErr).Msg("Failed to fetch course catalog")

	snapshot, err := s.snapshots.Latest(ctx)
	if err != nil {
		// Whatever is already in memory stays in service.
		if errors.Is(err, apperrors.ErrCatalogEmpty) {
			return CatalogInfo{}, fetchErr
		}
		return CatalogInfo{}, fmt.Errorf("%w (snapshot: %v)", fetchErr, err)
	}

	s.logger.Warn().Str("fetchedAt", snapshot.FetchedAt).Int("courses", len(snapshot.Courses)).Msg("Serving catalog from stored snapshot")
	return s.install(snapshot, true), nil
}

// install sorts and indexes a catalog and swaps it in.
func (s *CatalogService) install(catalog *models.Catalog, fromCache bool) CatalogInfo {
	catalog.AssignColors()

	courses := append([]models.Course(nil), catalog.Courses...)
	sortCourses(courses)

	index := make(map[string]int, len(courses))
	for i := range courses {
		if _, dup := index[courses[i].ID]; !dup {
			index[courses[i].ID] = i
		}
	}

	// First-seen order of the upstream list, not the sorted one.
	seen := make(map[string]bool)
	var departments []string
	for _, c := range catalog.Courses {
		if !seen[c.Department] {
			seen[c.Department] = true
			departments = append(departments, c.Department)
		}
	}

	info := CatalogInfo{
		FetchedAt:   catalog.FetchedAt,
		CourseCount: len(courses),
		Departments: len(departments),
		FromCache:   fromCache,
		LoadedAt:    time.Now(),
	}

	s.mu.Lock()
	s.courses = courses
	s.index = index
	s.departments = departments
	s.info = info
	s.mu.Unlock()

	s.logger.Info().Str("fetchedAt", info.FetchedAt).Int("courses", info.CourseCount).Bool("fromCache", fromCache).Msg("Course catalog loaded")
	return info
}

// sortCourses orders by grade, then by name in Korean collation.
func sortCourses(courses []models.Course) {
	col := collate.New(language.Korean)
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].Grade != courses[j].Grade {
			return courses[i].Grade < courses[j].Grade
		}
		return col.CompareString(courses[i].Name, courses[j].Name) < 0
	})
}

// Run refreshes the catalog every interval until ctx is done.
func (s *CatalogService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled catalog refresh failed")
			}
		}
	}
}

// Loaded reports whether any catalog has been installed.
func (s *CatalogService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courses != nil
}

// Info describes the catalog currently served.
func (s *CatalogService) Info() CatalogInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Departments lists distinct department names in first-seen order.
func (s *CatalogService) Departments() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.courses == nil {
		return nil, apperrors.ErrCatalogEmpty
	}
	return append([]string(nil), s.departments...), nil
}

// Course returns one course by ID.
func (s *CatalogService) Course(id string) (*models.Course, error) {
	c, ok := s.Lookup(id)
	if !ok {
		if !s.Loaded() {
			return nil, apperrors.ErrCatalogEmpty
		}
		return nil, apperrors.ErrCourseNotFound
	}
	return &c, nil
}

// Lookup finds a course by ID.
func (s *CatalogService) Lookup(id string) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Course{}, false
	}
	return s.courses[i], true
}

// Search filters the catalog and returns one page of the sorted result.
func (s *CatalogService) Search(filter CourseFilter, page, size int) (*SearchResult, error) {
	if size <= 0 {
		size = s.batchSize
	}
	if page < 1 {
		page = helpers.DefaultPage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.courses == nil {
		return nil, apperrors.ErrCatalogEmpty
	}

	match := filter.matcher()
	var matched []models.Course
	for i := range s.courses {
		if match(&s.courses[i]) {
			matched = append(matched, s.courses[i])
		}
	}

	start, end := helpers.CalculateSliceIndices(page, size, len(matched))
	result := &SearchResult{
		Items: append([]models.Course{}, matched[start:end]...),
		Total: len(matched),
		Page:  page,
		Size:  size,
		Query: normalizeTerm(filter.Query),
	}
	if result.Total == 0 {
		result.Message = NoResultsMessage(result.Query)
	}
	return result, nil
}

// matcher compiles the filter once into a predicate.
func (f CourseFilter) matcher() func(*models.Course) bool {
	grades := nonEmpty(f.Grades)
	types := f.Types
	days := f.Days
	term := normalizeTerm(f.Query)

	var credits []int
	for _, v := range nonEmpty(f.Credits) {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			credits = append(credits, n)
		}
	}

	return func(c *models.Course) bool {
		if f.Department != "" && c.Department != f.Department {
			return false
		}
		if len(grades) > 0 && !containsString(grades, strconv.Itoa(int(c.Grade))) {
			return false
		}
		if len(types) > 0 && !anySubstring(c.Type, types) {
			return false
		}
		if len(days) > 0 && !anySubstring(c.Time, days) {
			return false
		}
		if len(credits) > 0 && (!c.Credits.Numeric || !containsInt(credits, c.Credits.Value)) {
			return false
		}
		if term != "" && !strings.Contains(c.SearchText(), term) {
			return false
		}
		return true
	}
}

// normalizeTerm trims and lower-cases a search term.
func normalizeTerm(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

func anySubstring(field string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(field, n) {
			return true
		}
	}
	return false
}
