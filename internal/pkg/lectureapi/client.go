// Package lectureapi fetches the course catalog from the lecture timetable API.
package lectureapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

// TimetablePath is the catalog endpoint relative to the API base URL.
const TimetablePath = "/v1/lecture/timetable"

// maxBodyBytes bounds the catalog payload.
const maxBodyBytes = 64 << 20

// Fetcher loads a catalog.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (*models.Catalog, error)
}

// Client talks to the lecture API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a client for the given base URL, e.g. https://api.syu.kr.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type timetableResponse struct {
	API *models.Catalog `json:"api"`
}

// FetchCatalog downloads and decodes the full course list.
func (c *Client) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	url := c.baseURL + TimetablePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned %d", apperrors.ErrUpstreamUnavailable, url, resp.StatusCode)
	}

	var payload timetableResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode lecture timetable: %w", err)
	}
	if payload.API == nil {
		return nil, fmt.Errorf("decode lecture timetable: missing api field")
	}

	c.logger.Debug().
		Str("url", url).
		Int("courses", len(payload.API.Courses)).
		Str("fetchedAt", payload.API.FetchedAt).
		Dur("elapsed", time.Since(start)).
		Msg("Lecture catalog fetched")

	return payload.API, nil
}
