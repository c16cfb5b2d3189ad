package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturetable/internal/app/models/dto"
)

const (
	// DefaultPageSize matches the list batch the course browser appends per scroll.
	DefaultPageSize = 200
	MaxPageSize     = 1000
	DefaultPage     = 1 // Default page is 1-based
)

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
		HasMore:     int64(page*size) < totalItems,
	}
}

// ParsePaginationParams extracts and validates pagination parameters from the request.
// fallbackSize is used when size is absent or out of range.
func ParsePaginationParams(c *gin.Context, fallbackSize int) (page, size int) {
	if fallbackSize <= 0 || fallbackSize > MaxPageSize {
		fallbackSize = DefaultPageSize
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(fallbackSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = fallbackSize
	}

	return page, size
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	start = (page - 1) * size
	if start >= totalItems {
		return totalItems, totalItems
	}
	end = start + size
	if end > totalItems {
		end = totalItems
	}
	return start, end
}
