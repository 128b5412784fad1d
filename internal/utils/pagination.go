package utils

import (
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is the page window carried by every listing filter
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// PaginationResponse represents pagination response metadata
type PaginationResponse struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ParsePageRequest reads ?page= and ?page_size= values. Malformed or
// out-of-range values fall back to the defaults.
func ParsePageRequest(pageStr, pageSizeStr string) PageRequest {
	req := PageRequest{Page: 1, PageSize: DefaultPageSize}
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		req.Page = p
	}
	if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 && ps <= MaxPageSize {
		req.PageSize = ps
	}
	return req
}

// Normalized clamps the page to >= 1 and the page size to 1..MaxPageSize
func (p PageRequest) Normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Result builds the response metadata for this page given the total row count
func (p PageRequest) Result(total int64) PaginationResponse {
	totalPages := 1
	if p.PageSize > 0 && total > 0 {
		totalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return PaginationResponse{
		Total:       total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
	}
}
