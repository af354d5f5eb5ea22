// Package dto holds the API request and response shapes.
package dto

// ListResponse wraps list results.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// PageRequest carries paging query parameters.
type PageRequest struct {
	Limit  int `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ErrorResponse documents the error body shape.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
