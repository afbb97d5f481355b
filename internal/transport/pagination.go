package transport

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frahmantamala/employee-management/internal"
)

// PageRequest is a parsed ?page=&page_size= pair.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p PageRequest) Limit() int {
	return p.PageSize
}

// Page is the data payload of every paginated list endpoint.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func errInvalidPage() *internal.AppError {
	return internal.NewNotFoundError("Invalid page.", internal.ErrCodeInvalidPage)
}

// ParsePageRequest reads the paging query. A malformed page is an error; a
// malformed page_size falls back to the default and is capped at the max.
func (h *BaseHandler) ParsePageRequest(r *http.Request) (PageRequest, error) {
	req := PageRequest{Page: 1, PageSize: h.Pagination.DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, errInvalidPage()
		}
		req.Page = page
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			req.PageSize = size
		}
	}
	if h.Pagination.MaxPageSize > 0 && req.PageSize > h.Pagination.MaxPageSize {
		req.PageSize = h.Pagination.MaxPageSize
	}
	// No table holds this many rows, and the offset would overflow.
	if req.PageSize > 0 && req.Page-1 > math.MaxInt/req.PageSize {
		return req, errInvalidPage()
	}

	return req, nil
}

// NewPage wraps one page of results. Asking for a page past the end is an
// error, except for page 1 of an empty list.
func NewPage(r *http.Request, req PageRequest, count int64, results interface{}) (Page, error) {
	if req.Page > 1 && int64(req.Page-1) >= pageCount(count, req.PageSize) {
		return Page{}, errInvalidPage()
	}

	page := Page{Count: count, Results: results}
	if int64(req.Offset()+req.PageSize) < count {
		next := pageURL(r, req.Page+1)
		page.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(r, req.Page-1)
		page.Previous = &prev
	}
	return page, nil
}

func pageCount(count int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 1
	}
	return (count + int64(pageSize) - 1) / int64(pageSize)
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
