package api

import (
	"strconv" // String conversion
	"time"    // Date filters

	"paywin/internal/domain"     // Transaction types
	"paywin/internal/repository" // Page windows

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	defaultPageSize = 20  // Used when page_size is absent
	maxPageSize     = 100 // Upper bound for page_size
)

// pagination reads page and page_size, falling back to defaults on bad input
type pagination struct {
	Page     int
	PageSize int
}

func paginate(c *gin.Context) pagination {
	p := pagination{Page: 1, PageSize: defaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= maxPageSize {
		p.PageSize = v // Set page size if within limits
	}
	return p
}

func (p pagination) window() repository.Page {
	return repository.Page{Offset: (p.Page - 1) * p.PageSize, Limit: p.PageSize}
}

// body builds the paged response envelope under the given key
func (p pagination) body(key string, items any, total int64) gin.H {
	return gin.H{
		key:           items,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total":       total,
		"total_pages": (int(total) + p.PageSize - 1) / p.PageSize,
	}
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// transactionFilter reads the admin ledger filters. Dates are YYYY-MM-DD, and
// "to" covers the whole day.
func transactionFilter(c *gin.Context) (repository.TransactionFilter, bool) {
	var f repository.TransactionFilter
	if s := c.Query("user_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			badRequest(c, "Invalid user_id")
			return f, false
		}
		f.UserID = uint(v)
	}
	f.Type = domain.TransactionType(c.Query("type"))
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			badRequest(c, "Invalid from date, use YYYY-MM-DD")
			return f, false
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			badRequest(c, "Invalid to date, use YYYY-MM-DD")
			return f, false
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.To = &t
	}
	return f, true
}
