package query

import (
	"log"
	"math"
	"strconv"
	"strings"

	"querykit/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a validated page request. Page is 1-indexed.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset is the number of records skipped before this page. ParseParams
// guarantees it does not overflow.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PastEnd reports whether the page starts at or beyond total records,
// without computing the offset.
func (p Params) PastEnd(total int64) bool {
	if p.Limit <= 0 || total <= 0 {
		return true
	}
	pages := (total-1)/int64(p.Limit) + 1
	return int64(p.Page-1) >= pages
}

// Metadata builds the response pagination block for this page.
func (p Params) Metadata(total int64) Metadata {
	return GenerateMetadata(p.Page, p.Limit, total)
}

// Metadata is the "pagination" object of a collection response.
type Metadata struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// ParseParams applies defaults to absent values, rejects non-positive ones
// and caps limit at MaxLimit.
func ParseParams(page, limit *int) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if page != nil {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = *limit
	}

	if p.Page <= 0 {
		return Params{}, domain.Invalid("page", "page must be positive (got: %d)", p.Page)
	}
	if p.Limit <= 0 {
		return Params{}, domain.Invalid("limit", "limit must be positive (got: %d)", p.Limit)
	}
	if p.Limit > MaxLimit {
		log.Printf("[QUERY] action=cap_limit requested=%d max=%d", p.Limit, MaxLimit)
		p.Limit = MaxLimit
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return Params{}, domain.Invalid("page", "page is too large (got: %d)", p.Page)
	}
	return p, nil
}

// ParseParamStrings is ParseParams for raw query-string values; blank means absent.
func ParseParamStrings(page, limit string) (Params, error) {
	pp, err := optionalInt("page", page)
	if err != nil {
		return Params{}, err
	}
	lp, err := optionalInt("limit", limit)
	if err != nil {
		return Params{}, err
	}
	return ParseParams(pp, lp)
}

func optionalInt(param, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.ValidationError{Field: param, Msg: param + " must be an integer (got: " + raw + ")", Err: err}
	}
	return &n, nil
}

// GenerateMetadata computes totalPages = ceil(total/limit) and the
// navigation flags for the given page.
func GenerateMetadata(page, limit int, total int64) Metadata {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Metadata{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
