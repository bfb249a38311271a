package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// DefaultParams returns the browse defaults.
func DefaultParams() Params {
	return Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Skip:  0,
	}
}

// Parse coerces raw page and limit values into positive integers. Missing,
// non-numeric or non-positive values fall back to the defaults and limit is
// capped at MaxLimit. Page is clamped so that Skip cannot overflow. Parse
// never fails.
func Parse(pageRaw, limitRaw string) Params {
	p := DefaultParams()

	if v, ok := positiveInt(pageRaw); ok {
		p.Page = v
	}

	if v, ok := positiveInt(limitRaw); ok {
		p.Limit = min(v, MaxLimit)
	}

	if p.Page > math.MaxInt/p.Limit {
		p.Page = math.MaxInt / p.Limit
	}

	p.Skip = (p.Page - 1) * p.Limit
	return p
}

func positiveInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Meta is the pagination block of a listing response.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta builds the listing metadata for total matching records.
func NewMeta(params Params, total int) *Meta {
	return &Meta{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: Pages(total, params.Limit),
	}
}

// Pages returns ceil(total/limit), or 0 when limit is not positive.
func Pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}
