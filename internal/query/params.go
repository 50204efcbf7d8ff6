package query

import (
	"strconv"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"
)

// PageParams is a validated, bounded pagination request.
type PageParams struct {
	Page  int
	Limit int
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

const maxLimit = 100

// ParsePage validates raw page/limit query values. Empty strings take the
// defaults (page 1, limit defaultLimit); anything unparseable or out of
// range is rejected before the datastore is touched.
func ParsePage(pageStr, limitStr string, defaultLimit int) (PageParams, error) {
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = 10
	}
	p := PageParams{Page: 1, Limit: defaultLimit}

	if pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil || n < 1 {
			return PageParams{}, apperr.New(apperr.Validation, "invalid page parameter")
		}
		p.Page = n
	}
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > maxLimit {
			return PageParams{}, apperr.New(apperr.Validation, "invalid limit parameter")
		}
		p.Limit = n
	}
	return p, nil
}

// ParseID validates an optional positive-integer id filter. An empty value
// yields (nil, nil): the filter simply contributes no predicate.
func ParseID(name, s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return nil, apperr.Newf(apperr.Validation, "invalid %s parameter", name)
	}
	id := uint(n)
	return &id, nil
}

// DateRange holds an optional inclusive [Start, End] date filter. End is
// stored as the exclusive instant after the named day so that timestamped
// rows on the end date still match.
type DateRange struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// ParseDateRange validates optional ISO start/end dates. Start after end is
// accepted; it yields an empty range, not an error.
func ParseDateRange(startStr, endStr string) (DateRange, error) {
	var r DateRange
	if startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return DateRange{}, apperr.New(apperr.Validation, "invalid startDate parameter, want YYYY-MM-DD")
		}
		r.Start = t
		r.HasStart = true
	}
	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return DateRange{}, apperr.New(apperr.Validation, "invalid endDate parameter, want YYYY-MM-DD")
		}
		r.End = t.Add(24 * time.Hour)
		r.HasEnd = true
	}
	return r, nil
}

// ParseEnum validates an optional enum filter against its closed value set.
// Unrecognized values are rejected for every enum field.
func ParseEnum(name, s string, valid func(string) bool) (string, error) {
	if s == "" {
		return "", nil
	}
	if !valid(s) {
		return "", apperr.Newf(apperr.Validation, "invalid %s parameter", name)
	}
	return s, nil
}
