package query

import (
	"testing"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "", "", 1, 10, false},
		{"explicit", "3", "25", 3, 25, false},
		{"limit at cap", "1", "100", 1, 100, false},
		{"page zero", "0", "", 0, 0, true},
		{"page negative", "-1", "", 0, 0, true},
		{"page not a number", "abc", "", 0, 0, true},
		{"limit zero", "", "0", 0, 0, true},
		{"limit over cap", "", "101", 0, 0, true},
		{"limit not a number", "", "ten", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePage(tc.page, tc.limit, 10)
			if tc.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				if !apperr.IsKind(err, apperr.Validation) {
					t.Errorf("err = %v, want validation kind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
				t.Errorf("got %+v, want page %d limit %d", p, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestParsePage_BadDefaultFallsBack(t *testing.T) {
	p, err := ParsePage("", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Limit != 10 {
		t.Errorf("limit = %d, want fallback 10", p.Limit)
	}
}

func TestPageParamsOffset(t *testing.T) {
	p := PageParams{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Errorf("offset = %d, want 20", got)
	}
	p = PageParams{Page: 1, Limit: 50}
	if got := p.Offset(); got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("categoryId", ""); err != nil || id != nil {
		t.Errorf("empty: got %v, %v", id, err)
	}
	if id, err := ParseID("categoryId", "7"); err != nil || id == nil || *id != 7 {
		t.Errorf("valid: got %v, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "xyz", "1.5"} {
		if _, err := ParseID("categoryId", bad); err == nil {
			t.Errorf("ParseID(%q) accepted, want error", bad)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2026-01-10", "2026-01-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasStart || !r.HasEnd {
		t.Fatal("range flags not set")
	}
	if r.Start != time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v", r.Start)
	}
	// end is exclusive: the instant after the named day
	if r.End != time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC) {
		t.Errorf("end = %v, want start of Jan 21", r.End)
	}

	// start after end is an empty range, not an error
	if _, err := ParseDateRange("2026-03-01", "2026-01-01"); err != nil {
		t.Errorf("inverted range rejected: %v", err)
	}

	if _, err := ParseDateRange("01/10/2026", ""); err == nil {
		t.Error("bad start format accepted")
	}
	if _, err := ParseDateRange("", "tomorrow"); err == nil {
		t.Error("bad end format accepted")
	}
}

func TestParseEnum(t *testing.T) {
	valid := func(s string) bool { return s == "red" || s == "blue" }

	if v, err := ParseEnum("color", "", valid); err != nil || v != "" {
		t.Errorf("empty: got %q, %v", v, err)
	}
	if v, err := ParseEnum("color", "red", valid); err != nil || v != "red" {
		t.Errorf("valid: got %q, %v", v, err)
	}
	if _, err := ParseEnum("color", "RED", valid); err == nil {
		t.Error("case-mismatched value accepted")
	}
	if _, err := ParseEnum("color", "green", valid); err == nil {
		t.Error("unknown value accepted")
	}
}
