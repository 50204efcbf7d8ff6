package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

type pledgeListResp struct {
	Pledges []struct {
		ID           uint            `json:"id"`
		CategoryID   *uint           `json:"categoryId"`
		ContactEmail string          `json:"contactEmail"`
		TotalPaid    decimal.Decimal `json:"totalPaid"`
		Balance      decimal.Decimal `json:"balance"`
		Description  string          `json:"description"`
	} `json:"pledges"`
	Pagination pagination `json:"pagination"`
}

// 25 pledges in one category, paged with limit=10: page 3 holds the last 5.
func TestListPledges_PaginationExample(t *testing.T) {
	r, db := setupServer(t)

	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	seedCategory(t, db, "Building Fund")
	seedCategory(t, db, "Scholarships")
	cat3 := seedCategory(t, db, "General")

	for i := 0; i < 25; i++ {
		seedPledge(t, db, donor.ID, &cat3.ID, "100", "0")
	}
	// noise in another category
	other := seedCategory(t, db, "Events")
	seedPledge(t, db, donor.ID, &other.ID, "100", "0")

	w := doJSON(t, r, "GET", fmt.Sprintf("/api/pledges?limit=10&page=3&categoryId=%d", cat3.ID), nil)
	wantStatus(t, w, http.StatusOK)

	var resp pledgeListResp
	decodeData(t, w, &resp)

	if len(resp.Pledges) != 5 {
		t.Errorf("len(pledges) = %d, want 5", len(resp.Pledges))
	}
	p := resp.Pagination
	if p.TotalCount != 25 || p.TotalPages != 3 {
		t.Errorf("pagination = %+v, want totalCount 25, totalPages 3", p)
	}
	if p.HasNextPage || !p.HasPreviousPage {
		t.Errorf("hasNextPage = %v, hasPreviousPage = %v, want false/true", p.HasNextPage, p.HasPreviousPage)
	}
}

func TestListPledges_PageBeyondEndIsEmpty(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	seedPledge(t, db, donor.ID, nil, "100", "0")

	w := doJSON(t, r, "GET", "/api/pledges?limit=10&page=99", nil)
	wantStatus(t, w, http.StatusOK)

	var resp pledgeListResp
	decodeData(t, w, &resp)
	if len(resp.Pledges) != 0 {
		t.Errorf("len(pledges) = %d, want 0", len(resp.Pledges))
	}
	if resp.Pagination.TotalCount != 1 {
		t.Errorf("totalCount = %d, want 1", resp.Pagination.TotalCount)
	}
}

func TestListPledges_InvalidParams(t *testing.T) {
	r, _ := setupServer(t)

	cases := []string{
		"/api/pledges?page=0",
		"/api/pledges?page=abc",
		"/api/pledges?limit=0",
		"/api/pledges?limit=101",
		"/api/pledges?categoryId=-1",
		"/api/pledges?categoryId=xyz",
		"/api/pledges?startDate=2024-13-40",
		"/api/pledges?status=paidInFull",
	}
	for _, path := range cases {
		w := doJSON(t, r, "GET", path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
	}
}

// Paid status is derived from the stored decimal columns: fullyPaid means
// balance = 0, partiallyPaid requires both paid > 0 and balance > 0.
func TestListPledges_StatusFilters(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")

	full := seedPledge(t, db, donor.ID, nil, "100", "100")
	partial := seedPledge(t, db, donor.ID, nil, "100", "40")
	unpaid := seedPledge(t, db, donor.ID, nil, "100", "0")

	byStatus := func(status string) map[uint]bool {
		w := doJSON(t, r, "GET", "/api/pledges?status="+status+"&limit=100", nil)
		wantStatus(t, w, http.StatusOK)
		var resp pledgeListResp
		decodeData(t, w, &resp)
		got := make(map[uint]bool)
		for _, p := range resp.Pledges {
			got[p.ID] = true
		}
		return got
	}

	got := byStatus("fullyPaid")
	if !got[full.ID] || got[partial.ID] || got[unpaid.ID] {
		t.Errorf("fullyPaid returned %v", got)
	}
	got = byStatus("partiallyPaid")
	if got[full.ID] || !got[partial.ID] || got[unpaid.ID] {
		t.Errorf("partiallyPaid returned %v", got)
	}
	got = byStatus("unpaid")
	if got[full.ID] || got[partial.ID] || !got[unpaid.ID] {
		t.Errorf("unpaid returned %v", got)
	}
}

// A term matching only the contact's email must still find the pledge.
func TestListPledges_SearchMatchesContactEmail(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Grace", "Hopper", "grace.hopper@navy.example")
	other := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")

	target := seedPledge(t, db, donor.ID, nil, "500", "0")
	seedPledge(t, db, other.ID, nil, "500", "0")

	w := doJSON(t, r, "GET", "/api/pledges?search=grace.hopper", nil)
	wantStatus(t, w, http.StatusOK)

	var resp pledgeListResp
	decodeData(t, w, &resp)
	if len(resp.Pledges) != 1 || resp.Pledges[0].ID != target.ID {
		t.Fatalf("search returned %+v, want only pledge %d", resp.Pledges, target.ID)
	}
}

// Removing a filter never shrinks the result set.
func TestListPledges_FilterRelaxationMonotonic(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	cat := seedCategory(t, db, "General")
	for i := 0; i < 3; i++ {
		seedPledge(t, db, donor.ID, &cat.ID, "100", "0")
	}
	for i := 0; i < 4; i++ {
		seedPledge(t, db, donor.ID, nil, "100", "0")
	}

	count := func(path string) int64 {
		w := doJSON(t, r, "GET", path, nil)
		wantStatus(t, w, http.StatusOK)
		var resp pledgeListResp
		decodeData(t, w, &resp)
		return resp.Pagination.TotalCount
	}

	filtered := count(fmt.Sprintf("/api/pledges?categoryId=%d", cat.ID))
	all := count("/api/pledges")
	if all < filtered {
		t.Errorf("relaxing the filter shrank the result: %d < %d", all, filtered)
	}
}

func TestCreatePledge_DuplicateActiveConflict(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	cat := seedCategory(t, db, "General")

	body := map[string]interface{}{
		"contactId":  donor.ID,
		"categoryId": cat.ID,
		"amount":     "250.00",
	}
	w := doJSON(t, r, "POST", "/api/pledges", body)
	wantStatus(t, w, http.StatusCreated)

	w = doJSON(t, r, "POST", "/api/pledges", body)
	wantStatus(t, w, http.StatusConflict)
}

func TestCreatePledge_UnknownContactRejected(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, "POST", "/api/pledges", map[string]interface{}{
		"contactId": 9999,
		"amount":    "100",
	})
	wantStatus(t, w, http.StatusBadRequest)
}

// A write must invalidate the cached single-pledge read.
func TestGetPledge_CacheInvalidatedOnUpdate(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	pledge := seedPledge(t, db, donor.ID, nil, "100", "0")

	path := fmt.Sprintf("/api/pledges/%d", pledge.ID)

	// prime the cache
	w := doJSON(t, r, "GET", path, nil)
	wantStatus(t, w, http.StatusOK)

	w = doJSON(t, r, "PUT", path, map[string]interface{}{"description": "updated text"})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(t, r, "GET", path, nil)
	wantStatus(t, w, http.StatusOK)
	var resp struct {
		Pledge struct {
			Description string `json:"description"`
		} `json:"pledge"`
	}
	decodeData(t, w, &resp)
	if resp.Pledge.Description != "updated text" {
		t.Errorf("description = %q, want %q (stale cache?)", resp.Pledge.Description, "updated text")
	}
}

func TestGetPledge_NotFound(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, "GET", "/api/pledges/424242", nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestDeletePledge_NotFound(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, "DELETE", "/api/pledges/424242", nil)
	wantStatus(t, w, http.StatusNotFound)
}
