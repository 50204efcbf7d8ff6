package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestListCategories_RollupOrder(t *testing.T) {
	r, db := setupServer(t)
	donor := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	tuition := seedCategory(t, db, "Tuition")
	building := seedCategory(t, db, "Building")
	empty := seedCategory(t, db, "Library")
	seedPledge(t, db, donor.ID, &tuition.ID, "500", "100")
	seedPledge(t, db, donor.ID, &tuition.ID, "100", "0")
	seedPledge(t, db, donor.ID, &building.ID, "900", "0")

	w := doJSON(t, r, "GET", "/api/categories", nil)
	wantStatus(t, w, http.StatusOK)

	var resp struct {
		Categories []struct {
			ID              uint             `json:"id"`
			Name            string           `json:"name"`
			PledgeCount     int64            `json:"pledgeCount"`
			TotalPledgedUSD *decimal.Decimal `json:"totalPledgedUsd"`
		} `json:"categories"`
	}
	decodeData(t, w, &resp)
	if len(resp.Categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(resp.Categories))
	}
	if resp.Categories[0].ID != building.ID {
		t.Errorf("first = %q, want Building (largest total)", resp.Categories[0].Name)
	}
	if resp.Categories[1].ID != tuition.ID || resp.Categories[1].PledgeCount != 2 {
		t.Errorf("second = %+v, want Tuition with 2 pledges", resp.Categories[1])
	}
	last := resp.Categories[2]
	if last.ID != empty.ID || last.PledgeCount != 0 || last.TotalPledgedUSD != nil {
		t.Errorf("last = %+v, want Library with no pledges and null total", last)
	}
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, "POST", "/api/categories", map[string]interface{}{"name": "Tuition"})
	wantStatus(t, w, http.StatusCreated)

	w = doJSON(t, r, "POST", "/api/categories", map[string]interface{}{"name": "Tuition"})
	wantStatus(t, w, http.StatusConflict)
}

func TestUpdateCategory_Deactivate(t *testing.T) {
	r, db := setupServer(t)
	cat := seedCategory(t, db, "Tuition")

	w := doJSON(t, r, "PUT", fmt.Sprintf("/api/categories/%d", cat.ID), map[string]interface{}{
		"name":   "Tuition",
		"active": false,
	})
	wantStatus(t, w, http.StatusOK)

	var resp struct {
		Category struct {
			Active bool `json:"active"`
		} `json:"category"`
	}
	decodeData(t, w, &resp)
	if resp.Category.Active {
		t.Error("category still active after deactivation")
	}
}

func TestDeleteCategory_NotFound(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, "DELETE", "/api/categories/9999", nil)
	wantStatus(t, w, http.StatusNotFound)
}
