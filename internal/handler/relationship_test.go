package handler_test

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreateRelationship_Validation(t *testing.T) {
	r, db := setupServer(t)
	a := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	b := seedContact(t, db, "Grace", "Hopper", "grace@example.org")

	w := doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": b.ID,
		"relationshipType": "sibling",
	})
	wantStatus(t, w, http.StatusCreated)

	// self link
	w = doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": a.ID,
		"relationshipType": "sibling",
	})
	wantStatus(t, w, http.StatusBadRequest)

	// unknown type
	w = doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": b.ID,
		"relationshipType": "roommate",
	})
	wantStatus(t, w, http.StatusBadRequest)

	// unknown related contact
	w = doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": uint(9999),
		"relationshipType": "sibling",
	})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestListRelationships_EitherSide(t *testing.T) {
	r, db := setupServer(t)
	a := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	b := seedContact(t, db, "Grace", "Hopper", "grace@example.org")
	c := seedContact(t, db, "Joan", "Clarke", "joan@example.org")

	w := doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": b.ID,
		"relationshipType": "spouse",
	})
	wantStatus(t, w, http.StatusCreated)
	w = doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        c.ID,
		"relatedContactId": a.ID,
		"relationshipType": "child",
	})
	wantStatus(t, w, http.StatusCreated)

	// a appears on both sides; b only on one
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/contacts/%d/relationships", a.ID), nil)
	wantStatus(t, w, http.StatusOK)
	var resp struct {
		Relationships []struct {
			RelationshipType string `json:"relationshipType"`
		} `json:"relationships"`
	}
	decodeData(t, w, &resp)
	if len(resp.Relationships) != 2 {
		t.Errorf("got %d relationships for a, want 2", len(resp.Relationships))
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/contacts/%d/relationships", b.ID), nil)
	wantStatus(t, w, http.StatusOK)
	decodeData(t, w, &resp)
	if len(resp.Relationships) != 1 {
		t.Errorf("got %d relationships for b, want 1", len(resp.Relationships))
	}
}

func TestDeleteRelationship_ReturnsRow(t *testing.T) {
	r, db := setupServer(t)
	a := seedContact(t, db, "Ada", "Lovelace", "ada@example.org")
	b := seedContact(t, db, "Grace", "Hopper", "grace@example.org")

	w := doJSON(t, r, "POST", "/api/relationships", map[string]interface{}{
		"contactId":        a.ID,
		"relatedContactId": b.ID,
		"relationshipType": "spouse",
	})
	wantStatus(t, w, http.StatusCreated)
	var created struct {
		Relationship struct {
			ID uint `json:"id"`
		} `json:"relationship"`
	}
	decodeData(t, w, &created)

	w = doJSON(t, r, "DELETE",
		fmt.Sprintf("/api/relationships/%d", created.Relationship.ID), nil)
	wantStatus(t, w, http.StatusOK)
	var deleted struct {
		Relationship struct {
			ID               uint   `json:"id"`
			RelationshipType string `json:"relationshipType"`
		} `json:"relationship"`
	}
	decodeData(t, w, &deleted)
	if deleted.Relationship.ID != created.Relationship.ID ||
		deleted.Relationship.RelationshipType != "spouse" {
		t.Errorf("deleted = %+v, want the created spouse row", deleted.Relationship)
	}

	w = doJSON(t, r, "DELETE",
		fmt.Sprintf("/api/relationships/%d", created.Relationship.ID), nil)
	wantStatus(t, w, http.StatusNotFound)
}
