package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, "GET", "/healthz", nil)
	wantStatus(t, w, http.StatusOK)

	var resp struct {
		Status string `json:"status"`
		DB     string `json:"db"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.DB != "ok" {
		t.Errorf("health = %+v, want ok/ok", resp)
	}
}
