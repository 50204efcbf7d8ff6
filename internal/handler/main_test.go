package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/config"
	"github.com/expertdev121/givesuite-sub003/internal/database"
	"github.com/expertdev121/givesuite-sub003/internal/models"
	"github.com/expertdev121/givesuite-sub003/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupServer builds a router backed by a fresh temp database.
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Cache:  config.CacheConfig{PledgeTTLMinutes: 60},
		App:    config.AppSubConfig{DefaultPageSize: 10},
	}
	return router.SetupRouter(cfg, db, zerolog.Nop()), db
}

// doJSON performs one request against the test router.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData unwraps the {code, data} envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var env struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, w.Body.String())
	}
}

// pagination mirrors the JSON metadata shape.
type pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// ---------- seed helpers ----------

func seedContact(t *testing.T, db *gorm.DB, first, last, email string) models.Contact {
	t.Helper()
	c := models.Contact{FirstName: first, LastName: last, Email: email}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return c
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

// seedPledge creates a pledge with the given original and paid USD amounts;
// balance follows the stored invariant.
func seedPledge(t *testing.T, db *gorm.DB, contactID uint, categoryID *uint, original, paid string) models.Pledge {
	t.Helper()
	orig := decimal.RequireFromString(original)
	pd := decimal.RequireFromString(paid)
	p := models.Pledge{
		ContactID:         contactID,
		CategoryID:        categoryID,
		PledgeDate:        time.Now(),
		OriginalAmount:    orig,
		Currency:          "USD",
		OriginalAmountUSD: orig,
		TotalPaid:         pd,
		TotalPaidUSD:      pd,
		Balance:           orig.Sub(pd),
		BalanceUSD:        orig.Sub(pd),
		Active:            true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed pledge: %v", err)
	}
	return p
}

func seedPayment(t *testing.T, db *gorm.DB, pledgeID uint, amount, status string) models.Payment {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	p := models.Payment{
		PledgeID:      pledgeID,
		Amount:        amt,
		Currency:      "USD",
		AmountUSD:     amt,
		PaymentDate:   time.Now(),
		PaymentMethod: "check",
		Status:        status,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return p
}

func seedSolicitor(t *testing.T, db *gorm.DB, contactID uint, rate string) models.Solicitor {
	t.Helper()
	r := decimal.RequireFromString(rate)
	s := models.Solicitor{
		ContactID:      contactID,
		CommissionRate: &r,
		Status:         models.SolicitorStatusActive,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed solicitor: %v", err)
	}
	return s
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
