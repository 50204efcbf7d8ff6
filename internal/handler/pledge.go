package handler

import (
	"strconv"
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"
	"github.com/expertdev121/givesuite-sub003/internal/cache"
	"github.com/expertdev121/givesuite-sub003/internal/models"
	"github.com/expertdev121/givesuite-sub003/internal/query"
	"github.com/expertdev121/givesuite-sub003/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PledgeHandler serves pledge CRUD and the filtered pledge list.
type PledgeHandler struct {
	DB              *gorm.DB
	Cache           *cache.Store
	DefaultPageSize int
}

func NewPledgeHandler(db *gorm.DB, c *cache.Store, defaultPageSize int) *PledgeHandler {
	return &PledgeHandler{DB: db, Cache: c, DefaultPageSize: defaultPageSize}
}

const pledgeCacheResource = "pledge"

// pledge paid-status filter values; derived from stored decimal columns,
// never from floats (see pledgeStatusPredicate)
const (
	pledgeStatusFullyPaid     = "fullyPaid"
	pledgeStatusPartiallyPaid = "partiallyPaid"
	pledgeStatusUnpaid        = "unpaid"
)

func validPledgeStatus(s string) bool {
	return s == pledgeStatusFullyPaid || s == pledgeStatusPartiallyPaid || s == pledgeStatusUnpaid
}

func pledgeStatusPredicate(status string) query.Predicate {
	switch status {
	case pledgeStatusFullyPaid:
		return query.P("pledges.balance = 0")
	case pledgeStatusUnpaid:
		return query.P("pledges.total_paid = 0")
	default: // partiallyPaid
		return query.P("pledges.total_paid > 0 AND pledges.balance > 0")
	}
}

// ---------- request/response shapes ----------

type createPledgeReq struct {
	ContactID    uint    `json:"contactId" binding:"required"`
	CategoryID   *uint   `json:"categoryId"`
	PledgeDate   string  `json:"pledgeDate"`
	Description  string  `json:"description" binding:"max=255"`
	Amount       string  `json:"amount" binding:"required"`
	Currency     string  `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate string  `json:"exchangeRate"`
	Notes        string  `json:"notes"`
	Active       *bool   `json:"active"`
}

type updatePledgeReq struct {
	CategoryID  *uint   `json:"categoryId"`
	PledgeDate  string  `json:"pledgeDate"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	Active      *bool   `json:"active"`
}

// pledgeRow is the list/detail projection: pledge columns plus the
// LEFT-joined display names.
type pledgeRow struct {
	ID                uint             `json:"id"`
	ContactID         uint             `json:"contactId"`
	CategoryID        *uint            `json:"categoryId"`
	ContactName       string           `json:"contactName"`
	ContactEmail      string           `json:"contactEmail"`
	CategoryName      *string          `json:"categoryName"`
	PledgeDate        time.Time        `json:"pledgeDate"`
	Description       string           `json:"description"`
	OriginalAmount    decimal.Decimal  `json:"originalAmount"`
	Currency          string           `json:"currency"`
	OriginalAmountUSD decimal.Decimal  `json:"originalAmountUsd"`
	TotalPaid         decimal.Decimal  `json:"totalPaid"`
	TotalPaidUSD      decimal.Decimal  `json:"totalPaidUsd"`
	Balance           decimal.Decimal  `json:"balance"`
	BalanceUSD        decimal.Decimal  `json:"balanceUsd"`
	Active            bool             `json:"active"`
	Notes             string           `json:"notes"`
	CreatedAt         time.Time        `json:"createdAt"`
}

const pledgeSelect = `pledges.id, pledges.contact_id, pledges.category_id,
contacts.first_name || ' ' || contacts.last_name AS contact_name,
contacts.email AS contact_email,
categories.name AS category_name,
pledges.pledge_date, pledges.description,
pledges.original_amount, pledges.currency, pledges.original_amount_usd,
pledges.total_paid, pledges.total_paid_usd, pledges.balance, pledges.balance_usd,
pledges.active, pledges.notes, pledges.created_at`

// pledgeFilters is the validated filter set shared by the list and export
// endpoints.
type pledgeFilters struct {
	ContactID  *uint
	CategoryID *uint
	Dates      query.DateRange
	Status     string
	Search     string
}

func parsePledgeFilters(c *gin.Context) (pledgeFilters, error) {
	var f pledgeFilters
	var err error

	if f.ContactID, err = query.ParseID("contactId", c.Query("contactId")); err != nil {
		return f, err
	}
	if f.CategoryID, err = query.ParseID("categoryId", c.Query("categoryId")); err != nil {
		return f, err
	}
	if f.Dates, err = query.ParseDateRange(c.Query("startDate"), c.Query("endDate")); err != nil {
		return f, err
	}
	if f.Status, err = query.ParseEnum("status", c.Query("status"), validPledgeStatus); err != nil {
		return f, err
	}
	f.Search = c.Query("search")
	return f, nil
}

// pledgeConjunction turns the filter set into one predicate list; absent
// filters contribute nothing.
func pledgeConjunction(f pledgeFilters) query.Conjunction {
	var conj query.Conjunction
	if f.ContactID != nil {
		conj = conj.And(query.P("pledges.contact_id = ?", *f.ContactID))
	}
	if f.CategoryID != nil {
		conj = conj.And(query.P("pledges.category_id = ?", *f.CategoryID))
	}
	if f.Dates.HasStart {
		conj = conj.And(query.P("pledges.pledge_date >= ?", f.Dates.Start))
	}
	if f.Dates.HasEnd {
		conj = conj.And(query.P("pledges.pledge_date < ?", f.Dates.End))
	}
	if f.Status != "" {
		conj = conj.And(pledgeStatusPredicate(f.Status))
	}
	if f.Search != "" {
		conj = conj.And(query.SearchAcross(f.Search,
			"pledges.description",
			"pledges.notes",
			"contacts.first_name || ' ' || contacts.last_name",
			"contacts.email",
		))
	}
	return conj
}

// pledgeBase builds the joined, filtered base query consumed by both the
// count and the page query.
func pledgeBase(db *gorm.DB, f pledgeFilters) *gorm.DB {
	base := db.Model(&models.Pledge{}).
		Select(pledgeSelect).
		Joins("LEFT JOIN contacts ON contacts.id = pledges.contact_id").
		Joins("LEFT JOIN categories ON categories.id = pledges.category_id")
	return pledgeConjunction(f).Apply(base)
}

// ---------- handlers ----------

// ListPledges returns one page of pledges with pagination metadata.
func (h *PledgeHandler) ListPledges(c *gin.Context) {
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	f, err := parsePledgeFilters(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var rows []pledgeRow
	pagination, err := query.Paginate(
		pledgeBase(h.DB, f), p, "pledges.pledge_date DESC, pledges.id DESC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"pledges":    rows,
		"pagination": pagination,
	})
}

// GetPledge serves a single pledge through the TTL cache.
func (h *PledgeHandler) GetPledge(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if v, ok := h.Cache.Get(pledgeCacheResource, id); ok {
		util.Success(c, util.Response{"pledge": v})
		return
	}

	var row pledgeRow
	err = pledgeBase(h.DB, pledgeFilters{}).
		Where("pledges.id = ?", id).
		Take(&row).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	h.Cache.Set(pledgeCacheResource, id, row)
	util.Success(c, util.Response{"pledge": row})
}

// CreatePledge records a new pledge. An identical active pledge (same
// contact, category, amount, currency) is a conflict.
func (h *PledgeHandler) CreatePledge(c *gin.Context) {
	var req createPledgeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	amountUSD, err := toReportingCurrency(amount, currency, req.ExchangeRate)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	pledgeDate := time.Now()
	if req.PledgeDate != "" {
		t, err := time.Parse("2006-01-02", req.PledgeDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid pledgeDate, want YYYY-MM-DD"))
			return
		}
		pledgeDate = t
	}

	if req.CategoryID != nil {
		if err := ensureExists(h.DB, &models.Category{}, *req.CategoryID, "category"); err != nil {
			apperr.Respond(c, err)
			return
		}
	}
	if err := ensureExists(h.DB, &models.Contact{}, req.ContactID, "contact"); err != nil {
		apperr.Respond(c, err)
		return
	}

	// duplicate-entry business rule
	dup := h.DB.Model(&models.Pledge{}).
		Where("contact_id = ? AND original_amount = ? AND currency = ? AND active = ?",
			req.ContactID, amount, currency, true)
	if req.CategoryID != nil {
		dup = dup.Where("category_id = ?", *req.CategoryID)
	} else {
		dup = dup.Where("category_id IS NULL")
	}
	var dupCount int64
	if err := dup.Count(&dupCount).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	if dupCount > 0 {
		apperr.Respond(c, apperr.New(apperr.Conflict, "an identical active pledge already exists"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	pledge := models.Pledge{
		ContactID:         req.ContactID,
		CategoryID:        req.CategoryID,
		PledgeDate:        pledgeDate,
		Description:       req.Description,
		OriginalAmount:    amount,
		Currency:          currency,
		OriginalAmountUSD: amountUSD,
		TotalPaid:         decimal.Zero,
		TotalPaidUSD:      decimal.Zero,
		Balance:           amount,
		BalanceUSD:        amountUSD,
		Active:            active,
		Notes:             req.Notes,
	}
	if err := h.DB.Create(&pledge).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"pledge": h.loadRow(pledge.ID)})
}

// UpdatePledge changes descriptive fields; amounts move only through
// payments, never through this endpoint.
func (h *PledgeHandler) UpdatePledge(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req updatePledgeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var pledge models.Pledge
	if err := h.DB.First(&pledge, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	if req.CategoryID != nil {
		if err := ensureExists(h.DB, &models.Category{}, *req.CategoryID, "category"); err != nil {
			apperr.Respond(c, err)
			return
		}
		pledge.CategoryID = req.CategoryID
	}
	if req.PledgeDate != "" {
		t, err := time.Parse("2006-01-02", req.PledgeDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid pledgeDate, want YYYY-MM-DD"))
			return
		}
		pledge.PledgeDate = t
	}
	if req.Description != nil {
		pledge.Description = *req.Description
	}
	if req.Notes != nil {
		pledge.Notes = *req.Notes
	}
	if req.Active != nil {
		pledge.Active = *req.Active
	}

	if err := h.DB.Save(&pledge).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Invalidate(pledgeCacheResource, id)

	util.Success(c, util.Response{"pledge": h.loadRow(pledge.ID)})
}

// DeletePledge removes a pledge and, through the schema's cascades, its
// payments and plans.
func (h *PledgeHandler) DeletePledge(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.DB.Delete(&models.Pledge{}, id)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.New(apperr.NotFound, "pledge not found"))
		return
	}
	h.Cache.Invalidate(pledgeCacheResource, id)

	util.Success(c, util.Response{"deleted": id})
}

// loadRow fetches the joined projection for one pledge; used after writes
// so responses match the list shape.
func (h *PledgeHandler) loadRow(id uint) *pledgeRow {
	var row pledgeRow
	if err := pledgeBase(h.DB, pledgeFilters{}).
		Where("pledges.id = ?", id).
		Take(&row).Error; err != nil {
		return nil
	}
	return &row
}

// ---------- shared helpers ----------

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uint, error) {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || n < 1 {
		return 0, apperr.New(apperr.Validation, "invalid id parameter")
	}
	return uint(n), nil
}

// parsePositiveAmount parses a decimal money string, rejecting zero and
// negative values.
func parsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.New(apperr.Validation, "invalid amount")
	}
	if !d.IsPositive() {
		return decimal.Zero, apperr.New(apperr.Validation, "amount must be positive")
	}
	return d, nil
}

// toReportingCurrency normalizes an amount to USD. Non-USD amounts need an
// exchange rate on the request.
func toReportingCurrency(amount decimal.Decimal, currency, rateStr string) (decimal.Decimal, error) {
	if currency == "USD" {
		return amount, nil
	}
	if rateStr == "" {
		return decimal.Zero, apperr.New(apperr.Validation, "exchangeRate is required for non-USD amounts")
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, apperr.New(apperr.Validation, "invalid exchangeRate")
	}
	return amount.Mul(rate).Round(2), nil
}

// ensureExists checks a referenced row before insert so the caller gets a
// clean validation error instead of a raw constraint failure.
func ensureExists(db *gorm.DB, model interface{}, id uint, name string) error {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.Validation, "%s %d does not exist", name, id)
	}
	return nil
}
