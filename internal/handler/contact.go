package handler

import (
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"
	"github.com/expertdev121/givesuite-sub003/internal/models"
	"github.com/expertdev121/givesuite-sub003/internal/query"
	"github.com/expertdev121/givesuite-sub003/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContactHandler serves contact CRUD, the contact's payments and the
// per-category rollup.
type ContactHandler struct {
	DB              *gorm.DB
	DefaultPageSize int
}

func NewContactHandler(db *gorm.DB, defaultPageSize int) *ContactHandler {
	return &ContactHandler{DB: db, DefaultPageSize: defaultPageSize}
}

// ---------- request/response shapes ----------

type contactReq struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=32"`
	Address   string `json:"address" binding:"max=255"`
	Notes     string `json:"notes"`
}

// contactRow carries the stored columns plus aggregates computed by the
// query, not stored on the row.
type contactRow struct {
	ID              uint            `json:"id"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address"`
	Notes           string          `json:"notes"`
	TotalPledgedUSD decimal.Decimal `json:"totalPledgedUsd"`
	TotalPaidUSD    decimal.Decimal `json:"totalPaidUsd"`
	BalanceUSD      decimal.Decimal `json:"balanceUsd"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Aggregates come from correlated subselects so one contact is always one
// row; a join projection would fan out per pledge.
const contactSelect = `contacts.id, contacts.first_name, contacts.last_name,
contacts.email, contacts.phone, contacts.address, contacts.notes, contacts.created_at,
COALESCE((SELECT SUM(p.original_amount_usd) FROM pledges p WHERE p.contact_id = contacts.id), 0) AS total_pledged_usd,
COALESCE((SELECT SUM(p.total_paid_usd) FROM pledges p WHERE p.contact_id = contacts.id), 0) AS total_paid_usd,
COALESCE((SELECT SUM(p.balance_usd) FROM pledges p WHERE p.contact_id = contacts.id), 0) AS balance_usd`

func contactBase(db *gorm.DB, conj query.Conjunction) *gorm.DB {
	base := db.Model(&models.Contact{}).Select(contactSelect)
	return conj.Apply(base)
}

// ---------- handlers ----------

// ListContacts returns one page of contacts with computed USD aggregates.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var conj query.Conjunction
	if s := c.Query("search"); s != "" {
		conj = conj.And(query.SearchAcross(s,
			"contacts.first_name || ' ' || contacts.last_name",
			"contacts.email",
			"contacts.phone",
		))
	}

	var rows []contactRow
	pagination, err := query.Paginate(
		contactBase(h.DB, conj), p, "contacts.last_name ASC, contacts.id ASC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"contacts":   rows,
		"pagination": pagination,
	})
}

func (h *ContactHandler) GetContact(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var row contactRow
	if err := contactBase(h.DB, nil).
		Where("contacts.id = ?", id).
		Take(&row).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"contact": row})
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req contactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	contact := models.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&contact).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"contact": contact})
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req contactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var contact models.Contact
	if err := h.DB.First(&contact, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Address = req.Address
	contact.Notes = req.Notes

	if err := h.DB.Save(&contact).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"contact": contact})
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.DB.Delete(&models.Contact{}, id)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.New(apperr.NotFound, "contact not found"))
		return
	}

	util.Success(c, util.Response{"deleted": id})
}

// ListContactPayments returns payments across all of the contact's
// pledges. A contact without pledges gets an empty page, not an error.
func (h *ContactHandler) ListContactPayments(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status, err := query.ParseEnum("paymentStatus", c.Query("paymentStatus"), models.ValidPaymentStatus)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var pledgeCount int64
	if err := h.DB.Model(&models.Pledge{}).
		Where("contact_id = ?", id).
		Count(&pledgeCount).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	if pledgeCount == 0 {
		util.Success(c, util.Response{
			"payments":   []paymentRow{},
			"pagination": query.NewPagination(p, 0),
		})
		return
	}

	conj := query.Conjunction{query.P("pledges.contact_id = ?", id)}
	if status != "" {
		conj = conj.And(query.P("payments.status = ?", status))
	}
	if s := c.Query("search"); s != "" {
		conj = conj.And(paymentSearchPredicate(s))
	}

	var rows []paymentRow
	pagination, err := query.Paginate(
		paymentBase(h.DB, conj), p, "payments.payment_date DESC, payments.id DESC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"payments":   rows,
		"pagination": pagination,
	})
}

// categoryTotalsRow is one group of the per-contact category rollup.
type categoryTotalsRow struct {
	CategoryID      *uint           `json:"categoryId"`
	CategoryName    *string         `json:"categoryName"`
	PledgeCount     int64           `json:"pledgeCount"`
	TotalPledgedUSD decimal.Decimal `json:"totalPledgedUsd"`
	TotalPaidUSD    decimal.Decimal `json:"totalPaidUsd"`
	BalanceUSD      decimal.Decimal `json:"balanceUsd"`
	ScheduledUSD    decimal.Decimal `json:"scheduledUsd"`
}

// ListContactCategories rolls the contact's pledges up by category.
// The scheduled amount (in-flight payments) is a correlated sub-aggregate,
// independent of the main grouping's cardinality, so a pledge with many
// payments is never double counted.
func (h *ContactHandler) ListContactCategories(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if err := ensureExists(h.DB, &models.Contact{}, id, "contact"); err != nil {
		if apperr.IsKind(err, apperr.Validation) {
			err = apperr.New(apperr.NotFound, "contact not found")
		}
		apperr.Respond(c, err)
		return
	}

	var rows []categoryTotalsRow
	err = h.DB.Model(&models.Pledge{}).
		Select(`categories.id AS category_id, categories.name AS category_name,
COUNT(pledges.id) AS pledge_count,
SUM(pledges.original_amount_usd) AS total_pledged_usd,
SUM(pledges.total_paid_usd) AS total_paid_usd,
SUM(pledges.balance_usd) AS balance_usd,
COALESCE((SELECT SUM(pm.amount_usd) FROM payments pm
	JOIN pledges pl ON pl.id = pm.pledge_id
	WHERE pl.contact_id = pledges.contact_id
	AND pl.category_id IS categories.id
	AND pm.status IN (?, ?)), 0) AS scheduled_usd`,
			models.PaymentStatusPending, models.PaymentStatusProcessing).
		Joins("LEFT JOIN categories ON categories.id = pledges.category_id").
		Where("pledges.contact_id = ?", id).
		Group("categories.id, categories.name").
		Order("total_pledged_usd DESC NULLS LAST, categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"categories": rows})
}
