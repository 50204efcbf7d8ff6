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

// SolicitorHandler serves solicitor CRUD, the top-performer rollup and the
// solicitor-payment unassignment.
type SolicitorHandler struct {
	DB              *gorm.DB
	DefaultPageSize int
}

func NewSolicitorHandler(db *gorm.DB, defaultPageSize int) *SolicitorHandler {
	return &SolicitorHandler{DB: db, DefaultPageSize: defaultPageSize}
}

type solicitorReq struct {
	ContactID      uint   `json:"contactId" binding:"required"`
	Code           string `json:"code" binding:"max=16"`
	CommissionRate string `json:"commissionRate"`
	HireDate       string `json:"hireDate"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

type solicitorRow struct {
	ID             uint             `json:"id"`
	ContactID      uint             `json:"contactId"`
	ContactName    string           `json:"contactName"`
	Code           string           `json:"code"`
	CommissionRate *decimal.Decimal `json:"commissionRate"`
	HireDate       *time.Time       `json:"hireDate"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
}

const solicitorSelect = `solicitors.id, solicitors.contact_id,
contacts.first_name || ' ' || contacts.last_name AS contact_name,
solicitors.code, solicitors.commission_rate, solicitors.hire_date,
solicitors.status, solicitors.notes, solicitors.created_at`

func solicitorBase(db *gorm.DB, conj query.Conjunction) *gorm.DB {
	base := db.Model(&models.Solicitor{}).
		Select(solicitorSelect).
		Joins("LEFT JOIN contacts ON contacts.id = solicitors.contact_id")
	return conj.Apply(base)
}

// ---------- handlers ----------

func (h *SolicitorHandler) ListSolicitors(c *gin.Context) {
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status, err := query.ParseEnum("status", c.Query("status"), models.ValidSolicitorStatus)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var conj query.Conjunction
	if status != "" {
		conj = conj.And(query.P("solicitors.status = ?", status))
	}
	if s := c.Query("search"); s != "" {
		conj = conj.And(query.SearchAcross(s,
			"contacts.first_name || ' ' || contacts.last_name",
			"solicitors.code",
		))
	}

	var rows []solicitorRow
	pagination, err := query.Paginate(
		solicitorBase(h.DB, conj), p, "solicitors.id ASC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"solicitors": rows,
		"pagination": pagination,
	})
}

func (h *SolicitorHandler) CreateSolicitor(c *gin.Context) {
	var req solicitorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	if err := ensureExists(h.DB, &models.Contact{}, req.ContactID, "contact"); err != nil {
		apperr.Respond(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.SolicitorStatusActive
	}
	if !models.ValidSolicitorStatus(status) {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid status"))
		return
	}

	solicitor := models.Solicitor{
		ContactID: req.ContactID,
		Code:      req.Code,
		Status:    status,
		Notes:     req.Notes,
	}
	if req.CommissionRate != "" {
		rate, err := decimal.NewFromString(req.CommissionRate)
		if err != nil || rate.IsNegative() {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid commissionRate"))
			return
		}
		solicitor.CommissionRate = &rate
	}
	if req.HireDate != "" {
		t, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid hireDate, want YYYY-MM-DD"))
			return
		}
		solicitor.HireDate = &t
	}

	// one solicitor row per contact; duplicates surface as 409
	if err := h.DB.Create(&solicitor).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"solicitor": solicitor})
}

func (h *SolicitorHandler) UpdateSolicitor(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req solicitorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var solicitor models.Solicitor
	if err := h.DB.First(&solicitor, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	if req.Status != "" {
		if !models.ValidSolicitorStatus(req.Status) {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid status"))
			return
		}
		solicitor.Status = req.Status
	}
	if req.Code != "" {
		solicitor.Code = req.Code
	}
	if req.CommissionRate != "" {
		rate, err := decimal.NewFromString(req.CommissionRate)
		if err != nil || rate.IsNegative() {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid commissionRate"))
			return
		}
		solicitor.CommissionRate = &rate
	}
	solicitor.Notes = req.Notes

	if err := h.DB.Save(&solicitor).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"solicitor": solicitor})
}

// topPerformerRow is one group of the top-performer rollup.
type topPerformerRow struct {
	SolicitorID   uint             `json:"solicitorId"`
	ContactName   string           `json:"contactName"`
	RaisedUSD     decimal.Decimal  `json:"raisedUsd"`
	PaymentCount  int64            `json:"paymentCount"`
	TotalBonusUSD *decimal.Decimal `json:"totalBonusUsd"`
}

// TopPerformers ranks solicitors by USD raised over an optional date
// range. Solicitors without matching payments rank last with zero totals.
func (h *SolicitorHandler) TopPerformers(c *gin.Context) {
	p, err := query.ParsePage("", c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dates, err := query.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	join := "LEFT JOIN payments ON payments.solicitor_id = solicitors.id"
	args := []interface{}{}
	if dates.HasStart {
		join += " AND payments.payment_date >= ?"
		args = append(args, dates.Start)
	}
	if dates.HasEnd {
		join += " AND payments.payment_date < ?"
		args = append(args, dates.End)
	}

	var rows []topPerformerRow
	err = h.DB.Model(&models.Solicitor{}).
		Select(`solicitors.id AS solicitor_id,
contacts.first_name || ' ' || contacts.last_name AS contact_name,
COALESCE(SUM(payments.amount_usd), 0) AS raised_usd,
COUNT(payments.id) AS payment_count,
SUM(payments.bonus_amount) AS total_bonus_usd`).
		Joins(join, args...).
		Joins("LEFT JOIN contacts ON contacts.id = solicitors.contact_id").
		Group("solicitors.id, contacts.first_name, contacts.last_name").
		Order("SUM(payments.amount_usd) DESC NULLS LAST, solicitors.id ASC").
		Limit(p.Limit).
		Scan(&rows).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"topPerformers": rows})
}

// UnassignPayment clears the solicitor and bonus fields from a payment and
// deletes its dependent bonus calculation. Both changes commit together or
// not at all, so no orphaned bonus record can survive.
func (h *SolicitorHandler) UnassignPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.NotFound, "payment not found")
			}
			return err
		}

		if err := tx.Model(&models.Payment{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"solicitor_id":     nil,
				"bonus_percentage": nil,
				"bonus_amount":     nil,
			}).Error; err != nil {
			return err
		}

		return tx.Where("payment_id = ?", id).
			Delete(&models.BonusCalculation{}).Error
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	util.Success(c, util.Response{"payment": payment})
}
