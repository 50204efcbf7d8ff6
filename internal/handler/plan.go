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

// PlanHandler serves payment-plan CRUD.
type PlanHandler struct {
	DB              *gorm.DB
	DefaultPageSize int
}

func NewPlanHandler(db *gorm.DB, defaultPageSize int) *PlanHandler {
	return &PlanHandler{DB: db, DefaultPageSize: defaultPageSize}
}

type createPlanReq struct {
	PledgeID             uint   `json:"pledgeId" binding:"required"`
	TotalPlannedAmount   string `json:"totalPlannedAmount" binding:"required"`
	Currency             string `json:"currency" binding:"omitempty,len=3"`
	InstallmentAmount    string `json:"installmentAmount" binding:"required"`
	NumberOfInstallments int    `json:"numberOfInstallments" binding:"required,min=1"`
	Frequency            string `json:"frequency" binding:"required"`
	StartDate            string `json:"startDate" binding:"required"`
	EndDate              string `json:"endDate"`
	AutoRenew            bool   `json:"autoRenew"`
	Notes                string `json:"notes"`
}

type updatePlanReq struct {
	InstallmentAmount *string `json:"installmentAmount"`
	Frequency         *string `json:"frequency"`
	NextPaymentDate   *string `json:"nextPaymentDate"`
	Status            *string `json:"status"`
	AutoRenew         *bool   `json:"autoRenew"`
	Notes             *string `json:"notes"`
}

type planRow struct {
	ID                   uint            `json:"id"`
	PledgeID             uint            `json:"pledgeId"`
	ContactName          string          `json:"contactName"`
	TotalPlannedAmount   decimal.Decimal `json:"totalPlannedAmount"`
	Currency             string          `json:"currency"`
	InstallmentAmount    decimal.Decimal `json:"installmentAmount"`
	NumberOfInstallments int             `json:"numberOfInstallments"`
	Frequency            string          `json:"frequency"`
	StartDate            time.Time       `json:"startDate"`
	EndDate              *time.Time      `json:"endDate"`
	NextPaymentDate      *time.Time      `json:"nextPaymentDate"`
	InstallmentsPaid     int             `json:"installmentsPaid"`
	TotalPaid            decimal.Decimal `json:"totalPaid"`
	RemainingAmount      decimal.Decimal `json:"remainingAmount"`
	Status               string          `json:"status"`
	AutoRenew            bool            `json:"autoRenew"`
	Notes                string          `json:"notes"`
	CreatedAt            time.Time       `json:"createdAt"`
}

const planSelect = `payment_plans.id, payment_plans.pledge_id,
contacts.first_name || ' ' || contacts.last_name AS contact_name,
payment_plans.total_planned_amount, payment_plans.currency,
payment_plans.installment_amount, payment_plans.number_of_installments,
payment_plans.frequency, payment_plans.start_date, payment_plans.end_date,
payment_plans.next_payment_date, payment_plans.installments_paid,
payment_plans.total_paid,
payment_plans.total_planned_amount - payment_plans.total_paid AS remaining_amount,
payment_plans.status, payment_plans.auto_renew, payment_plans.notes,
payment_plans.created_at`

func planBase(db *gorm.DB, conj query.Conjunction) *gorm.DB {
	base := db.Model(&models.PaymentPlan{}).
		Select(planSelect).
		Joins("LEFT JOIN pledges ON pledges.id = payment_plans.pledge_id").
		Joins("LEFT JOIN contacts ON contacts.id = pledges.contact_id")
	return conj.Apply(base)
}

// ListPlans returns one page of payment plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	pledgeID, err := query.ParseID("pledgeId", c.Query("pledgeId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status, err := query.ParseEnum("status", c.Query("status"), models.ValidPlanStatus)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var conj query.Conjunction
	if pledgeID != nil {
		conj = conj.And(query.P("payment_plans.pledge_id = ?", *pledgeID))
	}
	if status != "" {
		conj = conj.And(query.P("payment_plans.status = ?", status))
	}

	var rows []planRow
	pagination, err := query.Paginate(
		planBase(h.DB, conj), p, "payment_plans.start_date DESC, payment_plans.id DESC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"paymentPlans": rows,
		"pagination":   pagination,
	})
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req createPlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	total, err := parsePositiveAmount(req.TotalPlannedAmount)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	installment, err := parsePositiveAmount(req.InstallmentAmount)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if !models.ValidPlanFrequency(req.Frequency) {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid frequency"))
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid startDate, want YYYY-MM-DD"))
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid endDate, want YYYY-MM-DD"))
			return
		}
		endDate = &t
	}
	if err := ensureExists(h.DB, &models.Pledge{}, req.PledgeID, "pledge"); err != nil {
		apperr.Respond(c, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	plan := models.PaymentPlan{
		PledgeID:             req.PledgeID,
		TotalPlannedAmount:   total,
		Currency:             currency,
		InstallmentAmount:    installment,
		NumberOfInstallments: req.NumberOfInstallments,
		Frequency:            req.Frequency,
		StartDate:            startDate,
		EndDate:              endDate,
		NextPaymentDate:      &startDate,
		TotalPaid:            decimal.Zero,
		Status:               models.PlanStatusActive,
		AutoRenew:            req.AutoRenew,
		Notes:                req.Notes,
	}
	if err := h.DB.Create(&plan).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"paymentPlan": h.loadRow(plan.ID)})
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req updatePlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var plan models.PaymentPlan
	if err := h.DB.First(&plan, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	if req.InstallmentAmount != nil {
		amount, err := parsePositiveAmount(*req.InstallmentAmount)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		plan.InstallmentAmount = amount
	}
	if req.Frequency != nil {
		if !models.ValidPlanFrequency(*req.Frequency) {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid frequency"))
			return
		}
		plan.Frequency = *req.Frequency
	}
	if req.NextPaymentDate != nil {
		if *req.NextPaymentDate == "" {
			plan.NextPaymentDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.NextPaymentDate)
			if err != nil {
				apperr.Respond(c, apperr.New(apperr.Validation, "invalid nextPaymentDate, want YYYY-MM-DD"))
				return
			}
			plan.NextPaymentDate = &t
		}
	}
	if req.Status != nil {
		if !models.ValidPlanStatus(*req.Status) {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid status"))
			return
		}
		plan.Status = *req.Status
	}
	if req.AutoRenew != nil {
		plan.AutoRenew = *req.AutoRenew
	}
	if req.Notes != nil {
		plan.Notes = *req.Notes
	}

	if err := h.DB.Save(&plan).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"paymentPlan": h.loadRow(plan.ID)})
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.DB.Delete(&models.PaymentPlan{}, id)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.New(apperr.NotFound, "payment plan not found"))
		return
	}

	util.Success(c, util.Response{"deleted": id})
}

func (h *PlanHandler) loadRow(id uint) *planRow {
	var row planRow
	if err := planBase(h.DB, nil).
		Where("payment_plans.id = ?", id).
		Take(&row).Error; err != nil {
		return nil
	}
	return &row
}
