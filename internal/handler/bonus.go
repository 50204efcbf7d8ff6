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

// BonusHandler serves bonus-calculation listing and the mark-paid state
// transitions.
type BonusHandler struct {
	DB              *gorm.DB
	DefaultPageSize int
}

func NewBonusHandler(db *gorm.DB, defaultPageSize int) *BonusHandler {
	return &BonusHandler{DB: db, DefaultPageSize: defaultPageSize}
}

type bonusRow struct {
	ID              uint            `json:"id"`
	PaymentID       uint            `json:"paymentId"`
	SolicitorID     uint            `json:"solicitorId"`
	SolicitorName   string          `json:"solicitorName"`
	BonusPercentage decimal.Decimal `json:"bonusPercentage"`
	BonusAmount     decimal.Decimal `json:"bonusAmount"`
	Paid            bool            `json:"paid"`
	PaidAt          *time.Time      `json:"paidAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

const bonusSelect = `bonus_calculations.id, bonus_calculations.payment_id,
bonus_calculations.solicitor_id,
contacts.first_name || ' ' || contacts.last_name AS solicitor_name,
bonus_calculations.bonus_percentage, bonus_calculations.bonus_amount,
bonus_calculations.paid, bonus_calculations.paid_at, bonus_calculations.created_at`

func bonusBase(db *gorm.DB, conj query.Conjunction) *gorm.DB {
	base := db.Model(&models.BonusCalculation{}).
		Select(bonusSelect).
		Joins("LEFT JOIN solicitors ON solicitors.id = bonus_calculations.solicitor_id").
		Joins("LEFT JOIN contacts ON contacts.id = solicitors.contact_id")
	return conj.Apply(base)
}

// ListBonusCalculations returns one page of bonus calculations.
func (h *BonusHandler) ListBonusCalculations(c *gin.Context) {
	p, err := query.ParsePage(c.Query("page"), c.Query("limit"), h.DefaultPageSize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	solicitorID, err := query.ParseID("solicitorId", c.Query("solicitorId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var conj query.Conjunction
	if solicitorID != nil {
		conj = conj.And(query.P("bonus_calculations.solicitor_id = ?", *solicitorID))
	}
	switch c.Query("paid") {
	case "":
	case "true":
		conj = conj.And(query.P("bonus_calculations.paid = ?", true))
	case "false":
		conj = conj.And(query.P("bonus_calculations.paid = ?", false))
	default:
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid paid parameter"))
		return
	}

	var rows []bonusRow
	pagination, err := query.Paginate(
		bonusBase(h.DB, conj), p,
		"bonus_calculations.created_at DESC, bonus_calculations.id DESC", &rows)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"bonusCalculations": rows,
		"pagination":        pagination,
	})
}

// MarkPaid marks a single bonus calculation as paid. Marking an
// already-paid row is a no-op reported as updated=false.
func (h *BonusHandler) MarkPaid(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var calc models.BonusCalculation
	if err := h.DB.First(&calc, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			apperr.Respond(c, apperr.New(apperr.NotFound, "bonus calculation not found"))
		} else {
			apperr.Respond(c, err)
		}
		return
	}

	if calc.Paid {
		util.Success(c, util.Response{
			"bonusCalculation": calc,
			"updated":          false,
		})
		return
	}

	now := time.Now()
	calc.Paid = true
	calc.PaidAt = &now
	if err := h.DB.Save(&calc).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"bonusCalculation": calc,
		"updated":          true,
	})
}

type markPaidBulkReq struct {
	IDs []uint `json:"ids"`
}

// MarkPaidBulk marks a list of bonus calculations as paid. Unknown ids are
// skipped; the reported count is rows actually modified, not the length of
// the input list.
func (h *BonusHandler) MarkPaidBulk(c *gin.Context) {
	var req markPaidBulkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if len(req.IDs) == 0 {
		apperr.Respond(c, apperr.New(apperr.Validation, "ids is required and must not be empty"))
		return
	}

	now := time.Now()
	updated := []models.BonusCalculation{}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// resolve the existing unpaid targets first so the response reports
		// exactly the rows this call modified
		var targets []uint
		if err := tx.Model(&models.BonusCalculation{}).
			Where("id IN ? AND paid = ?", req.IDs, false).
			Pluck("id", &targets).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		if err := tx.Model(&models.BonusCalculation{}).
			Where("id IN ?", targets).
			Updates(map[string]interface{}{
				"paid":    true,
				"paid_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", targets).Find(&updated).Error
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{
		"bonusCalculations": updated,
		"updatedCount":      len(updated),
	})
}
