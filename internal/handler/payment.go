package handler

import (
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

// PaymentHandler serves payment CRUD and the filtered payment list. Every
// write recomputes the owning pledge's totals inside the same transaction,
// keeping balance = originalAmount - totalPaid true in storage.
type PaymentHandler struct {
	DB              *gorm.DB
	Cache           *cache.Store
	DefaultPageSize int
}

func NewPaymentHandler(db *gorm.DB, c *cache.Store, defaultPageSize int) *PaymentHandler {
	return &PaymentHandler{DB: db, Cache: c, DefaultPageSize: defaultPageSize}
}

// ---------- request/response shapes ----------

type createPaymentReq struct {
	PledgeID        uint   `json:"pledgeId" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	Currency        string `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate    string `json:"exchangeRate"`
	PaymentDate     string `json:"paymentDate"`
	ReceivedDate    string `json:"receivedDate"`
	PaymentMethod   string `json:"paymentMethod" binding:"required,max=32"`
	Status          string `json:"status"`
	ReferenceNumber string `json:"referenceNumber" binding:"max=64"`
	CheckNumber     string `json:"checkNumber" binding:"max=64"`
	ReceiptNumber   string `json:"receiptNumber" binding:"max=64"`
	SolicitorID     *uint  `json:"solicitorId"`
	BonusPercentage string `json:"bonusPercentage"`
	Notes           string `json:"notes"`
}

type updatePaymentReq struct {
	Amount          *string `json:"amount"`
	ExchangeRate    string  `json:"exchangeRate"`
	PaymentDate     *string `json:"paymentDate"`
	ReceivedDate    *string `json:"receivedDate"`
	PaymentMethod   *string `json:"paymentMethod"`
	Status          *string `json:"status"`
	ReferenceNumber *string `json:"referenceNumber"`
	CheckNumber     *string `json:"checkNumber"`
	ReceiptNumber   *string `json:"receiptNumber"`
	Notes           *string `json:"notes"`
}

type paymentRow struct {
	ID              uint             `json:"id"`
	PledgeID        uint             `json:"pledgeId"`
	ContactID       uint             `json:"contactId"`
	ContactName     string           `json:"contactName"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	AmountUSD       decimal.Decimal  `json:"amountUsd"`
	PaymentDate     time.Time        `json:"paymentDate"`
	ReceivedDate    *time.Time       `json:"receivedDate"`
	PaymentMethod   string           `json:"paymentMethod"`
	Status          string           `json:"status"`
	ReferenceNumber string           `json:"referenceNumber"`
	CheckNumber     string           `json:"checkNumber"`
	ReceiptNumber   string           `json:"receiptNumber"`
	SolicitorID     *uint            `json:"solicitorId"`
	BonusPercentage *decimal.Decimal `json:"bonusPercentage"`
	BonusAmount     *decimal.Decimal `json:"bonusAmount"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"createdAt"`
}

const paymentSelect = `payments.id, payments.pledge_id, pledges.contact_id,
contacts.first_name || ' ' || contacts.last_name AS contact_name,
payments.amount, payments.currency, payments.amount_usd,
payments.payment_date, payments.received_date, payments.payment_method,
payments.status, payments.reference_number, payments.check_number,
payments.receipt_number, payments.solicitor_id, payments.bonus_percentage,
payments.bonus_amount, payments.notes, payments.created_at`

func paymentBase(db *gorm.DB, conj query.Conjunction) *gorm.DB {
	base := db.Model(&models.Payment{}).
		Select(paymentSelect).
		Joins("LEFT JOIN pledges ON pledges.id = payments.pledge_id").
		Joins("LEFT JOIN contacts ON contacts.id = pledges.contact_id")
	return conj.Apply(base)
}

// paymentSearchPredicate ORs the free-text term over the payment's
// reference fields, its notes and the contact name.
func paymentSearchPredicate(term string) query.Predicate {
	return query.SearchAcross(term,
		"payments.reference_number",
		"payments.check_number",
		"payments.receipt_number",
		"payments.notes",
		"contacts.first_name || ' ' || contacts.last_name",
	)
}

// ---------- handlers ----------

// ListPayments returns one page of payments with pagination metadata.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
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
	solicitorID, err := query.ParseID("solicitorId", c.Query("solicitorId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status, err := query.ParseEnum("status", c.Query("status"), models.ValidPaymentStatus)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dates, err := query.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var conj query.Conjunction
	if pledgeID != nil {
		conj = conj.And(query.P("payments.pledge_id = ?", *pledgeID))
	}
	if solicitorID != nil {
		conj = conj.And(query.P("payments.solicitor_id = ?", *solicitorID))
	}
	if status != "" {
		conj = conj.And(query.P("payments.status = ?", status))
	}
	if dates.HasStart {
		conj = conj.And(query.P("payments.payment_date >= ?", dates.Start))
	}
	if dates.HasEnd {
		conj = conj.And(query.P("payments.payment_date < ?", dates.End))
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

// CreatePayment records a payment against a pledge. Pledge totals and any
// solicitor bonus record are written in the same transaction.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req createPaymentReq
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

	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !models.ValidPaymentStatus(status) {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid status"))
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		t, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid paymentDate, want YYYY-MM-DD"))
			return
		}
		paymentDate = t
	}
	var receivedDate *time.Time
	if req.ReceivedDate != "" {
		t, err := time.Parse("2006-01-02", req.ReceivedDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid receivedDate, want YYYY-MM-DD"))
			return
		}
		receivedDate = &t
	}

	var pledge models.Pledge
	if err := h.DB.First(&pledge, req.PledgeID).Error; err != nil {
		apperr.Respond(c, apperr.Classify(err))
		return
	}

	receiptNumber := req.ReceiptNumber
	if receiptNumber == "" {
		receiptNumber = util.NewReceiptNumber()
	}

	payment := models.Payment{
		PledgeID:        req.PledgeID,
		Amount:          amount,
		Currency:        currency,
		AmountUSD:       amountUSD,
		PaymentDate:     paymentDate,
		ReceivedDate:    receivedDate,
		PaymentMethod:   req.PaymentMethod,
		Status:          status,
		ReferenceNumber: req.ReferenceNumber,
		CheckNumber:     req.CheckNumber,
		ReceiptNumber:   receiptNumber,
		Notes:           req.Notes,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if req.SolicitorID != nil {
			var solicitor models.Solicitor
			if err := tx.First(&solicitor, *req.SolicitorID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.Newf(apperr.Validation, "solicitor %d does not exist", *req.SolicitorID)
				}
				return err
			}

			pct := decimal.Zero
			if req.BonusPercentage != "" {
				p, err := decimal.NewFromString(req.BonusPercentage)
				if err != nil || p.IsNegative() {
					return apperr.New(apperr.Validation, "invalid bonusPercentage")
				}
				pct = p
			} else if solicitor.CommissionRate != nil {
				pct = *solicitor.CommissionRate
			}
			bonus := amountUSD.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)

			payment.SolicitorID = req.SolicitorID
			payment.BonusPercentage = &pct
			payment.BonusAmount = &bonus

			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			calc := models.BonusCalculation{
				PaymentID:       payment.ID,
				SolicitorID:     *req.SolicitorID,
				BonusPercentage: pct,
				BonusAmount:     bonus,
			}
			if err := tx.Create(&calc).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		return recalcPledgeTotals(tx, payment.PledgeID)
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Invalidate(pledgeCacheResource, payment.PledgeID)

	util.Created(c, util.Response{"payment": h.loadRow(payment.ID)})
}

// UpdatePayment changes payment fields. Solicitor assignment is not
// editable here; it moves through the unassign endpoint only.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req updatePaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	if req.Amount != nil {
		amount, err := parsePositiveAmount(*req.Amount)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		amountUSD, err := toReportingCurrency(amount, payment.Currency, req.ExchangeRate)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		payment.Amount = amount
		payment.AmountUSD = amountUSD
	}
	if req.PaymentDate != nil {
		t, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid paymentDate, want YYYY-MM-DD"))
			return
		}
		payment.PaymentDate = t
	}
	if req.ReceivedDate != nil {
		if *req.ReceivedDate == "" {
			payment.ReceivedDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.ReceivedDate)
			if err != nil {
				apperr.Respond(c, apperr.New(apperr.Validation, "invalid receivedDate, want YYYY-MM-DD"))
				return
			}
			payment.ReceivedDate = &t
		}
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.Status != nil {
		if !models.ValidPaymentStatus(*req.Status) {
			apperr.Respond(c, apperr.New(apperr.Validation, "invalid status"))
			return
		}
		payment.Status = *req.Status
	}
	if req.ReferenceNumber != nil {
		payment.ReferenceNumber = *req.ReferenceNumber
	}
	if req.CheckNumber != nil {
		payment.CheckNumber = *req.CheckNumber
	}
	if req.ReceiptNumber != nil {
		payment.ReceiptNumber = *req.ReceiptNumber
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}
		return recalcPledgeTotals(tx, payment.PledgeID)
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Invalidate(pledgeCacheResource, payment.PledgeID)

	util.Success(c, util.Response{"payment": h.loadRow(payment.ID)})
}

// DeletePayment removes a payment together with its bonus calculation and
// recomputes the pledge totals, all in one transaction.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var payment models.Payment
	if err := h.DB.First(&payment, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).
			Delete(&models.BonusCalculation{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Payment{}, id).Error; err != nil {
			return err
		}
		return recalcPledgeTotals(tx, payment.PledgeID)
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.Cache.Invalidate(pledgeCacheResource, payment.PledgeID)

	util.Success(c, util.Response{"deleted": id})
}

func (h *PaymentHandler) loadRow(id uint) *paymentRow {
	var row paymentRow
	if err := paymentBase(h.DB, nil).
		Where("payments.id = ?", id).
		Take(&row).Error; err != nil {
		return nil
	}
	return &row
}

// recalcPledgeTotals rewrites the pledge's paid/balance columns from the
// sum of its completed payments. Runs inside the caller's transaction.
func recalcPledgeTotals(tx *gorm.DB, pledgeID uint) error {
	var pledge models.Pledge
	if err := tx.First(&pledge, pledgeID).Error; err != nil {
		return err
	}

	var sums struct {
		Total    decimal.Decimal
		TotalUSD decimal.Decimal
	}
	err := tx.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COALESCE(SUM(amount_usd), 0) AS total_usd").
		Where("pledge_id = ? AND status = ?", pledgeID, models.PaymentStatusCompleted).
		Scan(&sums).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Pledge{}).
		Where("id = ?", pledgeID).
		Updates(map[string]interface{}{
			"total_paid":     sums.Total,
			"total_paid_usd": sums.TotalUSD,
			"balance":        pledge.OriginalAmount.Sub(sums.Total),
			"balance_usd":    pledge.OriginalAmountUSD.Sub(sums.TotalUSD),
		}).Error
}
