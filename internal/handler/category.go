package handler

import (
	"time"

	"github.com/expertdev121/givesuite-sub003/internal/apperr"
	"github.com/expertdev121/givesuite-sub003/internal/models"
	"github.com/expertdev121/givesuite-sub003/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD and the category rollup list.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name        string `json:"name" binding:"required,max=64"`
	Description string `json:"description" binding:"max=255"`
	Active      *bool  `json:"active"`
}

type categoryRow struct {
	ID              uint             `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Active          bool             `json:"active"`
	PledgeCount     int64            `json:"pledgeCount"`
	TotalPledgedUSD *decimal.Decimal `json:"totalPledgedUsd"`
	TotalPaidUSD    *decimal.Decimal `json:"totalPaidUsd"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// ListCategories returns all categories with pledge rollups, largest
// total first, categories without pledges last.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var rows []categoryRow
	err := h.DB.Model(&models.Category{}).
		Select(`categories.id, categories.name, categories.description,
categories.active, categories.created_at,
COUNT(pledges.id) AS pledge_count,
SUM(pledges.original_amount_usd) AS total_pledged_usd,
SUM(pledges.total_paid_usd) AS total_paid_usd`).
		Joins("LEFT JOIN pledges ON pledges.category_id = categories.id").
		Group("categories.id").
		Order("total_pledged_usd DESC NULLS LAST, categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"categories": rows})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		Active:      active,
	}
	// duplicate name surfaces as gorm.ErrDuplicatedKey -> 409
	if err := h.DB.Create(&category).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"category": category})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := h.DB.Save(&category).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"category": category})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}

	util.Success(c, util.Response{"deleted": id})
}
