package handler

import (
	"github.com/expertdev121/givesuite-sub003/internal/apperr"
	"github.com/expertdev121/givesuite-sub003/internal/models"
	"github.com/expertdev121/givesuite-sub003/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RelationshipHandler serves family/household relationships between
// contacts.
type RelationshipHandler struct {
	DB *gorm.DB
}

func NewRelationshipHandler(db *gorm.DB) *RelationshipHandler {
	return &RelationshipHandler{DB: db}
}

type createRelationshipReq struct {
	ContactID        uint   `json:"contactId" binding:"required"`
	RelatedContactID uint   `json:"relatedContactId" binding:"required"`
	RelationshipType string `json:"relationshipType" binding:"required"`
	Notes            string `json:"notes"`
}

// ListForContact returns every relationship a contact participates in,
// from either side.
func (h *RelationshipHandler) ListForContact(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var rows []models.Relationship
	err = h.DB.
		Preload("Contact").
		Preload("RelatedContact").
		Where("contact_id = ? OR related_contact_id = ?", id, id).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"relationships": rows})
}

func (h *RelationshipHandler) CreateRelationship(c *gin.Context) {
	var req createRelationshipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	if req.ContactID == req.RelatedContactID {
		apperr.Respond(c, apperr.New(apperr.Validation, "a contact cannot be related to itself"))
		return
	}
	if !models.ValidRelationshipType(req.RelationshipType) {
		apperr.Respond(c, apperr.New(apperr.Validation, "invalid relationshipType"))
		return
	}
	if err := ensureExists(h.DB, &models.Contact{}, req.ContactID, "contact"); err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := ensureExists(h.DB, &models.Contact{}, req.RelatedContactID, "contact"); err != nil {
		apperr.Respond(c, err)
		return
	}

	rel := models.Relationship{
		ContactID:        req.ContactID,
		RelatedContactID: req.RelatedContactID,
		RelationshipType: req.RelationshipType,
		Active:           true,
		Notes:            req.Notes,
	}
	if err := h.DB.Create(&rel).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Created(c, util.Response{"relationship": rel})
}

// DeleteRelationship hard deletes a relationship and returns the deleted
// row.
func (h *RelationshipHandler) DeleteRelationship(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var rel models.Relationship
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rel, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.NotFound, "relationship not found")
			}
			return err
		}
		return tx.Delete(&models.Relationship{}, id).Error
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	util.Success(c, util.Response{"relationship": rel})
}
