package models

import "time"

// RelationshipTypes lists accepted family/household relationship kinds.
var RelationshipTypes = []string{
	"spouse", "parent", "child", "sibling", "grandparent", "grandchild", "other",
}

func ValidRelationshipType(s string) bool {
	for _, v := range RelationshipTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Relationship links two contacts (family/household).
type Relationship struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ContactID        uint      `gorm:"index;not null" json:"contactId"`
	RelatedContactID uint      `gorm:"index;not null" json:"relatedContactId"`
	RelationshipType string    `gorm:"size:32;not null" json:"relationshipType"`
	Active           bool      `gorm:"not null;default:true" json:"active"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Contact        Contact `gorm:"constraint:OnDelete:CASCADE" json:"contact"`
	RelatedContact Contact `gorm:"foreignKey:RelatedContactID;constraint:OnDelete:CASCADE" json:"relatedContact"`
}
