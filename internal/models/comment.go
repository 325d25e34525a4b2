package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	PostedByID uint   `gorm:"not null;index"`
	ListingID  uint   `gorm:"not null;index"`
	Body       string `gorm:"not null"`

	// Relationships
	PostedBy User    `gorm:"foreignKey:PostedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Listing  Listing `gorm:"foreignKey:ListingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
