package models

import "gorm.io/gorm"

type Listing struct {
	gorm.Model

	PostedByID  uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Image       string
	Category    string
	BidID       uint `gorm:"uniqueIndex;not null"`
	Active      bool `gorm:"not null;default:true"`

	// Relationships
	PostedBy       User            `gorm:"foreignKey:PostedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Bid            Bid             `gorm:"foreignKey:BidID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments       []Comment       `gorm:"foreignKey:ListingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	WatchlistItems []WatchlistItem `gorm:"foreignKey:ListingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
