package models

import "gorm.io/gorm"

type WatchlistItem struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_listing"`
	ListingID uint `gorm:"not null;uniqueIndex:idx_user_listing"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
