package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Relationships
	Listings       []Listing       `gorm:"foreignKey:PostedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments       []Comment       `gorm:"foreignKey:PostedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	WatchlistItems []WatchlistItem `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
