package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Bid struct {
	gorm.Model

	StartingBid decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// CurrentBid of zero means no bid has been placed yet.
	CurrentBid      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	HighestBidderID *uint           `gorm:"index"`
	// Opened is carried in the schema but no operation reads or writes it.
	Opened bool `gorm:"not null;default:true"`

	// Relationships
	HighestBidder *User `gorm:"foreignKey:HighestBidderID"`
}
