package auction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gavel-dev/gavel/internal/models"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&models.User{},
		&models.Bid{},
		&models.Listing{},
		&models.Comment{},
		&models.WatchlistItem{},
	)
	require.NoError(t, err)

	return NewEngine(database), database
}

func createTestUser(t *testing.T, database *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, database.Create(&user).Error)

	return user
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	require.NoError(t, err)

	return d
}

func TestCreateListing(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Desk",
		Description: "Oak desk",
		StartingBid: dec(t, "50.00"),
	})
	require.NoError(t, err)

	require.True(t, listing.Active)
	require.Equal(t, seller.ID, listing.PostedByID)
	require.True(t, listing.Bid.CurrentBid.IsZero())
	require.True(t, listing.Bid.StartingBid.Equal(dec(t, "50.00")))
	require.Nil(t, listing.Bid.HighestBidderID)

	// The bid row must exist and be owned by exactly this listing
	var stored models.Listing
	require.NoError(t, database.Preload("Bid").First(&stored, listing.ID).Error)
	require.Equal(t, listing.BidID, stored.Bid.ID)
}

func TestCreateListingValidation(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")

	tests := []struct {
		name  string
		input CreateListingInput
	}{
		{
			name:  "missing_title",
			input: CreateListingInput{Description: "desc", StartingBid: decimal.NewFromInt(10)},
		},
		{
			name:  "missing_description",
			input: CreateListingInput{Title: "Desk", StartingBid: decimal.NewFromInt(10)},
		},
		{
			name:  "zero_starting_bid",
			input: CreateListingInput{Title: "Desk", Description: "desc"},
		},
		{
			name:  "negative_starting_bid",
			input: CreateListingInput{Title: "Desk", Description: "desc", StartingBid: decimal.NewFromInt(-5)},
		},
		{
			name:  "too_many_decimal_places",
			input: CreateListingInput{Title: "Desk", Description: "desc", StartingBid: decimal.RequireFromString("10.001")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateListing(seller.ID, tt.input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing should have been persisted by the failed attempts
	var count int64
	require.NoError(t, database.Model(&models.Listing{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, database.Model(&models.Bid{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPlaceBid(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	bidder := createTestUser(t, database, "bidder")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Lamp",
		Description: "Brass lamp",
		StartingBid: dec(t, "20.00"),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uint
		amount  string
		wantErr error
	}{
		{name: "below_starting", userID: bidder.ID, amount: "10.00", wantErr: ErrInvalidBid},
		{name: "equal_to_starting", userID: bidder.ID, amount: "20.00", wantErr: ErrInvalidBid},
		{name: "poster_cannot_bid", userID: seller.ID, amount: "100.00", wantErr: ErrForbidden},
		{name: "first_valid_bid", userID: bidder.ID, amount: "25.00"},
		{name: "tie_rejected", userID: bidder.ID, amount: "25.00", wantErr: ErrInvalidBid},
		{name: "below_current", userID: bidder.ID, amount: "22.00", wantErr: ErrInvalidBid},
		{name: "raise", userID: bidder.ID, amount: "30.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.PlaceBid(tt.userID, listing.ID, dec(t, tt.amount))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}

	var bid models.Bid
	require.NoError(t, database.First(&bid, listing.BidID).Error)
	require.True(t, bid.CurrentBid.Equal(dec(t, "30.00")))
	require.NotNil(t, bid.HighestBidderID)
	require.Equal(t, bidder.ID, *bid.HighestBidderID)
}

func TestPlaceBidMissingListing(t *testing.T) {
	engine, database := newTestEngine(t)
	bidder := createTestUser(t, database, "bidder")

	_, err := engine.PlaceBid(bidder.ID, 9999, dec(t, "10.00"))
	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestPlaceBidRejectionLeavesStateUnchanged(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	bidder := createTestUser(t, database, "bidder")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Chair",
		Description: "Wooden chair",
		StartingBid: dec(t, "15.00"),
	})
	require.NoError(t, err)

	_, err = engine.PlaceBid(bidder.ID, listing.ID, dec(t, "5.00"))
	require.ErrorIs(t, err, ErrInvalidBid)

	var bid models.Bid
	require.NoError(t, database.First(&bid, listing.BidID).Error)
	require.True(t, bid.CurrentBid.IsZero())
	require.Nil(t, bid.HighestBidderID)
}

func TestCurrentBidMonotonic(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	bidder := createTestUser(t, database, "bidder")
	rival := createTestUser(t, database, "rival")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Clock",
		Description: "Wall clock",
		StartingBid: dec(t, "10.00"),
	})
	require.NoError(t, err)

	attempts := []struct {
		userID uint
		amount string
	}{
		{bidder.ID, "12.00"},
		{rival.ID, "11.00"},
		{rival.ID, "12.00"},
		{rival.ID, "18.50"},
		{bidder.ID, "18.50"},
		{bidder.ID, "20.00"},
	}

	last := decimal.Zero

	for _, attempt := range attempts {
		engine.PlaceBid(attempt.userID, listing.ID, dec(t, attempt.amount))

		var bid models.Bid
		require.NoError(t, database.First(&bid, listing.BidID).Error)
		require.True(t, bid.CurrentBid.Cmp(last) >= 0, "current bid decreased from %s to %s", last, bid.CurrentBid)
		last = bid.CurrentBid
	}

	require.True(t, last.Equal(dec(t, "20.00")))
}

func TestCloseListing(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	watcher := createTestUser(t, database, "watcher")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Vase",
		Description: "Ceramic vase",
		StartingBid: dec(t, "5.00"),
	})
	require.NoError(t, err)

	watching, err := engine.ToggleWatchlist(watcher.ID, listing.ID)
	require.NoError(t, err)
	require.True(t, watching)

	// Only the poster may close
	err = engine.CloseListing(watcher.ID, listing.ID)
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, engine.CloseListing(seller.ID, listing.ID))

	var stored models.Listing
	require.NoError(t, database.First(&stored, listing.ID).Error)
	require.False(t, stored.Active)

	// Closing clears every watchlist membership for the listing
	var count int64
	require.NoError(t, database.Model(&models.WatchlistItem{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	require.Zero(t, count)

	// Idempotent by rejection, not by silent success
	err = engine.CloseListing(seller.ID, listing.ID)
	require.ErrorIs(t, err, ErrListingClosed)
}

func TestOperationsOnClosedListing(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	bidder := createTestUser(t, database, "bidder")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Rug",
		Description: "Persian rug",
		StartingBid: dec(t, "80.00"),
	})
	require.NoError(t, err)
	require.NoError(t, engine.CloseListing(seller.ID, listing.ID))

	_, err = engine.PlaceBid(bidder.ID, listing.ID, dec(t, "100.00"))
	require.ErrorIs(t, err, ErrListingClosed)

	_, err = engine.ToggleWatchlist(bidder.ID, listing.ID)
	require.ErrorIs(t, err, ErrListingClosed)

	_, err = engine.AddComment(bidder.ID, listing.ID, "too late")
	require.ErrorIs(t, err, ErrListingClosed)
}

func TestToggleWatchlistIsItsOwnInverse(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	watcher := createTestUser(t, database, "watcher")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Globe",
		Description: "Antique globe",
		StartingBid: dec(t, "30.00"),
	})
	require.NoError(t, err)

	watching, err := engine.ToggleWatchlist(watcher.ID, listing.ID)
	require.NoError(t, err)
	require.True(t, watching)

	watchlist, err := engine.Watchlist(watcher.ID)
	require.NoError(t, err)
	require.Len(t, watchlist, 1)
	require.Equal(t, listing.ID, watchlist[0].ID)

	watching, err = engine.ToggleWatchlist(watcher.ID, listing.ID)
	require.NoError(t, err)
	require.False(t, watching)

	watchlist, err = engine.Watchlist(watcher.ID)
	require.NoError(t, err)
	require.Empty(t, watchlist)

	// Poster cannot watch their own listing
	_, err = engine.ToggleWatchlist(seller.ID, listing.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAddComment(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	visitor := createTestUser(t, database, "visitor")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Print",
		Description: "Framed print",
		StartingBid: dec(t, "12.00"),
	})
	require.NoError(t, err)

	comment, err := engine.AddComment(visitor.ID, listing.ID, "Is the frame included?")
	require.NoError(t, err)
	require.NotNil(t, comment)
	require.Equal(t, visitor.ID, comment.PostedByID)

	// Empty and whitespace-only text produce no row and no error
	for _, body := range []string{"", "   ", "\n\t"} {
		comment, err = engine.AddComment(visitor.ID, listing.ID, body)
		require.NoError(t, err)
		require.Nil(t, comment)
	}

	var count int64
	require.NoError(t, database.Model(&models.Comment{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// The poster may not comment on their own listing
	_, err = engine.AddComment(seller.ID, listing.ID, "It is!")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListListings(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")

	first, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "First",
		Description: "first",
		StartingBid: dec(t, "1.00"),
	})
	require.NoError(t, err)

	second, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Second",
		Description: "second",
		StartingBid: dec(t, "2.00"),
	})
	require.NoError(t, err)

	third, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Third",
		Description: "third",
		StartingBid: dec(t, "3.00"),
	})
	require.NoError(t, err)
	require.NoError(t, engine.CloseListing(seller.ID, second.ID))

	active, err := engine.ListListings(true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, first.ID, active[0].ID)
	require.Equal(t, third.ID, active[1].ID)

	closed, err := engine.ListListings(false)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, second.ID, closed[0].ID)
}

// TestAuctionLifecycle walks the full documented scenario end to end.
func TestAuctionLifecycle(t *testing.T) {
	engine, database := newTestEngine(t)
	userA := createTestUser(t, database, "userA")
	userB := createTestUser(t, database, "userB")
	userC := createTestUser(t, database, "userC")

	listing, err := engine.CreateListing(userA.ID, CreateListingInput{
		Title:       "Desk",
		Description: "Oak desk",
		StartingBid: dec(t, "50.00"),
	})
	require.NoError(t, err)
	require.True(t, listing.Active)
	require.True(t, listing.Bid.CurrentBid.IsZero())
	require.True(t, listing.Bid.StartingBid.Equal(dec(t, "50.00")))

	_, err = engine.PlaceBid(userB.ID, listing.ID, dec(t, "40.00"))
	require.ErrorIs(t, err, ErrInvalidBid)

	var bid models.Bid
	require.NoError(t, database.First(&bid, listing.BidID).Error)
	require.True(t, bid.CurrentBid.IsZero())

	_, err = engine.PlaceBid(userB.ID, listing.ID, dec(t, "55.00"))
	require.NoError(t, err)

	require.NoError(t, database.First(&bid, listing.BidID).Error)
	require.True(t, bid.CurrentBid.Equal(dec(t, "55.00")))
	require.Equal(t, userB.ID, *bid.HighestBidderID)

	_, err = engine.PlaceBid(userC.ID, listing.ID, dec(t, "55.00"))
	require.ErrorIs(t, err, ErrInvalidBid)

	_, err = engine.ToggleWatchlist(userC.ID, listing.ID)
	require.NoError(t, err)

	require.NoError(t, engine.CloseListing(userA.ID, listing.ID))

	var stored models.Listing
	require.NoError(t, database.First(&stored, listing.ID).Error)
	require.False(t, stored.Active)

	var watchCount int64
	require.NoError(t, database.Model(&models.WatchlistItem{}).Where("listing_id = ?", listing.ID).Count(&watchCount).Error)
	require.Zero(t, watchCount)

	_, err = engine.PlaceBid(userB.ID, listing.ID, dec(t, "100.00"))
	require.ErrorIs(t, err, ErrListingClosed)
}

func TestDeleteUserCascades(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	other := createTestUser(t, database, "other")

	// Seller's own listing, with a comment and a watchlist entry from other
	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Table",
		Description: "Dining table",
		StartingBid: dec(t, "40.00"),
	})
	require.NoError(t, err)

	_, err = engine.AddComment(other.ID, listing.ID, "How old is it?")
	require.NoError(t, err)

	_, err = engine.ToggleWatchlist(other.ID, listing.ID)
	require.NoError(t, err)

	// Other's listing where the seller is currently the highest bidder
	otherListing, err := engine.CreateListing(other.ID, CreateListingInput{
		Title:       "Mirror",
		Description: "Wall mirror",
		StartingBid: dec(t, "10.00"),
	})
	require.NoError(t, err)

	_, err = engine.PlaceBid(seller.ID, otherListing.ID, dec(t, "12.00"))
	require.NoError(t, err)

	require.NoError(t, engine.DeleteUser(seller.ID))

	var count int64
	require.NoError(t, database.Model(&models.Listing{}).Where("posted_by_id = ?", seller.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, database.Model(&models.Comment{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, database.Model(&models.WatchlistItem{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, database.Model(&models.Bid{}).Where("id = ?", listing.BidID).Count(&count).Error)
	require.Zero(t, count)

	// The other listing's bid falls back to the no-bid state
	var bid models.Bid
	require.NoError(t, database.First(&bid, otherListing.BidID).Error)
	require.True(t, bid.CurrentBid.IsZero())
	require.Nil(t, bid.HighestBidderID)

	require.ErrorIs(t, engine.DeleteUser(seller.ID), ErrUserNotFound)
}
