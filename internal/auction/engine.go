package auction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gavel-dev/gavel/internal/models"
)

// Engine applies every state transition of the auction: creating listings,
// bidding, closing, watchlisting and commenting. Handlers pass in the acting
// user's ID explicitly; the engine holds no session state.
type Engine struct {
	db    *gorm.DB
	locks *listingLocks
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:    db,
		locks: newListingLocks(),
	}
}

type CreateListingInput struct {
	Title       string
	Description string
	Image       string
	Category    string
	StartingBid decimal.Decimal
}

// CreateListing creates a listing and its bid record in one transaction.
// The bid starts with no bidder and a current bid of zero.
func (e *Engine) CreateListing(userID uint, input CreateListingInput) (*models.Listing, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	if input.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	if err := validateAmount(input.StartingBid); err != nil {
		return nil, fmt.Errorf("%w: starting bid %s", ErrValidation, err)
	}

	var listing models.Listing

	err := e.db.Transaction(func(tx *gorm.DB) error {
		bid := models.Bid{
			StartingBid: input.StartingBid,
			CurrentBid:  decimal.Zero,
			Opened:      true,
		}

		if err := tx.Create(&bid).Error; err != nil {
			return err
		}

		listing = models.Listing{
			PostedByID:  userID,
			Title:       input.Title,
			Description: input.Description,
			Image:       input.Image,
			Category:    input.Category,
			BidID:       bid.ID,
			Active:      true,
		}

		if err := tx.Create(&listing).Error; err != nil {
			return err
		}

		listing.Bid = bid

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &listing, nil
}

// PlaceBid records a new highest bid on an open listing. The first bid must
// exceed the starting bid, every later bid must exceed the current one; ties
// are rejected. Calls for the same listing are serialized so two bidders can
// never both win against the same stale current bid.
func (e *Engine) PlaceBid(userID uint, listingID uint, amount decimal.Decimal) (*models.Bid, error) {
	lock := e.locks.get(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := e.getListing(listingID)

	if err != nil {
		return nil, err
	}

	if listing.PostedByID == userID {
		return nil, fmt.Errorf("%w: poster cannot bid on own listing", ErrForbidden)
	}

	if !listing.Active {
		return nil, ErrListingClosed
	}

	if err := validateAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBid, err)
	}

	floor := listing.Bid.StartingBid

	if listing.Bid.CurrentBid.IsPositive() {
		floor = listing.Bid.CurrentBid
	}

	if amount.Cmp(floor) <= 0 {
		return nil, fmt.Errorf("%w: amount %s must exceed %s", ErrInvalidBid, amount, floor)
	}

	updates := map[string]interface{}{
		"current_bid":       amount,
		"highest_bidder_id": userID,
	}

	if err := e.db.Model(&listing.Bid).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &listing.Bid, nil
}

// CloseListing ends bidding on a listing and clears it from every watchlist.
// Only the poster may close; a closed listing stays closed and a second close
// fails rather than silently succeeding.
func (e *Engine) CloseListing(userID uint, listingID uint) error {
	listing, err := e.getListing(listingID)

	if err != nil {
		return err
	}

	if listing.PostedByID != userID {
		return fmt.Errorf("%w: only the poster can close a listing", ErrForbidden)
	}

	if !listing.Active {
		return ErrListingClosed
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(listing).Update("active", false).Error; err != nil {
			return err
		}

		return tx.Where("listing_id = ?", listingID).Delete(&models.WatchlistItem{}).Error
	})
}

// ToggleWatchlist adds the listing to the user's watchlist, or removes it if
// already present. Reports the resulting membership.
func (e *Engine) ToggleWatchlist(userID uint, listingID uint) (bool, error) {
	listing, err := e.getListing(listingID)

	if err != nil {
		return false, err
	}

	if listing.PostedByID == userID {
		return false, fmt.Errorf("%w: poster cannot watchlist own listing", ErrForbidden)
	}

	if !listing.Active {
		return false, ErrListingClosed
	}

	var item models.WatchlistItem

	err = e.db.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&item).Error

	if err == nil {
		if err := e.db.Delete(&item).Error; err != nil {
			return false, err
		}

		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	item = models.WatchlistItem{UserID: userID, ListingID: listingID}

	if err := e.db.Create(&item).Error; err != nil {
		return false, err
	}

	return true, nil
}

// AddComment appends a comment to an open listing. The poster may not comment
// on their own listing. Empty text is dropped without error and without a row.
func (e *Engine) AddComment(userID uint, listingID uint, body string) (*models.Comment, error) {
	listing, err := e.getListing(listingID)

	if err != nil {
		return nil, err
	}

	if listing.PostedByID == userID {
		return nil, fmt.Errorf("%w: poster cannot comment on own listing", ErrForbidden)
	}

	if !listing.Active {
		return nil, ErrListingClosed
	}

	body = strings.TrimSpace(body)

	if body == "" {
		return nil, nil
	}

	comment := models.Comment{
		PostedByID: userID,
		ListingID:  listingID,
		Body:       body,
	}

	if err := e.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListListings returns all listings with the given active flag in insertion order.
func (e *Engine) ListListings(active bool) ([]models.Listing, error) {
	var listings []models.Listing

	err := e.db.
		Preload("Bid").
		Where("active = ?", active).
		Order("id ASC").
		Find(&listings).Error

	if err != nil {
		return nil, err
	}

	return listings, nil
}

// GetListing returns one listing with its bid, poster and comments.
func (e *Engine) GetListing(listingID uint) (*models.Listing, error) {
	var listing models.Listing

	err := e.db.
		Preload("Bid").
		Preload("Bid.HighestBidder").
		Preload("PostedBy").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.PostedBy").
		First(&listing, listingID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	return &listing, nil
}

// Watchlist returns the listings the user currently watches, in insertion order.
func (e *Engine) Watchlist(userID uint) ([]models.Listing, error) {
	var items []models.WatchlistItem

	err := e.db.Where("user_id = ?", userID).Find(&items).Error

	if err != nil {
		return nil, err
	}

	listings := []models.Listing{}

	if len(items) == 0 {
		return listings, nil
	}

	listingIDs := make([]uint, 0, len(items))

	for _, item := range items {
		listingIDs = append(listingIDs, item.ListingID)
	}

	err = e.db.
		Preload("Bid").
		Where("id IN ?", listingIDs).
		Order("id ASC").
		Find(&listings).Error

	if err != nil {
		return nil, err
	}

	return listings, nil
}

// DeleteUser removes a user and everything hanging off them in one
// transaction: their listings (with bids, comments and watchlist rows),
// their own comments and watchlist rows. Bids on other users' listings where
// this user is the highest bidder reset to the no-bid state, since no bid
// history exists to fall back to.
func (e *Engine) DeleteUser(userID uint) error {
	var user models.User

	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var listings []models.Listing

		if err := tx.Where("posted_by_id = ?", userID).Find(&listings).Error; err != nil {
			return err
		}

		if len(listings) > 0 {
			listingIDs := make([]uint, 0, len(listings))
			bidIDs := make([]uint, 0, len(listings))

			for _, listing := range listings {
				listingIDs = append(listingIDs, listing.ID)
				bidIDs = append(bidIDs, listing.BidID)
			}

			if err := tx.Where("listing_id IN ?", listingIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}

			if err := tx.Where("listing_id IN ?", listingIDs).Delete(&models.WatchlistItem{}).Error; err != nil {
				return err
			}

			if err := tx.Where("id IN ?", listingIDs).Delete(&models.Listing{}).Error; err != nil {
				return err
			}

			if err := tx.Where("id IN ?", bidIDs).Delete(&models.Bid{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("posted_by_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}

		resets := map[string]interface{}{
			"current_bid":       decimal.Zero,
			"highest_bidder_id": nil,
		}

		if err := tx.Model(&models.Bid{}).Where("highest_bidder_id = ?", userID).Updates(resets).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

func (e *Engine) getListing(listingID uint) (*models.Listing, error) {
	var listing models.Listing

	err := e.db.Preload("Bid").First(&listing, listingID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	return &listing, nil
}

// validateAmount accepts positive fixed-point values with at most two decimal
// places, i.e. anything representable as a currency amount.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.New("must be a positive amount")
	}

	if amount.Exponent() < -2 {
		return errors.New("must have at most two decimal places")
	}

	return nil
}
