package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gavel-dev/gavel/internal/auction"
	"github.com/gavel-dev/gavel/internal/models"
	"github.com/gavel-dev/gavel/internal/types"
	"github.com/gavel-dev/gavel/internal/utils"
)

type CreateListingRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	StartingBid decimal.Decimal `json:"starting_bid" binding:"required"`
}

type BidResponse struct {
	StartingBid   decimal.Decimal     `json:"starting_bid"`
	CurrentBid    decimal.Decimal     `json:"current_bid"`
	HighestBidder *types.UserResponse `json:"highest_bidder,omitempty"`
}

type ListingResponse struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Category    string      `json:"category,omitempty"`
	Active      bool        `json:"active"`
	PostedByID  uint        `json:"posted_by_id"`
	Bid         BidResponse `json:"bid"`
	CreatedAt   time.Time   `json:"created_at"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	PostedBy  string    `json:"posted_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ListingDetailResponse struct {
	ListingResponse
	PostedBy string            `json:"posted_by"`
	Comments []CommentResponse `json:"comments"`
}

func newListingResponse(listing *models.Listing) ListingResponse {
	response := ListingResponse{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Image:       listing.Image,
		Category:    listing.Category,
		Active:      listing.Active,
		PostedByID:  listing.PostedByID,
		CreatedAt:   listing.CreatedAt,
		Bid: BidResponse{
			StartingBid: listing.Bid.StartingBid,
			CurrentBid:  listing.Bid.CurrentBid,
		},
	}

	if listing.Bid.HighestBidder != nil {
		response.Bid.HighestBidder = &types.UserResponse{
			ID:       listing.Bid.HighestBidder.ID,
			Username: listing.Bid.HighestBidder.Username,
			Email:    listing.Bid.HighestBidder.Email,
		}
	}

	return response
}

func CreateListing(ctx *gin.Context) {
	var body CreateListingRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listing, err := engine.CreateListing(userID, auction.CreateListingInput{
		Title:       body.Title,
		Description: body.Description,
		Image:       body.Image,
		Category:    body.Category,
		StartingBid: body.StartingBid,
	})

	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newListingResponse(listing))
}

func ListListings(ctx *gin.Context) {
	active := true

	if raw := ctx.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid active filter"})
			return
		}

		active = parsed
	}

	listings, err := engine.ListListings(active)

	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	response := []ListingResponse{}

	for i := range listings {
		response = append(response, newListingResponse(&listings[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetListing(ctx *gin.Context) {
	listingID, err := parseListingID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	listing, err := engine.GetListing(listingID)

	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	response := ListingDetailResponse{
		ListingResponse: newListingResponse(listing),
		PostedBy:        listing.PostedBy.Username,
		Comments:        []CommentResponse{},
	}

	for _, comment := range listing.Comments {
		response.Comments = append(response.Comments, CommentResponse{
			ID:        comment.ID,
			Body:      comment.Body,
			PostedBy:  comment.PostedBy.Username,
			CreatedAt: comment.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func CloseListing(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listingID, err := parseListingID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	if err := engine.CloseListing(userID, listingID); err != nil {
		respondEngineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Listing closed"})
}

func parseListingID(ctx *gin.Context) (uint, error) {
	listingID, err := strconv.ParseUint(ctx.Param("listing_id"), 10, 32)

	if err != nil {
		return 0, err
	}

	return uint(listingID), nil
}
