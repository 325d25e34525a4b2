package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gavel-dev/gavel/internal/auction"
	"github.com/gavel-dev/gavel/internal/utils"
)

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func PlaceBid(ctx *gin.Context) {
	var body PlaceBidRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

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

	bid, err := engine.PlaceBid(userID, listingID, body.Amount)

	if err != nil {
		// Echo the rejected amount back so the form can be re-rendered with it.
		if errors.Is(err, auction.ErrInvalidBid) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"amount": body.Amount,
			})
			return
		}

		respondEngineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Bid placed",
		"current_bid": bid.CurrentBid,
	})
}
