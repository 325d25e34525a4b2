package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gavel-dev/gavel/internal/utils"
)

func ToggleWatchlist(ctx *gin.Context) {
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

	watching, err := engine.ToggleWatchlist(userID, listingID)

	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"watching": watching})
}

func GetWatchlist(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listings, err := engine.Watchlist(userID)

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
