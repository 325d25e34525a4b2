package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gavel-dev/gavel/internal/auction"
)

var engine *auction.Engine

// InitEngine wires the handlers to the auction engine. Called once at boot
// after the database connection is up.
func InitEngine(database *gorm.DB) {
	engine = auction.NewEngine(database)
}

// respondEngineError translates an auction engine error kind into an HTTP
// status: missing entities are 404, policy violations 403, closed-listing
// state violations 400, rejected input 422, anything else a logged 500.
func respondEngineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, auction.ErrListingNotFound), errors.Is(err, auction.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, auction.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, auction.ErrListingClosed):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auction.ErrInvalidBid), errors.Is(err, auction.ErrValidation):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("auction engine failure")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
