package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gavel-dev/gavel/internal/utils"
)

type AddCommentRequest struct {
	Body string `json:"body"`
}

func AddComment(ctx *gin.Context) {
	var body AddCommentRequest

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

	comment, err := engine.AddComment(userID, listingID, body.Body)

	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	// Empty text is dropped silently; the listing page is simply unchanged.
	if comment == nil {
		ctx.JSON(http.StatusOK, gin.H{"message": "Nothing to add"})
		return
	}

	currentUser, _ := utils.GetCurrentUser(ctx)

	ctx.JSON(http.StatusCreated, CommentResponse{
		ID:        comment.ID,
		Body:      comment.Body,
		PostedBy:  currentUser.Username,
		CreatedAt: comment.CreatedAt,
	})
}
