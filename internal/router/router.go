package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gavel-dev/gavel/internal/handlers"
	"github.com/gavel-dev/gavel/internal/middleware"
	"github.com/gavel-dev/gavel/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		listings := api.Group("/listings")
		{
			// Browsing is open to everyone, as on the site's index pages
			listings.GET("", handlers.ListListings)
			listings.GET("/:listing_id", handlers.GetListing)

			listings.POST("", middleware.AuthMiddleware(), handlers.CreateListing)
			listings.POST("/:listing_id/close", middleware.AuthMiddleware(), handlers.CloseListing)
			listings.POST("/:listing_id/bids", middleware.AuthMiddleware(), handlers.PlaceBid)
			listings.POST("/:listing_id/watchlist", middleware.AuthMiddleware(), handlers.ToggleWatchlist)
			listings.POST("/:listing_id/comments", middleware.AuthMiddleware(), handlers.AddComment)
		}

		api.GET("/watchlist", middleware.AuthMiddleware(), handlers.GetWatchlist)
	}

	return r
}
