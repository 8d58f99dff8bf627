package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaguya07/Auction-Trading/internal/auth"
	bidding "github.com/kaguya07/Auction-Trading/internal/biddingService"
	listing "github.com/kaguya07/Auction-Trading/internal/listingService"
	handler "github.com/kaguya07/Auction-Trading/services/auction/handler"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(listingSvc *listing.ListingService, biddingSvc *bidding.BiddingService, authSvc *auth.AuthService, tokens *auth.TokenManager) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	listingHandler := handler.NewListingHandler(listingSvc)
	bidHandler := handler.NewBidHandler(biddingSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	requireAuth := AuthRequired(tokens)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
	}

	listings := router.Group("/api/listings")
	{
		listings.GET("", listingHandler.ListListingsHandler)
		listings.GET("/:listing_id", listingHandler.GetListingHandler)
		listings.POST("", requireAuth, listingHandler.CreateListingHandler)
		listings.PUT("/:listing_id", requireAuth, listingHandler.UpdateListingHandler)
		listings.DELETE("/:listing_id", requireAuth, listingHandler.DeleteListingHandler)
	}

	auctions := router.Group("/api/auctions")
	{
		auctions.GET("/:listing_id/bids", bidHandler.GetBidsByListingHandler)
		auctions.POST("/:listing_id/bids", requireAuth, bidHandler.PlaceBidHandler)
	}

	return router
}
