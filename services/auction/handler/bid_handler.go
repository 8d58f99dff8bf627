package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/services/auction/helpers"
	"github.com/kaguya07/Auction-Trading/utils"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, bidderID string, amount float64) (model.Listing, error)
	BidsForListing(ctx context.Context, listingID string) ([]model.Bid, error)
}

type BidHandler struct {
	service BiddingServiceInterface
}

func NewBidHandler(service BiddingServiceInterface) *BidHandler {
	return &BidHandler{service: service}
}

// PlaceBidHandler handles POST /api/auctions/:listing_id/bids
func (h *BidHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	listingID := c.Param("listing_id")
	bidderID := c.GetString(userIDKey)

	updated, err := h.service.PlaceBid(c.Request.Context(), listingID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"listing_id": listingID,
			"bidder_id":  bidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, updated, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"listing_id":  listingID,
		"bidder_id":   bidderID,
		"amount":      req.Amount,
		"current_bid": updated.CurrentBid,
	})
}

// GetBidsByListingHandler handles GET /api/auctions/:listing_id/bids
func (h *BidHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bids, err := h.service.BidsForListing(c.Request.Context(), listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{
			"listing_id": listingID,
			"error":      err.Error(),
		})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}
