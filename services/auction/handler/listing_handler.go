package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/services/auction/helpers"
	"github.com/kaguya07/Auction-Trading/utils"

	listing "github.com/kaguya07/Auction-Trading/internal/listingService"
)

// userIDKey is where the auth middleware stores the caller's user id
const userIDKey = "user_id"

type ListingServiceInterface interface {
	Create(ctx context.Context, sellerID string, input listing.CreateListingInput) (model.Listing, error)
	Update(ctx context.Context, listingID, callerID string, fields model.ListingUpdate) (model.Listing, error)
	Delete(ctx context.Context, listingID, callerID string) error
	Get(ctx context.Context, listingID string) (model.ListingView, error)
	List(ctx context.Context) ([]model.ListingView, error)
}

type ListingHandler struct {
	service ListingServiceInterface
}

func NewListingHandler(service ListingServiceInterface) *ListingHandler {
	return &ListingHandler{service: service}
}

// ListListingsHandler handles GET /api/listings
func (h *ListingHandler) ListListingsHandler(c *gin.Context) {
	listings, err := h.service.List(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("ListListingsHandler: failed to list listings", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if listings == nil {
		listings = []model.ListingView{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
}

// GetListingHandler handles GET /api/listings/:listing_id
func (h *ListingHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	view, err := h.service.Get(c.Request.Context(), listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{
			"listing_id": listingID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, view, "listing retrieved successfully")
}

// CreateListingHandler handles POST /api/listings
func (h *ListingHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	sellerID := c.GetString(userIDKey)
	created, err := h.service.Create(c.Request.Context(), sellerID, listing.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		StartPrice:  req.StartPrice,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateListingHandler: failed to create listing", map[string]any{
			"seller_id": sellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, created, "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": created.ListingID,
		"seller_id":  sellerID,
		"title":      created.Title,
	})
}

// UpdateListingHandler handles PUT /api/listings/:listing_id
func (h *ListingHandler) UpdateListingHandler(c *gin.Context) {
	var req helpers.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateListingHandler", err)
		return
	}

	listingID := c.Param("listing_id")
	callerID := c.GetString(userIDKey)

	updated, err := h.service.Update(c.Request.Context(), listingID, callerID, req.Fields())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UpdateListingHandler: failed to update listing", map[string]any{
			"listing_id": listingID,
			"caller_id":  callerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, updated, "listing updated successfully")
	helpers.LogSuccess("UpdateListingHandler", "listing updated successfully", map[string]any{
		"listing_id": listingID,
		"caller_id":  callerID,
	})
}

// DeleteListingHandler handles DELETE /api/listings/:listing_id
func (h *ListingHandler) DeleteListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	callerID := c.GetString(userIDKey)

	if err := h.service.Delete(c.Request.Context(), listingID, callerID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("DeleteListingHandler: failed to delete listing", map[string]any{
			"listing_id": listingID,
			"caller_id":  callerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONMessage(c, http.StatusOK, "listing deleted successfully")
	helpers.LogSuccess("DeleteListingHandler", "listing deleted successfully", map[string]any{
		"listing_id": listingID,
		"caller_id":  callerID,
	})
}
