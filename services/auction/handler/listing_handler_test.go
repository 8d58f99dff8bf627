package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	listing "github.com/kaguya07/Auction-Trading/internal/listingService"
	model "github.com/kaguya07/Auction-Trading/internal/models"
)

func setupListingRouter(t *testing.T) (*MockListingServiceInterface, *gin.Engine) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := NewMockListingServiceInterface(ctrl)
	handler := NewListingHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/listings", handler.ListListingsHandler)
	router.GET("/api/listings/:listing_id", handler.GetListingHandler)
	router.POST("/api/listings", asUser("seller1"), handler.CreateListingHandler)
	router.PUT("/api/listings/:listing_id", asUser("seller1"), handler.UpdateListingHandler)
	router.DELETE("/api/listings/:listing_id", asUser("seller1"), handler.DeleteListingHandler)
	return mockService, router
}

func TestCreateListingHandler(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	validBody := map[string]any{
		"title":       "Vintage radio",
		"description": "Working tube radio from the 50s",
		"image":       "https://img.example.com/radio.jpg",
		"start_price": 100,
		"start_time":  now.Format(time.RFC3339),
		"end_time":    now.Add(time.Hour).Format(time.RFC3339),
	}

	t.Run("success", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		created := model.Listing{
			ListingID:  "l1",
			Title:      "Vintage radio",
			StartPrice: 100,
			CurrentBid: 100,
			SellerID:   "seller1",
			Status:     model.StatusPending,
		}
		mockService.EXPECT().
			Create(gomock.Any(), "seller1", gomock.AssignableToTypeOf(listing.CreateListingInput{})).
			DoAndReturn(func(_ any, sellerID string, input listing.CreateListingInput) (model.Listing, error) {
				require.Equal(t, "Vintage radio", input.Title)
				require.Equal(t, 100.0, input.StartPrice)
				require.True(t, input.StartTime.Before(input.EndTime))
				return created, nil
			})

		resp, w := performJSON(t, router, http.MethodPost, "/api/listings", validBody)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Equal(t, "listing created successfully", resp["message"])

		data := resp["data"].(map[string]any)
		require.Equal(t, "l1", data["listing_id"])
		require.Equal(t, string(model.StatusPending), data["status"])
		require.Equal(t, 100.0, data["current_bid"])
	})

	t.Run("invalid_json", func(t *testing.T) {
		_, router := setupListingRouter(t)

		resp, w := performJSON(t, router, http.MethodPost, "/api/listings", `{broken`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid request payload", resp["message"])
	})

	t.Run("missing_required_fields", func(t *testing.T) {
		_, router := setupListingRouter(t)

		resp, w := performJSON(t, router, http.MethodPost, "/api/listings", map[string]any{"title": "only a title"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid request payload", resp["message"])
	})

	t.Run("zero_start_price_rejected_by_binding", func(t *testing.T) {
		_, router := setupListingRouter(t)

		body := map[string]any{}
		for k, v := range validBody {
			body[k] = v
		}
		body["start_price"] = 0

		resp, w := performJSON(t, router, http.MethodPost, "/api/listings", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid request payload", resp["message"])
	})

	t.Run("service_rejects_times", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().
			Create(gomock.Any(), "seller1", gomock.Any()).
			Return(model.Listing{}, auctionerrors.ErrInvalidListing)

		resp, w := performJSON(t, router, http.MethodPost, "/api/listings", validBody)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid listing details", resp["message"])
	})
}

func TestUpdateListingHandler(t *testing.T) {
	t.Run("success_partial_update", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		updated := model.Listing{ListingID: "l1", Title: "New title", SellerID: "seller1"}
		mockService.EXPECT().
			Update(gomock.Any(), "l1", "seller1", gomock.AssignableToTypeOf(model.ListingUpdate{})).
			DoAndReturn(func(_ any, _, _ string, fields model.ListingUpdate) (model.Listing, error) {
				require.NotNil(t, fields.Title)
				require.Equal(t, "New title", *fields.Title)
				require.Nil(t, fields.StartPrice)
				return updated, nil
			})

		resp, w := performJSON(t, router, http.MethodPut, "/api/listings/l1", map[string]any{"title": "New title"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "listing updated successfully", resp["message"])
	})

	t.Run("not_seller", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().
			Update(gomock.Any(), "l1", "seller1", gomock.Any()).
			Return(model.Listing{}, auctionerrors.ErrNotSeller)

		resp, w := performJSON(t, router, http.MethodPut, "/api/listings/l1", map[string]any{"title": "x"})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "not authorized for this listing", resp["message"])
	})

	t.Run("not_found", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().
			Update(gomock.Any(), "ghost", "seller1", gomock.Any()).
			Return(model.Listing{}, auctionerrors.ErrListingNotFound)

		resp, w := performJSON(t, router, http.MethodPut, "/api/listings/ghost", map[string]any{"title": "x"})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "listing not found", resp["message"])
	})
}

func TestDeleteListingHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().Delete(gomock.Any(), "l1", "seller1").Return(nil)

		resp, w := performJSON(t, router, http.MethodDelete, "/api/listings/l1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "listing deleted successfully", resp["message"])
	})

	t.Run("not_seller", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().Delete(gomock.Any(), "l1", "seller1").Return(auctionerrors.ErrNotSeller)

		_, w := performJSON(t, router, http.MethodDelete, "/api/listings/l1", nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().Delete(gomock.Any(), "ghost", "seller1").Return(auctionerrors.ErrListingNotFound)

		_, w := performJSON(t, router, http.MethodDelete, "/api/listings/ghost", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetListingHandler(t *testing.T) {
	t.Run("success_with_display_names", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		view := model.ListingView{
			Listing: model.Listing{
				ListingID:       "l1",
				Title:           "Vintage radio",
				CurrentBid:      150,
				SellerID:        "seller1",
				HighestBidderID: "bidder1",
				Status:          model.StatusActive,
			},
			SellerName:        "alice",
			HighestBidderName: "bob",
		}
		mockService.EXPECT().Get(gomock.Any(), "l1").Return(view, nil)

		resp, w := performJSON(t, router, http.MethodGet, "/api/listings/l1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := resp["data"].(map[string]any)
		require.Equal(t, "alice", data["seller_name"])
		require.Equal(t, "bob", data["highest_bidder_name"])
	})

	t.Run("not_found", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().Get(gomock.Any(), "ghost").Return(model.ListingView{}, auctionerrors.ErrListingNotFound)

		resp, w := performJSON(t, router, http.MethodGet, "/api/listings/ghost", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "listing not found", resp["message"])
	})
}

func TestListListingsHandler(t *testing.T) {
	t.Run("returns_listings", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		views := []model.ListingView{
			{Listing: model.Listing{ListingID: "l1", Status: model.StatusActive}},
			{Listing: model.Listing{ListingID: "l2", Status: model.StatusPending}},
		}
		mockService.EXPECT().List(gomock.Any()).Return(views, nil)

		resp, w := performJSON(t, router, http.MethodGet, "/api/listings", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp["data"], 2)
	})

	t.Run("empty_store_returns_empty_array", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().List(gomock.Any()).Return(nil, nil)

		resp, w := performJSON(t, router, http.MethodGet, "/api/listings", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resp["data"])
		require.Len(t, resp["data"], 0)
	})

	t.Run("store_error", func(t *testing.T) {
		mockService, router := setupListingRouter(t)

		mockService.EXPECT().List(gomock.Any()).Return(nil, errors.New("store unavailable"))

		resp, w := performJSON(t, router, http.MethodGet, "/api/listings", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, "internal server error", resp["message"])
	})
}
