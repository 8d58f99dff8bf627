package listing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/internal/repository"
	"github.com/kaguya07/Auction-Trading/utils"
)

// CreateListingInput carries the seller-provided fields of a new listing
type CreateListingInput struct {
	Title       string
	Description string
	Image       string
	StartPrice  float64
	StartTime   time.Time
	EndTime     time.Time
}

// ListingService owns the listing lifecycle: creation, seller edits, the
// read-side projections and the time-driven status transitions.
type ListingService struct {
	listings repository.ListingStore
	users    repository.UserStore
}

// NewListingService creates a new ListingService instance
func NewListingService(listings repository.ListingStore, users repository.UserStore) *ListingService {
	return &ListingService{
		listings: listings,
		users:    users,
	}
}

// Create validates the input and stores a new listing in pending status with
// its current bid initialized to the start price
func (s *ListingService) Create(ctx context.Context, sellerID string, input CreateListingInput) (model.Listing, error) {
	if err := validateListingInput(sellerID, input); err != nil {
		return model.Listing{}, err
	}

	now := time.Now().UTC()
	listing := model.Listing{
		ListingID:   utils.GenerateID(),
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		StartPrice:  input.StartPrice,
		CurrentBid:  input.StartPrice,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		SellerID:    sellerID,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listings.InsertListing(ctx, listing); err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to create listing for seller %s: %w", sellerID, err)
	}

	return listing, nil
}

func validateListingInput(sellerID string, input CreateListingInput) error {
	if sellerID == "" {
		return fmt.Errorf("service: %w - missing seller id", auctionerrors.ErrInvalidListing)
	}
	if input.Title == "" || input.Description == "" || input.Image == "" {
		return fmt.Errorf("service: %w - title, description and image are required", auctionerrors.ErrInvalidListing)
	}
	if input.StartPrice <= 0 {
		return fmt.Errorf("service: %w - start price must be positive", auctionerrors.ErrInvalidListing)
	}
	if !input.StartTime.Before(input.EndTime) {
		return fmt.Errorf("service: %w - start time must be before end time", auctionerrors.ErrInvalidListing)
	}
	return nil
}

// Update applies seller edits to a listing. Only the seller may edit; the
// status is not checked, a listing can be edited at any point of its life.
func (s *ListingService) Update(ctx context.Context, listingID, callerID string, fields model.ListingUpdate) (model.Listing, error) {
	if listingID == "" || callerID == "" {
		return model.Listing{}, fmt.Errorf("service: %w - missing listing or caller id", auctionerrors.ErrInvalidListing)
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if listing.SellerID != callerID {
		return model.Listing{}, fmt.Errorf("service: update listing %s: %w", listingID, auctionerrors.ErrNotSeller)
	}

	if fields.StartPrice != nil && *fields.StartPrice <= 0 {
		return model.Listing{}, fmt.Errorf("service: %w - start price must be positive", auctionerrors.ErrInvalidListing)
	}
	startTime, endTime := listing.StartTime, listing.EndTime
	if fields.StartTime != nil {
		startTime = *fields.StartTime
	}
	if fields.EndTime != nil {
		endTime = *fields.EndTime
	}
	if !startTime.Before(endTime) {
		return model.Listing{}, fmt.Errorf("service: %w - start time must be before end time", auctionerrors.ErrInvalidListing)
	}

	updated, err := s.listings.UpdateListingFields(ctx, listingID, fields)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to update listing %s: %w", listingID, err)
	}
	return updated, nil
}

// Delete removes a listing. Only the seller may delete; no status restriction.
func (s *ListingService) Delete(ctx context.Context, listingID, callerID string) error {
	if listingID == "" || callerID == "" {
		return fmt.Errorf("service: %w - missing listing or caller id", auctionerrors.ErrInvalidListing)
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if listing.SellerID != callerID {
		return fmt.Errorf("service: delete listing %s: %w", listingID, auctionerrors.ErrNotSeller)
	}

	if err := s.listings.DeleteListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: failed to delete listing %s: %w", listingID, err)
	}
	return nil
}

// Get returns one listing joined with user display names
func (s *ListingService) Get(ctx context.Context, listingID string) (model.ListingView, error) {
	if listingID == "" {
		return model.ListingView{}, fmt.Errorf("service: %w - empty listing id", auctionerrors.ErrInvalidListing)
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return model.ListingView{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	views, err := s.joinDisplayNames(ctx, []model.Listing{listing})
	if err != nil {
		return model.ListingView{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return views[0], nil
}

// List returns all listings joined with user display names, active listings
// first, then pending, then ended, newest first within each group
func (s *ListingService) List(ctx context.Context) ([]model.ListingView, error) {
	listings, err := s.listings.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}

	views, err := s.joinDisplayNames(ctx, listings)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}

	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := views[i].Status.Rank(), views[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})

	return views, nil
}

func (s *ListingService) joinDisplayNames(ctx context.Context, listings []model.Listing) ([]model.ListingView, error) {
	idSet := make(map[string]struct{})
	for _, l := range listings {
		for _, id := range []string{l.SellerID, l.HighestBidderID, l.WinnerID} {
			if id != "" {
				idSet[id] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	names, err := s.users.GetUsernames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve display names: %w", err)
	}

	views := make([]model.ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, model.ListingView{
			Listing:           l,
			SellerName:        names[l.SellerID],
			HighestBidderName: names[l.HighestBidderID],
			WinnerName:        names[l.WinnerID],
		})
	}
	return views, nil
}

// Advance runs both lifecycle scans against the given instant: pending
// listings whose start time has passed become active, active listings whose
// end time has passed become ended with the winner recorded. A failure on one
// listing is logged and does not stop the others.
func (s *ListingService) Advance(ctx context.Context, now time.Time) error {
	now = now.UTC()

	due, err := s.listings.FindDueToStart(ctx, now)
	if err != nil {
		return fmt.Errorf("service: scan for listings due to start: %w", err)
	}
	for _, l := range due {
		if err := s.listings.MarkActive(ctx, l.ListingID, now); err != nil {
			utils.Error("Advance: failed to start auction", map[string]any{
				"listing_id": l.ListingID,
				"error":      err.Error(),
			})
			continue
		}
		utils.Info("Advance: auction started", map[string]any{
			"listing_id": l.ListingID,
			"title":      l.Title,
		})
	}

	ending, err := s.listings.FindDueToEnd(ctx, now)
	if err != nil {
		return fmt.Errorf("service: scan for listings due to end: %w", err)
	}
	for _, l := range ending {
		ended, err := s.listings.MarkEnded(ctx, l.ListingID, now)
		if err != nil {
			utils.Error("Advance: failed to end auction", map[string]any{
				"listing_id": l.ListingID,
				"error":      err.Error(),
			})
			continue
		}
		utils.Info("Advance: auction ended", map[string]any{
			"listing_id": ended.ListingID,
			"title":      ended.Title,
			"winner_id":  ended.WinnerID,
			"final_bid":  ended.CurrentBid,
		})
	}

	return nil
}
