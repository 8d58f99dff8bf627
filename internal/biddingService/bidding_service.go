package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/internal/repository"
	"github.com/kaguya07/Auction-Trading/utils"
)

// maxPlaceBidAttempts bounds the validate-then-write retry loop when two bids
// race on the same listing.
const maxPlaceBidAttempts = 3

// BiddingService is the bid ledger: it accepts or rejects bid attempts,
// records accepted bids and keeps the listing's high-bid projection current.
type BiddingService struct {
	listings repository.ListingStore
	bids     repository.BidStore
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(listings repository.ListingStore, bids repository.BidStore) *BiddingService {
	return &BiddingService{
		listings: listings,
		bids:     bids,
	}
}

// PlaceBid validates a bid attempt against the listing's current state and,
// if accepted, updates the listing projection and appends the bid to the
// ledger. The projection update is conditional on the observed current bid;
// on conflict the whole validate-then-write cycle is retried against fresh
// state.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, bidderID string, amount float64) (model.Listing, error) {
	if listingID == "" || bidderID == "" {
		return model.Listing{}, fmt.Errorf("service: %w - missing listing or bidder id", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return model.Listing{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	for attempt := 0; attempt < maxPlaceBidAttempts; attempt++ {
		listing, err := s.listings.GetListing(ctx, listingID)
		if err != nil {
			return model.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
		}

		if err := validateAgainstListing(listing, bidderID, amount); err != nil {
			return model.Listing{}, err
		}

		updated, err := s.listings.CompareAndSetBid(ctx, listingID, listing.CurrentBid, amount, bidderID)
		if errors.Is(err, auctionerrors.ErrBidConflict) {
			// Lost the race against another bid; re-validate against the
			// fresh state before trying again.
			continue
		}
		if err != nil {
			return model.Listing{}, fmt.Errorf("service: failed to record bid on listing %s by user %s: %w", listingID, bidderID, err)
		}

		bid := model.Bid{
			BidID:     utils.GenerateID(),
			ListingID: listingID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.bids.InsertBid(ctx, bid); err != nil {
			// The projection already reflects this bid; a missing ledger
			// entry is logged rather than rolled back.
			utils.Error("PlaceBid: accepted bid missing from ledger", map[string]any{
				"listing_id": listingID,
				"bidder_id":  bidderID,
				"amount":     amount,
				"error":      err.Error(),
			})
			return model.Listing{}, fmt.Errorf("service: failed to record bid on listing %s by user %s: %w", listingID, bidderID, err)
		}

		return updated, nil
	}

	return model.Listing{}, fmt.Errorf("service: place bid on listing %s: %w", listingID, auctionerrors.ErrBidConflict)
}

// validateAgainstListing enforces the acceptance rules in order: the auction
// must be active, the bidder must not be the seller, and the amount must
// strictly exceed the current bid.
func validateAgainstListing(listing model.Listing, bidderID string, amount float64) error {
	if listing.Status != model.StatusActive {
		return fmt.Errorf("service: listing %s has status %s: %w", listing.ListingID, listing.Status, auctionerrors.ErrAuctionNotActive)
	}
	if listing.SellerID == bidderID {
		return fmt.Errorf("service: listing %s: %w", listing.ListingID, auctionerrors.ErrOwnListingBid)
	}
	if amount <= listing.CurrentBid {
		return fmt.Errorf("service: %w - current bid is %.2f", auctionerrors.ErrBidTooLow, listing.CurrentBid)
	}
	return nil
}

// BidsForListing returns the recorded bid history of a listing, newest first
func (s *BiddingService) BidsForListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing id", auctionerrors.ErrInvalidBid)
	}

	// Resolve the listing first so a missing listing surfaces as not found
	// instead of an empty history.
	if _, err := s.listings.GetListing(ctx, listingID); err != nil {
		return nil, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	bids, err := s.bids.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}
