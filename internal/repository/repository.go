package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	model "github.com/kaguya07/Auction-Trading/internal/models"
)

// ListingStore defines the listing persistence interface for the marketplace
type ListingStore interface {
	InsertListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	ListListings(ctx context.Context) ([]model.Listing, error)
	UpdateListingFields(ctx context.Context, listingID string, fields model.ListingUpdate) (model.Listing, error)
	DeleteListing(ctx context.Context, listingID string) error

	// CompareAndSetBid updates the cached high-bid projection only if the
	// stored CurrentBid still equals observedBid, otherwise it fails with
	// ErrBidConflict. This is what keeps two racing bids from overwriting
	// each other.
	CompareAndSetBid(ctx context.Context, listingID string, observedBid, amount float64, bidderID string) (model.Listing, error)

	// Sweep queries and transitions. MarkActive and MarkEnded are guarded on
	// the current status so the state machine can never move backward.
	FindDueToStart(ctx context.Context, now time.Time) ([]model.Listing, error)
	FindDueToEnd(ctx context.Context, now time.Time) ([]model.Listing, error)
	MarkActive(ctx context.Context, listingID string, now time.Time) error
	MarkEnded(ctx context.Context, listingID string, now time.Time) (model.Listing, error)
}

// BidStore defines the append-only bid ledger interface
type BidStore interface {
	InsertBid(ctx context.Context, bid model.Bid) error
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)
}

// UserStore defines the user persistence interface for the auth gateway
type UserStore interface {
	InsertUser(ctx context.Context, user model.User) error
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// Store groups the three persistence interfaces; both repo implementations
// satisfy it.
type Store interface {
	ListingStore
	BidStore
	UserStore
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store, used
// when no document store is configured and by the test suites.
type MemoryRepo struct {
	mu       sync.RWMutex
	listings map[string]model.Listing // key: listingID
	bids     map[string][]model.Bid   // key: listingID -> bids in acceptance order
	users    map[string]model.User    // key: userID
	emails   map[string]string        // key: lowercased email -> userID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings: make(map[string]model.Listing),
		bids:     make(map[string][]model.Bid),
		users:    make(map[string]model.User),
		emails:   make(map[string]string),
	}
}

// InsertListing stores a new listing
func (r *MemoryRepo) InsertListing(_ context.Context, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[listing.ListingID] = listing
	return nil
}

// GetListing returns the listing with the given id
func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListListings returns all listings in unspecified order
func (r *MemoryRepo) ListListings(_ context.Context) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		listings = append(listings, l)
	}
	return listings, nil
}

// UpdateListingFields applies the non-nil fields of the update and returns
// the updated listing
func (r *MemoryRepo) UpdateListingFields(_ context.Context, listingID string, fields model.ListingUpdate) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("update listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	if fields.Title != nil {
		listing.Title = *fields.Title
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}
	if fields.StartPrice != nil {
		listing.StartPrice = *fields.StartPrice
	}
	if fields.StartTime != nil {
		listing.StartTime = *fields.StartTime
	}
	if fields.EndTime != nil {
		listing.EndTime = *fields.EndTime
	}
	listing.UpdatedAt = time.Now().UTC()

	r.listings[listingID] = listing
	return listing, nil
}

// DeleteListing removes a listing; its bid history is left in the ledger
func (r *MemoryRepo) DeleteListing(_ context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	delete(r.listings, listingID)
	return nil
}

// CompareAndSetBid conditionally updates the high-bid projection of a listing
func (r *MemoryRepo) CompareAndSetBid(_ context.Context, listingID string, observedBid, amount float64, bidderID string) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("set bid on listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.CurrentBid != observedBid {
		return model.Listing{}, fmt.Errorf("set bid on listing %s: %w", listingID, auctionerrors.ErrBidConflict)
	}

	listing.CurrentBid = amount
	listing.HighestBidderID = bidderID
	listing.UpdatedAt = time.Now().UTC()

	r.listings[listingID] = listing
	return listing, nil
}

// FindDueToStart returns pending listings whose start time has passed
func (r *MemoryRepo) FindDueToStart(_ context.Context, now time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []model.Listing
	for _, l := range r.listings {
		if l.Status == model.StatusPending && !l.StartTime.After(now) {
			due = append(due, l)
		}
	}
	return due, nil
}

// FindDueToEnd returns active listings whose end time has passed
func (r *MemoryRepo) FindDueToEnd(_ context.Context, now time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []model.Listing
	for _, l := range r.listings {
		if l.Status == model.StatusActive && !l.EndTime.After(now) {
			due = append(due, l)
		}
	}
	return due, nil
}

// MarkActive transitions a pending listing to active
func (r *MemoryRepo) MarkActive(_ context.Context, listingID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("mark listing %s active: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.StatusPending {
		return fmt.Errorf("mark listing %s active: status is %s: %w", listingID, listing.Status, auctionerrors.ErrAuctionNotActive)
	}

	listing.Status = model.StatusActive
	listing.UpdatedAt = now

	r.listings[listingID] = listing
	return nil
}

// MarkEnded transitions an active listing to ended, recording the highest
// bidder at this instant as the winner (absent if nobody bid)
func (r *MemoryRepo) MarkEnded(_ context.Context, listingID string, now time.Time) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("mark listing %s ended: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.StatusActive {
		return model.Listing{}, fmt.Errorf("mark listing %s ended: status is %s: %w", listingID, listing.Status, auctionerrors.ErrAuctionNotActive)
	}

	listing.Status = model.StatusEnded
	listing.WinnerID = listing.HighestBidderID
	listing.UpdatedAt = now

	r.listings[listingID] = listing
	return listing, nil
}

// InsertBid appends a bid to the ledger
func (r *MemoryRepo) InsertBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)
	return nil
}

// GetBidsByListing returns all recorded bids for a listing, newest first
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := append([]model.Bid(nil), r.bids[listingID]...)
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

// InsertUser stores a new user, enforcing email uniqueness
func (r *MemoryRepo) InsertUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.emails[key]; taken {
		return fmt.Errorf("insert user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}
	r.users[user.UserID] = user
	r.emails[key] = user.UserID
	return nil
}

// GetUserByID returns the user with the given id
func (r *MemoryRepo) GetUserByID(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByEmail returns the user registered under the given email
func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
	}
	return r.users[userID], nil
}

// GetUsernames resolves display names for a set of user ids; unknown ids are
// simply absent from the result
func (r *MemoryRepo) GetUsernames(_ context.Context, userIDs []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok {
			names[id] = user.Username
		}
	}
	return names, nil
}
