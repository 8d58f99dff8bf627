package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	model "github.com/kaguya07/Auction-Trading/internal/models"
)

const (
	listingsCollection = "listings"
	bidsCollection     = "bids"
	usersCollection    = "users"
)

// MongoRepo is a document-store implementation of Store backed by MongoDB
type MongoRepo struct {
	listings *mongo.Collection
	bids     *mongo.Collection
	users    *mongo.Collection
}

// NewMongoRepo creates a repository over the given database
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		listings: db.Collection(listingsCollection),
		bids:     db.Collection(bidsCollection),
		users:    db.Collection(usersCollection),
	}
}

// InsertListing stores a new listing document
func (r *MongoRepo) InsertListing(ctx context.Context, listing model.Listing) error {
	if _, err := r.listings.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("insert listing %s: %w", listing.ListingID, err)
	}
	return nil
}

// GetListing returns the listing with the given id
func (r *MongoRepo) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	var listing model.Listing
	err := r.listings.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListListings returns all listing documents
func (r *MongoRepo) ListListings(ctx context.Context) ([]model.Listing, error) {
	cursor, err := r.listings.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	var listings []model.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// UpdateListingFields applies the non-nil fields of the update and returns
// the updated document
func (r *MongoRepo) UpdateListingFields(ctx context.Context, listingID string, fields model.ListingUpdate) (model.Listing, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.StartPrice != nil {
		set["start_price"] = *fields.StartPrice
	}
	if fields.StartTime != nil {
		set["start_time"] = *fields.StartTime
	}
	if fields.EndTime != nil {
		set["end_time"] = *fields.EndTime
	}

	var listing model.Listing
	err := r.listings.FindOneAndUpdate(
		ctx,
		bson.M{"_id": listingID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Listing{}, fmt.Errorf("update listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("update listing %s: %w", listingID, err)
	}
	return listing, nil
}

// DeleteListing removes a listing document; its bid history stays in the ledger
func (r *MongoRepo) DeleteListing(ctx context.Context, listingID string) error {
	res, err := r.listings.DeleteOne(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", listingID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

// CompareAndSetBid updates the high-bid projection only when the stored
// current_bid still matches what the caller observed
func (r *MongoRepo) CompareAndSetBid(ctx context.Context, listingID string, observedBid, amount float64, bidderID string) (model.Listing, error) {
	var listing model.Listing
	err := r.listings.FindOneAndUpdate(
		ctx,
		bson.M{"_id": listingID, "current_bid": observedBid},
		bson.M{"$set": bson.M{
			"current_bid":       amount,
			"highest_bidder_id": bidderID,
			"updated_at":        time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// No match means either the listing disappeared or another bid won
		// the race; look again to tell the two apart.
		if _, getErr := r.GetListing(ctx, listingID); getErr != nil {
			return model.Listing{}, getErr
		}
		return model.Listing{}, fmt.Errorf("set bid on listing %s: %w", listingID, auctionerrors.ErrBidConflict)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("set bid on listing %s: %w", listingID, err)
	}
	return listing, nil
}

// FindDueToStart returns pending listings whose start time has passed
func (r *MongoRepo) FindDueToStart(ctx context.Context, now time.Time) ([]model.Listing, error) {
	return r.findByStatusAndDeadline(ctx, model.StatusPending, "start_time", now)
}

// FindDueToEnd returns active listings whose end time has passed
func (r *MongoRepo) FindDueToEnd(ctx context.Context, now time.Time) ([]model.Listing, error) {
	return r.findByStatusAndDeadline(ctx, model.StatusActive, "end_time", now)
}

func (r *MongoRepo) findByStatusAndDeadline(ctx context.Context, status model.ListingStatus, field string, now time.Time) ([]model.Listing, error) {
	cursor, err := r.listings.Find(ctx, bson.M{
		"status": status,
		field:    bson.M{"$lte": now},
	})
	if err != nil {
		return nil, fmt.Errorf("find %s listings by %s: %w", status, field, err)
	}
	var listings []model.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("find %s listings by %s: %w", status, field, err)
	}
	return listings, nil
}

// MarkActive transitions a pending listing to active. The status filter makes
// the transition a no-op if another sweep got there first.
func (r *MongoRepo) MarkActive(ctx context.Context, listingID string, now time.Time) error {
	res, err := r.listings.UpdateOne(
		ctx,
		bson.M{"_id": listingID, "status": model.StatusPending},
		bson.M{"$set": bson.M{"status": model.StatusActive, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("mark listing %s active: %w", listingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mark listing %s active: %w", listingID, auctionerrors.ErrAuctionNotActive)
	}
	return nil
}

// MarkEnded transitions an active listing to ended. The winner is copied from
// highest_bidder_id inside a single pipeline update so the assignment and the
// status change cannot be split.
func (r *MongoRepo) MarkEnded(ctx context.Context, listingID string, now time.Time) (model.Listing, error) {
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: model.StatusEnded},
			{Key: "winner_id", Value: "$highest_bidder_id"},
			{Key: "updated_at", Value: now},
		}}},
	}

	var listing model.Listing
	err := r.listings.FindOneAndUpdate(
		ctx,
		bson.M{"_id": listingID, "status": model.StatusActive},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Listing{}, fmt.Errorf("mark listing %s ended: %w", listingID, auctionerrors.ErrAuctionNotActive)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("mark listing %s ended: %w", listingID, err)
	}
	return listing, nil
}

// InsertBid appends a bid document to the ledger
func (r *MongoRepo) InsertBid(ctx context.Context, bid model.Bid) error {
	if _, err := r.bids.InsertOne(ctx, bid); err != nil {
		return fmt.Errorf("insert bid %s: %w", bid.BidID, err)
	}
	return nil
}

// GetBidsByListing returns all recorded bids for a listing, newest first
func (r *MongoRepo) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	cursor, err := r.bids.Find(
		ctx,
		bson.M{"listing_id": listingID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	var bids []model.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// InsertUser stores a new user, enforcing email uniqueness
func (r *MongoRepo) InsertUser(ctx context.Context, user model.User) error {
	count, err := r.users.CountDocuments(ctx, bson.M{"email": strings.ToLower(user.Email)})
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.Email, err)
	}
	if count > 0 {
		return fmt.Errorf("insert user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}

	user.Email = strings.ToLower(user.Email)
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByID returns the user with the given id
func (r *MongoRepo) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// GetUserByEmail returns the user registered under the given email
func (r *MongoRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetUsernames resolves display names for a set of user ids
func (r *MongoRepo) GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("get usernames: %w", err)
	}
	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("get usernames: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = u.Username
	}
	return names, nil
}
