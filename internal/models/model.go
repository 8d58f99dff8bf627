package models

import "time"

// ListingStatus is the lifecycle state of a listing. Transitions only move
// forward: pending -> active -> ended.
type ListingStatus string

const (
	StatusPending ListingStatus = "pending"
	StatusActive  ListingStatus = "active"
	StatusEnded   ListingStatus = "ended"
)

// Rank returns the presentation order of a status: active listings first,
// then pending, then ended, with unknown values last.
func (s ListingStatus) Rank() int {
	switch s {
	case StatusActive:
		return 1
	case StatusPending:
		return 2
	case StatusEnded:
		return 3
	default:
		return 4
	}
}

// User represents a registered participant in the marketplace
type User struct {
	UserID       string    `json:"user_id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Listing represents one timed auction for a single item.
// CurrentBid and HighestBidderID are a cached projection of the highest
// accepted bid; CurrentBid starts at StartPrice with no bidder recorded.
type Listing struct {
	ListingID       string        `json:"listing_id" bson:"_id"`
	Title           string        `json:"title" bson:"title"`
	Description     string        `json:"description" bson:"description"`
	Image           string        `json:"image" bson:"image"`
	StartPrice      float64       `json:"start_price" bson:"start_price"`
	CurrentBid      float64       `json:"current_bid" bson:"current_bid"`
	StartTime       time.Time     `json:"start_time" bson:"start_time"`
	EndTime         time.Time     `json:"end_time" bson:"end_time"`
	SellerID        string        `json:"seller_id" bson:"seller_id"`
	HighestBidderID string        `json:"highest_bidder_id,omitempty" bson:"highest_bidder_id,omitempty"`
	WinnerID        string        `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	Status          ListingStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// ListingUpdate carries the seller-editable fields of a listing. Nil fields
// are left unchanged.
type ListingUpdate struct {
	Title       *string
	Description *string
	StartPrice  *float64
	StartTime   *time.Time
	EndTime     *time.Time
}

// ListingView is a listing joined with the display names of the referenced
// users, as returned by the read side.
type ListingView struct {
	Listing
	SellerName        string `json:"seller_name,omitempty"`
	HighestBidderName string `json:"highest_bidder_name,omitempty"`
	WinnerName        string `json:"winner_name,omitempty"`
}

// Bid represents one accepted bid on a listing, immutable once recorded
type Bid struct {
	BidID     string    `json:"bid_id" bson:"_id"`
	ListingID string    `json:"listing_id" bson:"listing_id"`
	BidderID  string    `json:"bidder_id" bson:"bidder_id"`
	Amount    float64   `json:"amount" bson:"amount"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
