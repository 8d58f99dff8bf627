package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBidConflict     = errors.New("listing changed while placing bid")
)

// business logic errors
var (
	ErrInvalidListing     = errors.New("invalid listing")
	ErrInvalidBid         = errors.New("invalid bid")
	ErrBidTooLow          = errors.New("bid amount must exceed current bid")
	ErrAuctionNotActive   = errors.New("auction is not active")
	ErrOwnListingBid      = errors.New("cannot bid on own listing")
	ErrNotSeller          = errors.New("caller is not the seller of this listing")
	ErrInvalidUser        = errors.New("invalid user details")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
