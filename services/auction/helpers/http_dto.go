package helpers

import (
	"time"

	model "github.com/kaguya07/Auction-Trading/internal/models"
)

// Request/Response DTOs
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type CreateListingRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Image       string    `json:"image" binding:"required"`
	StartPrice  float64   `json:"start_price" binding:"required,gt=0"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

type UpdateListingRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartPrice  *float64   `json:"start_price"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// Fields converts the request into the persistence-level update
func (r UpdateListingRequest) Fields() model.ListingUpdate {
	return model.ListingUpdate{
		Title:       r.Title,
		Description: r.Description,
		StartPrice:  r.StartPrice,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
