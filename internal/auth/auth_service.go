package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kaguya07/Auction-Trading/internal/auctionerrors"
	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/internal/repository"
	"github.com/kaguya07/Auction-Trading/utils"
)

const minPasswordLength = 8

// AuthService registers users and exchanges credentials for bearer tokens
type AuthService struct {
	users  repository.UserStore
	tokens *TokenManager
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users repository.UserStore, tokens *TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register validates and stores a new user with a hashed password
func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("service: %w - username and a valid email are required", auctionerrors.ErrInvalidUser)
	}
	if len(password) < minPasswordLength {
		return model.User{}, fmt.Errorf("service: %w - password must be at least %d characters", auctionerrors.ErrInvalidUser, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("service: failed to hash password for %s: %w", email, err)
	}

	user := model.User{
		UserID:       utils.GenerateID(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.InsertUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("service: failed to register user %s: %w", email, err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed token plus the user.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	if email == "" || password == "" {
		return "", model.User{}, fmt.Errorf("service: %w - missing email or password", auctionerrors.ErrInvalidUser)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return "", model.User{}, fmt.Errorf("service: login %s: %w", email, auctionerrors.ErrInvalidCredentials)
		}
		return "", model.User{}, fmt.Errorf("service: failed to load user %s: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, fmt.Errorf("service: login %s: %w", email, auctionerrors.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.UserID, user.Username)
	if err != nil {
		return "", model.User{}, fmt.Errorf("service: failed to issue token for %s: %w", email, err)
	}
	return token, user, nil
}
