package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kaguya07/Auction-Trading/internal/auth"
	bidding "github.com/kaguya07/Auction-Trading/internal/biddingService"
	listing "github.com/kaguya07/Auction-Trading/internal/listingService"
	"github.com/kaguya07/Auction-Trading/internal/repository"
	"github.com/kaguya07/Auction-Trading/internal/server"
)

const testJWTSecret = "integration-test-secret"

// TestApp bundles the router with the wired services so tests can drive
// the HTTP surface and the lifecycle sweep against the same store.
type TestApp struct {
	Router     *gin.Engine
	Repo       *repository.MemoryRepo
	ListingSvc *listing.ListingService
	Tokens     *auth.TokenManager
}

// SetupTestApp initializes the full application over an in-memory store.
func SetupTestApp() *TestApp {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)

	listingSvc := listing.NewListingService(repo, repo)
	biddingSvc := bidding.NewBiddingService(repo, repo)
	authSvc := auth.NewAuthService(repo, tokens)

	router := server.SetupRouter(listingSvc, biddingSvc, authSvc, tokens)
	return &TestApp{
		Router:     router,
		Repo:       repo,
		ListingSvc: listingSvc,
		Tokens:     tokens,
	}
}

// ExecuteRequestAndParse executes an HTTP request and parses the response envelope.
// An empty token leaves the request unauthenticated.
func (app *TestApp) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	app.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// RegisterAndLogin creates an account through the API and returns the
// user id and a bearer token for it.
func (app *TestApp) RegisterAndLogin(t *testing.T, username, email, password string) (string, string) {
	t.Helper()

	resp, w := app.ExecuteRequestAndParse(t, "POST", "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, 201, w.Code, "register %s: %v", email, resp)
	userID := resp["data"].(map[string]any)["user_id"].(string)

	resp, w = app.ExecuteRequestAndParse(t, "POST", "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, 200, w.Code, "login %s: %v", email, resp)
	token := resp["data"].(map[string]any)["token"].(string)

	return userID, token
}

// CreateListingRequest builds a valid creation payload around the given window.
func CreateListingRequest(title string, startPrice float64, start, end time.Time) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "integration test listing",
		"image":       "https://img.example.com/" + title + ".jpg",
		"start_price": startPrice,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
	}
}
