package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kaguya07/Auction-Trading/config"
	"github.com/kaguya07/Auction-Trading/internal/auth"
	bidding "github.com/kaguya07/Auction-Trading/internal/biddingService"
	listing "github.com/kaguya07/Auction-Trading/internal/listingService"
	"github.com/kaguya07/Auction-Trading/internal/repository"
	"github.com/kaguya07/Auction-Trading/internal/scheduler"
	"github.com/kaguya07/Auction-Trading/internal/server"
	"github.com/kaguya07/Auction-Trading/utils"
)

func main() {
	cfg := config.Load()
	if !cfg.Validate() {
		utils.Fatal("Missing required configuration", map[string]any{
			"hint": "server-addr and jwt-secret must be set",
		})
	}

	store, cleanup := buildStore(cfg)
	defer cleanup()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	listingSvc := listing.NewListingService(store, store)
	biddingSvc := bidding.NewBiddingService(store, store)
	authSvc := auth.NewAuthService(store, tokens)

	sweeper := scheduler.NewSweeper(listingSvc, cfg.SweepInterval)
	sweeper.Start()

	router := server.SetupRouter(listingSvc, biddingSvc, authSvc, tokens)
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": cfg.ServerAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("HTTP server failed", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.Info("Shutting down", nil)
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("HTTP server shutdown failed", map[string]any{"error": err.Error()})
	}
}

// buildStore connects to MongoDB when a URI is configured and falls back to
// the in-memory repository otherwise. The returned cleanup closes the
// connection on exit.
func buildStore(cfg config.Config) (repository.Store, func()) {
	if cfg.MongoURI == "" {
		utils.Info("No mongo-uri configured, using in-memory store", nil)
		return repository.NewMemoryRepo(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		utils.Fatal("Failed to connect to MongoDB", map[string]any{"error": err.Error()})
	}
	if err := client.Ping(ctx, nil); err != nil {
		utils.Fatal("MongoDB ping failed", map[string]any{"error": err.Error()})
	}

	utils.Info("Connected to MongoDB", map[string]any{"database": cfg.MongoDatabase})
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return repository.NewMongoRepo(client.Database(cfg.MongoDatabase)), cleanup
}
