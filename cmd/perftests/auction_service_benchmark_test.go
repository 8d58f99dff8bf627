package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	bidding "github.com/kaguya07/Auction-Trading/internal/biddingService"
	model "github.com/kaguya07/Auction-Trading/internal/models"
	repository "github.com/kaguya07/Auction-Trading/internal/repository"
)

func activeListing(id string, startPrice float64) model.Listing {
	now := time.Now().UTC()
	return model.Listing{
		ListingID:   id,
		Title:       "listing " + id,
		Description: "benchmark listing",
		StartPrice:  startPrice,
		CurrentBid:  startPrice,
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		SellerID:    "seller_bench",
		Status:      model.StatusActive,
		CreatedAt:   now,
	}
}

func seedListings(b *testing.B, repo *repository.MemoryRepo, n int, startPrice float64) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if err := repo.InsertListing(ctx, activeListing(fmt.Sprintf("listing_%d", i), startPrice)); err != nil {
			b.Fatalf("failed to seed listing: %v", err)
		}
	}
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo)
	ctx := context.Background()

	seedListings(b, repo, b.N, 50)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bidderID := fmt.Sprintf("user_%d", i)
		listingID := fmt.Sprintf("listing_%d", i)
		amount := float64(51 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, listingID, bidderID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo)
	ctx := context.Background()

	seedListings(b, repo, 1, 50)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			bidderID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			// monotonically increasing amounts so most attempts clear the current bid
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, "listing_0", bidderID, float64(nextBid))
		}
	})
}

// Benchmark 3: BidsForListing - Single-Threaded (Low Contention)
func Benchmark_BidsForListing_SingleThreaded(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo)
	ctx := context.Background()

	seedListings(b, repo, b.N, 50)
	for i := 0; i < b.N; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		for j := 0; j < 10; j++ {
			bidderID := fmt.Sprintf("user_%d_%d", i, j)
			amount := float64(51 + j*10)
			if _, err := svc.PlaceBid(ctx, listingID, bidderID, amount); err != nil {
				b.Fatalf("failed to seed bid: %v", err)
			}
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		listingID := fmt.Sprintf("listing_%d", i)
		if _, err := svc.BidsForListing(ctx, listingID); err != nil {
			b.Fatalf("failed to get bid history: %v", err)
		}
	}
}

// Benchmark 4: BidsForListing - Concurrent (High Contention)
func Benchmark_BidsForListing_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo)
	ctx := context.Background()

	seedListings(b, repo, 1, 50)
	for j := 0; j < 100; j++ {
		bidderID := fmt.Sprintf("user_%d", j)
		amount := float64(51 + j)
		if _, err := svc.PlaceBid(ctx, "listing_0", bidderID, amount); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.BidsForListing(ctx, "listing_0"); err != nil {
				b.Fatalf("failed to get bid history: %v", err)
			}
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, repo)
	ctx := context.Background()

	seedListings(b, repo, 1, 50)
	for j := 0; j < 50; j++ {
		bidderID := fmt.Sprintf("user_seed_%d", j)
		amount := float64(51 + j*2)
		if _, err := svc.PlaceBid(ctx, "listing_0", bidderID, amount); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			opType := rnd.Intn(10)
			switch {
			case opType < 3:
				bidderID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, "listing_0", bidderID, float64(nextBid))
			default:
				_, _ = svc.BidsForListing(ctx, "listing_0")
			}
		}
	})
}
