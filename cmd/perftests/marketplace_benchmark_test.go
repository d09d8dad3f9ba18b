package perftests

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"auction-dashboard/internal/marketplace"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/repository"
)

func openAuction(id string, now time.Time) model.Auction {
	return model.Auction{
		ID:            id,
		Name:          "Benchmark " + id,
		Category:      "Bench",
		StartingPrice: 50,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(24 * time.Hour),
		Status:        model.AuctionAccepted,
		SellerEmail:   "seller@example.com",
	}
}

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	now := time.Now()
	repo := repository.NewMemoryRepo()
	svc := marketplace.NewService(repo)

	for i := 0; i < b.N; i++ {
		if err := repo.InsertAuction(openAuction(fmt.Sprintf("auction_%d", i), now)); err != nil {
			b.Fatalf("failed to seed auction: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		email := fmt.Sprintf("user_%d@example.com", i)
		auctionID := fmt.Sprintf("auction_%d", i)
		bidAmount := float64(50 + rand.Intn(100))
		if _, err := svc.PlaceBid(auctionID, email, "bench", bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := marketplace.NewService(repo)
	if err := repo.InsertAuction(openAuction("shared_auction_1", time.Now())); err != nil {
		b.Fatalf("failed to seed auction: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50
	var accepted, rejected int64

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			email := fmt.Sprintf("user_parallel_%d@example.com", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			if _, err := svc.PlaceBid("shared_auction_1", email, "bench", float64(nextBid)); err != nil {
				atomic.AddInt64(&rejected, 1)
				continue
			}
			atomic.AddInt64(&accepted, 1)
		}
	})

	b.StopTimer()
	a, err := repo.GetAuction("shared_auction_1")
	if err != nil {
		b.Fatalf("failed to read auction: %v", err)
	}
	if len(a.TopBidders) > 5 {
		b.Fatalf("top bidders grew to %d", len(a.TopBidders))
	}
	b.Logf("accepted: %d rejected: %d current bid: %.0f", accepted, rejected, a.CurrentBid)
}

// Benchmark 3: ListAuctions - Concurrent readers while bids land
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	now := time.Now()
	repo := repository.NewMemoryRepo()
	svc := marketplace.NewService(repo)
	for i := 0; i < 100; i++ {
		if err := repo.InsertAuction(openAuction(fmt.Sprintf("auction_%d", i), now)); err != nil {
			b.Fatalf("failed to seed auction: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50
	var counter int64

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			switch opType := rnd.Intn(10); {
			case opType < 3:
				email := fmt.Sprintf("user_writer_%d@example.com", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid("auction_0", email, "bench", float64(nextBid))
			default:
				if _, err := svc.ListAuctions(""); err != nil {
					b.Errorf("read error: %v", err)
				}
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}
