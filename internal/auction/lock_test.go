package auction

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gavel-dev/gavel/internal/models"
)

func TestListingLocksReturnSameMutexPerListing(t *testing.T) {
	locks := newListingLocks()

	require.Same(t, locks.get(1), locks.get(1))
	require.NotSame(t, locks.get(1), locks.get(2))
}

// Two bidders racing with the same amount must not both win: one succeeds,
// the other sees the updated current bid and is rejected as a tie.
func TestConcurrentEqualBids(t *testing.T) {
	engine, database := newTestEngine(t)
	seller := createTestUser(t, database, "seller")
	bidderA := createTestUser(t, database, "bidderA")
	bidderB := createTestUser(t, database, "bidderB")

	listing, err := engine.CreateListing(seller.ID, CreateListingInput{
		Title:       "Radio",
		Description: "Tube radio",
		StartingBid: dec(t, "50.00"),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for _, bidder := range []models.User{bidderA, bidderB} {
		wg.Add(1)

		go func(userID uint) {
			defer wg.Done()
			_, err := engine.PlaceBid(userID, listing.ID, dec(t, "60.00"))
			results <- err
		}(bidder.ID)
	}

	wg.Wait()
	close(results)

	var successes, rejections int

	for err := range results {
		if err == nil {
			successes++
			continue
		}

		require.ErrorIs(t, err, ErrInvalidBid)
		rejections++
	}

	require.Equal(t, 1, successes)
	require.Equal(t, 1, rejections)

	var bid models.Bid
	require.NoError(t, database.First(&bid, listing.BidID).Error)
	require.True(t, bid.CurrentBid.Equal(dec(t, "60.00")))
}
