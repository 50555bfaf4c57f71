package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyLocksGrantInRequestOrder(t *testing.T) {
	t.Parallel()

	locks := newPartyLocks()
	ctx := context.Background()

	release, err := locks.acquire(ctx, "p")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 1; i <= 5; i++ {
		tail := locks.tail("p")
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			next, err := locks.acquire(ctx, "p")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			next()
		}(i)
		require.Eventually(t, func() bool { return locks.tail("p") != tail }, time.Second, time.Millisecond)
	}

	release()
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func (l *partyLocks) tail(id string) *lockTicket {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tails[domain.PartyID(id)]
}

func TestPartyLocksIndependentIDs(t *testing.T) {
	t.Parallel()

	locks := newPartyLocks()
	ctx := context.Background()

	releaseA, err := locks.acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	acquired := make(chan struct{})
	go func() {
		releaseB, err := locks.acquire(ctx, "b")
		if err == nil {
			releaseB()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on b waited for a")
	}
}

func TestPartyLocksCanceledWaiterKeepsChainIntact(t *testing.T) {
	t.Parallel()

	locks := newPartyLocks()
	ctx := context.Background()

	release, err := locks.acquire(ctx, "p")
	require.NoError(t, err)

	waitCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = locks.acquire(waitCtx, "p")
	require.ErrorIs(t, err, context.Canceled)

	acquired := make(chan struct{})
	go func() {
		next, err := locks.acquire(ctx, "p")
		if err == nil {
			next()
		}
		close(acquired)
	}()

	assert.Never(t, func() bool {
		select {
		case <-acquired:
			return true
		default:
			return false
		}
	}, 30*time.Millisecond, 5*time.Millisecond)

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter behind a canceled request never acquired")
	}
}

func TestPartyLocksReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	locks := newPartyLocks()
	release, err := locks.acquire(context.Background(), "p")
	require.NoError(t, err)

	release()
	release()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.tails)
}
