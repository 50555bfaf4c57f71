package application

import (
	"sync"
	"testing"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type expiryRecorder struct {
	mu  sync.Mutex
	ids []domain.PartyID
}

func (r *expiryRecorder) expire(id domain.PartyID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *expiryRecorder) expired() []domain.PartyID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PartyID(nil), r.ids...)
}

func TestExpirySchedulerRemaining(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	scheduler := NewExpiryScheduler(clock, 3*time.Hour, func(domain.PartyID) {})

	assert.Equal(t, 3*time.Hour, scheduler.Remaining(testEpoch))
	assert.Equal(t, time.Hour, scheduler.Remaining(testEpoch.Add(-2*time.Hour)))
	assert.Zero(t, scheduler.Remaining(testEpoch.Add(-4*time.Hour)))
}

func TestExpirySchedulerDefaultsTimeout(t *testing.T) {
	t.Parallel()

	scheduler := NewExpiryScheduler(testutil.NewFakeClock(testEpoch), 0, func(domain.PartyID) {})
	assert.Equal(t, DefaultPartyTimeout, scheduler.Timeout())
}

func TestExpirySchedulerFiresAtDeadline(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	recorder := &expiryRecorder{}
	scheduler := NewExpiryScheduler(clock, time.Hour, recorder.expire)

	scheduler.Arm("late", testEpoch)
	scheduler.Arm("early", testEpoch.Add(-30*time.Minute))
	assert.Equal(t, 2, scheduler.Pending())

	clock.Advance(30 * time.Minute)
	assert.Equal(t, []domain.PartyID{"early"}, recorder.expired())

	clock.Advance(30 * time.Minute)
	assert.Equal(t, []domain.PartyID{"early", "late"}, recorder.expired())
	assert.Zero(t, scheduler.Pending())
}

func TestExpirySchedulerPastDeadlineFiresImmediately(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	recorder := &expiryRecorder{}
	scheduler := NewExpiryScheduler(clock, time.Hour, recorder.expire)

	scheduler.Arm("overdue", testEpoch.Add(-2*time.Hour))

	assert.Equal(t, []domain.PartyID{"overdue"}, recorder.expired())
	assert.Zero(t, scheduler.Pending())
}

func TestExpirySchedulerRearmReplacesTimer(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	recorder := &expiryRecorder{}
	scheduler := NewExpiryScheduler(clock, time.Hour, recorder.expire)

	scheduler.Arm("p", testEpoch)
	scheduler.Arm("p", testEpoch.Add(30*time.Minute))
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Hour)
	assert.Empty(t, recorder.expired())

	clock.Advance(30 * time.Minute)
	assert.Equal(t, []domain.PartyID{"p"}, recorder.expired())
}

func TestExpirySchedulerCancelAndStop(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	recorder := &expiryRecorder{}
	scheduler := NewExpiryScheduler(clock, time.Hour, recorder.expire)

	scheduler.Arm("a", testEpoch)
	scheduler.Arm("b", testEpoch)
	scheduler.Arm("c", testEpoch)

	scheduler.Cancel("a")
	scheduler.Cancel("missing")
	assert.Equal(t, 2, scheduler.Pending())

	scheduler.Stop()
	assert.Zero(t, scheduler.Pending())
	assert.Zero(t, clock.Pending())

	clock.Advance(2 * time.Hour)
	assert.Empty(t, recorder.expired())
}
