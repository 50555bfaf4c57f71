package application

import (
	"context"
	"sync"

	"github.com/kurzickkrozz/GWPB/internal/domain"
)

// partyLocks hands out one token per party id. Each request chains itself
// behind the current tail for that id, so holders run strictly in request
// order and ids never block each other.
type partyLocks struct {
	mu    sync.Mutex
	tails map[domain.PartyID]*lockTicket
}

type lockTicket struct {
	done chan struct{}
	once sync.Once
}

func newPartyLocks() *partyLocks {
	return &partyLocks{tails: make(map[domain.PartyID]*lockTicket)}
}

// acquire blocks until every earlier request for id has released. If ctx
// ends first the request gives up its place without breaking the chain.
func (l *partyLocks) acquire(ctx context.Context, id domain.PartyID) (func(), error) {
	ticket := &lockTicket{done: make(chan struct{})}

	l.mu.Lock()
	prev := l.tails[id]
	l.tails[id] = ticket
	l.mu.Unlock()

	release := func() { l.release(id, ticket) }

	if prev == nil {
		return release, nil
	}

	select {
	case <-prev.done:
		return release, nil
	case <-ctx.Done():
		go func() {
			<-prev.done
			release()
		}()
		return nil, ctx.Err()
	}
}

func (l *partyLocks) release(id domain.PartyID, ticket *lockTicket) {
	ticket.once.Do(func() {
		l.mu.Lock()
		if l.tails[id] == ticket {
			delete(l.tails, id)
		}
		l.mu.Unlock()
		close(ticket.done)
	})
}
