package testutil

import (
	"context"
	"sync"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

var _ ports.PartyStore = (*MemoryPartyStore)(nil)

// MemoryPartyStore keeps the last saved snapshot in memory.
type MemoryPartyStore struct {
	mu      sync.Mutex
	parties map[domain.PartyID]domain.Party
}

func NewMemoryPartyStore(parties ...domain.Party) *MemoryPartyStore {
	store := &MemoryPartyStore{parties: make(map[domain.PartyID]domain.Party, len(parties))}
	for _, party := range parties {
		store.parties[party.ID] = party.Clone()
	}
	return store
}

func (s *MemoryPartyStore) Save(_ context.Context, parties map[domain.PartyID]domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parties = make(map[domain.PartyID]domain.Party, len(parties))
	for id, party := range parties {
		s.parties[id] = party.Clone()
	}
	return nil
}

func (s *MemoryPartyStore) Load(_ context.Context) (map[domain.PartyID]domain.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parties := make(map[domain.PartyID]domain.Party, len(s.parties))
	for id, party := range s.parties {
		parties[id] = party.Clone()
	}
	return parties, nil
}
