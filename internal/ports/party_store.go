package ports

import (
	"context"

	"github.com/kurzickkrozz/GWPB/internal/domain"
)

// PartyStore persists the whole active-party set as one snapshot.
type PartyStore interface {
	Save(ctx context.Context, parties map[domain.PartyID]domain.Party) error
	Load(ctx context.Context) (map[domain.PartyID]domain.Party, error)
}

// PartyObserver receives every successful lifecycle transition. It is called
// while the party is locked, so it must not call back into the manager for
// the same party.
type PartyObserver interface {
	PartyChanged(ctx context.Context, event domain.PartyEvent) error
}
