package application

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

type ManagerOptions struct {
	Catalog  domain.Catalog
	Observer ports.PartyObserver
	Clock    ports.Clock
	Timeout  time.Duration
	NewID    func() (domain.PartyID, error)
	Logger   *slog.Logger
}

// Manager owns the active parties. Every mutating operation holds the
// party's token from its precondition checks until persistence and
// observers have finished.
type Manager struct {
	catalog  domain.Catalog
	store    ports.PartyStore
	observer ports.PartyObserver
	clock    ports.Clock
	newID    func() (domain.PartyID, error)
	logger   *slog.Logger
	locks    *partyLocks
	expiry   *ExpiryScheduler

	mu      sync.RWMutex
	parties map[domain.PartyID]domain.Party

	// persistMu keeps snapshot order and write order identical.
	persistMu sync.Mutex
}

func NewManager(store ports.PartyStore, opts ManagerOptions) *Manager {
	if len(opts.Catalog.Templates()) == 0 {
		opts.Catalog = domain.DefaultCatalog()
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.NewID == nil {
		opts.NewID = domain.NewPartyID
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		catalog:  opts.Catalog,
		store:    store,
		observer: opts.Observer,
		clock:    opts.Clock,
		newID:    opts.NewID,
		logger:   opts.Logger,
		locks:    newPartyLocks(),
		parties:  make(map[domain.PartyID]domain.Party),
	}
	m.expiry = NewExpiryScheduler(opts.Clock, opts.Timeout, func(id domain.PartyID) {
		if err := m.Expire(context.Background(), id); err != nil {
			m.logger.Error("expire party", "party_id", id, "error", err)
		}
	})

	return m
}

func (m *Manager) Catalog() domain.Catalog {
	return m.catalog
}

func (m *Manager) Timeout() time.Duration {
	return m.expiry.Timeout()
}

// Restore loads the persisted parties. Parties whose deadline passed while
// the process was down are expired before Restore returns; the rest are
// re-armed against their original creation time. An unreadable store is
// logged and treated as empty.
func (m *Manager) Restore(ctx context.Context) error {
	parties, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrStoreIO) {
			return fmt.Errorf("load parties: %w", err)
		}
		m.logger.Warn("party store unreadable, starting empty", "error", err)
		parties = nil
	}

	ids := make([]domain.PartyID, 0, len(parties))
	m.mu.Lock()
	for id, party := range parties {
		m.parties[id] = party.Clone()
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	expired := 0
	for _, id := range ids {
		party := parties[id]
		if m.expiry.Remaining(party.CreatedAt) > 0 {
			continue
		}
		if err := m.Expire(ctx, id); err != nil {
			return fmt.Errorf("expire overdue party %s: %w", id, err)
		}
		expired++
	}

	for _, id := range ids {
		party, ok := m.lookup(id)
		if !ok {
			continue
		}
		m.expiry.Arm(id, party.CreatedAt)
	}

	m.logger.Info("parties restored", "active", len(ids)-expired, "expired", expired)
	return nil
}

// Shutdown cancels pending expiries and writes a final snapshot.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.expiry.Stop()
	return m.persist(ctx, "shutdown", "")
}

func (m *Manager) Create(ctx context.Context, kind domain.Kind, leader domain.MemberID) (domain.Party, error) {
	tmpl, err := m.catalog.Lookup(kind)
	if err != nil {
		return domain.Party{}, err
	}

	id, err := m.newID()
	if err != nil {
		return domain.Party{}, err
	}

	release, err := m.locks.acquire(ctx, id)
	if err != nil {
		return domain.Party{}, err
	}

	party := domain.NewParty(id, tmpl, leader, m.clock.Now().UTC())
	m.mu.Lock()
	m.parties[id] = party.Clone()
	m.mu.Unlock()

	_ = m.persist(ctx, "create", id)
	m.notify(ctx, domain.EventCreated, party)
	release()

	m.expiry.Arm(id, party.CreatedAt)
	return party, nil
}

// Claim puts member into the chosen empty slot.
func (m *Manager) Claim(ctx context.Context, id domain.PartyID, member domain.MemberID, index int) (domain.Party, error) {
	return m.mutate(ctx, id, "claim", func(p *domain.Party) (bool, error) {
		if _, ok := p.FindByOccupant(domain.Member(member)); ok {
			return false, fmt.Errorf("%w: %s", domain.ErrAlreadyAssigned, member)
		}
		if p.IsFull() {
			return false, domain.ErrPartyFull
		}
		if !p.ValidIndex(index) {
			return false, fmt.Errorf("%w: %d", domain.ErrInvalidSlot, index)
		}
		if !p.Slots[index].Occupant.IsEmpty() {
			return false, fmt.Errorf("%w: %s", domain.ErrSlotTaken, p.Slots[index].Role)
		}

		p.Slots[index].Occupant = domain.Member(member)
		return true, nil
	})
}

// Vacate frees member's slot and returns its index. A member without a slot
// is not an error; the index is then -1.
func (m *Manager) Vacate(ctx context.Context, id domain.PartyID, member domain.MemberID) (domain.Party, int, error) {
	freed := -1
	party, err := m.mutate(ctx, id, "vacate", func(p *domain.Party) (bool, error) {
		index, ok := p.FindByOccupant(domain.Member(member))
		if !ok {
			return false, nil
		}

		p.Slots[index].Occupant = domain.Occupant{}
		freed = index
		return true, nil
	})
	if err != nil {
		return domain.Party{}, -1, err
	}
	return party, freed, nil
}

// SwitchRole moves member from its current slot to target in one step.
func (m *Manager) SwitchRole(ctx context.Context, id domain.PartyID, member domain.MemberID, target int) (domain.Party, error) {
	return m.mutate(ctx, id, "switch", func(p *domain.Party) (bool, error) {
		current, ok := p.FindByOccupant(domain.Member(member))
		if !ok {
			return false, fmt.Errorf("%w: %s", domain.ErrNoCurrentRole, member)
		}
		if !p.ValidIndex(target) {
			return false, fmt.Errorf("%w: %d", domain.ErrInvalidSlot, target)
		}
		if current == target {
			return false, nil
		}
		if !p.Slots[target].Occupant.IsEmpty() {
			return false, fmt.Errorf("%w: %s", domain.ErrSlotTaken, p.Slots[target].Role)
		}

		p.Slots[current].Occupant = domain.Occupant{}
		p.Slots[target].Occupant = domain.Member(member)
		return true, nil
	})
}

// AddExternal lets the leader seat a player that has no platform identity.
func (m *Manager) AddExternal(ctx context.Context, id domain.PartyID, requester domain.MemberID, target int, displayName string) (domain.Party, error) {
	return m.mutate(ctx, id, "external", func(p *domain.Party) (bool, error) {
		if err := requireLeader(*p, requester); err != nil {
			return false, err
		}
		name := strings.TrimSpace(displayName)
		if name == "" {
			return false, domain.ErrInvalidName
		}
		if !p.ValidIndex(target) {
			return false, fmt.Errorf("%w: %d", domain.ErrInvalidSlot, target)
		}
		if !p.Slots[target].Occupant.IsEmpty() {
			return false, fmt.Errorf("%w: %s", domain.ErrSlotTaken, p.Slots[target].Role)
		}

		p.Slots[target].Occupant = domain.External(name)
		return true, nil
	})
}

// Kick clears target whoever holds it.
func (m *Manager) Kick(ctx context.Context, id domain.PartyID, requester domain.MemberID, target int) (domain.Party, error) {
	return m.mutate(ctx, id, "kick", func(p *domain.Party) (bool, error) {
		if err := requireLeader(*p, requester); err != nil {
			return false, err
		}
		if !p.ValidIndex(target) {
			return false, fmt.Errorf("%w: %d", domain.ErrInvalidSlot, target)
		}
		if p.Slots[target].Occupant.IsEmpty() {
			return false, fmt.Errorf("%w: %s", domain.ErrEmptySlot, p.Slots[target].Role)
		}

		p.Slots[target].Occupant = domain.Occupant{}
		return true, nil
	})
}

// Promote hands leadership to a member currently seated in the party.
func (m *Manager) Promote(ctx context.Context, id domain.PartyID, requester, newLeader domain.MemberID) (domain.Party, error) {
	return m.mutate(ctx, id, "promote", func(p *domain.Party) (bool, error) {
		if err := requireLeader(*p, requester); err != nil {
			return false, err
		}
		if _, ok := p.FindByOccupant(domain.Member(newLeader)); !ok {
			return false, fmt.Errorf("%w: %s", domain.ErrInvalidTarget, newLeader)
		}

		p.Leader = newLeader
		return true, nil
	})
}

// AttachPresentation records the handle of the rendered roster.
func (m *Manager) AttachPresentation(ctx context.Context, id domain.PartyID, ref domain.PresentationRef) (domain.Party, error) {
	return m.mutate(ctx, id, "attach", func(p *domain.Party) (bool, error) {
		if p.PresentationRef == ref {
			return false, nil
		}
		p.PresentationRef = ref
		return true, nil
	})
}

func (m *Manager) Disband(ctx context.Context, id domain.PartyID, requester domain.MemberID) (domain.Party, error) {
	return m.terminate(ctx, id, domain.EventDisbanded, func(p domain.Party) error {
		return requireLeader(p, requester)
	})
}

// Expire terminates id. An id that is already gone is a no-op.
func (m *Manager) Expire(ctx context.Context, id domain.PartyID) error {
	_, err := m.terminate(ctx, id, domain.EventExpired, nil)
	if errors.Is(err, domain.ErrPartyNotFound) {
		return nil
	}
	if err == nil {
		m.logger.Info("party expired", "party_id", id)
	}
	return err
}

// Ping lists the platform members seated in the party. Leader only.
func (m *Manager) Ping(_ context.Context, id domain.PartyID, requester domain.MemberID) ([]domain.MemberID, error) {
	party, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := requireLeader(party, requester); err != nil {
		return nil, err
	}
	return party.MemberOccupants(), nil
}

func (m *Manager) Get(id domain.PartyID) (domain.Party, error) {
	party, ok := m.lookup(id)
	if !ok {
		return domain.Party{}, fmt.Errorf("%w: %s", domain.ErrPartyNotFound, id)
	}
	return party, nil
}

// ListActive returns the parties active at call time, oldest first. The
// sequence can be ranged over repeatedly; call ListActive again to observe
// later changes.
func (m *Manager) ListActive() iter.Seq[domain.Party] {
	snapshot := m.snapshot()
	parties := make([]domain.Party, 0, len(snapshot))
	for _, party := range snapshot {
		parties = append(parties, party)
	}
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].CreatedAt.Equal(parties[j].CreatedAt) {
			return parties[i].ID < parties[j].ID
		}
		return parties[i].CreatedAt.Before(parties[j].CreatedAt)
	})

	return func(yield func(domain.Party) bool) {
		for _, party := range parties {
			if !yield(party.Clone()) {
				return
			}
		}
	}
}

// mutate runs apply against a working copy under the party token. The copy
// replaces the stored party only if apply succeeds and reports a change.
func (m *Manager) mutate(ctx context.Context, id domain.PartyID, op string, apply func(*domain.Party) (bool, error)) (domain.Party, error) {
	release, err := m.locks.acquire(ctx, id)
	if err != nil {
		return domain.Party{}, err
	}
	defer release()

	current, ok := m.lookup(id)
	if !ok {
		return domain.Party{}, fmt.Errorf("%w: %s", domain.ErrPartyNotFound, id)
	}

	working := current.Clone()
	changed, err := apply(&working)
	if err != nil {
		return domain.Party{}, err
	}
	if !changed {
		return current, nil
	}

	m.mu.Lock()
	m.parties[id] = working.Clone()
	m.mu.Unlock()

	_ = m.persist(ctx, op, id)
	m.notify(ctx, domain.EventUpdated, working)

	return working, nil
}

func (m *Manager) terminate(ctx context.Context, id domain.PartyID, event domain.EventType, authorize func(domain.Party) error) (domain.Party, error) {
	release, err := m.locks.acquire(ctx, id)
	if err != nil {
		return domain.Party{}, err
	}

	party, ok := m.lookup(id)
	if !ok {
		release()
		return domain.Party{}, fmt.Errorf("%w: %s", domain.ErrPartyNotFound, id)
	}
	if authorize != nil {
		if err := authorize(party); err != nil {
			release()
			return domain.Party{}, err
		}
	}

	m.mu.Lock()
	delete(m.parties, id)
	m.mu.Unlock()

	_ = m.persist(ctx, string(event), id)
	m.notify(ctx, event, party)
	release()

	m.expiry.Cancel(id)
	return party, nil
}

func (m *Manager) lookup(id domain.PartyID) (domain.Party, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	party, ok := m.parties[id]
	if !ok {
		return domain.Party{}, false
	}
	return party.Clone(), true
}

func (m *Manager) snapshot() map[domain.PartyID]domain.Party {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[domain.PartyID]domain.Party, len(m.parties))
	for id, party := range m.parties {
		snapshot[id] = party.Clone()
	}
	return snapshot
}

// persist writes the whole active set. Failures are logged; the in-memory
// state stays authoritative and the next successful save reconciles.
func (m *Manager) persist(ctx context.Context, op string, id domain.PartyID) error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if err := m.store.Save(context.WithoutCancel(ctx), m.snapshot()); err != nil {
		m.logger.Warn("persist parties", "op", op, "party_id", id, "error", err)
		return err
	}
	return nil
}

func (m *Manager) notify(ctx context.Context, event domain.EventType, party domain.Party) {
	if m.observer == nil {
		return
	}

	err := m.observer.PartyChanged(context.WithoutCancel(ctx), domain.PartyEvent{Type: event, Party: party.Clone()})
	if err != nil {
		m.logger.Warn("render party", "event", event, "party_id", party.ID, "error", err)
	}
}

func requireLeader(p domain.Party, requester domain.MemberID) error {
	if !p.IsLeader(requester) {
		return fmt.Errorf("%w: %s", domain.ErrNotLeader, requester)
	}
	return nil
}
