package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	StatePathKey    = "state.path"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	stateConfigDir  = ".gwpb"
	stateConfigFile = "parties.toml"
	tempFilePattern = ".parties-*.toml.tmp"
)

type PartyRepository struct {
	path string
	mu   *sync.Mutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.Mutex{}
)

var _ ports.PartyStore = (*PartyRepository)(nil)

// DefaultStatePath is where the snapshot lives when state.path is unset.
func DefaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, stateConfigDir, stateConfigFile), nil
}

func NewPartyRepository(cfg *viper.Viper) (*PartyRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(StatePathKey)
	if path == "" {
		defaultPath, err := DefaultStatePath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	path = filepath.Clean(absPath)

	return &PartyRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *PartyRepository) Path() string {
	return r.path
}

// Save replaces the stored snapshot with parties.
func (r *PartyRepository) Save(ctx context.Context, parties map[domain.PartyID]domain.Party) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := fileSchema{Parties: make([]partySchema, 0, len(parties))}
	for _, party := range parties {
		file.Parties = append(file.Parties, toSchema(party))
	}
	sort.Slice(file.Parties, func(i, j int) bool {
		return file.Parties[i].ID < file.Parties[j].ID
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeTOMLFile(r.path, file); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreIO, err)
	}

	return nil
}

// Load returns the stored snapshot. A missing file is an empty snapshot.
func (r *PartyRepository) Load(ctx context.Context) (map[domain.PartyID]domain.Party, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreIO, err)
	}

	parties := make(map[domain.PartyID]domain.Party, len(file.Parties))
	for _, entry := range file.Parties {
		party, err := fromSchema(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: party %q: %w", domain.ErrStoreIO, entry.ID, err)
		}
		parties[party.ID] = party
	}

	return parties, nil
}

func (r *PartyRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read parties file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode parties file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func lockForPath(path string) *sync.Mutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.Mutex{}
	pathLockMap[path] = mu
	return mu
}

// writeTOMLFile writes to a sibling temp file and renames it over path, so a
// crash mid-write leaves the previous snapshot intact.
func writeTOMLFile(path string, file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(path), stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode parties file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp parties file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp parties file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp parties file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp parties file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp parties file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace parties file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(party domain.Party) partySchema {
	slots := make([]slotSchema, 0, len(party.Slots))
	for _, slot := range party.Slots {
		slots = append(slots, slotSchema{
			Role:         slot.Role,
			OccupantType: string(slot.Occupant.Type),
			Occupant:     slot.Occupant.Value,
		})
	}

	return partySchema{
		ID:              string(party.ID),
		Kind:            string(party.Kind),
		Leader:          string(party.Leader),
		CreatedAt:       formatTime(party.CreatedAt),
		PresentationRef: string(party.PresentationRef),
		Slots:           slots,
	}
}

func fromSchema(schema partySchema) (domain.Party, error) {
	if schema.ID == "" {
		return domain.Party{}, errors.New("id is required")
	}
	if schema.Leader == "" {
		return domain.Party{}, errors.New("leader is required")
	}

	createdAt, err := parseTime(schema.CreatedAt)
	if err != nil {
		return domain.Party{}, err
	}

	if len(schema.Slots) == 0 {
		return domain.Party{}, errors.New("party has no slots")
	}

	slots := make([]domain.Slot, 0, len(schema.Slots))
	seated := make(map[domain.MemberID]int, len(schema.Slots))
	for i, slot := range schema.Slots {
		occupant, err := fromOccupantSchema(slot)
		if err != nil {
			return domain.Party{}, fmt.Errorf("slot %d: %w", i, err)
		}
		if id, ok := occupant.MemberID(); ok {
			if first, dup := seated[id]; dup {
				return domain.Party{}, fmt.Errorf("member %s holds slots %d and %d", id, first, i)
			}
			seated[id] = i
		}
		slots = append(slots, domain.Slot{Role: slot.Role, Occupant: occupant})
	}

	return domain.Party{
		ID:              domain.PartyID(schema.ID),
		Kind:            domain.Kind(schema.Kind),
		Leader:          domain.MemberID(schema.Leader),
		Slots:           slots,
		CreatedAt:       createdAt,
		PresentationRef: domain.PresentationRef(schema.PresentationRef),
	}, nil
}

func fromOccupantSchema(slot slotSchema) (domain.Occupant, error) {
	switch domain.OccupantType(slot.OccupantType) {
	case "":
		return domain.Occupant{}, nil
	case domain.OccupantMember:
		if slot.Occupant == "" {
			return domain.Occupant{}, errors.New("member occupant without id")
		}
		return domain.Member(domain.MemberID(slot.Occupant)), nil
	case domain.OccupantExternal:
		name := strings.TrimSpace(slot.Occupant)
		if name == "" {
			return domain.Occupant{}, errors.New("external occupant without name")
		}
		return domain.External(name), nil
	default:
		return domain.Occupant{}, fmt.Errorf("unknown occupant type %q", slot.OccupantType)
	}
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("created_at is required")
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}

	return parsed.UTC(), nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}
