package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Parties []partySchema `toml:"parties"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported parties schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type partySchema struct {
	ID              string       `toml:"id"`
	Kind            string       `toml:"kind"`
	Leader          string       `toml:"leader"`
	CreatedAt       string       `toml:"created_at"`
	PresentationRef string       `toml:"presentation_ref,omitempty"`
	Slots           []slotSchema `toml:"slots"`
}

type slotSchema struct {
	Role         string `toml:"role"`
	OccupantType string `toml:"occupant_type,omitempty"`
	Occupant     string `toml:"occupant,omitempty"`
}
