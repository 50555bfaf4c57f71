package domain

import "time"

type PartyID string
type MemberID string

// PresentationRef is an opaque handle to the rendered roster message. It is
// empty until the first render has been posted.
type PresentationRef string

type OccupantType string

const (
	OccupantMember   OccupantType = "member"
	OccupantExternal OccupantType = "external"
)

// Occupant is either a platform member or a free-text external player. The
// zero value is "no occupant".
type Occupant struct {
	Type  OccupantType
	Value string
}

func Member(id MemberID) Occupant {
	return Occupant{Type: OccupantMember, Value: string(id)}
}

func External(displayName string) Occupant {
	return Occupant{Type: OccupantExternal, Value: displayName}
}

func (o Occupant) IsEmpty() bool {
	return o.Type == ""
}

func (o Occupant) IsMember() bool {
	return o.Type == OccupantMember
}

func (o Occupant) MemberID() (MemberID, bool) {
	if o.Type != OccupantMember {
		return "", false
	}
	return MemberID(o.Value), true
}

type Slot struct {
	Role     string
	Occupant Occupant
}

type Party struct {
	ID              PartyID
	Kind            Kind
	Leader          MemberID
	Slots           []Slot
	CreatedAt       time.Time
	PresentationRef PresentationRef
}

// NewParty builds an empty roster from a template.
func NewParty(id PartyID, tmpl Template, leader MemberID, createdAt time.Time) Party {
	slots := make([]Slot, len(tmpl.Roles))
	for i, role := range tmpl.Roles {
		slots[i] = Slot{Role: role}
	}

	return Party{
		ID:        id,
		Kind:      tmpl.Kind,
		Leader:    leader,
		Slots:     slots,
		CreatedAt: createdAt,
	}
}

// Clone returns a copy that shares no slot storage with p.
func (p Party) Clone() Party {
	clone := p
	clone.Slots = append([]Slot(nil), p.Slots...)
	return clone
}

func (p Party) IsLeader(id MemberID) bool {
	return p.Leader == id
}

func (p Party) ValidIndex(index int) bool {
	return index >= 0 && index < len(p.Slots)
}

// Deadline is the instant the party expires for a given lifetime.
func (p Party) Deadline(timeout time.Duration) time.Time {
	return p.CreatedAt.Add(timeout)
}
