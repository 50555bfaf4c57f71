package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kurzickkrozz/GWPB/internal/domain"
)

const customIDPrefix = "gwpb"

var (
	ErrInvalidCustomID = errors.New("invalid custom id")
	ErrInvalidRef      = errors.New("invalid presentation ref")
)

// Component actions carried in custom ids. The first group are the roster
// buttons; the second group are the follow-up selects and modals.
const (
	actionJoin    = "join"
	actionLeave   = "leave"
	actionSwitch  = "switch"
	actionAdd     = "add"
	actionKick    = "kick"
	actionPromote = "promote"
	actionPing    = "ping"
	actionDisband = "disband"

	actionJoinSlot   = "joinslot"
	actionSwitchSlot = "switchslot"
	actionAddSlot    = "addslot"
	actionAddName    = "addname"
	actionKickSlot   = "kickslot"
	actionPromoteTo  = "promoteto"
)

type CustomID struct {
	Action  string
	PartyID domain.PartyID
	Arg     string
}

func (c CustomID) String() string {
	parts := []string{customIDPrefix, c.Action, string(c.PartyID)}
	if c.Arg != "" {
		parts = append(parts, c.Arg)
	}
	return strings.Join(parts, ":")
}

// SlotArg returns Arg as a zero-based slot index.
func (c CustomID) SlotArg() (int, error) {
	index, err := strconv.Atoi(c.Arg)
	if err != nil {
		return 0, fmt.Errorf("%w: slot %q", ErrInvalidCustomID, c.Arg)
	}
	return index, nil
}

func newCustomID(action string, partyID domain.PartyID) CustomID {
	return CustomID{Action: action, PartyID: partyID}
}

func ParseCustomID(raw string) (CustomID, error) {
	parts := strings.SplitN(raw, ":", 4)
	if len(parts) < 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return CustomID{}, fmt.Errorf("%w: %q", ErrInvalidCustomID, raw)
	}

	id := CustomID{Action: parts[1], PartyID: domain.PartyID(parts[2])}
	if len(parts) == 4 {
		id.Arg = parts[3]
	}
	return id, nil
}

// EncodeRef packs the roster message location into a presentation ref.
func EncodeRef(channelID, messageID string) domain.PresentationRef {
	return domain.PresentationRef(channelID + "/" + messageID)
}

func ParseRef(ref domain.PresentationRef) (channelID, messageID string, err error) {
	channelID, messageID, ok := strings.Cut(string(ref), "/")
	if !ok || channelID == "" || messageID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return channelID, messageID, nil
}
