package application

import (
	"errors"
	"fmt"

	"github.com/kurzickkrozz/GWPB/internal/domain"
)

const genericFailureNotice = "Something went wrong handling that. Please try again."

var lifecycleErrors = []struct {
	err     error
	message string
}{
	{domain.ErrPartyNotFound, "That party no longer exists. It was disbanded or has expired."},
	{domain.ErrNotLeader, "Only the party leader can do that."},
	{domain.ErrAlreadyAssigned, "You already hold a role in this party. Use Switch or Leave first."},
	{domain.ErrNoCurrentRole, "You don't hold a role in this party yet. Use Join first."},
	{domain.ErrSlotTaken, "That role was just taken by someone else."},
	{domain.ErrEmptySlot, "That role is already empty."},
	{domain.ErrPartyFull, "This party is full."},
	{domain.ErrInvalidTarget, "Only a member seated in the party can be promoted."},
	{domain.ErrInvalidSlot, "That role does not exist in this party."},
	{domain.ErrInvalidName, "Please enter a player name."},
	{domain.ErrUnknownKind, "That party type is not available."},
}

// IsLifecycleError reports whether err is an expected precondition failure.
func IsLifecycleError(err error) bool {
	for _, entry := range lifecycleErrors {
		if errors.Is(err, entry.err) {
			return true
		}
	}
	return false
}

// UserMessage explains err to the member who triggered it.
func UserMessage(err error) string {
	for _, entry := range lifecycleErrors {
		if errors.Is(err, entry.err) {
			return entry.message
		}
	}
	return genericFailureNotice
}

func successNotice(action Action, party domain.Party) string {
	switch action.Op {
	case OpCreate:
		return "Party created. It closes automatically unless disbanded first."
	case OpClaim:
		return fmt.Sprintf("You joined as %s.", roleLabel(party, action.SlotIndex))
	case OpVacate:
		if action.SlotIndex < 0 {
			return "You don't hold a role in this party, so nothing changed."
		}
		return fmt.Sprintf("You left %s.", roleLabel(party, action.SlotIndex))
	case OpSwitch:
		return fmt.Sprintf("You switched to %s.", roleLabel(party, action.SlotIndex))
	case OpExternal:
		return fmt.Sprintf("Added %s as %s.", party.Slots[action.SlotIndex].Occupant.Value, roleLabel(party, action.SlotIndex))
	case OpKick:
		return fmt.Sprintf("Cleared %s.", roleLabel(party, action.SlotIndex))
	case OpPromote:
		return "Leadership transferred."
	case OpDisband:
		return "Party disbanded."
	case OpAttach:
		return ""
	default:
		return "Done."
	}
}

func pingNotice(pinged []domain.MemberID) string {
	if len(pinged) == 0 {
		return "Nobody to ping yet."
	}
	return fmt.Sprintf("Pinged %d member(s).", len(pinged))
}

func roleLabel(party domain.Party, index int) string {
	if !party.ValidIndex(index) {
		return "that role"
	}
	return fmt.Sprintf("%s (slot %d)", party.Slots[index].Role, index+1)
}
