package domain

// AvailableSlot is an unoccupied slot, identified by its position.
type AvailableSlot struct {
	Index int
	Role  string
}

// FindByOccupant returns the index of the first slot held by o.
func (p Party) FindByOccupant(o Occupant) (int, bool) {
	for i, slot := range p.Slots {
		if slot.Occupant == o {
			return i, true
		}
	}
	return -1, false
}

// AvailableSlots lists empty slots in ascending index order.
func (p Party) AvailableSlots() []AvailableSlot {
	available := make([]AvailableSlot, 0, len(p.Slots))
	for i, slot := range p.Slots {
		if slot.Occupant.IsEmpty() {
			available = append(available, AvailableSlot{Index: i, Role: slot.Role})
		}
	}
	return available
}

func (p Party) IsFull() bool {
	return p.OccupiedCount() == len(p.Slots)
}

func (p Party) OccupiedCount() int {
	count := 0
	for _, slot := range p.Slots {
		if !slot.Occupant.IsEmpty() {
			count++
		}
	}
	return count
}

// MemberOccupants returns the platform members holding a slot, in slot order.
func (p Party) MemberOccupants() []MemberID {
	members := make([]MemberID, 0, len(p.Slots))
	for _, slot := range p.Slots {
		if id, ok := slot.Occupant.MemberID(); ok {
			members = append(members, id)
		}
	}
	return members
}
