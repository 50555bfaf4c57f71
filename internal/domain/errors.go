package domain

import "errors"

var (
	ErrPartyNotFound   = errors.New("party not found")
	ErrNotLeader       = errors.New("only the party leader can do that")
	ErrAlreadyAssigned = errors.New("member already holds a role")
	ErrNoCurrentRole   = errors.New("member holds no role")
	ErrSlotTaken       = errors.New("slot already taken")
	ErrEmptySlot       = errors.New("slot is empty")
	ErrPartyFull       = errors.New("party is full")
	ErrInvalidTarget   = errors.New("invalid promotion target")
	ErrInvalidSlot     = errors.New("slot index out of range")
	ErrInvalidName     = errors.New("display name is empty")
	ErrUnknownKind     = errors.New("unknown party kind")
	ErrStoreIO         = errors.New("party store i/o failure")
)
