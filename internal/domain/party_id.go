package domain

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var partyIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewPartyID returns 128 random bits as 26 lowercase base32 characters.
func NewPartyID() (PartyID, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generate party id: %w", err)
	}
	return PartyID(strings.ToLower(partyIDEncoding.EncodeToString(raw[:]))), nil
}
