package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartyIDFormat(t *testing.T) {
	t.Parallel()

	id, err := NewPartyID()
	require.NoError(t, err)
	require.Len(t, string(id), 26)
	for _, r := range string(id) {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '2' && r <= '7'), "unexpected character %q", r)
	}

	decoded, err := partyIDEncoding.DecodeString(strings.ToUpper(string(id)))
	require.NoError(t, err)
	assert.Len(t, decoded, 16)
}

func TestNewPartyIDIsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[PartyID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NewPartyID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
