package discord

import (
	"testing"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomIDRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []CustomID{
		{Action: actionJoin, PartyID: "abc"},
		{Action: actionAddName, PartyID: "abc", Arg: "3"},
		{Action: actionPromoteTo, PartyID: "abc", Arg: "12:34"},
	}

	for _, want := range tests {
		got, err := ParseCustomID(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, "gwpb:addname:abc:3", tests[1].String())
}

func TestParseCustomIDRejectsForeignIDs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "gwpb", "gwpb:join", "gwpb::abc", "other:join:abc", "gwpb:join:"} {
		_, err := ParseCustomID(raw)
		assert.ErrorIs(t, err, ErrInvalidCustomID, raw)
	}
}

func TestCustomIDSlotArg(t *testing.T) {
	t.Parallel()

	index, err := CustomID{Arg: "7"}.SlotArg()
	require.NoError(t, err)
	assert.Equal(t, 7, index)

	_, err = CustomID{Arg: "seven"}.SlotArg()
	assert.ErrorIs(t, err, ErrInvalidCustomID)
}

func TestPresentationRef(t *testing.T) {
	t.Parallel()

	ref := EncodeRef("chan", "msg")
	assert.Equal(t, "chan/msg", string(ref))

	channelID, messageID, err := ParseRef(ref)
	require.NoError(t, err)
	assert.Equal(t, "chan", channelID)
	assert.Equal(t, "msg", messageID)

	for _, bad := range []string{"", "chan", "/msg", "chan/"} {
		_, _, err := ParseRef(domain.PresentationRef(bad))
		assert.ErrorIs(t, err, ErrInvalidRef, bad)
	}
}
