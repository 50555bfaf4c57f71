package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyEmbed(t *testing.T) {
	t.Parallel()

	party := rosterParty(t)
	embed := PartyEmbed(party, domain.DefaultCatalog(), 3*time.Hour)

	assert.Equal(t, colorActive, embed.Color)
	assert.Contains(t, embed.Description, "**T1**: <@100>")
	assert.Contains(t, embed.Description, "**Emo**: _open_")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "2/8", embed.Fields[1].Value)
	assert.Equal(t, "<t:1773529200:R>", embed.Fields[2].Value)
	assert.Equal(t, "Party p-1", embed.Footer.Text)
}

func TestPartyEmbedWithoutTimeoutOrCatalog(t *testing.T) {
	t.Parallel()

	embed := PartyEmbed(rosterParty(t), domain.Catalog{}, 0)

	assert.Equal(t, "uwsc", embed.Title)
	assert.Len(t, embed.Fields, 2)
}

func TestClosedEmbedDisbanded(t *testing.T) {
	t.Parallel()

	embed := ClosedEmbed(domain.PartyEvent{Type: domain.EventDisbanded, Party: rosterParty(t)}, domain.DefaultCatalog())

	assert.Equal(t, colorDisbanded, embed.Color)
	assert.Equal(t, "Party p-1 disbanded", embed.Footer.Text)
}

func TestPartyComponentsCarryPartyID(t *testing.T) {
	t.Parallel()

	rows := PartyComponents("p-1")
	require.Len(t, rows, 2)

	var ids []string
	for _, row := range rows {
		for _, component := range row.(discordgo.ActionsRow).Components {
			ids = append(ids, component.(discordgo.Button).CustomID)
		}
	}
	assert.Equal(t, []string{
		"gwpb:join:p-1", "gwpb:leave:p-1", "gwpb:switch:p-1",
		"gwpb:add:p-1", "gwpb:kick:p-1", "gwpb:promote:p-1", "gwpb:ping:p-1", "gwpb:disband:p-1",
	}, ids)
}

func TestSlotSelectDescribesOccupants(t *testing.T) {
	t.Parallel()

	party := rosterParty(t)
	components := SlotSelect(actionKickSlot, party, occupiedIndexes(party), "Pick")

	menu := components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, "gwpb:kickslot:p-1", menu.CustomID)
	require.Len(t, menu.Options, 2)
	assert.Equal(t, "0", menu.Options[0].Value)
	assert.Equal(t, "member 100", menu.Options[0].Description)
	assert.Equal(t, "7. Pinion", menu.Options[1].Label)
	assert.Equal(t, "Bob", menu.Options[1].Description)
}

func TestCommandsOfferEveryKind(t *testing.T) {
	t.Parallel()

	commands := Commands(domain.DefaultCatalog())
	require.Len(t, commands, 1)
	assert.Equal(t, "party", commands[0].Name)

	choices := commands[0].Options[0].Choices
	require.Len(t, choices, 5)
	assert.Equal(t, "deep", choices[0].Value)
}
