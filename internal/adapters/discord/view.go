package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurzickkrozz/GWPB/internal/domain"
)

const (
	colorActive    = 0x2b8a3e
	colorFull      = 0x1971c2
	colorDisbanded = 0x868e96
	colorExpired   = 0xe8590c
)

// PartyEmbed renders the roster of party.
func PartyEmbed(party domain.Party, catalog domain.Catalog, timeout time.Duration) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(party.Slots))
	for i, slot := range party.Slots {
		lines = append(lines, fmt.Sprintf("`%2d` **%s**: %s", i+1, slot.Role, occupantMention(slot.Occupant)))
	}

	color := colorActive
	if party.IsFull() {
		color = colorFull
	}

	embed := &discordgo.MessageEmbed{
		Title:       partyName(party, catalog),
		Description: strings.Join(lines, "\n"),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Leader", Value: "<@" + string(party.Leader) + ">", Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%d/%d", party.OccupiedCount(), len(party.Slots)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Party " + string(party.ID)},
		Timestamp: party.CreatedAt.UTC().Format(time.RFC3339),
	}
	if timeout > 0 {
		deadline := party.Deadline(timeout)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Closes",
			Value:  fmt.Sprintf("<t:%d:R>", deadline.Unix()),
			Inline: true,
		})
	}
	return embed
}

// ClosedEmbed is the final roster shown after a party is disbanded or expires.
func ClosedEmbed(event domain.PartyEvent, catalog domain.Catalog) *discordgo.MessageEmbed {
	embed := PartyEmbed(event.Party, catalog, 0)
	switch event.Type {
	case domain.EventExpired:
		embed.Color = colorExpired
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Party " + string(event.Party.ID) + " expired"}
	default:
		embed.Color = colorDisbanded
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Party " + string(event.Party.ID) + " disbanded"}
	}
	return embed
}

// PartyComponents returns the roster buttons.
func PartyComponents(partyID domain.PartyID) []discordgo.MessageComponent {
	button := func(label, action string, style discordgo.ButtonStyle) discordgo.Button {
		return discordgo.Button{Label: label, Style: style, CustomID: newCustomID(action, partyID).String()}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("Join", actionJoin, discordgo.SuccessButton),
			button("Leave", actionLeave, discordgo.SecondaryButton),
			button("Switch", actionSwitch, discordgo.PrimaryButton),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("Add player", actionAdd, discordgo.SecondaryButton),
			button("Kick", actionKick, discordgo.SecondaryButton),
			button("Promote", actionPromote, discordgo.SecondaryButton),
			button("Ping", actionPing, discordgo.SecondaryButton),
			button("Disband", actionDisband, discordgo.DangerButton),
		}},
	}
}

// SlotSelect offers the given slots of party under action.
func SlotSelect(action string, party domain.Party, indexes []int, placeholder string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(indexes))
	for _, index := range indexes {
		slot := party.Slots[index]
		option := discordgo.SelectMenuOption{
			Label: fmt.Sprintf("%d. %s", index+1, slot.Role),
			Value: strconv.Itoa(index),
		}
		if !slot.Occupant.IsEmpty() {
			option.Description = occupantText(slot.Occupant)
		}
		options = append(options, option)
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    newCustomID(action, party.ID).String(),
				Placeholder: placeholder,
				Options:     options,
			},
		}},
	}
}

// MemberSelect offers the platform members seated in party.
func MemberSelect(action string, party domain.Party, placeholder string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(party.Slots))
	for i, slot := range party.Slots {
		member, ok := slot.Occupant.MemberID()
		if !ok {
			continue
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("%d. %s", i+1, slot.Role),
			Value: string(member),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    newCustomID(action, party.ID).String(),
				Placeholder: placeholder,
				Options:     options,
			},
		}},
	}
}

const externalNameInputID = "name"

// ExternalNameModal asks the leader for the display name of an off-platform player.
func ExternalNameModal(party domain.Party, index int) *discordgo.InteractionResponseData {
	id := CustomID{Action: actionAddName, PartyID: party.ID, Arg: strconv.Itoa(index)}
	return &discordgo.InteractionResponseData{
		CustomID: id.String(),
		Title:    fmt.Sprintf("Add player as %s", party.Slots[index].Role),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    externalNameInputID,
					Label:       "In-game name",
					Style:       discordgo.TextInputShort,
					Placeholder: "Character name",
					Required:    true,
					MaxLength:   32,
				},
			}},
		},
	}
}

func partyName(party domain.Party, catalog domain.Catalog) string {
	if tmpl, err := catalog.Lookup(party.Kind); err == nil && tmpl.Name != "" {
		return tmpl.Name
	}
	return string(party.Kind)
}

func occupantMention(occupant domain.Occupant) string {
	switch {
	case occupant.IsEmpty():
		return "_open_"
	case occupant.IsMember():
		return "<@" + occupant.Value + ">"
	default:
		return occupant.Value + " (external)"
	}
}

func occupantText(occupant domain.Occupant) string {
	if occupant.IsMember() {
		return "member " + occupant.Value
	}
	return occupant.Value
}

func occupiedIndexes(party domain.Party) []int {
	indexes := make([]int, 0, len(party.Slots))
	for i, slot := range party.Slots {
		if !slot.Occupant.IsEmpty() {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func availableIndexes(party domain.Party) []int {
	available := party.AvailableSlots()
	indexes := make([]int, 0, len(available))
	for _, slot := range available {
		indexes = append(indexes, slot.Index)
	}
	return indexes
}
