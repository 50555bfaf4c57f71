package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurzickkrozz/GWPB/internal/application"
	"github.com/kurzickkrozz/GWPB/internal/domain"
)

const commandName = "party"

var ErrUnsupportedInteraction = errors.New("unsupported interaction")

type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, action application.Action) (application.Result, error)
}

type partyReader interface {
	Get(id domain.PartyID) (domain.Party, error)
}

// Handler turns Discord interactions into router actions and replies to the
// member privately.
type Handler struct {
	api     interactionAPI
	router  dispatcher
	parties partyReader
	catalog domain.Catalog
	timeout time.Duration
	logger  *slog.Logger
}

type HandlerOptions struct {
	Catalog domain.Catalog
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewHandler(api interactionAPI, router dispatcher, parties partyReader, opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		api:     api,
		router:  router,
		parties: parties,
		catalog: opts.Catalog,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// HandleInteraction answers one interaction.
func (h *Handler) HandleInteraction(ctx context.Context, i *discordgo.Interaction) error {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		return h.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		return h.handleModal(ctx, i)
	default:
		return fmt.Errorf("%w: type %d", ErrUnsupportedInteraction, i.Type)
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return fmt.Errorf("%w: command %q", ErrUnsupportedInteraction, data.Name)
	}

	var kind domain.Kind
	for _, option := range data.Options {
		if option.Name == "kind" {
			kind = domain.Kind(option.StringValue())
		}
	}

	result, err := h.router.Dispatch(ctx, application.Action{
		Op:      application.OpCreate,
		ActorID: actorID(i),
		Kind:    kind,
	})
	if err != nil {
		return h.replyError(ctx, i, err)
	}

	message, err := h.api.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{PartyEmbed(result.Party, h.catalog, h.timeout)},
		Components: PartyComponents(result.Party.ID),
	}, discordgo.WithContext(ctx))
	if err != nil {
		h.logger.Error("post roster message", "party_id", result.Party.ID, "channel_id", i.ChannelID, "error", err)
		// Without a roster message nobody can reach the party's buttons.
		if _, err := h.router.Dispatch(ctx, application.Action{
			Op:      application.OpDisband,
			PartyID: result.Party.ID,
			ActorID: result.Party.Leader,
		}); err != nil {
			h.logger.Error("close unposted party", "party_id", result.Party.ID, "error", err)
		}
		return h.reply(ctx, i, "The roster could not be posted in this channel, so the party was closed.")
	}

	attached, err := h.router.Dispatch(ctx, application.Action{
		Op:      application.OpAttach,
		PartyID: result.Party.ID,
		Ref:     EncodeRef(message.ChannelID, message.ID),
	})
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	h.logger.Info("party created", "party_id", attached.Party.ID, "kind", attached.Party.Kind, "leader", attached.Party.Leader)

	return h.reply(ctx, i, result.Notice)
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) error {
	data := i.MessageComponentData()
	id, err := ParseCustomID(data.CustomID)
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	actor := actorID(i)

	switch id.Action {
	case actionLeave:
		return h.dispatchAndReply(ctx, i, application.Action{Op: application.OpVacate, PartyID: id.PartyID, ActorID: actor})
	case actionDisband:
		return h.dispatchAndReply(ctx, i, application.Action{Op: application.OpDisband, PartyID: id.PartyID, ActorID: actor})
	case actionPing:
		return h.ping(ctx, i, id.PartyID, actor)

	case actionJoin:
		return h.offerSlots(ctx, i, id.PartyID, actionJoinSlot, false, availableIndexes, "Pick a role")
	case actionSwitch:
		return h.offerSlots(ctx, i, id.PartyID, actionSwitchSlot, false, availableIndexes, "Pick your new role")
	case actionAdd:
		return h.offerSlots(ctx, i, id.PartyID, actionAddSlot, true, availableIndexes, "Pick the role to fill")
	case actionKick:
		return h.offerSlots(ctx, i, id.PartyID, actionKickSlot, true, occupiedIndexes, "Pick the role to clear")
	case actionPromote:
		return h.offerMembers(ctx, i, id.PartyID)

	case actionJoinSlot, actionSwitchSlot, actionKickSlot:
		index, err := selectedSlot(data.Values)
		if err != nil {
			return h.replyError(ctx, i, err)
		}
		op := map[string]application.Op{
			actionJoinSlot:   application.OpClaim,
			actionSwitchSlot: application.OpSwitch,
			actionKickSlot:   application.OpKick,
		}[id.Action]
		return h.dispatchAndUpdate(ctx, i, application.Action{Op: op, PartyID: id.PartyID, ActorID: actor, SlotIndex: index})
	case actionAddSlot:
		index, err := selectedSlot(data.Values)
		if err != nil {
			return h.replyError(ctx, i, err)
		}
		party, err := h.parties.Get(id.PartyID)
		if err != nil {
			return h.replyError(ctx, i, err)
		}
		if !party.ValidIndex(index) {
			return h.replyError(ctx, i, domain.ErrInvalidSlot)
		}
		return h.api.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: ExternalNameModal(party, index),
		}, discordgo.WithContext(ctx))
	case actionPromoteTo:
		if len(data.Values) != 1 {
			return h.replyError(ctx, i, ErrInvalidCustomID)
		}
		return h.dispatchAndUpdate(ctx, i, application.Action{
			Op:             application.OpPromote,
			PartyID:        id.PartyID,
			ActorID:        actor,
			TargetMemberID: domain.MemberID(data.Values[0]),
		})
	default:
		return h.replyError(ctx, i, fmt.Errorf("%w: action %q", ErrInvalidCustomID, id.Action))
	}
}

func (h *Handler) handleModal(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ModalSubmitData()
	id, err := ParseCustomID(data.CustomID)
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	if id.Action != actionAddName {
		return h.replyError(ctx, i, fmt.Errorf("%w: action %q", ErrInvalidCustomID, id.Action))
	}
	index, err := id.SlotArg()
	if err != nil {
		return h.replyError(ctx, i, err)
	}

	return h.dispatchAndReply(ctx, i, application.Action{
		Op:          application.OpExternal,
		PartyID:     id.PartyID,
		ActorID:     actorID(i),
		SlotIndex:   index,
		DisplayName: textInputValue(data.Components, externalNameInputID),
	})
}

func (h *Handler) ping(ctx context.Context, i *discordgo.Interaction, partyID domain.PartyID, actor domain.MemberID) error {
	result, err := h.router.Dispatch(ctx, application.Action{Op: application.OpPing, PartyID: partyID, ActorID: actor})
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	if len(result.Pinged) == 0 {
		return h.reply(ctx, i, result.Notice)
	}

	users := make([]string, 0, len(result.Pinged))
	mentions := make([]string, 0, len(result.Pinged))
	for _, member := range result.Pinged {
		users = append(users, string(member))
		mentions = append(mentions, "<@"+string(member)+">")
	}
	if _, err := h.api.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content:         "Party is forming: " + strings.Join(mentions, " "),
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: users},
	}, discordgo.WithContext(ctx)); err != nil {
		h.logger.Error("send ping", "party_id", partyID, "error", err)
		return h.replyError(ctx, i, err)
	}
	return h.reply(ctx, i, result.Notice)
}

func (h *Handler) offerSlots(
	ctx context.Context,
	i *discordgo.Interaction,
	partyID domain.PartyID,
	action string,
	leaderOnly bool,
	indexes func(domain.Party) []int,
	placeholder string,
) error {
	party, err := h.parties.Get(partyID)
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	if leaderOnly && !party.IsLeader(actorID(i)) {
		return h.replyError(ctx, i, domain.ErrNotLeader)
	}

	candidates := indexes(party)
	if len(candidates) == 0 {
		if action == actionKickSlot {
			return h.replyError(ctx, i, domain.ErrEmptySlot)
		}
		return h.replyError(ctx, i, domain.ErrPartyFull)
	}

	return h.respond(ctx, i, &discordgo.InteractionResponseData{
		Flags:      discordgo.MessageFlagsEphemeral,
		Components: SlotSelect(action, party, candidates, placeholder),
	})
}

func (h *Handler) offerMembers(ctx context.Context, i *discordgo.Interaction, partyID domain.PartyID) error {
	party, err := h.parties.Get(partyID)
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	if !party.IsLeader(actorID(i)) {
		return h.replyError(ctx, i, domain.ErrNotLeader)
	}
	if len(party.MemberOccupants()) == 0 {
		return h.replyError(ctx, i, domain.ErrInvalidTarget)
	}

	return h.respond(ctx, i, &discordgo.InteractionResponseData{
		Flags:      discordgo.MessageFlagsEphemeral,
		Components: MemberSelect(actionPromoteTo, party, "Pick the new leader"),
	})
}

func (h *Handler) dispatchAndReply(ctx context.Context, i *discordgo.Interaction, action application.Action) error {
	result, err := h.router.Dispatch(ctx, action)
	if err != nil {
		return h.replyError(ctx, i, err)
	}
	return h.reply(ctx, i, result.Notice)
}

// dispatchAndUpdate replaces the private select menu with the outcome.
func (h *Handler) dispatchAndUpdate(ctx context.Context, i *discordgo.Interaction, action application.Action) error {
	var notice string
	result, err := h.router.Dispatch(ctx, action)
	if err != nil {
		notice = application.UserMessage(err)
	} else {
		notice = result.Notice
	}

	return h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    notice,
			Components: []discordgo.MessageComponent{},
		},
	}, discordgo.WithContext(ctx))
}

func (h *Handler) reply(ctx context.Context, i *discordgo.Interaction, content string) error {
	return h.respond(ctx, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (h *Handler) replyError(ctx context.Context, i *discordgo.Interaction, err error) error {
	if !application.IsLifecycleError(err) {
		h.logger.Warn("interaction failed", "interaction_id", i.ID, "error", err)
	}
	return h.reply(ctx, i, application.UserMessage(err))
}

func (h *Handler) respond(ctx context.Context, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func actorID(i *discordgo.Interaction) domain.MemberID {
	if i.Member != nil && i.Member.User != nil {
		return domain.MemberID(i.Member.User.ID)
	}
	if i.User != nil {
		return domain.MemberID(i.User.ID)
	}
	return ""
}

func selectedSlot(values []string) (int, error) {
	if len(values) != 1 {
		return 0, fmt.Errorf("%w: expected one selected slot", ErrInvalidCustomID)
	}
	return CustomID{Arg: values[0]}.SlotArg()
}

func textInputValue(components []discordgo.MessageComponent, customID string) string {
	for _, component := range components {
		var children []discordgo.MessageComponent
		switch row := component.(type) {
		case *discordgo.ActionsRow:
			children = row.Components
		case discordgo.ActionsRow:
			children = row.Components
		}
		for _, child := range children {
			switch input := child.(type) {
			case *discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			case discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			}
		}
	}
	return ""
}
