package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/kurzickkrozz/GWPB/internal/domain"
)

var ErrMissingToken = errors.New("discord bot token is required")

// Commands builds the application commands registered at startup.
func Commands(catalog domain.Catalog) []*discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(catalog.Templates()))
	for _, tmpl := range catalog.Templates() {
		name := tmpl.Name
		if name == "" {
			name = string(tmpl.Kind)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: string(tmpl.Kind)})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        commandName,
			Description: "Start a party and post its roster",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Which area the party is for",
					Required:    true,
					Choices:     choices,
				},
			},
		},
	}
}

// NewSession creates an unopened gateway session for token.
func NewSession(token string) (*discordgo.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

type BotOptions struct {
	AppID   string
	GuildID string
	Catalog domain.Catalog
	Logger  *slog.Logger
}

// Bot owns the gateway connection and routes interactions to the handler.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	opts    BotOptions
	logger  *slog.Logger
	remove  func()
}

func NewBot(session *discordgo.Session, handler *Handler, opts BotOptions) *Bot {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Bot{session: session, handler: handler, opts: opts, logger: opts.Logger}
}

// Open connects to the gateway and registers the slash commands. Interactions
// are handled with ctx as their parent context.
func (b *Bot) Open(ctx context.Context) error {
	b.remove = b.session.AddHandler(func(_ *discordgo.Session, event *discordgo.InteractionCreate) {
		if err := b.handler.HandleInteraction(ctx, event.Interaction); err != nil {
			b.logger.Error("handle interaction", "interaction_id", event.ID, "error", err)
		}
	})
	b.session.AddHandler(func(_ *discordgo.Session, ready *discordgo.Ready) {
		b.logger.Info("discord session ready", "user", ready.User.Username, "guilds", len(ready.Guilds))
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	appID := b.opts.AppID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.opts.GuildID, Commands(b.opts.Catalog), discordgo.WithContext(ctx)); err != nil {
		_ = b.session.Close()
		return fmt.Errorf("register commands: %w", err)
	}

	b.logger.Info("commands registered", "app_id", appID, "guild_id", b.opts.GuildID)
	return nil
}

func (b *Bot) Close() error {
	if b.remove != nil {
		b.remove()
	}
	return b.session.Close()
}
