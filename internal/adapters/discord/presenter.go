package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

var _ ports.PartyObserver = (*Presenter)(nil)

type messageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Presenter keeps each party's roster message in step with the party.
type Presenter struct {
	editor  messageEditor
	catalog domain.Catalog
	timeout time.Duration
}

func NewPresenter(editor messageEditor, catalog domain.Catalog, timeout time.Duration) *Presenter {
	return &Presenter{editor: editor, catalog: catalog, timeout: timeout}
}

// PartyChanged edits the roster message. Parties without a rendered message
// yet are skipped; the create flow renders them itself.
func (p *Presenter) PartyChanged(ctx context.Context, event domain.PartyEvent) error {
	if event.Party.PresentationRef == "" || event.Type == domain.EventCreated {
		return nil
	}

	channelID, messageID, err := ParseRef(event.Party.PresentationRef)
	if err != nil {
		return err
	}

	edit := discordgo.NewMessageEdit(channelID, messageID)
	var components []discordgo.MessageComponent
	if event.Terminal() {
		edit.SetEmbeds([]*discordgo.MessageEmbed{ClosedEmbed(event, p.catalog)})
		components = []discordgo.MessageComponent{}
	} else {
		edit.SetEmbeds([]*discordgo.MessageEmbed{PartyEmbed(event.Party, p.catalog, p.timeout)})
		components = PartyComponents(event.Party.ID)
	}
	edit.Components = &components

	if _, err := p.editor.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit roster message %s: %w", messageID, err)
	}
	return nil
}
