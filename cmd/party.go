package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	rosteradapter "github.com/kurzickkrozz/GWPB/internal/adapters/render/roster"
	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/spf13/cobra"
)

func newPartyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party",
		Short: "Inspect saved parties and party templates",
	}

	cmd.AddCommand(
		newPartyListCmd(app),
		newPartyTemplatesCmd(app),
	)

	return cmd
}

type partySlotOutput struct {
	Index        int    `json:"index"`
	Role         string `json:"role"`
	OccupantType string `json:"occupant_type,omitempty"`
	Occupant     string `json:"occupant,omitempty"`
}

type partyOutput struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Leader          string            `json:"leader"`
	CreatedAt       time.Time         `json:"created_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
	PresentationRef string            `json:"presentation_ref,omitempty"`
	Slots           []partySlotOutput `json:"slots"`
}

func newPartyListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the parties in the saved state file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := app.store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load parties from %s: %w", app.store.Path(), err)
			}

			parties := make([]domain.Party, 0, len(stored))
			for _, party := range stored {
				parties = append(parties, party)
			}
			sort.Slice(parties, func(i, j int) bool {
				if parties[i].CreatedAt.Equal(parties[j].CreatedAt) {
					return parties[i].ID < parties[j].ID
				}
				return parties[i].CreatedAt.Before(parties[j].CreatedAt)
			})

			if asJSON {
				return writePartiesJSON(cmd, parties, app.cfg.partyTimeout)
			}

			rendered, err := app.rosterRenderer(parties, rosteradapter.RenderOptions{
				Now:     app.now(),
				Timeout: app.cfg.partyTimeout,
				Catalog: app.catalog,
			})
			if err != nil {
				return fmt.Errorf("render parties: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print parties as JSON")
	return cmd
}

func writePartiesJSON(cmd *cobra.Command, parties []domain.Party, timeout time.Duration) error {
	out := make([]partyOutput, 0, len(parties))
	for _, party := range parties {
		slots := make([]partySlotOutput, 0, len(party.Slots))
		for i, slot := range party.Slots {
			slots = append(slots, partySlotOutput{
				Index:        i,
				Role:         slot.Role,
				OccupantType: string(slot.Occupant.Type),
				Occupant:     slot.Occupant.Value,
			})
		}
		out = append(out, partyOutput{
			ID:              string(party.ID),
			Kind:            string(party.Kind),
			Leader:          string(party.Leader),
			CreatedAt:       party.CreatedAt,
			ExpiresAt:       party.Deadline(timeout),
			PresentationRef: string(party.PresentationRef),
			Slots:           slots,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newPartyTemplatesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the party kinds and their roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), rosteradapter.RenderTemplates(app.catalog))
			return err
		},
	}
}
