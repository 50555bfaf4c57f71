package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kurzickkrozz/GWPB/internal/ports"
	"github.com/spf13/cobra"
)

var errEmptyToken = errors.New("token value is empty")

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Discord bot token",
	}

	cmd.AddCommand(
		newTokenSetCmd(app),
		newTokenRemoveCmd(app),
	)

	return cmd
}

func newTokenSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the bot token in the secret store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := strings.TrimSpace(value)
			if token == "" {
				return errEmptyToken
			}
			if err := app.secretStore.Put(cmd.Context(), ports.BotTokenKey, token); err != nil {
				return fmt.Errorf("store bot token: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "bot token stored")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "bot token")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newTokenRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored bot token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secretStore.Delete(cmd.Context(), ports.BotTokenKey); err != nil {
				return fmt.Errorf("remove bot token: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "bot token removed")
			return err
		},
	}
}
