package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kurzickkrozz/GWPB/internal/adapters/discord"
	"github.com/kurzickkrozz/GWPB/internal/application"
	"github.com/kurzickkrozz/GWPB/internal/ports"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.serve(ctx, cmd.ErrOrStderr())
		},
	}
}

// serve restores saved parties, connects to Discord and blocks until ctx
// ends. The final snapshot is written after the gateway closes.
func (a *app) serve(ctx context.Context, progress io.Writer) error {
	token, err := a.cfg.resolveBotToken(ctx, a.secretStore)
	if err != nil {
		return err
	}

	session, err := discord.NewSession(token)
	if err != nil {
		return err
	}

	manager := application.NewManager(a.store, application.ManagerOptions{
		Catalog:  a.catalog,
		Observer: discord.NewPresenter(session, a.catalog, a.cfg.partyTimeout),
		Clock:    ports.SystemClock{},
		Timeout:  a.cfg.partyTimeout,
		Logger:   a.logger,
	})
	if err := manager.Restore(ctx); err != nil {
		return fmt.Errorf("restore parties: %w", err)
	}

	handler := discord.NewHandler(session, application.NewRouter(manager, a.logger), manager, discord.HandlerOptions{
		Catalog: a.catalog,
		Timeout: a.cfg.partyTimeout,
		Logger:  a.logger,
	})
	bot := discord.NewBot(session, handler, discord.BotOptions{
		AppID:   a.cfg.appID,
		GuildID: a.cfg.guildID,
		Catalog: a.catalog,
		Logger:  a.logger,
	})
	if err := runStep(ctx, progress, "Connecting to Discord...", bot.Open); err != nil {
		_ = manager.Shutdown(context.WithoutCancel(ctx))
		return err
	}

	a.logger.Info("serving", "state_path", a.store.Path(), "party_timeout", a.cfg.partyTimeout)
	<-ctx.Done()
	a.logger.Info("shutting down")

	closeErr := bot.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("close discord session: %w", closeErr)
	}
	saveErr := manager.Shutdown(context.WithoutCancel(ctx))
	if saveErr != nil {
		saveErr = fmt.Errorf("save parties: %w", saveErr)
	}
	return errors.Join(closeErr, saveErr)
}
