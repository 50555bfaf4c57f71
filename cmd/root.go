package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "gwpb",
		Short:         "Guild Wars party builder: a Discord bot for organizing elite-area parties",
		Long:          "gwpb runs a Discord bot that lets members form role-based parties, claim and switch roles, and have abandoned parties expire on their own. It also inspects the saved party state from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wired, err := wireApp(configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.gwpb/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newPartyCmd(app),
		newTokenCmd(app),
	)

	return rootCmd
}
