// Package cli implements chatctl, a terminal client sharing the server's
// configuration, session store and answer endpoint.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

type options struct {
	configPath string
	style      string
	width      int

	app *app
}

// NewRootCommand builds the chatctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Chat with the prompt endpoint from a terminal",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.close()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "./configs/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&opts.style, "style", "", "glamour style for answers (dark, light, notty); detected when empty")
	root.PersistentFlags().IntVar(&opts.width, "width", 80, "wrap answers at this width")

	root.AddCommand(
		newAskCommand(opts),
		newSessionsCommand(opts),
		newNewCommand(opts),
		newUseCommand(opts),
		newRmCommand(opts),
		newClearCommand(opts),
		newShowCommand(opts),
		newSettingsCommand(opts),
		newBackupCommand(opts),
		newEnvCommand(opts),
	)

	return root
}

// Execute runs chatctl. Called from main.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
