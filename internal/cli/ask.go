package cli

import (
	"errors"
	"fmt"
	"strings"

	"bedrock-chat/internal/render"
	"bedrock-chat/internal/service"

	"github.com/spf13/cobra"
)

func newAskCommand(opts *options) *cobra.Command {
	var newSession bool

	cmd := &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Send a prompt in the current session and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.requireClient(); err != nil {
				return err
			}

			tr, err := render.NewTerminalRenderer(opts.style, opts.width)
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}

			chat := opts.app.chat
			if newSession {
				chat.CreateSession()
			}

			ctx := cmd.Context()
			sub, err := chat.SubmitPrompt(ctx, strings.Join(args, " "))
			if errors.Is(err, service.ErrEmptyPrompt) {
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, pendingStyle.Render("Thinking..."))

			select {
			case msg := <-sub.Done:
				printMessage(out, tr, opts.app.cfg.Render.CartURL, msg)
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	cmd.Flags().BoolVarP(&newSession, "new", "n", false, "ask in a new session")
	return cmd
}
