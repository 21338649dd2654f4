package cli

import (
	"fmt"
	"io"

	"bedrock-chat/internal/model"
	"bedrock-chat/internal/render"

	"github.com/spf13/cobra"
)

func newSessionsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List sessions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Sessions"))
			for _, s := range model.Summaries(opts.app.chat.Snapshot()) {
				marker := "  "
				if s.Current {
					marker = currentStyle.Render("* ")
				}
				fmt.Fprintf(out, "%s%s  %s  %s\n",
					marker, idStyle.Render(s.ID), render.StripControl(s.Name), pendingStyle.Render(fmt.Sprintf("(%d messages)", s.MessageCount)))
			}
			return nil
		},
	}
}

func newNewCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new session and make it current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := opts.app.chat.CreateSession()
			fmt.Fprintf(cmd.OutOrStdout(), "Created session %s\n", idStyle.Render(session.ID))
			return nil
		},
	}
}

func newUseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use <session-id>",
		Short: "Switch the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.chat.SetCurrentSession(args[0]); err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current session is now %s\n", idStyle.Render(args[0]))
			return nil
		},
	}
}

func newRmCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <session-id>",
		Short: "Remove a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.chat.RemoveSession(args[0]); err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s; current is %s\n",
				idStyle.Render(args[0]), idStyle.Render(opts.app.chat.CurrentSession().ID))
			return nil
		},
	}
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every session, leaving one empty session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := opts.app.chat.ClearSessions()
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared; current session is %s\n", idStyle.Render(session.ID))
			return nil
		},
	}
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [session-id]",
		Short: "Print a conversation, the current one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := opts.app.chat.CurrentSession()
			if len(args) == 1 {
				var err error
				if session, err = opts.app.chat.GetSession(args[0]); err != nil {
					return fmt.Errorf("%w: %s", err, args[0])
				}
			}

			tr, err := render.NewTerminalRenderer(opts.style, opts.width)
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n\n", headerStyle.Render(render.StripControl(session.DisplayName())), idStyle.Render(session.ID))
			for _, msg := range session.Conversation {
				printMessage(out, tr, opts.app.cfg.Render.CartURL, msg)
			}
			return nil
		},
	}
}

func printMessage(out io.Writer, tr *render.TerminalRenderer, cartURL string, msg model.Message) {
	if msg.Type == model.MessageTypeUser {
		fmt.Fprintf(out, "%s %s\n\n", promptStyle.Render(">"), render.StripControl(msg.Content))
		return
	}

	switch msg.State {
	case model.MessageStatePending:
		fmt.Fprintln(out, pendingStyle.Render("Thinking..."))
	case model.MessageStateError:
		fmt.Fprintln(out, errorStyle.Render("Error!"))
	default:
		if title := render.StripControl(render.StripTags(msg.ContentTitle)); title != "" {
			fmt.Fprintln(out, titleStyle.Render(title))
		}
		fmt.Fprintln(out, tr.Render(msg.Content, msg.WordsToBold))
		if link := render.SafeLink(msg.ContentLink); link != "" {
			fmt.Fprintf(out, "Source: %s\n", linkStyle.Render(link))
		}
		if cart := render.CartLink(cartURL, msg.CartItems); cart != "" {
			fmt.Fprintf(out, "Add to cart: %s\n", linkStyle.Render(cart))
		}
	}
	fmt.Fprintln(out)
}
