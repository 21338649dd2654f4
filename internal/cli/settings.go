package cli

import (
	"fmt"

	"bedrock-chat/internal/model"

	"github.com/spf13/cobra"
)

func newSettingsCommand(opts *options) *cobra.Command {
	var (
		useRag    bool
		strict    bool
		modelName string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the settings sent with each prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.UpdateSettingsRequest
			if cmd.Flags().Changed("rag") {
				req.UseRag = &useRag
			}
			if cmd.Flags().Changed("strict") {
				req.StrictPrompt = &strict
			}
			if cmd.Flags().Changed("model") {
				req.ModelName = &modelName
			}

			settings, err := opts.app.chat.PatchSettings(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Settings"))
			fmt.Fprintf(out, "  use RAG:       %t\n", settings.UseRag)
			fmt.Fprintf(out, "  strict prompt: %t\n", settings.StrictPrompt)
			fmt.Fprintf(out, "  model:         %s\n", settings.ModelName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useRag, "rag", true, "use retrieval augmentation")
	cmd.Flags().BoolVar(&strict, "strict", false, "restrict answers to the question asked")
	cmd.Flags().StringVar(&modelName, "model", "", "model selector sent with prompts")
	return cmd
}
