package cli

import (
	"fmt"

	"bedrock-chat/internal/deploy"

	"github.com/spf13/cobra"
)

func newEnvCommand(opts *options) *cobra.Command {
	var (
		outputsFile string
		stack       string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Write the web client's .env file from the stack outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputsFile == "" {
				outputsFile = opts.app.cfg.Deploy.OutputsFile
			}
			if stack == "" {
				stack = opts.app.cfg.Deploy.StackName
			}
			if outputsFile == "" {
				return fmt.Errorf("no outputs file: pass --outputs or set deploy.outputs_file")
			}

			outputs, err := deploy.LoadOutputs(outputsFile, stack)
			if err != nil {
				return err
			}
			env, err := outputs.Env()
			if err != nil {
				return err
			}
			if err := deploy.WriteEnvFile(outPath, env); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d variables from stack %s to %s\n", len(env), outputs.Stack, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputsFile, "outputs", "", "stack outputs file (defaults to deploy.outputs_file)")
	cmd.Flags().StringVar(&stack, "stack", "", "stack name (defaults to deploy.stack_name)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "web/.env", "env file to write")
	return cmd
}

func newBackupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the session store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.chat.Backup(); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backup written")
			return nil
		},
	}
}
