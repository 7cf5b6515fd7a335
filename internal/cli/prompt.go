package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/wire"
)

// PromptCmd returns the prompt command
func PromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompts a generation would send",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "system",
		Short: "Print the system prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Prompt(wire.WorkspaceService().SystemPrompt(cmd.Context()))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "page [page]",
		Short: "Print the prompt for a whole page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Prompt(wire.WorkspaceService().PagePrompt(cmd.Context(), args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "box [box-id]",
		Short: "Print the prompt for one box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Prompt(wire.WorkspaceService().BoxPrompt(cmd.Context(), args[0]))
		},
	})

	return cmd
}
