package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/wire"
)

// ContextCmd returns the context command
func ContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show or edit the project context used in every prompt",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the project context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().ShowContext(cmd.Context())
		},
	})
	cmd.AddCommand(contextSetCmd())

	return cmd
}

func contextSetCmd() *cobra.Command {
	var constraints, tokens []string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Edit the project context",
		Long: `Edit the project context. Constraints and tokens are appended.

Examples:
  boxforge context set --framework svelte --tone "calm, airy"
  boxforge context set --token colors.primary=#2563eb --token spacing.md=16px
  boxforge context set --constraint "no external icon packs"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseTokens(tokens)
			if err != nil {
				return err
			}
			return wire.WorkspaceAdapter().UpdateContext(cmd.Context(), primary.UpdateContextRequest{
				Framework:        changedString(cmd, "framework"),
				Language:         changedString(cmd, "language"),
				UILibrary:        changedString(cmd, "ui-library"),
				StyleTone:        changedString(cmd, "tone"),
				Notes:            changedString(cmd, "notes"),
				NamingConvention: changedString(cmd, "naming"),
				Constraints:      constraints,
				Tokens:           parsed,
			})
		},
	}
	cmd.Flags().String("framework", "", "Target framework")
	cmd.Flags().String("language", "", "Target language")
	cmd.Flags().String("ui-library", "", "UI library")
	cmd.Flags().String("tone", "", "Visual tone")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().String("naming", "", "Component naming convention")
	cmd.Flags().StringArrayVar(&constraints, "constraint", nil, "Constraint to append (repeatable)")
	cmd.Flags().StringArrayVar(&tokens, "token", nil, "Design token as group.name=value (repeatable)")

	return cmd
}
