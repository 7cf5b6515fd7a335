package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/wire"
)

// VersionsCmd returns the version command
func VersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"versions"},
		Short:   "Inspect and revert generated code versions",
		Long: `Every generation records a version per target (a box or shared component).
The current version is marked with *.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list [target-id]",
		Aliases: []string{"ls"},
		Short:   "List a target's versions, current first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenerationAdapter().ListVersions(cmd.Context(), args[0])
		},
	})
	cmd.AddCommand(versionShowCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "revert [target-id] [version-id]",
		Short: "Make a history version current again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenerationAdapter().Revert(cmd.Context(), args[0], args[1])
		},
	})

	return cmd
}

func versionShowCmd() *cobra.Command {
	var versionID string

	cmd := &cobra.Command{
		Use:   "show [target-id]",
		Short: "Print the code of the current version, or of --version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenerationAdapter().ShowCurrent(cmd.Context(), args[0], versionID)
		},
	}
	cmd.Flags().StringVar(&versionID, "version", "", "Version ID to print")

	return cmd
}
