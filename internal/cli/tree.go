package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/wire"
)

// TreeCmd returns the tree command
func TreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [page]",
		Short: "Show the box tree of one page or of every page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageRef := ""
			if len(args) == 1 {
				pageRef = args[0]
			}
			return wire.WorkspaceAdapter().Tree(cmd.Context(), pageRef)
		},
	}
}
