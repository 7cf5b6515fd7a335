package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/wire"
)

// PageCmd returns the page command
func PageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages (routed screens)",
	}

	cmd.AddCommand(pageAddCmd())
	cmd.AddCommand(pageListCmd())
	cmd.AddCommand(pageRenameCmd())
	cmd.AddCommand(pageRouteCmd())
	cmd.AddCommand(pageLayoutCmd())
	cmd.AddCommand(pageRmCmd())

	return cmd
}

func pageAddCmd() *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().AddPage(cmd.Context(), args[0], route)
		},
	}
	cmd.Flags().StringVar(&route, "route", "", "Route path, e.g. /settings")

	return cmd
}

func pageListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().ListPages(cmd.Context())
		},
	}
}

func pageRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [page] [name]",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := wire.WorkspaceAdapter()
			return a.Done(wire.WorkspaceService().RenamePage(cmd.Context(), args[0], args[1]), "Page %s renamed to %s", args[0], args[1])
		},
	}
}

func pageRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route [page] [route]",
		Short: "Set a page's route",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := wire.WorkspaceAdapter()
			return a.Done(wire.WorkspaceService().SetPageRoute(cmd.Context(), args[0], args[1]), "Page %s now routes to %s", args[0], args[1])
		},
	}
}

func pageLayoutCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "layout [page]",
		Short: "Set the flow direction of a page's root boxes",
		Long: `Set how the page's root boxes flow in the generated page component.

Examples:
  boxforge page layout Home --direction row`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := models.Direction(direction)
			if !dir.Valid() {
				return fmt.Errorf("invalid direction %q (want row or column)", direction)
			}
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().SetPageDirection(cmd.Context(), args[0], dir), "Page %s now flows as a %s", args[0], dir)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "", "Root flow direction (row, column)")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func pageRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [page]",
		Aliases: []string{"delete"},
		Short:   "Delete a page with all of its boxes and their versions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := wire.WorkspaceAdapter()
			return a.Done(wire.WorkspaceService().DeletePage(cmd.Context(), args[0]), "Deleted page %s", args[0])
		},
	}
}
