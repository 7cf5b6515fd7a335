package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/wire"
)

// SharedCmd returns the shared command
func SharedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shared",
		Aliases: []string{"component"},
		Short:   "Manage shared components",
		Long: `Shared components hold one spec and one generated implementation reused by
every attached box. Editing any instance's spec edits them all.`,
	}

	cmd.AddCommand(sharedCreateCmd())
	cmd.AddCommand(sharedListCmd())
	cmd.AddCommand(sharedAttachCmd())
	cmd.AddCommand(sharedDetachCmd())
	cmd.AddCommand(sharedRenameCmd())
	cmd.AddCommand(sharedRmCmd())

	return cmd
}

func sharedCreateCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Promote a box to a shared component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().CreateSharedComponent(cmd.Context(), args[0], from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Box whose spec becomes the component spec (required)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func sharedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List shared components",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().ListSharedComponents(cmd.Context())
		},
	}
}

func sharedAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [component] [box-id]",
		Short: "Make a box an instance of a shared component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().AttachToComponent(cmd.Context(), args[0], args[1]), "Attached %s to %s", args[1], args[0])
		},
	}
}

func sharedDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach [box-id]",
		Short: "Turn an instance back into a plain box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().DetachFromComponent(cmd.Context(), args[0]), "Detached %s", args[0])
		},
	}
}

func sharedRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [component] [name]",
		Short: "Rename a shared component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().RenameSharedComponent(cmd.Context(), args[0], args[1]), "Shared component %s renamed to %s", args[0], args[1])
		},
	}
}

func sharedRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [component]",
		Aliases: []string{"delete"},
		Short:   "Delete a shared component and detach its instances",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().DeleteSharedComponent(cmd.Context(), args[0]), "Deleted shared component %s", args[0])
		},
	}
}
