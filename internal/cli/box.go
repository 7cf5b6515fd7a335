package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/wire"
)

// BoxCmd returns the box command
func BoxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Manage boxes (layout regions)",
		Long: `Manage boxes: every region of a page is a box. Root boxes sit on the page
canvas; nested boxes flow inside their parent.`,
	}

	cmd.AddCommand(boxAddCmd())
	cmd.AddCommand(boxRmCmd())
	cmd.AddCommand(boxMvCmd())
	cmd.AddCommand(boxResizeCmd())
	cmd.AddCommand(boxPlaceCmd())
	cmd.AddCommand(boxDupCmd())
	cmd.AddCommand(boxRenameCmd())
	cmd.AddCommand(boxSpecCmd())
	cmd.AddCommand(boxLayoutCmd())

	return cmd
}

func boxAddCmd() *cobra.Command {
	var parent, label string

	cmd := &cobra.Command{
		Use:   "add [page]",
		Short: "Add a box to a page",
		Long: `Add a box to a page, as a root box or nested under --parent.

Examples:
  boxforge box add Home
  boxforge box add Home --parent BOX-1a2b --label "Nav links"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().AddBox(cmd.Context(), primary.AddBoxRequest{
				PageRef:  args[0],
				ParentID: parent,
				Label:    label,
			})
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent box ID")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Box label")

	return cmd
}

func boxRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [box-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a box with its descendants",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().DeleteBox(cmd.Context(), args[0]), "Deleted box %s", args[0])
		},
	}
}

func boxMvCmd() *cobra.Command {
	var parent string
	var index int

	cmd := &cobra.Command{
		Use:   "mv [box-id]",
		Short: "Move a box to another parent or position",
		Long: `Move a box. Without --parent the box becomes a root box of its page.

Examples:
  boxforge box mv BOX-1a2b --parent BOX-9f8e --index 0
  boxforge box mv BOX-1a2b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := wire.WorkspaceService().MoveBox(cmd.Context(), primary.MoveBoxRequest{
				BoxID:    args[0],
				ParentID: parent,
				Index:    index,
			})
			dest := "page root"
			if parent != "" {
				dest = parent
			}
			return wire.WorkspaceAdapter().Done(err, "Moved box %s to %s at %d", args[0], dest, index)
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "New parent box ID (empty for page root)")
	cmd.Flags().IntVarP(&index, "index", "i", -1, "Position among siblings (-1 appends)")

	return cmd
}

func boxResizeCmd() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "resize [box-id]",
		Short: "Set a box's size",
		Long: `Set a box's size. Sizes below the minimum are clamped.

Examples:
  boxforge box resize BOX-1a2b --width 320 --height 64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().ResizeBox(cmd.Context(), args[0], width, height), "Resized box %s to %gx%g", args[0], width, height)
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "Width (required)")
	cmd.Flags().Float64Var(&height, "height", 0, "Height (required)")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func boxPlaceCmd() *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "place [box-id]",
		Short: "Set a root box's canvas position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().PlaceBox(cmd.Context(), args[0], x, y), "Placed box %s at %g,%g", args[0], x, y)
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Canvas x")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas y")

	return cmd
}

func boxDupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dup [box-id]",
		Aliases: []string{"duplicate"},
		Short:   "Duplicate a box next to the original",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().DuplicateBox(cmd.Context(), args[0])
		},
	}
}

func boxRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [box-id] [label]",
		Short: "Change a box's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().RenameBox(cmd.Context(), args[0], args[1]), "Renamed box %s to %q", args[0], args[1])
		},
	}
}

func boxSpecCmd() *cobra.Command {
	var states, refinements []string
	var clearSpec bool

	cmd := &cobra.Command{
		Use:   "spec [box-id]",
		Short: "Edit a box's spec (intent, states, data, behavior)",
		Long: `Edit the spec describing what a box should become. Without flags the
current spec is shown. Boxes attached to a shared component update the
component and every other instance.

Examples:
  boxforge box spec BOX-1a2b --intent "Primary navigation"
  boxforge box spec BOX-1a2b --state hover="underline the link" --refine "use icons"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseStates(states)
			if err != nil {
				return err
			}
			return wire.WorkspaceAdapter().UpdateSpec(cmd.Context(), primary.UpdateSpecRequest{
				BoxID:       args[0],
				Intent:      changedString(cmd, "intent"),
				States:      parsed,
				DataShape:   changedString(cmd, "data"),
				Behavior:    changedString(cmd, "behavior"),
				Refinements: refinements,
				Clear:       clearSpec,
			})
		},
	}
	cmd.Flags().String("intent", "", "What the box is for")
	cmd.Flags().StringArrayVar(&states, "state", nil, "State description as state=text (repeatable)")
	cmd.Flags().String("data", "", "Shape of the data the box shows")
	cmd.Flags().String("behavior", "", "How the box behaves")
	cmd.Flags().StringArrayVar(&refinements, "refine", nil, "Refinement note to append (repeatable)")
	cmd.Flags().BoolVar(&clearSpec, "clear", false, "Drop the existing spec first")

	return cmd
}

func boxLayoutCmd() *cobra.Command {
	var clearBasis bool

	cmd := &cobra.Command{
		Use:   "layout [box-id]",
		Short: "Edit a box's flow direction, spacing and flex values",
		Long: `Edit layout values. Direction, gap and padding apply to the box's children;
grow and basis size the box inside its parent.

Examples:
  boxforge box layout BOX-1a2b --direction row --gap 8
  boxforge box layout BOX-1a2b --grow 0 --basis 240`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.UpdateLayoutRequest{
				BoxID:      args[0],
				Gap:        changedFloat(cmd, "gap"),
				Padding:    changedFloat(cmd, "padding"),
				FlexGrow:   changedFloat(cmd, "grow"),
				FlexBasis:  changedFloat(cmd, "basis"),
				ClearBasis: clearBasis,
			}
			if d := changedString(cmd, "direction"); d != nil {
				dir := models.Direction(*d)
				if !dir.Valid() {
					return fmt.Errorf("invalid direction %q (want row or column)", *d)
				}
				req.Direction = &dir
			}
			return wire.WorkspaceAdapter().Done(wire.WorkspaceService().UpdateBoxLayout(cmd.Context(), req), "Updated layout of %s", args[0])
		},
	}
	cmd.Flags().String("direction", "", "Child flow direction (row, column)")
	cmd.Flags().Float64("gap", 0, "Space between children")
	cmd.Flags().Float64("padding", 0, "Inner padding")
	cmd.Flags().Float64("grow", 0, "Flex grow factor")
	cmd.Flags().Float64("basis", 0, "Flex basis")
	cmd.Flags().BoolVar(&clearBasis, "clear-basis", false, "Remove the flex basis")

	return cmd
}
