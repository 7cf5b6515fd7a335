package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/tui"
	"github.com/example/boxforge/internal/wire"
)

// GenerateCmd returns the generate command
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate component code with the configured AI provider",
		Long: `Generate code for a box or a whole page. The result is recorded as the
target's current version; earlier versions stay in its history.

Examples:
  boxforge generate box BOX-1a2b
  boxforge generate page Home --watch`,
	}
	cmd.PersistentFlags().BoolP("watch", "w", false, "Show a live monitor instead of streaming raw output")

	cmd.AddCommand(&cobra.Command{
		Use:   "box [box-id]",
		Short: "Generate code for one box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boxID := args[0]
			return runGeneration(cmd, "Generating "+boxID, []string{boxID}, func(ctx context.Context, l primary.GenerationListener) (*primary.GenerationOutcome, error) {
				return wire.GenerationService().GenerateBox(ctx, boxID, l)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "page [page]",
		Short: "Generate code for a whole page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageRef := args[0]
			view, err := wire.WorkspaceService().GetTree(cmd.Context(), pageRef)
			if err != nil {
				return err
			}
			var targets []string
			if len(view.Pages) == 1 {
				targets = view.Pages[0].BoxIDs
			}
			return runGeneration(cmd, "Generating page "+pageRef, targets, func(ctx context.Context, l primary.GenerationListener) (*primary.GenerationOutcome, error) {
				return wire.GenerationService().GeneratePage(ctx, pageRef, l)
			})
		},
	})

	return cmd
}

// runGeneration runs fn either behind the live monitor or streaming raw
// chunks to stdout, then reports the outcome.
func runGeneration(cmd *cobra.Command, title string, targets []string, fn tui.RunFunc) error {
	adapter := wire.GenerationAdapter()
	watch, _ := cmd.Flags().GetBool("watch")

	if !watch {
		outcome, err := fn(cmd.Context(), adapter.StreamListener())
		if err != nil {
			return err
		}
		return adapter.Report(outcome, streams())
	}

	labels, err := boxLabels(cmd.Context(), targets)
	if err != nil {
		return err
	}
	outcome, err := tui.Watch(cmd.Context(), tui.New(title, targets, labels), fn)
	if err != nil {
		return err
	}
	if outcome.Failed {
		return fmt.Errorf("generation %s failed: %s", outcome.RequestID, outcome.Message)
	}
	return adapter.Report(outcome, true)
}

// streams reports whether the configured provider output was already
// written chunk by chunk.
func streams() bool {
	cfg, err := wire.ProjectConfig()
	return err == nil && cfg.AI.Stream
}

func boxLabels(ctx context.Context, targets []string) (map[string]string, error) {
	view, err := wire.WorkspaceService().GetTree(ctx, "")
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(targets))
	for _, id := range targets {
		if b, ok := view.Boxes[id]; ok {
			labels[id] = b.Label
		}
	}
	return labels, nil
}
