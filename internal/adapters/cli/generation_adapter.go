package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
)

// GenerationAdapter is a thin adapter that translates CLI operations to
// GenerationService calls.
type GenerationAdapter struct {
	service primary.GenerationService
	out     io.Writer
}

// NewGenerationAdapter creates a new GenerationAdapter with the given service.
func NewGenerationAdapter(service primary.GenerationService, out io.Writer) *GenerationAdapter {
	return &GenerationAdapter{
		service: service,
		out:     out,
	}
}

// StreamListener returns a listener that writes chunks to the output as
// they arrive.
func (a *GenerationAdapter) StreamListener() primary.GenerationListener {
	return func(ev primary.GenerationEvent) {
		switch ev.Type {
		case primary.EventStarted:
			fmt.Fprintf(a.out, "Generating %s %s\n", strings.Join(ev.Targets, ", "), idColor.Sprint(ev.RequestID))
		case primary.EventChunk:
			fmt.Fprint(a.out, ev.Text)
		}
	}
}

// Report prints the outcome of a generation. A failed generation is
// returned as an error so the command exits non-zero.
func (a *GenerationAdapter) Report(outcome *primary.GenerationOutcome, streamed bool) error {
	if outcome.Failed {
		fmt.Fprintln(a.out, failColor.Sprint("✗ "+outcome.Message))
		return fmt.Errorf("generation %s failed", outcome.RequestID)
	}
	if streamed {
		fmt.Fprintln(a.out)
	} else if len(outcome.Versions) > 0 {
		fmt.Fprintln(a.out, outcome.Versions[0].Code)
	}
	usage := ""
	if outcome.Usage != nil {
		usage = fmt.Sprintf(" (%d in / %d out tokens)", outcome.Usage.InputTokens, outcome.Usage.OutputTokens)
	}
	fmt.Fprintln(a.out, okColor.Sprintf("✓ Recorded %d version(s) for %s%s", len(outcome.Versions), strings.Join(outcome.Targets, ", "), usage))
	return nil
}

// ListVersions prints a target's version history, current first.
func (a *GenerationAdapter) ListVersions(ctx context.Context, targetID string) error {
	r, err := a.service.ListVersions(ctx, targetID)
	if err != nil {
		return err
	}
	if r.Current == nil {
		fmt.Fprintf(a.out, "No versions for %s.\n", targetID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tCREATED\tPROVIDER\tMODEL\tSIZE")
	writeVersion(w, okColor.Sprint("*"), r.Current)
	for i := range r.History {
		writeVersion(w, " ", &r.History[i])
	}
	return w.Flush()
}

func writeVersion(w io.Writer, marker string, v *models.GenerationVersion) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", marker, v.ID, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Provider, v.Model, len(v.Code))
}

// ShowCurrent prints the current code of a target, or of a specific
// version when versionID is set.
func (a *GenerationAdapter) ShowCurrent(ctx context.Context, targetID, versionID string) error {
	r, err := a.service.ListVersions(ctx, targetID)
	if err != nil {
		return err
	}
	if r.Current == nil {
		return fmt.Errorf("%s has no generated versions", targetID)
	}
	if versionID == "" || versionID == r.Current.ID {
		fmt.Fprintln(a.out, r.Current.Code)
		return nil
	}
	for _, v := range r.History {
		if v.ID == versionID {
			fmt.Fprintln(a.out, v.Code)
			return nil
		}
	}
	return fmt.Errorf("version %s not found for %s", versionID, targetID)
}

// Revert makes a version current.
func (a *GenerationAdapter) Revert(ctx context.Context, targetID, versionID string) error {
	if err := a.service.Revert(ctx, targetID, versionID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ %s now uses version %s\n", targetID, versionID)
	return nil
}
