// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
)

var (
	idColor     = color.New(color.FgHiBlack)
	pageColor   = color.New(color.FgHiBlue, color.Bold)
	sharedColor = color.New(color.FgHiMagenta)
	intentColor = color.New(color.FgCyan)
	okColor     = color.New(color.FgHiGreen)
	failColor   = color.New(color.FgRed)
)

// WorkspaceAdapter is a thin adapter that translates CLI operations to
// WorkspaceService calls.
type WorkspaceAdapter struct {
	service primary.WorkspaceService
	out     io.Writer
}

// NewWorkspaceAdapter creates a new WorkspaceAdapter with the given service.
func NewWorkspaceAdapter(service primary.WorkspaceService, out io.Writer) *WorkspaceAdapter {
	return &WorkspaceAdapter{
		service: service,
		out:     out,
	}
}

// AddPage creates a page.
func (a *WorkspaceAdapter) AddPage(ctx context.Context, name, route string) error {
	page, err := a.service.AddPage(ctx, primary.AddPageRequest{Name: name, Route: route})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created page %s %s\n", page.Name, idColor.Sprint(page.ID))
	return nil
}

// ListPages lists pages.
func (a *WorkspaceAdapter) ListPages(ctx context.Context) error {
	pages, err := a.service.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}
	if len(pages) == 0 {
		fmt.Fprintln(a.out, "No pages yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first page:")
		fmt.Fprintln(a.out, "  boxforge page add Home --route /")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROUTE\tBOXES\tID")
	for _, p := range pages {
		route := p.Route
		if route == "" {
			route = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Name, route, len(p.BoxIDs), p.ID)
	}
	return w.Flush()
}

// AddBox adds a box.
func (a *WorkspaceAdapter) AddBox(ctx context.Context, req primary.AddBoxRequest) error {
	box, err := a.service.AddBox(ctx, req)
	if err != nil {
		return err
	}
	where := "page " + req.PageRef
	if req.ParentID != "" {
		where = "box " + req.ParentID
	}
	fmt.Fprintf(a.out, "✓ Added %s %s to %s\n", box.Label, idColor.Sprint(box.ID), where)
	return nil
}

// DuplicateBox copies a box.
func (a *WorkspaceAdapter) DuplicateBox(ctx context.Context, boxID string) error {
	box, err := a.service.DuplicateBox(ctx, boxID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Duplicated %s as %s %s\n", boxID, box.Label, idColor.Sprint(box.ID))
	return nil
}

// Done prints a confirmation for a call that returns nothing to show.
func (a *WorkspaceAdapter) Done(err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ "+format+"\n", args...)
	return nil
}

// UpdateSpec edits a spec and prints the result.
func (a *WorkspaceAdapter) UpdateSpec(ctx context.Context, req primary.UpdateSpecRequest) error {
	spec, err := a.service.UpdateBoxSpec(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Spec of %s updated\n", req.BoxID)
	if spec == nil {
		fmt.Fprintln(a.out, "  (empty)")
		return nil
	}
	writeSpec(a.out, spec, "  ")
	return nil
}

func writeSpec(w io.Writer, s *models.Spec, indent string) {
	if s.Intent != "" {
		fmt.Fprintf(w, "%sintent:    %s\n", indent, s.Intent)
	}
	for _, st := range s.States {
		fmt.Fprintf(w, "%sstate:     %s = %s\n", indent, st.State, st.Description)
	}
	if s.DataShape != "" {
		fmt.Fprintf(w, "%sdata:      %s\n", indent, s.DataShape)
	}
	if s.Behavior != "" {
		fmt.Fprintf(w, "%sbehavior:  %s\n", indent, s.Behavior)
	}
	for _, r := range s.Refinements {
		fmt.Fprintf(w, "%srefine:    %s\n", indent, r)
	}
}

// Tree prints pages with their box hierarchy.
func (a *WorkspaceAdapter) Tree(ctx context.Context, pageRef string) error {
	view, err := a.service.GetTree(ctx, pageRef)
	if err != nil {
		return err
	}
	if len(view.Pages) == 0 {
		fmt.Fprintln(a.out, "No pages yet.")
		return nil
	}
	for i, p := range view.Pages {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		header := pageColor.Sprint(p.Name)
		if p.Route != "" {
			header += " " + p.Route
		}
		fmt.Fprintf(a.out, "%s %s\n", header, idColor.Sprint(p.ID))
		for j, id := range p.BoxIDs {
			a.writeBox(view, id, "", j == len(p.BoxIDs)-1)
		}
	}
	return nil
}

func (a *WorkspaceAdapter) writeBox(view *primary.TreeView, id, prefix string, last bool) {
	b, ok := view.Boxes[id]
	if !ok {
		return
	}
	branch, next := "├── ", "│   "
	if last {
		branch, next = "└── ", "    "
	}

	line := fmt.Sprintf("%s%s%s %s", prefix, branch, b.Label, idColor.Sprint(b.ID))
	if b.IsRoot() {
		line += idColor.Sprintf(" @%.0f,%.0f %.0fx%.0f", b.X, b.Y, b.Width, b.Height)
	} else if len(b.ChildIDs) > 0 {
		line += idColor.Sprintf(" %s", b.Direction)
	}
	if b.SharedComponentID != "" {
		name := b.SharedComponentID
		if c, ok := view.Components[b.SharedComponentID]; ok {
			name = c.Name
		}
		line += sharedColor.Sprintf(" [shared:%s]", name)
	}
	if b.Spec != nil && b.Spec.Intent != "" {
		line += " " + intentColor.Sprintf("%q", b.Spec.Intent)
	}
	fmt.Fprintln(a.out, line)

	for i, child := range b.ChildIDs {
		a.writeBox(view, child, prefix+next, i == len(b.ChildIDs)-1)
	}
}

// ListSharedComponents prints shared components with their instance counts.
func (a *WorkspaceAdapter) ListSharedComponents(ctx context.Context) error {
	comps, err := a.service.ListSharedComponents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shared components: %w", err)
	}
	if len(comps) == 0 {
		fmt.Fprintln(a.out, "No shared components.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINSTANCES\tCODE\tID")
	for _, c := range comps {
		code := "-"
		if c.Code != "" {
			code = fmt.Sprintf("%d bytes", len(c.Code))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.Name, len(c.InstanceIDs), code, c.ID)
	}
	return w.Flush()
}

// CreateSharedComponent promotes a box.
func (a *WorkspaceAdapter) CreateSharedComponent(ctx context.Context, name, boxID string) error {
	c, err := a.service.CreateSharedComponent(ctx, name, boxID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created shared component %s %s from %s\n", sharedColor.Sprint(c.Name), idColor.Sprint(c.ID), boxID)
	return nil
}

// ShowContext prints the project context.
func (a *WorkspaceAdapter) ShowContext(ctx context.Context) error {
	pc, err := a.service.GetContext(ctx)
	if err != nil {
		return err
	}
	writeContext(a.out, pc)
	return nil
}

// UpdateContext edits the project context and prints the result.
func (a *WorkspaceAdapter) UpdateContext(ctx context.Context, req primary.UpdateContextRequest) error {
	pc, err := a.service.UpdateContext(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ Project context updated")
	writeContext(a.out, pc)
	return nil
}

func writeContext(out io.Writer, pc *models.ProjectContext) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Framework:\t%s\n", pc.Framework)
	fmt.Fprintf(w, "Language:\t%s\n", pc.Language)
	fmt.Fprintf(w, "UI library:\t%s\n", pc.UILibrary)
	fmt.Fprintf(w, "Style tone:\t%s\n", pc.StyleTone)
	fmt.Fprintf(w, "Naming:\t%s\n", pc.NamingConvention)
	if pc.Notes != "" {
		fmt.Fprintf(w, "Notes:\t%s\n", pc.Notes)
	}
	for _, c := range pc.Constraints {
		fmt.Fprintf(w, "Constraint:\t%s\n", c)
	}
	groups := map[string][]models.Token{
		"colors":     pc.Tokens.Colors,
		"spacing":    pc.Tokens.Spacing,
		"typography": pc.Tokens.Typography,
		"radii":      pc.Tokens.Radii,
	}
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	for _, g := range names {
		for _, t := range groups[g] {
			fmt.Fprintf(w, "Token:\t%s.%s = %s\n", g, t.Name, t.Value)
		}
	}
	_ = w.Flush()
}

// Prompt prints a rendered prompt as is.
func (a *WorkspaceAdapter) Prompt(text string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(a.out)
	}
	return nil
}
