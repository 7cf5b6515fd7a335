package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/boxforge/internal/models"
)

// Boxes indexes boxes by id.
type Boxes map[string]*models.Box

// Components indexes shared components by id.
type Components map[string]*models.SharedComponent

// ordered resolves ids against boxes and sorts them by Order. Unknown ids
// are skipped; equal orders keep list order.
func ordered(ids []string, boxes Boxes) []*models.Box {
	out := make([]*models.Box, 0, len(ids))
	for _, id := range ids {
		if b, ok := boxes[id]; ok {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// collectShared returns the shared components referenced anywhere under
// roots, deduplicated, in first-seen pre-order.
func collectShared(roots []*models.Box, boxes Boxes, components Components) []*models.SharedComponent {
	seen := make(map[string]bool)
	var out []*models.SharedComponent
	var visit func(b *models.Box)
	visit = func(b *models.Box) {
		if id := b.SharedComponentID; id != "" && !seen[id] {
			seen[id] = true
			if c, ok := components[id]; ok {
				out = append(out, c)
			}
		}
		for _, child := range ordered(b.ChildIDs, boxes) {
			visit(child)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}

func writeSharedSection(w *strings.Builder, comps []*models.SharedComponent) {
	w.WriteString("Shared components (implement each once and reuse it for every instance):\n")
	for _, c := range comps {
		fmt.Fprintf(w, "\n### %s\n", c.Name)
		writeSpecLines(w, "", &c.Spec)
		fmt.Fprintf(w, "Instances: %d\n", len(c.InstanceIDs))
		if c.Code != "" {
			fmt.Fprintf(w, "Existing implementation:\n```\n%s\n```\n", strings.TrimRight(c.Code, "\n"))
		}
	}
}

// writeTree emits one block per node, depth first.
func writeTree(w *strings.Builder, b *models.Box, depth int, boxes Boxes, components Components) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s- %q\n", indent, b.Label)
	inner := indent + "  "

	if b.IsRoot() {
		fmt.Fprintf(w, "%sposition: x=%s, y=%s, size: %sx%s\n",
			inner, num(b.X), num(b.Y), num(b.Width), num(b.Height))
	} else if b.FlexBasis != nil {
		fmt.Fprintf(w, "%sflex: grow %s, basis %spx\n", inner, num(b.FlexGrow), num(*b.FlexBasis))
	} else if b.FlexGrow != 1 {
		fmt.Fprintf(w, "%sflex: grow %s\n", inner, num(b.FlexGrow))
	}

	writeSpecLines(w, inner, b.Spec)

	if b.SharedComponentID != "" {
		name := b.SharedComponentID
		if c, ok := components[b.SharedComponentID]; ok {
			name = c.Name
		}
		fmt.Fprintf(w, "%sshared component instance: render <%s /> from the shared section, do not reimplement it\n", inner, name)
	}

	children := ordered(b.ChildIDs, boxes)
	if len(children) == 0 {
		return
	}
	fmt.Fprintf(w, "%schildren: %d, laid out as %s", inner, len(children), direction(b.Direction))
	if b.Gap > 0 {
		fmt.Fprintf(w, ", gap %spx", num(b.Gap))
	}
	if b.Padding > 0 {
		fmt.Fprintf(w, ", padding %spx", num(b.Padding))
	}
	w.WriteString("\n")
	for _, c := range children {
		writeTree(w, c, depth+1, boxes, components)
	}
}

func writeSpecLines(w *strings.Builder, indent string, s *models.Spec) {
	if s.IsEmpty() {
		return
	}
	if s.Intent != "" {
		fmt.Fprintf(w, "%sintent: %s\n", indent, s.Intent)
	}
	for _, st := range s.States {
		fmt.Fprintf(w, "%sstate %s: %s\n", indent, st.State, st.Description)
	}
	if s.DataShape != "" {
		fmt.Fprintf(w, "%sdata shape: %s\n", indent, s.DataShape)
	}
	if s.Behavior != "" {
		fmt.Fprintf(w, "%sbehavior: %s\n", indent, s.Behavior)
	}
	for _, r := range s.Refinements {
		fmt.Fprintf(w, "%srefinement: %s\n", indent, r)
	}
}

func direction(d models.Direction) string {
	if d == "" {
		return string(models.DirectionColumn)
	}
	return string(d)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
