package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/boxforge/internal/models"
)

// RowTolerance is the largest y difference between two root regions that
// still counts as the same visual row.
const RowTolerance = 24.0

// BuildPagePrompt describes a whole page: shared components first, then the
// region tree, then layout reconstruction rules.
func BuildPagePrompt(page *models.Page, boxes Boxes, components Components) string {
	roots := ordered(page.BoxIDs, boxes)
	if len(roots) == 0 {
		return fmt.Sprintf("The page %q has no regions yet. Generate a minimal placeholder page component for it "+
			"with a short visible note that the layout is still empty.", page.Name)
	}

	var w strings.Builder
	fmt.Fprintf(&w, "Generate the page component for %q", page.Name)
	if page.Route != "" {
		fmt.Fprintf(&w, " (route %s)", page.Route)
	}
	fmt.Fprintf(&w, ".\nThe page stacks its top-level regions as %s.\n", direction(page.Direction))

	if shared := collectShared(roots, boxes, components); len(shared) > 0 {
		w.WriteString("\n")
		writeSharedSection(&w, shared)
	}

	w.WriteString("\nRegions:\n")
	for _, r := range roots {
		writeTree(&w, r, 0, boxes, components)
	}

	w.WriteString("\n")
	writeLayoutRules(&w, roots)
	return w.String()
}

func writeLayoutRules(w *strings.Builder, roots []*models.Box) {
	w.WriteString(`Layout reconstruction:
- Top-level positions come from a freeform sketch. Do not reproduce them with absolute positioning.
- Infer document flow from them instead: a region with a lower y value comes earlier on the page.
- Regions with similar y values but different x values sit side by side in the same row, left to right.
- Nested regions already flow inside their parent in the stated direction and order.
- Use flexbox or grid so the page adapts to the viewport.
`)
	w.WriteString("Inferred reading order:\n")
	for i, row := range readingRows(roots) {
		labels := make([]string, len(row))
		for j, b := range row {
			labels[j] = fmt.Sprintf("%q", b.Label)
		}
		fmt.Fprintf(w, "%d. %s", i+1, strings.Join(labels, " | "))
		if len(row) > 1 {
			w.WriteString(" (same row)")
		}
		w.WriteString("\n")
	}
}

// readingRows groups root regions into rows by y, each row sorted by x.
func readingRows(roots []*models.Box) [][]*models.Box {
	sorted := append([]*models.Box(nil), roots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]*models.Box
	var rowY float64
	for _, b := range sorted {
		if len(rows) == 0 || b.Y-rowY > RowTolerance {
			rows = append(rows, []*models.Box{b})
			rowY = b.Y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], b)
	}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// BuildBoxPrompt describes one region and its subtree. When the region
// instantiates a shared component with code, that code is offered as the
// reference implementation.
func BuildBoxPrompt(box *models.Box, boxes Boxes, components Components) string {
	var w strings.Builder
	fmt.Fprintf(&w, "Generate a single component for the region %q.\n", box.Label)

	var own *models.SharedComponent
	if c, ok := components[box.SharedComponentID]; ok {
		own = c
		fmt.Fprintf(&w, "\nThis region is an instance of the shared component %q.", c.Name)
		if c.Code != "" {
			fmt.Fprintf(&w, " Use this reference implementation and keep its public API:\n```\n%s\n```\n",
				strings.TrimRight(c.Code, "\n"))
		} else {
			w.WriteString(" Name the component after it so every instance can reuse it.\n")
		}
	}

	var others []*models.SharedComponent
	for _, c := range collectShared([]*models.Box{box}, boxes, components) {
		if own == nil || c.ID != own.ID {
			others = append(others, c)
		}
	}
	if len(others) > 0 {
		w.WriteString("\n")
		writeSharedSection(&w, others)
	}

	w.WriteString("\nRegion:\n")
	writeTree(&w, box, 0, boxes, components)

	w.WriteString("\nThe component must fill its parent container and lay out its children with flexbox in the stated direction and order.\n")
	return w.String()
}
