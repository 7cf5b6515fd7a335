package boxtree

import "fmt"

// CheckInvariants verifies the structural invariants of the tree and returns
// the first violation found. Intended for tests and restore-time validation.
func (t *Tree) CheckInvariants() error {
	seen := make(map[string]bool, len(t.boxes))
	var walk func(parentID string, ids []string) error
	walk = func(parentID string, ids []string) error {
		for _, id := range ids {
			b, ok := t.boxes[id]
			if !ok {
				return fmt.Errorf("dangling reference %s under %q", id, parentID)
			}
			if seen[id] {
				return fmt.Errorf("box %s reachable twice", id)
			}
			seen[id] = true
			if b.ParentID != parentID {
				return fmt.Errorf("box %s has parent %q but is listed under %q", id, b.ParentID, parentID)
			}
			if b.Width < MinWidth || b.Height < MinHeight {
				return fmt.Errorf("box %s is %.0fx%.0f, below minimum size", id, b.Width, b.Height)
			}
			if err := walk(id, b.ChildIDs); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("", t.roots); err != nil {
		return err
	}
	if len(seen) != len(t.boxes) {
		return fmt.Errorf("%d boxes unreachable from the root group", len(t.boxes)-len(seen))
	}
	return nil
}

// OrdersDense reports whether every sibling group is numbered 0..n-1 in list order.
func (t *Tree) OrdersDense() bool {
	dense := func(ids []string) bool {
		for i, id := range ids {
			if t.boxes[id].Order != i {
				return false
			}
		}
		return true
	}
	if !dense(t.roots) {
		return false
	}
	for _, b := range t.boxes {
		if !dense(b.ChildIDs) {
			return false
		}
	}
	return true
}
