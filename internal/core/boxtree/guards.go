package boxtree

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// MoveContext provides context for the move guard.
type MoveContext struct {
	BoxID              string
	NewParentID        string // empty means the root group
	NewParentExists    bool
	ParentIsDescendant bool // NewParentID lies inside BoxID's subtree
}

// CanMove evaluates whether a box can be re-parented.
// Rules:
// - New parent must exist (root group always exists)
// - A box cannot become its own parent
// - A box cannot move under one of its descendants
func CanMove(ctx MoveContext) GuardResult {
	if !ctx.NewParentExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("parent box %s not found", ctx.NewParentID),
		}
	}

	if ctx.NewParentID != "" && ctx.NewParentID == ctx.BoxID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("box %s cannot contain itself", ctx.BoxID),
		}
	}

	if ctx.ParentIsDescendant {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot move box %s under its descendant %s", ctx.BoxID, ctx.NewParentID),
		}
	}

	return GuardResult{Allowed: true}
}
