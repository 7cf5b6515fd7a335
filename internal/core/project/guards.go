package project

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

// CreateComponentContext provides context for shared component creation.
type CreateComponentContext struct {
	Name               string
	BoxID              string
	BoxExists          bool
	BoxSharedComponent string // current back-reference on the box, if any
	NameTaken          bool
}

// AttachContext provides context for attaching a box to a component.
type AttachContext struct {
	ComponentID        string
	ComponentExists    bool
	BoxID              string
	BoxExists          bool
	BoxSharedComponent string
}

// CanCreateSharedComponent evaluates whether a box can seed a new component.
// Rules:
// - Name must be non-empty and unique
// - Box must exist
// - Box must not already instantiate a component
func CanCreateSharedComponent(ctx CreateComponentContext) GuardResult {
	if ctx.Name == "" {
		return GuardResult{Allowed: false, Reason: "shared component name is required"}
	}

	if ctx.NameTaken {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("shared component %q already exists", ctx.Name),
		}
	}

	if !ctx.BoxExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("box %s not found", ctx.BoxID),
		}
	}

	if ctx.BoxSharedComponent != "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("box %s already instantiates shared component %s", ctx.BoxID, ctx.BoxSharedComponent),
		}
	}

	return GuardResult{Allowed: true}
}

// CanAttach evaluates whether a box can become an instance of a component.
// Rules:
// - Component and box must exist
// - Box must not instantiate a different component (detach first)
func CanAttach(ctx AttachContext) GuardResult {
	if !ctx.ComponentExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("shared component %s not found", ctx.ComponentID),
		}
	}

	if !ctx.BoxExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("box %s not found", ctx.BoxID),
		}
	}

	if ctx.BoxSharedComponent != "" && ctx.BoxSharedComponent != ctx.ComponentID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("box %s already instantiates shared component %s", ctx.BoxID, ctx.BoxSharedComponent),
		}
	}

	return GuardResult{Allowed: true}
}
