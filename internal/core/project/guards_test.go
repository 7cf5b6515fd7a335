package project

import "testing"

func TestCanCreateSharedComponent(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateComponentContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can create from plain box",
			ctx:         CreateComponentContext{Name: "Nav", BoxID: "BOX-1", BoxExists: true},
			wantAllowed: true,
		},
		{
			name:        "cannot create without name",
			ctx:         CreateComponentContext{BoxID: "BOX-1", BoxExists: true},
			wantAllowed: false,
			wantReason:  "shared component name is required",
		},
		{
			name:        "cannot create with taken name",
			ctx:         CreateComponentContext{Name: "Nav", BoxID: "BOX-1", BoxExists: true, NameTaken: true},
			wantAllowed: false,
			wantReason:  `shared component "Nav" already exists`,
		},
		{
			name:        "cannot create from missing box",
			ctx:         CreateComponentContext{Name: "Nav", BoxID: "BOX-9"},
			wantAllowed: false,
			wantReason:  "box BOX-9 not found",
		},
		{
			name:        "cannot create from existing instance",
			ctx:         CreateComponentContext{Name: "Nav", BoxID: "BOX-1", BoxExists: true, BoxSharedComponent: "SC-1"},
			wantAllowed: false,
			wantReason:  "box BOX-1 already instantiates shared component SC-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreateSharedComponent(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanAttach(t *testing.T) {
	tests := []struct {
		name        string
		ctx         AttachContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can attach free box",
			ctx:         AttachContext{ComponentID: "SC-1", ComponentExists: true, BoxID: "BOX-1", BoxExists: true},
			wantAllowed: true,
		},
		{
			name: "can re-attach to same component",
			ctx: AttachContext{
				ComponentID: "SC-1", ComponentExists: true,
				BoxID: "BOX-1", BoxExists: true, BoxSharedComponent: "SC-1",
			},
			wantAllowed: true,
		},
		{
			name:        "cannot attach to missing component",
			ctx:         AttachContext{ComponentID: "SC-9", BoxID: "BOX-1", BoxExists: true},
			wantAllowed: false,
			wantReason:  "shared component SC-9 not found",
		},
		{
			name:        "cannot attach missing box",
			ctx:         AttachContext{ComponentID: "SC-1", ComponentExists: true, BoxID: "BOX-9"},
			wantAllowed: false,
			wantReason:  "box BOX-9 not found",
		},
		{
			name: "cannot attach box owned by another component",
			ctx: AttachContext{
				ComponentID: "SC-1", ComponentExists: true,
				BoxID: "BOX-1", BoxExists: true, BoxSharedComponent: "SC-2",
			},
			wantAllowed: false,
			wantReason:  "box BOX-1 already instantiates shared component SC-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanAttach(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}
