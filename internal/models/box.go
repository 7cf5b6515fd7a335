// Package models holds the plain data types shared by the core containers,
// the prompt engine and the persistence adapters.
package models

// Direction is the flow direction of a container's children.
type Direction string

const (
	DirectionRow    Direction = "row"
	DirectionColumn Direction = "column"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionRow || d == DirectionColumn
}

// StateDescription describes how a Box looks or behaves in one interaction state.
type StateDescription struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

// Spec is the natural-language intent attached to a Box.
type Spec struct {
	Intent      string             `json:"intent,omitempty"`
	States      []StateDescription `json:"states,omitempty"`
	DataShape   string             `json:"dataShape,omitempty"`
	Behavior    string             `json:"behavior,omitempty"`
	Refinements []string           `json:"refinements,omitempty"`
}

// IsEmpty reports whether the spec carries no information at all.
func (s *Spec) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.Intent == "" && len(s.States) == 0 && s.DataShape == "" &&
		s.Behavior == "" && len(s.Refinements) == 0
}

// Clone returns a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := *s
	out.States = append([]StateDescription(nil), s.States...)
	out.Refinements = append([]string(nil), s.Refinements...)
	return &out
}

// SetState sets the description for state, replacing an existing entry
// in place so the original ordering is kept.
func (s *Spec) SetState(state, description string) {
	for i := range s.States {
		if s.States[i].State == state {
			s.States[i].Description = description
			return
		}
	}
	s.States = append(s.States, StateDescription{State: state, Description: description})
}

// Box is one region of a page layout. A Box with an empty ParentID is a page
// root: only then are X, Y, Width and Height authoritative for layout.
// Nested boxes flow inside their parent using FlexGrow and FlexBasis.
type Box struct {
	ID                string    `json:"id"`
	Label             string    `json:"label"`
	Order             int       `json:"order"`
	FlexGrow          float64   `json:"flexGrow"`
	FlexBasis         *float64  `json:"flexBasis,omitempty"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Width             float64   `json:"width"`
	Height            float64   `json:"height"`
	Direction         Direction `json:"direction"`
	Gap               float64   `json:"gap"`
	Padding           float64   `json:"padding"`
	ParentID          string    `json:"parentId,omitempty"`
	ChildIDs          []string  `json:"childIds"`
	Spec              *Spec     `json:"spec,omitempty"`
	SharedComponentID string    `json:"sharedComponentId,omitempty"`
}

// IsRoot reports whether the box sits directly on the page.
func (b *Box) IsRoot() bool {
	return b.ParentID == ""
}

// Clone returns a deep copy of the box.
func (b *Box) Clone() *Box {
	if b == nil {
		return nil
	}
	out := *b
	if b.FlexBasis != nil {
		basis := *b.FlexBasis
		out.FlexBasis = &basis
	}
	out.ChildIDs = append([]string(nil), b.ChildIDs...)
	out.Spec = b.Spec.Clone()
	return &out
}
