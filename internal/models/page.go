package models

// Page is a routed screen. It owns its root boxes (and through them, every
// descendant) in BoxIDs order.
type Page struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Route     string    `json:"route,omitempty"`
	Direction Direction `json:"direction"`
	BoxIDs    []string  `json:"boxIds"`
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	out := *p
	out.BoxIDs = append([]string(nil), p.BoxIDs...)
	return &out
}

// HasBox reports whether boxID is one of the page's root boxes.
func (p *Page) HasBox(boxID string) bool {
	for _, id := range p.BoxIDs {
		if id == boxID {
			return true
		}
	}
	return false
}

// SharedComponent is a reusable Spec mirrored by every Box in InstanceIDs.
// InstanceIDs is a set; its order carries no meaning.
type SharedComponent struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Spec        Spec     `json:"spec"`
	Code        string   `json:"code,omitempty"`
	InstanceIDs []string `json:"instanceIds"`
}

// HasInstance reports whether boxID mirrors this component.
func (c *SharedComponent) HasInstance(boxID string) bool {
	for _, id := range c.InstanceIDs {
		if id == boxID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the component.
func (c *SharedComponent) Clone() *SharedComponent {
	if c == nil {
		return nil
	}
	out := *c
	out.Spec = *c.Spec.Clone()
	out.InstanceIDs = append([]string(nil), c.InstanceIDs...)
	return &out
}
