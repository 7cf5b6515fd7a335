package generation

import "github.com/example/boxforge/internal/models"

// Route describes one outbound request: the targets it feeds and the labels
// recorded on the versions it produces.
type Route struct {
	RequestID string
	Targets   []string
	Prompt    string
	Provider  string
	Model     string
}

// Begin starts every target of route and maps its request id to them.
// A page request maps one id to all of the page's root targets, and every
// inbound message for it is broadcast to all of them. Targets claimed by an
// older request are taken away from it; a request left with no targets is
// abandoned and its late messages are dropped.
func (c *Coordinator) Begin(route Route) {
	route.Targets = append([]string(nil), route.Targets...)
	claimed := make(map[string]bool, len(route.Targets))
	for _, t := range route.Targets {
		claimed[t] = true
		c.Start(t)
	}
	for id, old := range c.routes {
		kept := old.Targets[:0:0]
		for _, t := range old.Targets {
			if !claimed[t] {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(c.routes, id)
			continue
		}
		old.Targets = kept
		c.routes[id] = old
	}
	c.routes[route.RequestID] = route
}

// Lookup returns the route for a request id.
func (c *Coordinator) Lookup(requestID string) (Route, bool) {
	r, ok := c.routes[requestID]
	return r, ok
}

// Pending returns the number of routed requests still awaiting an outcome.
func (c *Coordinator) Pending() int {
	return len(c.routes)
}

// RouteChunk appends text to every target of requestID and returns them.
// Unknown request ids are dropped.
func (c *Coordinator) RouteChunk(requestID, text string) ([]string, bool) {
	r, ok := c.routes[requestID]
	if !ok {
		return nil, false
	}
	for _, t := range r.Targets {
		c.AppendChunk(t, text)
	}
	return r.Targets, true
}

// RouteComplete records code as a new version on every target of
// requestID and removes the route.
func (c *Coordinator) RouteComplete(requestID, code string) ([]models.GenerationVersion, bool) {
	r, ok := c.routes[requestID]
	if !ok {
		return nil, false
	}
	delete(c.routes, requestID)
	versions := make([]models.GenerationVersion, 0, len(r.Targets))
	for _, t := range r.Targets {
		versions = append(versions, c.Complete(t, code, r.Prompt, r.Provider, r.Model))
	}
	return versions, true
}

// RouteError fails every target of requestID and removes the route.
func (c *Coordinator) RouteError(requestID, message string) ([]string, bool) {
	r, ok := c.routes[requestID]
	if !ok {
		return nil, false
	}
	delete(c.routes, requestID)
	for _, t := range r.Targets {
		c.Fail(t, message)
	}
	return r.Targets, true
}
