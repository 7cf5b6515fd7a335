package models

// Token is one named design token value.
type Token struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DesignTokens groups the project's design tokens. Slices keep prompt output
// deterministic.
type DesignTokens struct {
	Colors     []Token `json:"colors,omitempty"`
	Spacing    []Token `json:"spacing,omitempty"`
	Typography []Token `json:"typography,omitempty"`
	Radii      []Token `json:"radii,omitempty"`
}

// IsEmpty reports whether no token is defined.
func (t DesignTokens) IsEmpty() bool {
	return len(t.Colors) == 0 && len(t.Spacing) == 0 && len(t.Typography) == 0 && len(t.Radii) == 0
}

// Framework identifiers understood by the prompt engine.
const (
	FrameworkReact  = "react"
	FrameworkVue    = "vue"
	FrameworkSvelte = "svelte"
)

// UILibraryNone disables the UI-library directive.
const UILibraryNone = "none"

// ProjectContext is everything about the target codebase that shapes the
// system prompt.
type ProjectContext struct {
	Framework        string       `json:"framework"`
	Language         string       `json:"language"`
	UILibrary        string       `json:"uiLibrary"`
	Tokens           DesignTokens `json:"tokens"`
	StyleTone        string       `json:"styleTone"`
	Constraints      []string     `json:"constraints,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	NamingConvention string       `json:"namingConvention"`
}

// DefaultProjectContext is used for new projects.
func DefaultProjectContext() ProjectContext {
	return ProjectContext{
		Framework:        FrameworkReact,
		Language:         "typescript",
		UILibrary:        "tailwind",
		StyleTone:        "clean and minimal",
		NamingConvention: "PascalCase components, camelCase props",
	}
}

// Clone returns a deep copy of the context.
func (c ProjectContext) Clone() ProjectContext {
	out := c
	out.Constraints = append([]string(nil), c.Constraints...)
	out.Tokens = DesignTokens{
		Colors:     append([]Token(nil), c.Tokens.Colors...),
		Spacing:    append([]Token(nil), c.Tokens.Spacing...),
		Typography: append([]Token(nil), c.Tokens.Typography...),
		Radii:      append([]Token(nil), c.Tokens.Radii...),
	}
	return out
}
