// Package prompt assembles the exact text sent to a model.
// This is part of the Functional Core - pure functions, no I/O.
//
// Every builder is deterministic: identical inputs yield byte-identical
// output. Section order is fixed.
package prompt

import (
	"fmt"
	"strings"

	"github.com/example/boxforge/internal/models"
)

const roleFraming = "You are an expert frontend engineer. You turn annotated layout sketches into production-ready UI components."

var frameworkNames = map[string]string{
	models.FrameworkReact:  "React",
	models.FrameworkVue:    "Vue",
	models.FrameworkSvelte: "Svelte",
}

var languageNames = map[string]string{
	"typescript": "TypeScript",
	"javascript": "JavaScript",
}

// BuildSystemPrompt renders the project context as a system prompt.
func BuildSystemPrompt(ctx models.ProjectContext) string {
	var sections []string

	sections = append(sections, roleFraming)
	sections = append(sections, fmt.Sprintf("Framework: %s\nLanguage: %s",
		displayName(frameworkNames, ctx.Framework), displayName(languageNames, ctx.Language)))

	if ctx.UILibrary != "" && ctx.UILibrary != models.UILibraryNone {
		sections = append(sections, fmt.Sprintf(
			"UI library: %s. Build with its components and conventions instead of hand-rolled equivalents.", ctx.UILibrary))
	}

	sections = append(sections, tokenSection(ctx.Tokens))

	if ctx.StyleTone != "" {
		sections = append(sections, "Style tone: "+ctx.StyleTone)
	}

	if len(ctx.Constraints) > 0 {
		sections = append(sections, "Constraints:\n"+bullets(ctx.Constraints))
	}

	if notes := strings.TrimSpace(ctx.Notes); notes != "" {
		sections = append(sections, "Notes:\n"+notes)
	}

	if ctx.NamingConvention != "" {
		sections = append(sections, "Naming convention: "+ctx.NamingConvention)
	}

	sections = append(sections, "Output rules:\n"+bullets(outputRules(ctx.Framework)))

	return strings.Join(sections, "\n\n")
}

func tokenSection(t models.DesignTokens) string {
	if t.IsEmpty() {
		return "Design tokens: none defined. Pick values that fit the style tone and use them consistently."
	}
	var b strings.Builder
	b.WriteString("Design tokens:")
	groups := []struct {
		name   string
		tokens []models.Token
	}{
		{"Colors", t.Colors},
		{"Spacing", t.Spacing},
		{"Typography", t.Typography},
		{"Radii", t.Radii},
	}
	for _, g := range groups {
		if len(g.tokens) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:", g.name)
		for _, tok := range g.tokens {
			fmt.Fprintf(&b, "\n- %s: %s", tok.Name, tok.Value)
		}
	}
	return b.String()
}

func outputRules(framework string) []string {
	var rules []string
	switch framework {
	case models.FrameworkReact:
		rules = []string{
			"Write function components with hooks. No class components.",
			"Use a named export for every component. Do not use default exports.",
		}
	case models.FrameworkVue:
		rules = []string{
			"Write single-file components using the Composition API with <script setup>.",
			"Declare props with defineProps and events with defineEmits.",
		}
	case models.FrameworkSvelte:
		rules = []string{
			"Write Svelte 5 components using runes ($state, $derived, $props).",
			"Do not use legacy reactive statements or export let props.",
		}
	default:
		rules = []string{
			"Follow the idiomatic component style of the target framework.",
		}
	}
	return append(rules,
		"Return only the component code in a single code block, with no explanation.",
	)
}

func displayName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
