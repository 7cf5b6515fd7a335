package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/models"
)

// skipInit marks commands that run without an initialized project.
const skipInit = "boxforge/skip-init"

// NeedsProject reports whether cmd requires wire.Init before running.
func NeedsProject(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipInit] == "true" {
			return false
		}
	}
	return true
}

// splitPair parses "key=value" flag values.
func splitPair(flag, s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("invalid --%s %q (want key=value)", flag, s)
	}
	return k, strings.TrimSpace(v), nil
}

// parseStates parses --state hover=... values.
func parseStates(values []string) ([]models.StateDescription, error) {
	out := make([]models.StateDescription, 0, len(values))
	for _, s := range values {
		k, v, err := splitPair("state", s)
		if err != nil {
			return nil, err
		}
		out = append(out, models.StateDescription{State: k, Description: v})
	}
	return out, nil
}

// parseTokens parses --token group.name=value values.
func parseTokens(values []string) (map[string][]models.Token, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string][]models.Token)
	for _, s := range values {
		k, v, err := splitPair("token", s)
		if err != nil {
			return nil, err
		}
		group, name, ok := strings.Cut(k, ".")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --token %q (want group.name=value, e.g. colors.primary=#2563eb)", s)
		}
		out[group] = append(out[group], models.Token{Name: name, Value: v})
	}
	return out, nil
}

// changedString returns &v when the flag was set.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// changedFloat returns &v when the flag was set.
func changedFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}
