package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/example/boxforge/internal/models"
)

func TestParseTokens(t *testing.T) {
	got, err := parseTokens([]string{"colors.primary=#2563eb", "spacing.md = 16px", "colors.muted=#64748b"})
	if err != nil {
		t.Fatalf("parseTokens() error = %v", err)
	}
	if len(got["colors"]) != 2 {
		t.Fatalf("colors = %v, want 2 tokens", got["colors"])
	}
	if got["colors"][1] != (models.Token{Name: "muted", Value: "#64748b"}) {
		t.Errorf("colors[1] = %+v", got["colors"][1])
	}
	if got["spacing"][0] != (models.Token{Name: "md", Value: "16px"}) {
		t.Errorf("spacing[0] = %+v", got["spacing"][0])
	}
}

func TestParseTokens_Invalid(t *testing.T) {
	tests := []string{"primary=#fff", "colors.=#fff", "=x", "colors.primary"}
	for _, in := range tests {
		if _, err := parseTokens([]string{in}); err == nil {
			t.Errorf("parseTokens(%q) expected error", in)
		}
	}
}

func TestParseTokens_Empty(t *testing.T) {
	got, err := parseTokens(nil)
	if err != nil || got != nil {
		t.Errorf("parseTokens(nil) = %v, %v, want nil, nil", got, err)
	}
}

func TestParseStates(t *testing.T) {
	got, err := parseStates([]string{"hover=underline", "empty=show a hint"})
	if err != nil {
		t.Fatalf("parseStates() error = %v", err)
	}
	want := []models.StateDescription{
		{State: "hover", Description: "underline"},
		{State: "empty", Description: "show a hint"},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if _, err := parseStates([]string{"hover"}); err == nil {
		t.Error("expected error for state without description")
	}
}

func TestNeedsProject(t *testing.T) {
	root := &cobra.Command{Use: "boxforge"}
	initCmd := InitCmd()
	page := PageCmd()
	root.AddCommand(initCmd, page)

	if NeedsProject(initCmd) {
		t.Error("init should run without a project")
	}
	add, _, err := root.Find([]string{"page", "add"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if !NeedsProject(add) {
		t.Error("page add should need a project")
	}
}

func TestChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("intent", "", "")
	cmd.Flags().Float64("gap", 0, "")
	if err := cmd.Flags().Parse([]string{"--gap", "8"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if changedString(cmd, "intent") != nil {
		t.Error("intent was not set")
	}
	if g := changedFloat(cmd, "gap"); g == nil || *g != 8 {
		t.Errorf("gap = %v, want 8", g)
	}
}
