package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
)

type mockGenerationService struct {
	result   *models.GenerationResult
	revertFn func(ctx context.Context, targetID, versionID string) error
}

var _ primary.GenerationService = (*mockGenerationService)(nil)

func (m *mockGenerationService) GenerateBox(ctx context.Context, boxID string, listener primary.GenerationListener) (*primary.GenerationOutcome, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockGenerationService) GeneratePage(ctx context.Context, pageRef string, listener primary.GenerationListener) (*primary.GenerationOutcome, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockGenerationService) ListVersions(ctx context.Context, targetID string) (*models.GenerationResult, error) {
	if m.result == nil {
		return &models.GenerationResult{TargetID: targetID}, nil
	}
	return m.result, nil
}

func (m *mockGenerationService) Revert(ctx context.Context, targetID, versionID string) error {
	if m.revertFn != nil {
		return m.revertFn(ctx, targetID, versionID)
	}
	return nil
}

func sampleHistory() *models.GenerationResult {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.GenerationResult{
		TargetID: "box-1",
		Current:  &models.GenerationVersion{ID: "v3", Code: "three", CreatedAt: at, Provider: "openai", Model: "gpt-4o"},
		History: []models.GenerationVersion{
			{ID: "v2", Code: "two", CreatedAt: at, Provider: "openai", Model: "gpt-4o"},
			{ID: "v1", Code: "one", CreatedAt: at, Provider: "anthropic", Model: "claude"},
		},
	}
}

func TestGenerationAdapter_ListVersions(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGenerationAdapter(&mockGenerationService{result: sampleHistory()}, &buf)

	if err := adapter.ListVersions(context.Background(), "box-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 versions, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], "v3") {
		t.Errorf("current version not marked first: %q", lines[1])
	}
	if !strings.Contains(lines[3], "anthropic") {
		t.Errorf("oldest version last: %q", lines[3])
	}
}

func TestGenerationAdapter_ListVersionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewGenerationAdapter(&mockGenerationService{}, &buf)

	if err := adapter.ListVersions(context.Background(), "box-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No versions for box-9") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestGenerationAdapter_ShowCurrent(t *testing.T) {
	tests := []struct {
		name      string
		versionID string
		want      string
		wantErr   bool
	}{
		{name: "current", want: "three\n"},
		{name: "history", versionID: "v1", want: "one\n"},
		{name: "unknown", versionID: "v9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			adapter := NewGenerationAdapter(&mockGenerationService{result: sampleHistory()}, &buf)
			err := adapter.ShowCurrent(context.Background(), "box-1", tt.versionID)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestGenerationAdapter_Report(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewGenerationAdapter(&mockGenerationService{}, &buf)
		err := adapter.Report(&primary.GenerationOutcome{RequestID: "r1", Failed: true, Message: "No API key is stored for openai."}, false)
		if err == nil {
			t.Fatal("expected error for failed outcome")
		}
		if !strings.Contains(buf.String(), "✗ No API key") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("success prints code when not streamed", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewGenerationAdapter(&mockGenerationService{}, &buf)
		err := adapter.Report(&primary.GenerationOutcome{
			Targets:  []string{"box-1"},
			Versions: []models.GenerationVersion{{ID: "v1", Code: "<div/>"}},
			Usage:    &models.Usage{InputTokens: 5, OutputTokens: 7},
		}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "<div/>\n") || !strings.Contains(out, "5 in / 7 out tokens") {
			t.Errorf("unexpected output: %q", out)
		}
	})
}

func TestGenerationAdapter_StreamListener(t *testing.T) {
	var buf bytes.Buffer
	listen := NewGenerationAdapter(&mockGenerationService{}, &buf).StreamListener()

	listen(primary.GenerationEvent{Type: primary.EventStarted, RequestID: "r1", Targets: []string{"a", "b"}})
	listen(primary.GenerationEvent{Type: primary.EventChunk, Text: "<di"})
	listen(primary.GenerationEvent{Type: primary.EventChunk, Text: "v/>"})

	if buf.String() != "Generating a, b r1\n<div/>" {
		t.Errorf("output = %q", buf.String())
	}
}
