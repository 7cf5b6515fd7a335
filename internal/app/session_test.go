package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/boxforge/internal/core/generation"
	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/protocol"
)

func deliver(t *testing.T, s *Session, m protocol.Inbound) {
	t.Helper()
	data, err := protocol.EncodeInbound(m)
	require.NoError(t, err)
	s.Deliver(data)
}

func newTestSession(post func([]byte) error) *Session {
	if post == nil {
		post = func([]byte) error { return nil }
	}
	return NewSession(SessionOptions{
		Post:         post,
		NewRequestID: seqIDs("req"),
		Coordinator:  []generation.Option{generation.WithIDFunc(seqIDs("ver"))},
	})
}

func TestSession_DropsUnknownRequests(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(nil)
	defer s.Close()
	ctx := context.Background()

	watch, err := s.Watch(ctx, 8)
	require.NoError(t, err)

	deliver(t, s, protocol.GenerateChunk{ID: "ghost", Text: "x"})
	deliver(t, s, protocol.GenerateComplete{ID: "ghost", Code: "x"})

	n, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	st, err := s.Status(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, generation.StatusIdle, st)

	select {
	case m := <-watch:
		t.Fatalf("dropped message reached a watcher: %v", m)
	default:
	}
}

func TestSession_StreamingBufferAndStatus(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(nil)
	defer s.Close()
	ctx := context.Background()

	id, result, err := s.Submit(ctx, Submission{Targets: []string{"box-1"}, Prompt: "p", Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", id)

	deliver(t, s, protocol.GenerateChunk{ID: id, Text: "<di"})
	deliver(t, s, protocol.GenerateChunk{ID: id, Text: "v/>"})

	require.Eventually(t, func() bool {
		text, _ := s.Buffer(ctx, "box-1")
		return text == "<div/>"
	}, time.Second, 5*time.Millisecond)
	st, _ := s.Status(ctx, "box-1")
	assert.Equal(t, generation.StatusGenerating, st)

	deliver(t, s, protocol.GenerateComplete{ID: id, Code: "<div/>", Usage: &models.Usage{InputTokens: 1, OutputTokens: 2}})
	outcome := <-result
	assert.False(t, outcome.Failed)
	require.Len(t, outcome.Versions, 1)
	assert.Equal(t, "openai", outcome.Versions[0].Provider)

	st, _ = s.Status(ctx, "box-1")
	assert.Equal(t, generation.StatusComplete, st)
}

func TestSession_PostFailureFailsLocally(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(func([]byte) error { return errors.New("pipe closed") })
	defer s.Close()
	ctx := context.Background()

	_, result, err := s.Submit(ctx, Submission{Targets: []string{"box-1"}, Prompt: "p"})
	require.Error(t, err)
	outcome := <-result
	assert.True(t, outcome.Failed)
	assert.Equal(t, "pipe closed", outcome.Message)

	st, _ := s.Status(ctx, "box-1")
	assert.Equal(t, generation.StatusFailed, st)
}

func TestSession_CloseFailsPending(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(nil)

	_, result, err := s.Submit(context.Background(), Submission{Targets: []string{"box-1"}, Prompt: "p"})
	require.NoError(t, err)
	s.Close()

	outcome := <-result
	assert.True(t, outcome.Failed)

	_, _, err = s.Submit(context.Background(), Submission{Targets: []string{"box-1"}})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_SubmitWithoutTargets(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(nil)
	defer s.Close()

	_, _, err := s.Submit(context.Background(), Submission{})
	assert.Error(t, err)
}

func TestSession_AIConfigStripsKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s := newTestSession(nil)
	defer s.Close()
	ctx := context.Background()

	cfg, err := s.AIConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	deliver(t, s, protocol.AIConfigMessage{Config: models.AIConfig{Provider: "openai", Model: "m", HasAPIKey: true}})
	require.Eventually(t, func() bool {
		cfg, _ := s.AIConfig(ctx)
		return cfg != nil
	}, time.Second, 5*time.Millisecond)

	cfg, _ = s.AIConfig(ctx)
	assert.Nil(t, cfg.APIKey)
	assert.True(t, cfg.HasAPIKey)
}
