package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/boxforge/internal/core/generation"
	"github.com/example/boxforge/internal/models"
	"github.com/example/boxforge/internal/ports/primary"
	"github.com/example/boxforge/internal/protocol"
)

// ErrSessionClosed is returned by calls made after Close.
var ErrSessionClosed = errors.New("generation session closed")

// supersededMessage is reported to a request whose every target was taken
// by a newer request.
const supersededMessage = "Generation was superseded by a newer request."

// Completion is a finished request as handed to a CompletedFunc.
type Completion struct {
	// Results holds the updated history of every target.
	Results []*models.GenerationResult
	Code    string

	// Page is set when the code implements a whole page rather than the
	// targets themselves.
	Page bool
}

// CompletedFunc receives a completed request. It runs on the session loop.
type CompletedFunc func(Completion)

// SessionOptions configures a Session.
type SessionOptions struct {
	// Post sends an encoded outbound message to the host.
	Post func([]byte) error

	// Completed persists results. Optional.
	Completed CompletedFunc

	// Coordinator options, e.g. a fixed clock in tests.
	Coordinator []generation.Option

	// NewRequestID overrides request id generation.
	NewRequestID func() string

	// InboxSize bounds undelivered inbound messages.
	InboxSize int

	Logger *zap.Logger
}

// Submission is one generation to start.
type Submission struct {
	Targets  []string
	Prompt   string
	System   string
	Provider string
	Model    string

	Temperature *float64
	MaxTokens   *int
	Stream      *bool

	// History is the persisted version history of the targets, installed
	// before the request starts so new versions stack on top of it.
	History []*models.GenerationResult

	// Page marks a whole-page request broadcast to the page's root boxes.
	Page bool

	Listener primary.GenerationListener
}

// Session is the UI side of the generation protocol. A single goroutine
// owns the coordinator: inbound messages and submissions are both applied
// on it, so the coordinator needs no locking.
type Session struct {
	coord     *generation.Coordinator
	post      func([]byte) error
	completed CompletedFunc
	newID     func() string
	logger    *zap.Logger

	inbox chan []byte
	cmds  chan func()
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	// loop-owned
	pending  map[string]*pendingRequest
	config   *models.AIConfig
	waiters  []chan configReply
	watchers []chan protocol.Inbound
}

type configReply struct {
	config *models.AIConfig
	err    error
}

type pendingRequest struct {
	listener primary.GenerationListener
	result   chan primary.GenerationOutcome
	targets  []string
	page     bool
}

// NewSession starts a session loop.
func NewSession(opts SessionOptions) *Session {
	if opts.InboxSize <= 0 {
		opts.InboxSize = 256
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Session{
		coord:     generation.New(opts.Coordinator...),
		post:      opts.Post,
		completed: opts.Completed,
		newID:     opts.NewRequestID,
		logger:    opts.Logger,
		inbox:     make(chan []byte, opts.InboxSize),
		cmds:      make(chan func()),
		done:      make(chan struct{}),
		pending:   make(map[string]*pendingRequest),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *Session) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.failPending("Generation session closed.")
			return
		case fn := <-s.cmds:
			fn()
		case data := <-s.inbox:
			s.receive(data)
		}
	}
}

// Deliver queues an encoded inbound message. Safe for concurrent use;
// messages of one request must be delivered in order by one caller.
func (s *Session) Deliver(data []byte) {
	select {
	case s.inbox <- data:
	case <-s.done:
	}
}

// do runs fn on the loop and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// Close stops the loop. Requests still pending resolve as failed.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Session) receive(data []byte) {
	m, err := protocol.DecodeInbound(data)
	if err != nil {
		s.logger.Debug("dropping undecodable inbound message", zap.Error(err))
		return
	}
	if err := protocol.DispatchInbound(s, m); err != nil {
		s.logger.Debug("dropping inbound message", zap.String("type", m.Type()), zap.Error(err))
		return
	}
	for _, w := range s.watchers {
		select {
		case w <- m:
		default:
		}
	}
}

// Submit starts a request and returns its id with a channel that yields
// its outcome once.
func (s *Session) Submit(ctx context.Context, sub Submission) (string, <-chan primary.GenerationOutcome, error) {
	if len(sub.Targets) == 0 {
		return "", nil, errors.New("nothing to generate: no targets")
	}
	requestID := s.newID()
	result := make(chan primary.GenerationOutcome, 1)

	err := s.do(ctx, func() {
		for _, h := range sub.History {
			s.install(h)
		}
		s.coord.Begin(generation.Route{
			RequestID: requestID,
			Targets:   sub.Targets,
			Prompt:    sub.Prompt,
			Provider:  sub.Provider,
			Model:     sub.Model,
		})
		s.pending[requestID] = &pendingRequest{
			listener: sub.Listener,
			result:   result,
			targets:  append([]string(nil), sub.Targets...),
			page:     sub.Page,
		}
		s.resolveAbandoned()
		s.logger.Info("generation started",
			zap.String("request_id", requestID),
			zap.Strings("targets", sub.Targets),
			zap.String("provider", sub.Provider),
			zap.String("model", sub.Model))
		s.emit(requestID, primary.GenerationEvent{
			Type:      primary.EventStarted,
			RequestID: requestID,
			Targets:   append([]string(nil), sub.Targets...),
		})
	})
	if err != nil {
		return "", nil, err
	}

	msg, err := protocol.EncodeOutbound(protocol.Generate{
		ID: requestID,
		Payload: protocol.GeneratePayload{
			Prompt:       sub.Prompt,
			SystemPrompt: sub.System,
			Model:        sub.Model,
			Temperature:  sub.Temperature,
			MaxTokens:    sub.MaxTokens,
			Stream:       sub.Stream,
		},
	})
	if err == nil {
		err = s.post(msg)
	}
	if err != nil {
		// The host never saw the request; fail it locally so no target
		// stays generating.
		_ = s.do(context.Background(), func() {
			s.HandleGenerateError(protocol.GenerateError{ID: requestID, Message: err.Error()})
		})
		return requestID, result, fmt.Errorf("failed to send generate request: %w", err)
	}
	return requestID, result, nil
}

// install replaces the in-memory history of a target with the persisted
// one, unless a generation for it is in flight.
func (s *Session) install(r *models.GenerationResult) {
	if r == nil || s.coord.IsGenerating(r.TargetID) {
		return
	}
	s.coord.LoadResult(r)
}

// Revert makes versionID current for the target whose persisted history
// is given and returns the reordered history.
func (s *Session) Revert(ctx context.Context, history *models.GenerationResult, versionID string) (*models.GenerationResult, error) {
	var (
		out *models.GenerationResult
		ok  bool
	)
	err := s.do(ctx, func() {
		s.install(history)
		if ok = s.coord.Revert(history.TargetID, versionID); ok {
			out, _ = s.coord.Result(history.TargetID)
		}
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("version %s not found in the history of %s", versionID, history.TargetID)
	}
	return out, nil
}

// Exchange posts a configuration message and waits for the host's
// aiConfig reply.
func (s *Session) Exchange(ctx context.Context, m protocol.Outbound) (*models.AIConfig, error) {
	reply := make(chan configReply, 1)
	if err := s.do(ctx, func() { s.waiters = append(s.waiters, reply) }); err != nil {
		return nil, err
	}
	data, err := protocol.EncodeOutbound(m)
	if err == nil {
		err = s.post(data)
	}
	if err != nil {
		_ = s.do(context.Background(), func() { s.dropWaiter(reply) })
		return nil, err
	}
	select {
	case r := <-reply:
		return r.config, r.err
	case <-ctx.Done():
		_ = s.do(context.Background(), func() { s.dropWaiter(reply) })
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrSessionClosed
	}
}

func (s *Session) dropWaiter(ch chan configReply) {
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if w != ch {
			kept = append(kept, w)
		}
	}
	s.waiters = kept
}

func (s *Session) resolveWaiters(r configReply) {
	for _, w := range s.waiters {
		w <- r
	}
	s.waiters = nil
}

// resolveAbandoned fails pending requests whose route Begin dropped.
func (s *Session) resolveAbandoned() {
	for id, p := range s.pending {
		if _, ok := s.coord.Lookup(id); ok {
			continue
		}
		delete(s.pending, id)
		s.logger.Debug("generation superseded", zap.String("request_id", id))
		p.result <- primary.GenerationOutcome{
			RequestID: id,
			Targets:   p.targets,
			Failed:    true,
			Message:   supersededMessage,
		}
	}
}

func (s *Session) failPending(message string) {
	for id, p := range s.pending {
		delete(s.pending, id)
		p.result <- primary.GenerationOutcome{RequestID: id, Targets: p.targets, Failed: true, Message: message}
	}
}

func (s *Session) emit(requestID string, ev primary.GenerationEvent) {
	if p, ok := s.pending[requestID]; ok && p.listener != nil {
		p.listener(ev)
	}
}

// --- protocol.InboundHandler, called on the loop ---

// HandleGenerateChunk appends a delta to every target of the request.
func (s *Session) HandleGenerateChunk(m protocol.GenerateChunk) {
	targets, ok := s.coord.RouteChunk(m.ID, m.Text)
	if !ok {
		s.logger.Debug("dropping chunk for unknown request", zap.String("request_id", m.ID))
		return
	}
	s.emit(m.ID, primary.GenerationEvent{
		Type:      primary.EventChunk,
		RequestID: m.ID,
		Targets:   targets,
		Text:      m.Text,
	})
}

// HandleGenerateComplete records a version on every target of the request.
func (s *Session) HandleGenerateComplete(m protocol.GenerateComplete) {
	route, ok := s.coord.Lookup(m.ID)
	if !ok {
		s.logger.Debug("dropping completion for unknown request", zap.String("request_id", m.ID))
		return
	}
	versions, _ := s.coord.RouteComplete(m.ID, m.Code)

	results := make([]*models.GenerationResult, 0, len(route.Targets))
	for _, t := range route.Targets {
		if r, ok := s.coord.Result(t); ok {
			results = append(results, r)
		}
	}
	if s.completed != nil {
		page := false
		if p, ok := s.pending[m.ID]; ok {
			page = p.page
		}
		s.completed(Completion{Results: results, Code: m.Code, Page: page})
	}

	fields := []zap.Field{zap.String("request_id", m.ID), zap.Int("versions", len(versions)), zap.Int("bytes", len(m.Code))}
	if m.Usage != nil {
		fields = append(fields, zap.Int("input_tokens", m.Usage.InputTokens), zap.Int("output_tokens", m.Usage.OutputTokens))
	}
	s.logger.Info("generation complete", fields...)

	s.emit(m.ID, primary.GenerationEvent{
		Type:      primary.EventComplete,
		RequestID: m.ID,
		Targets:   route.Targets,
		Versions:  versions,
		Usage:     m.Usage,
	})
	if p, ok := s.pending[m.ID]; ok {
		delete(s.pending, m.ID)
		p.result <- primary.GenerationOutcome{
			RequestID: m.ID,
			Targets:   route.Targets,
			Versions:  versions,
			Usage:     m.Usage,
		}
	}
}

// HandleGenerateError fails every target of the request.
func (s *Session) HandleGenerateError(m protocol.GenerateError) {
	targets, ok := s.coord.RouteError(m.ID, m.Message)
	if !ok {
		s.logger.Debug("dropping error for unknown request", zap.String("request_id", m.ID))
		return
	}
	s.logger.Warn("generation failed", zap.String("request_id", m.ID), zap.String("message", m.Message))
	s.emit(m.ID, primary.GenerationEvent{
		Type:      primary.EventFailed,
		RequestID: m.ID,
		Targets:   targets,
		Message:   m.Message,
	})
	if p, ok := s.pending[m.ID]; ok {
		delete(s.pending, m.ID)
		p.result <- primary.GenerationOutcome{
			RequestID: m.ID,
			Targets:   targets,
			Failed:    true,
			Message:   m.Message,
		}
	}
}

// HandleAIConfig remembers the host's AI configuration.
func (s *Session) HandleAIConfig(m protocol.AIConfigMessage) {
	cfg := m.Config
	cfg.APIKey = nil
	s.config = &cfg
	reply := cfg
	s.resolveWaiters(configReply{config: &reply})
}

// HandleError logs a host failure.
func (s *Session) HandleError(m protocol.Error) {
	s.logger.Warn("host error", zap.String("message", m.Message))
	s.resolveWaiters(configReply{err: errors.New(m.Message)})
}

// --- queries ---

// Watch returns a channel receiving every inbound message applied after
// the call. Slow watchers miss messages rather than stall the loop.
func (s *Session) Watch(ctx context.Context, size int) (<-chan protocol.Inbound, error) {
	ch := make(chan protocol.Inbound, size)
	err := s.do(ctx, func() { s.watchers = append(s.watchers, ch) })
	return ch, err
}

// AIConfig returns the last configuration reported by the host.
func (s *Session) AIConfig(ctx context.Context) (*models.AIConfig, error) {
	var cfg *models.AIConfig
	err := s.do(ctx, func() {
		if s.config != nil {
			c := *s.config
			cfg = &c
		}
	})
	return cfg, err
}

// Status returns the generation status of a target.
func (s *Session) Status(ctx context.Context, targetID string) (generation.Status, error) {
	var st generation.Status
	err := s.do(ctx, func() { st = s.coord.Status(targetID) })
	return st, err
}

// Buffer returns the streamed text of a target in flight.
func (s *Session) Buffer(ctx context.Context, targetID string) (string, error) {
	var text string
	err := s.do(ctx, func() { text, _ = s.coord.Buffer(targetID) })
	return text, err
}

// Pending returns the number of requests awaiting an outcome.
func (s *Session) Pending(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func() { n = s.coord.Pending() })
	return n, err
}
