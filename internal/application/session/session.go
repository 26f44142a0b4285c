package session

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// Options wires the collaborators of a Session. Only Client is required.
type Options struct {
	Client  ports.CaptionClient
	Archive ports.HistoryStore
	Prober  ports.ImageProber
	Logger  ports.Logger
	Metrics ports.MetricsRecorder

	// Validate enables local preflight checks before upload.
	Validate bool
	MaxBytes int64

	Clock func() time.Time
}

// Session is one interactive captioning context: an orchestrator, its
// display, and the optional archive of every finished request.
type Session struct {
	orchestrator *Orchestrator
	display      *Display
	archive      ports.HistoryStore
	prober       ports.ImageProber
	logger       ports.Logger
	metrics      ports.MetricsRecorder
	now          func() time.Time
}

// New builds a Session from opts.
func New(opts Options) *Session {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	client := opts.Client
	if opts.Validate {
		client = NewPreflightClient(client, opts.Prober, opts.MaxBytes)
	}

	s := &Session{
		orchestrator: NewOrchestrator(client, opts.Metrics),
		display:      NewDisplay(WithClock(now)),
		archive:      opts.Archive,
		prober:       opts.Prober,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          now,
	}
	s.orchestrator.Subscribe(s.display.Observe)
	if s.metrics != nil {
		s.display.OnAppend(func(h []domain.CaptionResult) {
			s.metrics.ObserveHistoryLength(len(h))
		})
	}
	if s.archive != nil {
		s.orchestrator.OnComplete(s.record)
	}
	return s
}

// Submit starts captioning image; see Orchestrator.Submit.
func (s *Session) Submit(ctx context.Context, image domain.ImageFile) <-chan Outcome {
	s.debug("caption submitted", map[string]interface{}{"file": image.Name, "bytes": image.Size()})
	return s.orchestrator.Submit(ctx, image)
}

// Generate captions image and waits for the result.
func (s *Session) Generate(ctx context.Context, image domain.ImageFile) (domain.RequestState, error) {
	s.debug("caption submitted", map[string]interface{}{"file": image.Name, "bytes": image.Size()})
	return s.orchestrator.Generate(ctx, image)
}

// State returns the current request state.
func (s *Session) State() domain.RequestState {
	return s.orchestrator.State()
}

// History returns the bounded caption history, newest first.
func (s *Session) History() []domain.CaptionResult {
	return s.display.History()
}

// ClearHistory empties the in-memory history. The archive is untouched.
func (s *Session) ClearHistory() {
	s.display.Clear()
	if s.metrics != nil {
		s.metrics.ObserveHistoryLength(0)
	}
}

// Subscribe forwards every state transition to obs.
func (s *Session) Subscribe(obs Observer) {
	s.orchestrator.Subscribe(obs)
}

// Cancel aborts the in-flight request.
func (s *Session) Cancel() {
	s.orchestrator.Cancel()
}

// Wait blocks until in-flight requests have returned and been archived.
func (s *Session) Wait() {
	s.orchestrator.Wait()
}

func (s *Session) record(image domain.ImageFile, out Outcome) {
	rec := domain.HistoryRecord{
		ID:         uuid.NewString(),
		Timestamp:  s.now(),
		FileName:   baseName(image.Name),
		Caption:    out.State.Caption,
		Success:    out.Err == nil,
		Error:      out.State.Error,
		DurationMS: out.Duration.Milliseconds(),
	}
	if s.prober != nil {
		if info, err := s.prober.Probe(image.Data); err == nil {
			rec.Format = info.Format
			rec.Width = info.Width
			rec.Height = info.Height
		}
	}
	if err := s.archive.Save(rec); err != nil && s.logger != nil {
		s.logger.Warn("failed to archive caption", map[string]interface{}{
			"file":  rec.FileName,
			"error": err.Error(),
		})
	}
}

func (s *Session) debug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func baseName(name string) string {
	if name == "" {
		return "upload"
	}
	return filepath.Base(name)
}
