// Package session owns the interactive caption cycle: the orchestrator that
// holds request state, and the display that derives the bounded history.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// ErrSuperseded is returned by Generate when a newer selection replaced the call.
var ErrSuperseded = errors.New("request superseded by a newer selection")

// Observer is notified with the full state after every transition.
// Observers run while the orchestrator lock is held and must not call back
// into the Orchestrator.
type Observer func(domain.RequestState)

// Outcome reports how one submitted request ended.
type Outcome struct {
	State      domain.RequestState
	Response   domain.CaptionResponse
	Err        error
	Superseded bool
	Duration   time.Duration
}

// CompletionHook runs once per non-superseded request after state is updated.
type CompletionHook func(image domain.ImageFile, out Outcome)

// Orchestrator owns (caption, loading, error) for the current interaction.
//
// Every transition is applied under one mutex and observers see them in
// order. Submitting while a request is in flight cancels it; its late
// result, if any, is discarded.
type Orchestrator struct {
	client  ports.CaptionClient
	metrics ports.MetricsRecorder

	mu         sync.Mutex
	state      domain.RequestState
	generation uint64
	cancel     context.CancelFunc
	observers  []Observer
	hooks      []CompletionHook

	inflight sync.WaitGroup
}

// NewOrchestrator builds an orchestrator around client.
func NewOrchestrator(client ports.CaptionClient, metrics ports.MetricsRecorder) *Orchestrator {
	return &Orchestrator{client: client, metrics: metrics}
}

// Subscribe registers obs and immediately delivers the current state.
func (o *Orchestrator) Subscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
	obs(o.state)
}

// OnComplete registers a hook for finished requests.
func (o *Orchestrator) OnComplete(hook CompletionHook) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hooks = append(o.hooks, hook)
}

// State returns a snapshot of the current request state.
func (o *Orchestrator) State() domain.RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit handles a file selection: it enters Loading, starts the call and
// returns immediately. The channel receives exactly one Outcome.
func (o *Orchestrator) Submit(ctx context.Context, image domain.ImageFile) <-chan Outcome {
	done := make(chan Outcome, 1)
	reqCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.generation++
	gen := o.generation
	o.cancel = cancel
	o.setLocked(domain.LoadingState())
	o.mu.Unlock()

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		defer cancel()
		start := time.Now()
		resp, err := o.client.GenerateCaption(reqCtx, image)
		done <- o.complete(gen, image, resp, err, time.Since(start))
		close(done)
	}()
	return done
}

// Generate submits image and waits for its outcome.
func (o *Orchestrator) Generate(ctx context.Context, image domain.ImageFile) (domain.RequestState, error) {
	out := <-o.Submit(ctx, image)
	if out.Superseded {
		return out.State, ErrSuperseded
	}
	return out.State, out.Err
}

// Cancel aborts the in-flight request, if any. Its outcome is discarded and
// the state returns to idle.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return
	}
	o.cancel()
	o.cancel = nil
	o.generation++
	o.setLocked(domain.RequestState{})
}

// Wait blocks until every started request goroutine has returned.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

func (o *Orchestrator) complete(gen uint64, image domain.ImageFile, resp domain.CaptionResponse, err error, d time.Duration) Outcome {
	o.mu.Lock()
	if gen != o.generation {
		state := o.state
		o.mu.Unlock()
		if o.metrics != nil {
			o.metrics.ObserveRequest("superseded", d)
		}
		return Outcome{State: state, Err: err, Superseded: true, Duration: d}
	}

	o.cancel = nil
	outcome := "success"
	if err != nil {
		outcome = "failure"
		o.setLocked(domain.RequestState{Error: displayMessage(err)})
	} else {
		o.setLocked(domain.RequestState{Caption: resp.Caption})
	}
	out := Outcome{State: o.state, Response: resp, Err: err, Duration: d}
	hooks := append([]CompletionHook(nil), o.hooks...)
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.ObserveRequest(outcome, d)
	}
	for _, hook := range hooks {
		hook(image, out)
	}
	return out
}

func (o *Orchestrator) setLocked(state domain.RequestState) {
	o.state = state
	for _, obs := range o.observers {
		obs(state)
	}
}

func displayMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return domain.MsgCaptionFailed
}
