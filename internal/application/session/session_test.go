package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
)

type scriptedClient struct {
	mu        sync.Mutex
	responses map[string]scriptedReply
	calls     int
}

type scriptedReply struct {
	caption string
	err     error
}

func (c *scriptedClient) GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	c.mu.Lock()
	c.calls++
	reply := c.responses[image.Name]
	c.mu.Unlock()
	if reply.err != nil {
		return domain.CaptionResponse{}, reply.err
	}
	return domain.CaptionResponse{Caption: reply.caption, Success: true}, nil
}

func (c *scriptedClient) CheckHealth(context.Context) (domain.HealthResponse, error) {
	return domain.HealthResponse{Status: "healthy"}, nil
}

// blockingClient holds "slow" uploads until their context is cancelled.
type blockingClient struct {
	started chan struct{}
}

func (c *blockingClient) GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	if image.Name == "slow.jpg" {
		close(c.started)
		<-ctx.Done()
		return domain.CaptionResponse{}, domain.NewCaptionError("Error: "+ctx.Err().Error(), ctx.Err())
	}
	return domain.CaptionResponse{Caption: "a dog", Success: true}, nil
}

func (c *blockingClient) CheckHealth(context.Context) (domain.HealthResponse, error) {
	return domain.HealthResponse{}, nil
}

type recordingArchive struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
}

func (a *recordingArchive) Save(r domain.HistoryRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	lengths  []int
}

func (m *recordingMetrics) ObserveRequest(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ObserveHistoryLength(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lengths = append(m.lengths, n)
}

func (m *recordingMetrics) ObserveCacheLookup(bool) {}

func image(name string) domain.ImageFile {
	return domain.ImageFile{Name: name, ContentType: "image/jpeg", Data: []byte(name)}
}

func captions(history []domain.CaptionResult) []string {
	out := make([]string, len(history))
	for i, h := range history {
		out[i] = h.Caption
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSessionSuccessfulCaptionsBuildHistory(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{
		"cat.jpg": {caption: "a cat"},
		"dog.jpg": {caption: "a dog"},
	}}
	s := New(Options{Client: client})
	ctx := context.Background()

	var seen []domain.Phase
	s.Subscribe(func(st domain.RequestState) { seen = append(seen, st.Phase()) })

	for _, name := range []string{"cat.jpg", "cat.jpg", "dog.jpg"} {
		if _, err := s.Generate(ctx, image(name)); err != nil {
			t.Fatalf("Generate(%s) error = %v", name, err)
		}
	}

	if got, want := captions(s.History()), []string{"a dog", "a cat"}; !equal(got, want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	if st := s.State(); st.Caption != "a dog" || st.Loading || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}
	// initial idle delivery, then loading/success per request
	want := []domain.Phase{domain.PhaseIdle,
		domain.PhaseLoading, domain.PhaseSuccess,
		domain.PhaseLoading, domain.PhaseSuccess,
		domain.PhaseLoading, domain.PhaseSuccess}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestSessionFailureLeavesHistoryUnchanged(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{
		"cat.jpg": {caption: "a cat"},
		"bad.txt": {err: domain.NewCaptionError("File must be an image (JPG, PNG, etc.)", nil)},
	}}
	s := New(Options{Client: client})
	ctx := context.Background()

	if _, err := s.Generate(ctx, image("cat.jpg")); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	st, err := s.Generate(ctx, image("bad.txt"))
	if err == nil {
		t.Fatal("expected error")
	}
	if st.Error != "File must be an image (JPG, PNG, etc.)" || st.Caption != "" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := captions(s.History()); !equal(got, []string{"a cat"}) {
		t.Fatalf("history = %v", got)
	}
}

func TestSessionEmptyErrorMessageFallsBack(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{
		"x.jpg": {err: errors.New("")},
	}}
	s := New(Options{Client: client})

	st, _ := s.Generate(context.Background(), image("x.jpg"))
	if st.Error != domain.MsgCaptionFailed {
		t.Fatalf("Error = %q, want %q", st.Error, domain.MsgCaptionFailed)
	}
}

func TestSessionClearAllowsSameCaptionAgain(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{"cat.jpg": {caption: "a cat"}}}
	metrics := &recordingMetrics{}
	s := New(Options{Client: client, Metrics: metrics})
	ctx := context.Background()

	if _, err := s.Generate(ctx, image("cat.jpg")); err != nil {
		t.Fatal(err)
	}
	s.ClearHistory()
	if n := len(s.History()); n != 0 {
		t.Fatalf("history length after clear = %d", n)
	}
	if _, err := s.Generate(ctx, image("cat.jpg")); err != nil {
		t.Fatal(err)
	}
	if got := captions(s.History()); !equal(got, []string{"a cat"}) {
		t.Fatalf("history = %v", got)
	}
	if !equal(metrics.outcomes, []string{"success", "success"}) {
		t.Fatalf("outcomes = %v", metrics.outcomes)
	}
	if len(metrics.lengths) != 3 || metrics.lengths[1] != 0 {
		t.Fatalf("history lengths = %v", metrics.lengths)
	}
}

func TestSessionNewSelectionSupersedesInFlight(t *testing.T) {
	client := &blockingClient{started: make(chan struct{})}
	metrics := &recordingMetrics{}
	archive := &recordingArchive{}
	s := New(Options{Client: client, Metrics: metrics, Archive: archive})
	ctx := context.Background()

	first := s.Submit(ctx, image("slow.jpg"))
	<-client.started
	st, err := s.Generate(ctx, image("dog.jpg"))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if st.Caption != "a dog" {
		t.Fatalf("state = %+v", st)
	}

	out := <-first
	if !out.Superseded {
		t.Fatalf("first outcome = %+v, want superseded", out)
	}
	s.Wait()

	if got := s.State(); got.Caption != "a dog" || got.Error != "" {
		t.Fatalf("late result leaked into state: %+v", got)
	}
	if got := captions(s.History()); !equal(got, []string{"a dog"}) {
		t.Fatalf("history = %v", got)
	}
	if len(archive.records) != 1 || archive.records[0].Caption != "a dog" {
		t.Fatalf("archive = %+v", archive.records)
	}
}

func TestSessionCancelReturnsToIdle(t *testing.T) {
	client := &blockingClient{started: make(chan struct{})}
	s := New(Options{Client: client})

	done := s.Submit(context.Background(), image("slow.jpg"))
	<-client.started
	s.Cancel()

	if out := <-done; !out.Superseded {
		t.Fatalf("outcome = %+v, want superseded", out)
	}
	if st := s.State(); st.Phase() != domain.PhaseIdle {
		t.Fatalf("state = %+v, want idle", st)
	}
}

func TestSessionArchivesEveryFinishedRequest(t *testing.T) {
	client := &scriptedClient{responses: map[string]scriptedReply{
		"photos/cat.jpg": {caption: "a cat"},
		"dog.jpg":        {err: domain.NewCaptionError("Server error: 500", nil)},
	}}
	archive := &recordingArchive{}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(Options{Client: client, Archive: archive, Clock: func() time.Time { return fixed }})
	ctx := context.Background()

	_, _ = s.Generate(ctx, image("photos/cat.jpg"))
	_, _ = s.Generate(ctx, image("dog.jpg"))
	s.Wait()

	if len(archive.records) != 2 {
		t.Fatalf("records = %d, want 2", len(archive.records))
	}
	ok, failed := archive.records[0], archive.records[1]
	if !ok.Success || ok.Caption != "a cat" || ok.FileName != "cat.jpg" || ok.ID == "" || !ok.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected success record %+v", ok)
	}
	if failed.Success || failed.Error != "Server error: 500" || failed.Caption != "" {
		t.Fatalf("unexpected failure record %+v", failed)
	}
	if ok.ID == failed.ID {
		t.Fatal("record IDs must be unique")
	}
}
