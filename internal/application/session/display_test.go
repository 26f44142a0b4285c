package session

import (
	"testing"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
)

func TestDisplayBoundedNewestFirst(t *testing.T) {
	d := NewDisplay()
	var appended int
	d.OnAppend(func([]domain.CaptionResult) { appended++ })

	for _, c := range []string{"one", "two", "three", "four", "five", "six"} {
		d.Observe(domain.LoadingState())
		d.Observe(domain.RequestState{Caption: c})
	}

	want := []string{"six", "five", "four", "three", "two"}
	if got := captions(d.History()); !equal(got, want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	if appended != 6 {
		t.Fatalf("appended = %d, want 6", appended)
	}
	if d.Len() != domain.HistoryCapacity {
		t.Fatalf("Len() = %d", d.Len())
	}
}

func TestDisplayIgnoresLoadingAndErrors(t *testing.T) {
	d := NewDisplay()
	d.Observe(domain.RequestState{Caption: "stale", Loading: true})
	d.Observe(domain.RequestState{Caption: "x", Error: "boom"})
	d.Observe(domain.RequestState{Error: "boom"})

	if d.Len() != 0 {
		t.Fatalf("history = %v", captions(d.History()))
	}
	if st := d.State(); st.Error != "boom" {
		t.Fatalf("State() = %+v", st)
	}
}

func TestDisplayHistoryIsACopy(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDisplay(WithClock(func() time.Time { return stamp }))
	d.Observe(domain.RequestState{Caption: "a cat"})

	h := d.History()
	h[0].Caption = "mutated"
	if got := d.History()[0]; got.Caption != "a cat" || !got.GeneratedAt.Equal(stamp) {
		t.Fatalf("history entry = %+v", got)
	}
}
