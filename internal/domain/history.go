package domain

import "time"

// HistoryCapacity bounds the in-memory caption history.
const HistoryCapacity = 5

// AppendIfNew applies the history rule to one observation of the request state.
//
// A new entry is prepended when the state carries a caption, is not loading,
// has no error, and the caption differs from marker (the last caption
// appended). The result is truncated to HistoryCapacity. The input slice is
// never modified. The returned bool reports whether an entry was appended.
func AppendIfNew(history []CaptionResult, marker string, state RequestState, now time.Time) ([]CaptionResult, string, bool) {
	if state.Caption == "" || state.Loading || state.Error != "" || state.Caption == marker {
		return history, marker, false
	}

	size := len(history) + 1
	if size > HistoryCapacity {
		size = HistoryCapacity
	}
	next := make([]CaptionResult, 0, size)
	next = append(next, CaptionResult{Caption: state.Caption, GeneratedAt: now})
	for _, entry := range history {
		if len(next) == HistoryCapacity {
			break
		}
		next = append(next, entry)
	}
	return next, state.Caption, true
}

// HistoryRecord is one archived caption request, successful or not.
type HistoryRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	FileName   string    `json:"file_name"`
	Caption    string    `json:"caption,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Format     string    `json:"format,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
}

// CacheEntry stores a cached caption response keyed by image digest.
type CacheEntry struct {
	Key       string    `json:"key"`
	Caption   string    `json:"caption"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
