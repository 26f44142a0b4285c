package domain

// Phase names where a request cycle currently sits.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// RequestState is the observable triple owned by the orchestrator.
// An empty Caption or Error means absent.
type RequestState struct {
	Caption string `json:"caption,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Phase derives the cycle position from the three cells.
func (s RequestState) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseFailure
	case s.Caption != "":
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// LoadingState is the state entered when a file is selected.
func LoadingState() RequestState {
	return RequestState{Loading: true}
}
