package reconcile

import (
	"fmt"
	"time"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/decision"
)

type Outcome string

const (
	OutcomeNoop      Outcome = "noop"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeApplied   Outcome = "applied"
	OutcomeFailed    Outcome = "failed"
)

// Result describes one pipeline run.
type Result struct {
	RunID       string             `json:"runId"`
	Outcome     Outcome            `json:"outcome"`
	State       decision.State     `json:"state,omitempty"`
	Observation *anime.Observation `json:"observation,omitempty"`
	Match       *anime.Match       `json:"match,omitempty"`
	// Episode is the absolute episode number that was, or would have been, written.
	Episode int               `json:"episode,omitempty"`
	Saved   *anime.SaveResult `json:"saved,omitempty"`
	SavedAt time.Time         `json:"savedAt,omitempty"`
	Error   string            `json:"error,omitempty"`
	// Attention is set when a write the user expected did not happen.
	Attention bool `json:"attention,omitempty"`
}

func (r *Result) fail(err error) (*Result, error) {
	r.Outcome = OutcomeFailed
	r.Error = err.Error()
	r.Attention = anime.RequiresAttention(err)
	return r, err
}

// Prompt is what a Confirmer is asked about.
type Prompt struct {
	Observation anime.Observation
	Match       anime.Match
	Episode     int
}

// Converted reports whether the episode was shifted by season offsets.
func (p Prompt) Converted() bool {
	return p.Episode != p.Observation.Episode
}

func (p Prompt) String() string {
	msg := fmt.Sprintf("Update %s to episode %d?", p.Match.DisplayTitle, p.Episode)
	if p.Converted() {
		msg += fmt.Sprintf(" (converted from season %d episode %d)", p.Observation.Season, p.Observation.Episode)
	}
	return msg
}
