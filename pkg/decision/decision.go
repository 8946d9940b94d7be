// Package decision decides whether a detected episode has to be written to the
// catalog.
package decision

import (
	"fmt"
	"time"
)

// Threshold is how long an automatic detection of the same episode is treated
// as a repeat of the last write.
const Threshold = 30 * time.Minute

// HistoryLimit is the number of past writes kept.
const HistoryLimit = 10

// State is the outcome of Decide. The zero value means no decision was made.
type State int

const (
	Skip State = iota + 1
	Confirm
	Apply
)

func (s State) String() string {
	switch s {
	case Skip:
		return "SKIP"
	case Confirm:
		return "CONFIRM"
	case Apply:
		return "APPLY"
	}
	return "UNKNOWN"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Skip, Confirm, Apply} {
		if string(b) == st.String() {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown decision state %q", b)
}

// Record is the last successfully applied write.
type Record struct {
	Key       string
	Episode   int
	Timestamp time.Time
}

// HistoryEntry is one past write.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Episode   int       `json:"episode"`
	Timestamp time.Time `json:"timestamp"`
}

type Input struct {
	Force   bool
	Key     string
	Episode int
	Last    *Record
	Now     time.Time
}

// Decide is a pure function of its input.
//
// Automatic detections of the episode that was just written are skipped, since
// SPA navigation re-triggers detection on the same page. A forced update always
// asks for confirmation because it may target a different series than the
// automatic detection assumed.
func Decide(in Input) State {
	isSame := in.Last != nil && in.Last.Key == in.Key && in.Last.Episode == in.Episode
	recentEnough := isSame && in.Now.Sub(in.Last.Timestamp) <= Threshold

	switch {
	case !in.Force && isSame && recentEnough:
		return Skip
	case in.Force:
		return Confirm
	default:
		return Apply
	}
}

// Push prepends e to history and drops entries beyond HistoryLimit. The input
// slice is not modified.
func Push(history []HistoryEntry, e HistoryEntry) []HistoryEntry {
	n := len(history) + 1
	if n > HistoryLimit {
		n = HistoryLimit
	}
	out := make([]HistoryEntry, 0, n)
	out = append(out, e)
	for _, h := range history {
		if len(out) == HistoryLimit {
			break
		}
		out = append(out, h)
	}
	return out
}
