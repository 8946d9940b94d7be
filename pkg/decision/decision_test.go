package decision

import (
	"strconv"
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	last := &Record{Key: "X", Episode: 5, Timestamp: now.Add(-10 * time.Minute)}

	tests := []struct {
		name string
		in   Input
		want State
	}{
		{"same episode recently", Input{Key: "X", Episode: 5, Last: last, Now: now}, Skip},
		{"forced same episode", Input{Force: true, Key: "X", Episode: 5, Last: last, Now: now}, Confirm},
		{"forced without history", Input{Force: true, Key: "X", Episode: 1, Now: now}, Confirm},
		{"next episode", Input{Key: "X", Episode: 6, Last: last, Now: now}, Apply},
		{"other series", Input{Key: "Y", Episode: 5, Last: last, Now: now}, Apply},
		{"no history", Input{Key: "X", Episode: 5, Now: now}, Apply},
		{"threshold passed", Input{Key: "X", Episode: 5, Last: last, Now: now.Add(21 * time.Minute)}, Apply},
		{"exactly at threshold", Input{Key: "X", Episode: 5, Last: last, Now: now.Add(20 * time.Minute)}, Skip},
	}

	for _, tt := range tests {
		if got := Decide(tt.in); got != tt.want {
			t.Errorf("%s: Decide() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDecideSkipLaw(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	for ageMs := int64(0); ageMs <= 1_800_000; ageMs += 60_000 {
		in := Input{
			Key:     "16498",
			Episode: 12,
			Last:    &Record{Key: "16498", Episode: 12, Timestamp: base},
			Now:     base.Add(time.Duration(ageMs) * time.Millisecond),
		}
		if got := Decide(in); got != Skip {
			t.Fatalf("age %dms: expected SKIP, got %s", ageMs, got)
		}
		// same input, same answer
		if again := Decide(in); again != Skip {
			t.Fatalf("age %dms: decision not deterministic", ageMs)
		}
	}
}

func TestPush(t *testing.T) {
	var h []HistoryEntry
	for i := 1; i <= 12; i++ {
		h = Push(h, HistoryEntry{ID: strconv.Itoa(i), Episode: i})
	}
	if len(h) != HistoryLimit {
		t.Fatalf("expected %d entries, got %d", HistoryLimit, len(h))
	}
	if h[0].ID != "12" || h[len(h)-1].ID != "3" {
		t.Fatalf("unexpected order: first %s last %s", h[0].ID, h[len(h)-1].ID)
	}
}

func TestPushDoesNotAlias(t *testing.T) {
	orig := []HistoryEntry{{ID: "a"}, {ID: "b"}}
	out := Push(orig, HistoryEntry{ID: "c"})
	if orig[0].ID != "a" || out[0].ID != "c" || len(out) != 3 {
		t.Fatalf("unexpected result orig=%v out=%v", orig, out)
	}
}

func TestStateText(t *testing.T) {
	for _, st := range []State{Skip, Confirm, Apply} {
		b, _ := st.MarshalText()
		var got State
		if err := got.UnmarshalText(b); err != nil || got != st {
			t.Errorf("%s: got %v, %v", st, got, err)
		}
	}
	var zero State
	if zero.String() != "UNKNOWN" {
		t.Errorf("zero state = %s", zero)
	}
	if err := zero.UnmarshalText([]byte("MAYBE")); err == nil {
		t.Error("expected error for unknown state")
	}
}
