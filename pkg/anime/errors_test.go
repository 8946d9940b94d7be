package anime

import (
	"errors"
	"fmt"
	"testing"
)

func TestRequiresAttention(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ErrNotFound, false},
		{"api error outside write", &RemoteAPIError{Message: "Invalid token"}, false},
		{"api error on write", &WriteError{MediaID: 1, Episode: 2, Err: &RemoteAPIError{Message: "Invalid token"}}, true},
		{"network error on write", &WriteError{Err: &NetworkError{Op: "update", Err: errors.New("eof")}}, true},
		{"wrapped write error", fmt.Errorf("run: %w", &WriteError{Err: &NetworkError{Op: "update", Err: errors.New("eof")}}), true},
		{"credential error on write", &WriteError{Err: ErrInvalidCredential}, false},
	}

	for _, tt := range tests {
		if got := RequiresAttention(tt.err); got != tt.want {
			t.Errorf("%s: RequiresAttention() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInsufficient(t *testing.T) {
	var nilObs *Observation
	if !nilObs.Insufficient() {
		t.Fatal("nil observation should be insufficient")
	}
	if !(&Observation{Title: "Frieren"}).Insufficient() {
		t.Fatal("missing episode should be insufficient")
	}
	if !(&Observation{Episode: 3}).Insufficient() {
		t.Fatal("missing title and id should be insufficient")
	}
	if (&Observation{ExternalID: "154587", Episode: 3}).Insufficient() {
		t.Fatal("direct id with episode should be sufficient")
	}
}

func TestDisplayTitle(t *testing.T) {
	m := Media{Title: Title{Romaji: "Shingeki no Kyojin", English: "Attack on Titan"}}
	if got := m.DisplayTitle(); got != "Attack on Titan" {
		t.Fatalf("got %q", got)
	}
	m.Title.English = ""
	if got := m.DisplayTitle(); got != "Shingeki no Kyojin" {
		t.Fatalf("got %q", got)
	}
}
