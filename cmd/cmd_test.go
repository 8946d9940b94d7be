package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/reconcile"
)

func TestPromptConfirmer(t *testing.T) {
	prompt := reconcile.Prompt{
		Observation: anime.Observation{Season: 2, Episode: 3},
		Match:       anime.Match{ID: 1, DisplayTitle: "Mob Psycho 100"},
		Episode:     15,
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := promptConfirmer{in: strings.NewReader(tt.input), out: &out}.Confirm(context.Background(), prompt)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("input %q: got %v", tt.input, got)
		}
		if !strings.Contains(out.String(), "Update Mob Psycho 100 to episode 15? (converted from season 2 episode 3) [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Key", "Bytes"}, [][]string{{"username", "5"}, {"short"}}, 2)
	for _, want := range []string{"KEY", "BYTES", "username", "short"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
