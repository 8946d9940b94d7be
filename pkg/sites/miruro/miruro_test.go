package miruro

import (
	"context"
	"strings"
	"testing"

	"github.com/animesync/animesync/pkg/sites"
)

func page(t *testing.T, rawURL, title string) *sites.Page {
	t.Helper()
	p, err := sites.NewPage(rawURL, strings.NewReader("<html><head><title>"+title+"</title></head><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		title   string
		episode int
		id      string
		raw     string
	}{
		{"id and episode", "https://www.miruro.tv/watch?id=21&ep=1071", "One Piece Episode 1071", 1071, "21", "One Piece"},
		{"no episode suffix", "https://miruro.tv/watch?id=5114&ep=3", "Fullmetal Alchemist: Brotherhood", 3, "5114", "Fullmetal Alchemist: Brotherhood"},
		{"missing episode", "https://miruro.tv/watch?id=21", "One Piece", 0, "", ""},
		{"missing id", "https://miruro.tv/watch?ep=4", "One Piece Episode 4", 0, "", ""},
		{"bad episode", "https://miruro.tv/watch?id=21&ep=abc", "One Piece", 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := New().Detect(context.Background(), page(t, tt.url, tt.title))
			if obs == nil {
				t.Fatal("nil observation")
			}
			if obs.Episode != tt.episode || obs.ExternalID != tt.id || obs.RawTitle != tt.raw {
				t.Errorf("got %+v", obs)
			}
		})
	}
}
