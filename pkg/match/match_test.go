package match

import (
	"errors"
	"testing"

	"github.com/animesync/animesync/pkg/anime"
)

func TestSelectDirectID(t *testing.T) {
	obs := &anime.Observation{Title: "Frieren", Episode: 3, ExternalID: "154587"}
	results := []anime.Media{{ID: 1, Title: anime.Title{English: "Wrong"}}}

	m, err := Select(obs, results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Direct || m.ID != 154587 || m.DisplayTitle != "Frieren" {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestSelectInvalidDirectID(t *testing.T) {
	_, err := Select(&anime.Observation{ExternalID: "abc", Episode: 1}, nil)
	if !errors.Is(err, anime.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectFirstResult(t *testing.T) {
	obs := &anime.Observation{Title: "Attack on Titan", Episode: 5}
	results := []anime.Media{
		{ID: 16498, Title: anime.Title{Romaji: "Shingeki no Kyojin", English: "Attack on Titan"}, Episodes: 25},
		{ID: 20958, Title: anime.Title{Romaji: "Shingeki no Kyojin 2"}, Episodes: 12},
	}

	m, err := Select(obs, results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 16498 || m.DisplayTitle != "Attack on Titan" || m.Episodes != 25 || m.Direct {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestSelectRomajiFallback(t *testing.T) {
	m, err := Select(&anime.Observation{Title: "x", Episode: 1}, []anime.Media{{ID: 7, Title: anime.Title{Romaji: "Sousou no Frieren"}}})
	if err != nil {
		t.Fatal(err)
	}
	if m.DisplayTitle != "Sousou no Frieren" {
		t.Fatalf("got %q", m.DisplayTitle)
	}
}

func TestSelectNotFound(t *testing.T) {
	_, err := Select(&anime.Observation{Title: "Nothing", Episode: 1}, nil)
	if !errors.Is(err, anime.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
