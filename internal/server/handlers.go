package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/animesync/animesync/pkg/decision"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/watch"
)

type ObserveRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
	// Force bypasses the debouncer and the skip window. The update is only
	// written when Confirm is also set.
	Force   bool `json:"force"`
	Confirm bool `json:"confirm"`
}

func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	var req ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	if !req.Force {
		accepted := s.Watch.Notify(watch.Event{Location: req.URL, Body: req.HTML})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
		return
	}

	page, err := loadPage(r.Context(), req.URL, req.HTML)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	confirm := reconcile.ConfirmFunc(func(context.Context, reconcile.Prompt) (bool, error) {
		return req.Confirm, nil
	})
	s.runMu.Lock()
	// Failures are reported in the result.
	res, _ := s.Engine.RunWithConfirmer(r.Context(), page, true, confirm)
	s.runMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dl, ok := s.Watch.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dl)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.State.History(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []decision.HistoryEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
