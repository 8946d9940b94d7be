package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/decision"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/sites/all"
	"github.com/animesync/animesync/pkg/storage"
)

type stubCatalog struct {
	saved chan [2]int
}

func (stubCatalog) SearchAnime(context.Context, string) ([]anime.Media, error) { return nil, nil }

func (c stubCatalog) SaveProgress(_ context.Context, id, progress int) (anime.SaveResult, error) {
	c.saved <- [2]int{id, progress}
	return anime.SaveResult{ID: 7, Progress: progress, Status: "CURRENT"}, nil
}

const miruroPage = `<html><head><title>One Piece Episode 1071</title></head><body></body></html>`

func newTestServer(t *testing.T, user, pass string) (*Server, stubCatalog) {
	t.Helper()
	cat := stubCatalog{saved: make(chan [2]int, 4)}
	state := storage.NewState(storage.NewMemory())
	engine := &reconcile.Engine{
		Sites:   all.Registry(nil, time.Second),
		Catalog: cat,
		Store:   state,
	}
	s := New(engine, state, 10*time.Millisecond, user, pass)
	t.Cleanup(s.Watch.Close)
	return s, cat
}

func post(t *testing.T, h http.Handler, req ObserveRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/observe", strings.NewReader(string(body))))
	return rec
}

func TestObserveForced(t *testing.T) {
	s, cat := newTestServer(t, "", "")
	h := s.Handler()
	req := ObserveRequest{URL: "https://www.miruro.tv/watch?id=21&ep=1071", HTML: miruroPage, Force: true}

	rec := post(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res reconcile.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != reconcile.OutcomeCancelled || !strings.Contains(rec.Body.String(), `"state":"CONFIRM"`) {
		t.Errorf("unconfirmed forced run = %s", rec.Body)
	}

	req.Confirm = true
	rec = post(t, h, req)
	if !strings.Contains(rec.Body.String(), `"outcome":"applied"`) {
		t.Errorf("confirmed forced run = %s", rec.Body)
	}
	if got := <-cat.saved; got != [2]int{21, 1071} {
		t.Errorf("saved %v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/history", nil))
	var history []decision.HistoryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != "21" || history[0].Episode != 1071 {
		t.Errorf("history = %+v", history)
	}
}

func TestObserveAutomaticIsDebounced(t *testing.T) {
	s, cat := newTestServer(t, "", "")
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status before any run = %d", rec.Code)
	}

	rec = post(t, h, ObserveRequest{URL: "https://www.miruro.tv/watch?id=21&ep=1072", HTML: miruroPage})
	if rec.Code != http.StatusAccepted || !strings.Contains(rec.Body.String(), `"accepted":true`) {
		t.Fatalf("automatic observe = %d %s", rec.Code, rec.Body)
	}
	rec = post(t, h, ObserveRequest{URL: "https://www.miruro.tv/watch?id=21&ep=1072", HTML: miruroPage})
	if !strings.Contains(rec.Body.String(), `"accepted":false`) {
		t.Errorf("repeat observe = %s", rec.Body)
	}

	select {
	case got := <-cat.saved:
		if got != [2]int{21, 1072} {
			t.Errorf("saved %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced run never wrote")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
		if rec.Code == http.StatusOK || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(rec.Body.String(), `"outcome":"applied"`) {
		t.Errorf("status = %d %s", rec.Code, rec.Body)
	}
}

func TestObserveBadRequest(t *testing.T) {
	s, _ := newTestServer(t, "", "")
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/observe", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d", rec.Code)
	}
	if rec := post(t, h, ObserveRequest{Force: true}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing url = %d", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	s, _ := newTestServer(t, "admin", "secret")
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no credentials = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/history", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("with credentials = %d %s", rec.Code, rec.Body)
	}
}

type gatedCatalog struct {
	entered chan int
	release chan struct{}

	mu      sync.Mutex
	active  int
	maxSeen int
}

func (*gatedCatalog) SearchAnime(context.Context, string) ([]anime.Media, error) { return nil, nil }

func (c *gatedCatalog) SaveProgress(_ context.Context, id, progress int) (anime.SaveResult, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.maxSeen {
		c.maxSeen = c.active
	}
	c.mu.Unlock()

	c.entered <- id
	<-c.release

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return anime.SaveResult{ID: id, Progress: progress, Status: "CURRENT"}, nil
}

func TestForcedRunWaitsForDebouncedRun(t *testing.T) {
	cat := &gatedCatalog{entered: make(chan int, 2), release: make(chan struct{})}
	state := storage.NewState(storage.NewMemory())
	engine := &reconcile.Engine{
		Sites:   all.Registry(nil, time.Second),
		Catalog: cat,
		Store:   state,
	}
	s := New(engine, state, 10*time.Millisecond, "", "")
	t.Cleanup(s.Watch.Close)
	h := s.Handler()

	post(t, h, ObserveRequest{URL: "https://www.miruro.tv/watch?id=21&ep=1072", HTML: miruroPage})
	select {
	case <-cat.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced run never reached the catalog")
	}

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- post(t, h, ObserveRequest{URL: "https://www.miruro.tv/watch?id=22&ep=5", HTML: miruroPage, Force: true, Confirm: true})
	}()

	select {
	case id := <-cat.entered:
		t.Fatalf("forced run for %d started while the debounced run was in flight", id)
	case <-time.After(100 * time.Millisecond):
	}

	close(cat.release)
	rec := <-done
	if !strings.Contains(rec.Body.String(), `"outcome":"applied"`) {
		t.Errorf("forced run = %s", rec.Body)
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.maxSeen != 1 {
		t.Errorf("max concurrent writes = %d, want 1", cat.maxSeen)
	}
}
