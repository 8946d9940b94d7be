package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/sites"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/animesync/animesync/pkg/watch"
)

// Server is the local bridge a browser userscript posts page snapshots to.
type Server struct {
	Engine   *reconcile.Engine
	State    *storage.State
	Watch    *watch.Debouncer
	Username string
	Password string

	// runMu serializes debounced and forced runs.
	runMu sync.Mutex
}

func New(engine *reconcile.Engine, state *storage.State, settle time.Duration, user, pass string) *Server {
	s := &Server{
		Engine:   engine,
		State:    state,
		Username: user,
		Password: pass,
	}
	s.Watch = watch.New(watch.Config{
		Settle: settle,
		Run:    s.runEvent,
		Log:    utils.Log,
		OnResult: func(dl watch.Delivery) {
			if dl.Error != "" {
				utils.Log.Warnf("%s: %s", dl.Location, dl.Error)
			}
		},
	})
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/observe", s.basicAuth(s.handleObserve))
	mux.HandleFunc("GET /api/status", s.basicAuth(s.handleStatus))
	mux.HandleFunc("GET /api/history", s.basicAuth(s.handleHistory))
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	defer s.Watch.Close()

	utils.Log.Infof("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runEvent handles a settled navigation. Events without markup are fetched.
func (s *Server) runEvent(ctx context.Context, ev watch.Event) (*reconcile.Result, error) {
	page, err := loadPage(ctx, ev.Location, ev.Body)
	if err != nil {
		return nil, err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.Engine.Run(ctx, page, false)
}

func loadPage(ctx context.Context, rawURL, body string) (*sites.Page, error) {
	if body == "" {
		return sites.FetchPage(ctx, rawURL, nil)
	}
	return sites.NewPage(rawURL, strings.NewReader(body))
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
