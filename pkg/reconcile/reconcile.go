// Package reconcile runs the detect, match, decide and write pipeline for a
// single page.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/decision"
	"github.com/animesync/animesync/pkg/match"
	"github.com/animesync/animesync/pkg/seasons"
	"github.com/animesync/animesync/pkg/sites"
	"github.com/google/uuid"
)

// Detector turns a page into an observation. *sites.Registry implements it.
type Detector interface {
	Detect(ctx context.Context, p *sites.Page) (*anime.Observation, error)
}

// Catalog is the remote progress tracker. *anilist.Client implements it.
type Catalog interface {
	SearchAnime(ctx context.Context, title string) ([]anime.Media, error)
	SaveProgress(ctx context.Context, mediaID, progress int) (anime.SaveResult, error)
}

// Store persists the last update and season caches. *storage.State implements it.
type Store interface {
	LastRecord(ctx context.Context) (*decision.Record, error)
	RecordUpdate(ctx context.Context, rec decision.Record) error
	SeasonCache(ctx context.Context, seriesID string) (seasons.Cache, error)
	SaveSeasonCache(ctx context.Context, seriesID string, cache seasons.Cache) error
}

// Confirmer asks a human whether a forced update should go ahead.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// Logger is satisfied by *logrus.Logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Engine wires the pipeline's collaborators. Sites, Catalog and Store are
// required.
type Engine struct {
	Sites   Detector
	Catalog Catalog
	Store   Store
	// Confirmer is consulted for forced updates. Without one they are cancelled.
	Confirmer Confirmer
	Log       Logger
	Now       func() time.Time
}

func (e *Engine) logger() Logger {
	if e.Log == nil {
		return nopLogger{}
	}
	return e.Log
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Run reconciles the page with the catalog. The returned Result is never nil.
// A non-nil error comes with OutcomeNoop when the page had nothing to sync,
// and with OutcomeFailed when a step failed.
func (e *Engine) Run(ctx context.Context, p *sites.Page, force bool) (*Result, error) {
	return e.RunWithConfirmer(ctx, p, force, e.Confirmer)
}

// RunWithConfirmer is Run with a per-call Confirmer.
func (e *Engine) RunWithConfirmer(ctx context.Context, p *sites.Page, force bool, confirmer Confirmer) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Outcome: OutcomeNoop}
	log := e.logger()
	tag := res.RunID[:8]

	obs, err := e.Sites.Detect(ctx, p)
	if err != nil {
		if errors.Is(err, anime.ErrUnsupportedSite) {
			log.Debugf("[%s] %v", tag, err)
			return res, err
		}
		return res.fail(err)
	}
	res.Observation = obs
	if obs.Insufficient() {
		log.Debugf("[%s] missing title or episode on %s", tag, p.URL)
		return res, anime.ErrDetectionInsufficient
	}
	log.Infof("[%s] detected %q season %d episode %d on %s", tag, obs.Title, obs.Season, obs.Episode, obs.Site)

	var candidates []anime.Media
	if obs.ExternalID == "" {
		candidates, err = e.Catalog.SearchAnime(ctx, obs.Title)
		if err != nil {
			return res.fail(fmt.Errorf("searching %q: %w", obs.Title, err))
		}
	}
	m, err := match.Select(obs, candidates)
	if err != nil {
		log.Warnf("[%s] could not find %q on AniList", tag, obs.Title)
		return res.fail(err)
	}
	res.Match = &m
	seriesID := strconv.Itoa(m.ID)
	log.Debugf("[%s] selected %q (id %d, direct %v)", tag, m.DisplayTitle, m.ID, m.Direct)

	episode := obs.Episode
	if obs.Season > 1 {
		cache, err := e.Store.SeasonCache(ctx, seriesID)
		if err != nil {
			return res.fail(err)
		}
		abs, updated := seasons.ResolveAbsoluteEpisode(obs.Season, obs.Episode, m.Episodes, cache)
		if abs != episode {
			log.Infof("[%s] converted season %d episode %d to episode %d", tag, obs.Season, episode, abs)
			if err := e.Store.SaveSeasonCache(ctx, seriesID, updated); err != nil {
				return res.fail(fmt.Errorf("saving season cache: %w", err))
			}
			episode = abs
		}
	}
	res.Episode = episode

	last, err := e.Store.LastRecord(ctx)
	if err != nil {
		return res.fail(err)
	}
	res.State = decision.Decide(decision.Input{
		Force:   force,
		Key:     seriesID,
		Episode: episode,
		Last:    last,
		Now:     e.now(),
	})

	switch res.State {
	case decision.Skip:
		log.Debugf("[%s] %s episode %d was updated recently, skipping", tag, m.DisplayTitle, episode)
		res.Outcome = OutcomeSkipped
		return res, nil
	case decision.Confirm:
		ok := false
		if confirmer != nil {
			ok, err = confirmer.Confirm(ctx, Prompt{Observation: *obs, Match: m, Episode: episode})
			if err != nil {
				return res.fail(fmt.Errorf("confirming update: %w", err))
			}
		}
		if !ok {
			log.Infof("[%s] update of %s to episode %d cancelled", tag, m.DisplayTitle, episode)
			res.Outcome = OutcomeCancelled
			return res, nil
		}
	}

	log.Infof("[%s] updating %q to episode %d", tag, m.DisplayTitle, episode)
	saved, err := e.Catalog.SaveProgress(ctx, m.ID, episode)
	if err != nil {
		return res.fail(&anime.WriteError{MediaID: m.ID, Episode: episode, Err: err})
	}
	res.Outcome = OutcomeApplied
	res.Saved = &saved
	res.SavedAt = e.now()

	if err := e.Store.RecordUpdate(ctx, decision.Record{Key: seriesID, Episode: episode, Timestamp: res.SavedAt}); err != nil {
		log.Errorf("[%s] update applied but not recorded: %v", tag, err)
		return res, fmt.Errorf("recording update: %w", err)
	}
	log.Infof("[%s] updated %q to episode %d", tag, m.DisplayTitle, episode)
	return res, nil
}
