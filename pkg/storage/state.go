package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/animesync/animesync/pkg/decision"
	"github.com/animesync/animesync/pkg/seasons"
)

// State exposes the persisted keys as typed values.
type State struct {
	kv KV

	// mu guards the history read-modify-write in RecordUpdate.
	mu sync.Mutex
}

func NewState(kv KV) *State {
	return &State{kv: kv}
}

// historyItem is the stored shape of a history entry, timestamps in unix ms.
type historyItem struct {
	ID        string `json:"id"`
	Episode   int    `json:"episode"`
	Timestamp int64  `json:"timestamp"`
}

// LastRecord returns the last applied write, or nil when nothing was written yet.
func (s *State) LastRecord(ctx context.Context) (*decision.Record, error) {
	id, ok, err := s.kv.Get(ctx, KeyLastUpdatedAnime)
	if err != nil || !ok || id == "" {
		return nil, err
	}

	rec := &decision.Record{Key: id}
	if v, ok, err := s.kv.Get(ctx, KeyLastUpdatedEpisode); err != nil {
		return nil, err
	} else if ok {
		if rec.Episode, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("corrupt %s: %w", KeyLastUpdatedEpisode, err)
		}
	}
	if v, ok, err := s.kv.Get(ctx, KeyLastUpdateTime); err != nil {
		return nil, err
	} else if ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt %s: %w", KeyLastUpdateTime, err)
		}
		rec.Timestamp = time.UnixMilli(ms)
	}
	return rec, nil
}

// History returns past writes, most recent first.
func (s *State) History(ctx context.Context) ([]decision.HistoryEntry, error) {
	raw, ok, err := s.kv.Get(ctx, KeyUpdateHistory)
	if err != nil || !ok {
		return nil, err
	}

	var items []historyItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("corrupt %s: %w", KeyUpdateHistory, err)
	}
	out := make([]decision.HistoryEntry, 0, len(items))
	for _, it := range items {
		out = append(out, decision.HistoryEntry{ID: it.ID, Episode: it.Episode, Timestamp: time.UnixMilli(it.Timestamp)})
	}
	return out, nil
}

// RecordUpdate stores rec as the last write and prepends it to the history.
// Call it only after the catalog confirmed the write.
func (s *State) RecordUpdate(ctx context.Context, rec decision.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.History(ctx)
	if err != nil {
		return err
	}
	history = decision.Push(history, decision.HistoryEntry{ID: rec.Key, Episode: rec.Episode, Timestamp: rec.Timestamp})

	items := make([]historyItem, 0, len(history))
	for _, h := range history {
		items = append(items, historyItem{ID: h.ID, Episode: h.Episode, Timestamp: h.Timestamp.UnixMilli()})
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return s.kv.SetMany(ctx, map[string]string{
		KeyLastUpdatedAnime:   rec.Key,
		KeyLastUpdatedEpisode: strconv.Itoa(rec.Episode),
		KeyLastUpdateTime:     strconv.FormatInt(rec.Timestamp.UnixMilli(), 10),
		KeyUpdateHistory:      string(data),
	})
}

// SeasonCache returns the season offset cache of a series. Seasons are stored
// under "season<N>" keys.
func (s *State) SeasonCache(ctx context.Context, seriesID string) (seasons.Cache, error) {
	raw, ok, err := s.kv.Get(ctx, SeasonKey(seriesID))
	if err != nil || !ok {
		return seasons.Cache{}, err
	}

	var stored map[string]seasons.Entry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("corrupt season cache for %s: %w", seriesID, err)
	}

	cache := make(seasons.Cache, len(stored))
	for k, e := range stored {
		n, err := strconv.Atoi(strings.TrimPrefix(k, "season"))
		if err != nil {
			continue
		}
		cache[n] = e
	}
	return cache, nil
}

func (s *State) SaveSeasonCache(ctx context.Context, seriesID string, cache seasons.Cache) error {
	stored := make(map[string]seasons.Entry, len(cache))
	for n, e := range cache {
		stored["season"+strconv.Itoa(n)] = e
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SeasonKey(seriesID), string(data))
}

// Credentials returns the stored AniList token and username.
func (s *State) Credentials(ctx context.Context) (token, username string, err error) {
	if token, _, err = s.kv.Get(ctx, KeyAccessToken); err != nil {
		return "", "", err
	}
	if username, _, err = s.kv.Get(ctx, KeyUsername); err != nil {
		return "", "", err
	}
	return token, username, nil
}

func (s *State) SaveCredentials(ctx context.Context, token, username string) error {
	return s.kv.SetMany(ctx, map[string]string{
		KeyAccessToken: token,
		KeyUsername:    username,
	})
}

// SeriesWithSeasons lists series ids that have a season cache. Only DB
// backed state can enumerate keys.
func (s *State) SeriesWithSeasons(ctx context.Context) ([]string, error) {
	db, ok := s.kv.(*DB)
	if !ok {
		return nil, nil
	}
	keys, err := db.ListKeys(ctx, seasonKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k.Key, seasonKeyPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}
