package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/anilist"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/sites"
	"github.com/animesync/animesync/pkg/sites/all"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/animesync/animesync/pkg/whttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/viper"
)

func dbPath() (string, error) {
	return utils.GetAbsDBPath(viper.GetString("db.path"))
}

func openDB() (*storage.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// withDBLock runs fn holding the state DB file lock.
func withDBLock(ctx context.Context, fn func() error) error {
	path, err := dbPath()
	if err != nil {
		return err
	}
	lock, err := utils.NewDBLock(path)
	if err != nil {
		return err
	}
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			utils.Log.Warn(err)
		}
	}()
	return fn()
}

func catalogHTTPClient() (*retryablehttp.Client, error) {
	return whttp.NewClient(whttp.Options{
		Retries: viper.GetInt("anilist.retries"),
		Proxy:   viper.GetString("proxy"),
	})
}

func sitesHTTPClient() (*retryablehttp.Client, error) {
	return whttp.NewClient(whttp.Options{
		Timeout: viper.GetDuration("sites.fetch_timeout"),
		Proxy:   viper.GetString("proxy"),
	})
}

func newRegistry() (*sites.Registry, *retryablehttp.Client, error) {
	client, err := sitesHTTPClient()
	if err != nil {
		return nil, nil, err
	}
	return all.Registry(client, viper.GetDuration("sites.fetch_timeout")), client, nil
}

// newCatalog builds an AniList client. A token in the config file wins over
// the one stored by 'animesync login'.
func newCatalog(ctx context.Context, state *storage.State) (*anilist.Client, error) {
	client, err := catalogHTTPClient()
	if err != nil {
		return nil, err
	}
	token := viper.GetString("anilist.token")
	if token == "" {
		if token, _, err = state.Credentials(ctx); err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, fmt.Errorf("no AniList token configured, run 'animesync login' first")
	}
	return anilist.NewClient(viper.GetString("anilist.endpoint"), token, client), nil
}

func newEngine(ctx context.Context, state *storage.State) (*reconcile.Engine, error) {
	registry, _, err := newRegistry()
	if err != nil {
		return nil, err
	}
	catalog, err := newCatalog(ctx, state)
	if err != nil {
		return nil, err
	}
	return &reconcile.Engine{
		Sites:   registry,
		Catalog: catalog,
		Store:   state,
		Log:     utils.Log,
	}, nil
}

// loadPage reads the page from file when set, otherwise downloads rawURL.
func loadPage(ctx context.Context, rawURL, file string, client *retryablehttp.Client) (*sites.Page, error) {
	if file == "" {
		return sites.FetchPage(ctx, rawURL, client)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return sites.NewPage(rawURL, strings.NewReader(string(data)))
}
