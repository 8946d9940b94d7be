package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/animesync/animesync/pkg/anilist"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/sites"
	"github.com/animesync/animesync/pkg/sites/all"
	"github.com/animesync/animesync/pkg/storage"
)

func main() {
	// Usage: go run *.go -token "your_anilist_token" -url "https://www.miruro.tv/watch?id=21&ep=1"

	tokenFlag := flag.String("token", "", "AniList access token")
	urlFlag := flag.String("url", "", "Page to sync")

	// Parse the command-line flags
	flag.Parse()

	if *tokenFlag == "" || *urlFlag == "" {
		fmt.Println("Both -token and -url are required.")
		return
	}

	ctx := context.Background()
	page, err := sites.FetchPage(ctx, *urlFlag, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	// State only lives for this process; use storage.Open for a persistent one.
	engine := &reconcile.Engine{
		Sites:   all.Registry(nil, 10*time.Second),
		Catalog: anilist.NewClient("", *tokenFlag, nil),
		Store:   storage.NewState(storage.NewMemory()),
	}

	res, err := engine.Run(ctx, page, false)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Outcome, res.Episode)
}
