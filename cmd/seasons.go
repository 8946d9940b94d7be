package cmd

import (
	"fmt"
	"strconv"

	"github.com/animesync/animesync/pkg/seasons"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/spf13/cobra"
)

// seasonsCmd implements: animesync seasons [anilist-id]
var seasonsCmd = &cobra.Command{
	Use:   "seasons [anilist-id]",
	Short: "Show cached season offsets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		state := storage.NewState(db)

		if len(args) == 0 {
			ids, err := state.SeriesWithSeasons(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No season data cached.")
				return nil
			}
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, []string{id})
			}
			fmt.Println(renderTable([]string{"AniList ID"}, rows, 1))
			return nil
		}

		cache, err := state.SeasonCache(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(cache) == 0 {
			fmt.Printf("No season data cached for %s.\n", args[0])
			return nil
		}

		rows := make([][]string, 0, len(cache))
		for _, n := range cache.Seasons() {
			e := cache[n]
			episodes := "?"
			if e.Episodes > 0 {
				episodes = strconv.Itoa(e.Episodes)
			}
			rows = append(rows, []string{strconv.Itoa(n), strconv.Itoa(e.FirstEpisode), strconv.Itoa(e.Offset), episodes})
		}
		fmt.Println(renderTable([]string{"Season", "First episode", "Offset", "Episodes"}, rows, 1, 2, 3, 4))
		return nil
	},
}

// seasonsSetCmd implements: animesync seasons set <anilist-id> <season> <episodes>
var seasonsSetCmd = &cobra.Command{
	Use:   "set <anilist-id> <season> <episodes>",
	Short: "Record how many episodes a season has",
	Long: `Offsets of later seasons assume 12 episodes for every earlier season whose
length is unknown. Recording the real length fixes the conversion for series
with longer or shorter seasons.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := strconv.Atoi(args[1])
		if err != nil || season < 1 {
			return fmt.Errorf("invalid season %q", args[1])
		}
		episodes, err := strconv.Atoi(args[2])
		if err != nil || episodes < 1 {
			return fmt.Errorf("invalid episode count %q", args[2])
		}

		return withDBLock(cmd.Context(), func() error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			state := storage.NewState(db)

			cache, err := state.SeasonCache(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cache = seasons.SetEpisodes(cache, season, episodes)
			if err := state.SaveSeasonCache(cmd.Context(), args[0], cache); err != nil {
				return err
			}
			fmt.Printf("Season %d of %s has %d episodes\n", season, args[0], episodes)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seasonsCmd)
	seasonsCmd.AddCommand(seasonsSetCmd)
}
