package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/animesync/animesync/pkg/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the last AniList updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		history, err := storage.NewState(db).History(cmd.Context())
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println("No updates yet.")
			return nil
		}

		rows := make([][]string, 0, len(history))
		for _, h := range history {
			rows = append(rows, []string{h.Timestamp.Local().Format(time.DateTime), h.ID, strconv.Itoa(h.Episode)})
		}
		fmt.Println(renderTable([]string{"When", "AniList ID", "Episode"}, rows, 2, 3))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
