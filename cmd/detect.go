package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// detectCmd implements: animesync detect <url>
var detectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Show what would be detected on a page, without touching AniList",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		registry, client, err := newRegistry()
		if err != nil {
			return err
		}
		page, err := loadPage(cmd.Context(), args[0], file, client)
		if err != nil {
			return err
		}

		obs, err := registry.Detect(cmd.Context(), page)
		if err != nil {
			return err
		}
		if obs.Insufficient() {
			fmt.Println("Could not detect anime information on this page")
			return nil
		}

		rows := [][]string{
			{"Site", obs.Site},
			{"Title", obs.Title},
			{"Raw title", obs.RawTitle},
			{"Season", fmt.Sprint(obs.Season)},
			{"Episode", fmt.Sprint(obs.Episode)},
			{"AniList ID", obs.ExternalID},
		}
		fmt.Println(renderTable([]string{"Field", "Value"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().String("file", "", "Read the page HTML from this file")
}
