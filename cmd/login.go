package cmd

import (
	"fmt"

	"github.com/animesync/animesync/pkg/anilist"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loginCmd implements: animesync login --token <token> --username <name>
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and store your AniList access token",
	Long: `Checks that the access token belongs to the given AniList user and stores both
in the state database. Get a token at https://anilist.co/settings/developer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		username, _ := cmd.Flags().GetString("username")
		if token == "" {
			token = viper.GetString("anilist.token")
		}
		if username == "" {
			username = viper.GetString("anilist.username")
		}
		if token == "" || username == "" {
			return fmt.Errorf("both --token and --username are required")
		}

		client, err := catalogHTTPClient()
		if err != nil {
			return err
		}
		viewer, err := anilist.NewClient(viper.GetString("anilist.endpoint"), token, client).VerifyCredentials(cmd.Context(), username)
		if err != nil {
			return err
		}

		return withDBLock(cmd.Context(), func() error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.NewState(db).SaveCredentials(cmd.Context(), token, viewer.Name); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (id %d)\n", viewer.Name, viewer.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("token", "t", "", "AniList access token")
	loginCmd.Flags().StringP("username", "u", "", "AniList username")
}
