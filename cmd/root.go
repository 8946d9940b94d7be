package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/anilist"
	"github.com/animesync/animesync/pkg/sites/aniwatch"
	"github.com/animesync/animesync/pkg/watch"
	"github.com/animesync/animesync/pkg/whttp"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "animesync",
	Short: "Keep your AniList progress in sync with what you watch.",
	Long: `animesync detects the anime and episode on pages of supported streaming sites
(aniwatch, animepahe, miruro, crunchyroll) and updates your AniList progress.

Run it once on a URL, or start the local bridge with 'animesync serve' and let a
browser userscript post the pages you visit.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.animesync.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the SQLite state DB (default is ~/.config/animesync/animesync.sqlite)")

	viper.BindPFlag("proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".animesync")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("animesync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("anilist.token", "")
	viper.SetDefault("anilist.username", "")
	viper.SetDefault("anilist.endpoint", anilist.DefaultEndpoint)
	viper.SetDefault("anilist.retries", 0)
	viper.SetDefault("sites.fetch_timeout", aniwatch.DefaultTimeout)
	viper.SetDefault("watch.settle", watch.DefaultSettle)
	viper.SetDefault("server.listen", "127.0.0.1:7700")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".animesync.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if proxy := viper.GetString("proxy"); proxy != "" {
		if err := whttp.SetupProxy(proxy); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}
