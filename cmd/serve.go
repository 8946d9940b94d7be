package cmd

import (
	"os/signal"
	"syscall"

	"github.com/animesync/animesync/internal/server"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local bridge for the browser userscript",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		state := storage.NewState(db)
		engine, err := newEngine(ctx, state)
		if err != nil {
			return err
		}

		s := server.New(engine, state,
			viper.GetDuration("watch.settle"),
			viper.GetString("server.username"),
			viper.GetString("server.password"),
		)
		return s.Start(ctx, viper.GetString("server.listen"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:7700", "HTTP listen address")
	serveCmd.Flags().String("username", "", "Basic auth username")
	serveCmd.Flags().String("password", "", "Basic auth password")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.username", serveCmd.Flags().Lookup("username"))
	viper.BindPFlag("server.password", serveCmd.Flags().Lookup("password"))
}

