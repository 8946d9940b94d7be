package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/reconcile"
	"github.com/animesync/animesync/pkg/storage"
	"github.com/spf13/cobra"
)

// runCmd implements: animesync run <url>
//
//	--force   Update even if the episode was just written, after confirmation
//	--yes     Don't ask for confirmation
//	--file    Read the page markup from a file instead of downloading it
var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Detect the episode on a page and update AniList",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		yes, _ := cmd.Flags().GetBool("yes")
		file, _ := cmd.Flags().GetString("file")

		return withDBLock(cmd.Context(), func() error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			state := storage.NewState(db)
			engine, err := newEngine(cmd.Context(), state)
			if err != nil {
				return err
			}
			client, err := sitesHTTPClient()
			if err != nil {
				return err
			}
			page, err := loadPage(cmd.Context(), args[0], file, client)
			if err != nil {
				return err
			}

			var confirmer reconcile.Confirmer = promptConfirmer{in: os.Stdin, out: os.Stdout}
			if yes {
				confirmer = reconcile.ConfirmFunc(func(context.Context, reconcile.Prompt) (bool, error) { return true, nil })
			}

			res, err := engine.RunWithConfirmer(cmd.Context(), page, force, confirmer)
			printResult(res)
			if errors.Is(err, anime.ErrDetectionInsufficient) || errors.Is(err, anime.ErrUnsupportedSite) {
				fmt.Println(err)
				return nil
			}
			if anime.RequiresAttention(err) {
				return fmt.Errorf("AniList was NOT updated: %w", err)
			}
			return err
		})
	},
}

// promptConfirmer asks on the terminal.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt reconcile.Prompt) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func printResult(res *reconcile.Result) {
	if res == nil || res.Match == nil {
		return
	}
	switch res.Outcome {
	case reconcile.OutcomeApplied:
		fmt.Printf("Updated %q to episode %d\n", res.Match.DisplayTitle, res.Episode)
	case reconcile.OutcomeSkipped:
		fmt.Printf("%q episode %d was already updated recently\n", res.Match.DisplayTitle, res.Episode)
	case reconcile.OutcomeCancelled:
		fmt.Println("Update cancelled")
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("force", "f", false, "Force the update, asking for confirmation")
	runCmd.Flags().BoolP("yes", "y", false, "Confirm forced updates without asking")
	runCmd.Flags().String("file", "", "Read the page HTML from this file")
}
