package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	archivecmd "github.com/tphakala/playlog-go/cmd/archive"
	historycmd "github.com/tphakala/playlog-go/cmd/history"
	prunecmd "github.com/tphakala/playlog-go/cmd/prune"
	"github.com/tphakala/playlog-go/internal/conf"
	"github.com/tphakala/playlog-go/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "playlog", slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error initializing file logger: %v\n", err)
		} else {
			slog.SetDefault(fileLogger)
			defer func() { _ = closeLogger() }()
		}
	}

	rootCmd := &cobra.Command{
		Use:   "playlog",
		Short: "Playout log archival and history reconstruction",
		Long: `playlog records, archives and reconstructs the playout history of
radio station broadcast sources: live log rows are compacted into
per-station per-day compressed archives, and the history feed merges
archived and live logs with the scheduled diffusions.`,
	}

	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "Enable debug output")

	rootCmd.AddCommand(archivecmd.Command(settings))
	rootCmd.AddCommand(historycmd.Command(settings))
	rootCmd.AddCommand(prunecmd.Command(settings))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
