// Package prune provides the prune command for playlog
package prune

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/playlog-go/internal/archive"
	"github.com/tphakala/playlog-go/internal/conf"
)

// Command creates and returns the prune command
func Command(settings *conf.Settings) *cobra.Command {
	var retention int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete archive files older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(settings, retention)
		},
	}

	cmd.Flags().IntVar(&retention, "retention", 0, "Days of archives to keep (defaults to archive.retention from config)")

	return cmd
}

func runPrune(settings *conf.Settings, retention int) error {
	if retention <= 0 {
		retention = settings.Archive.Retention
	}
	if retention <= 0 {
		fmt.Println("Retention is not configured, keeping all archives")
		return nil
	}

	// Archives never need the datastore for pruning, the file names carry
	// the day.
	archiver := archive.NewArchiver(nil, settings.Archive.Path, nil)
	cutoff := time.Now().UTC().AddDate(0, 0, -retention)
	removed, err := archiver.Prune(cutoff)
	if err != nil {
		return fmt.Errorf("pruning archives: %w", err)
	}
	fmt.Printf("Removed %d archive files older than %d days\n", removed, retention)
	return nil
}
