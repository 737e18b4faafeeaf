// Package archive provides the archive command for playlog
package archive

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/playlog-go/internal/archive"
	"github.com/tphakala/playlog-go/internal/conf"
	"github.com/tphakala/playlog-go/internal/datastore"
	"github.com/tphakala/playlog-go/internal/errors"
)

// Command creates and returns the archive command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		stationID uint
		day       string
		force     bool
		keep      bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Compact one day of live playout logs into an archive file",
		Long: `Archive selects every live log row of a station for the given UTC
calendar day, writes them into the day's compressed archive file and
deletes them from live storage. An existing archive is left untouched
unless --force is set, in which case new rows are merged into it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(settings, stationID, day, force, keep)
		},
	}

	cmd.Flags().UintVar(&stationID, "station", 0, "Station id to archive (required)")
	cmd.Flags().StringVar(&day, "date", "", "UTC calendar day to archive, YYYY-MM-DD (defaults to yesterday)")
	cmd.Flags().BoolVar(&force, "force", false, "Merge into an existing archive file instead of aborting")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep live rows after archiving instead of deleting them")
	_ = cmd.MarkFlagRequired("station")

	return cmd
}

func runArchive(settings *conf.Settings, stationID uint, day string, force, keep bool) error {
	target, err := parseDay(day)
	if err != nil {
		return err
	}

	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database output is enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	archiver := archive.NewArchiver(store, settings.Archive.Path, nil)
	count, err := archiver.MakeArchive(stationID, target, force, keep)
	switch {
	case errors.Is(err, archive.ErrArchiveExists):
		fmt.Printf("Archive for station %d on %s already exists, nothing archived (use --force to merge)\n",
			stationID, target.Format("2006-01-02"))
		return nil
	case err != nil:
		return fmt.Errorf("archiving failed: %w", err)
	case count == 0:
		fmt.Printf("No live logs for station %d on %s, nothing to archive\n",
			stationID, target.Format("2006-01-02"))
	default:
		fmt.Printf("Archived %d logs for station %d on %s\n",
			count, stationID, target.Format("2006-01-02"))
	}
	return nil
}

// parseDay parses a YYYY-MM-DD day, defaulting to yesterday (the most
// recent day guaranteed to be complete).
func parseDay(day string) (time.Time, error) {
	if day == "" {
		return time.Now().UTC().AddDate(0, 0, -1), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD: %w", day, err)
	}
	return parsed, nil
}
