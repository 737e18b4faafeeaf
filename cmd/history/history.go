// Package history provides the history command for playlog
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/playlog-go/internal/archive"
	"github.com/tphakala/playlog-go/internal/conf"
	"github.com/tphakala/playlog-go/internal/datastore"
	"github.com/tphakala/playlog-go/internal/merge"
)

// resolverCacheTTL bounds how long resolved entities are reused across
// the archive reads of one history run.
const resolverCacheTTL = 5 * time.Minute

// Command creates and returns the history command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		stationID uint
		from      string
		days      int
		count     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the merged diffusion and playout log history of a station",
		Long: `History reconstructs the playout feed of a station over a day range:
archived logs of past days and live rows are concatenated, then
interleaved with the scheduled diffusions so each diffusion precedes the
logs of its airing window.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(settings, stationID, from, days, count)
		},
	}

	cmd.Flags().UintVar(&stationID, "station", 0, "Station id (required)")
	cmd.Flags().StringVar(&from, "from", "", "First UTC day of the range, YYYY-MM-DD (defaults to today)")
	cmd.Flags().IntVar(&days, "days", 1, "Number of days to cover")
	cmd.Flags().IntVar(&count, "count", 0, "Truncate the feed to this many entries (0 = all)")
	_ = cmd.MarkFlagRequired("station")

	return cmd
}

func runHistory(settings *conf.Settings, stationID uint, from string, days, count int) error {
	start, err := parseDay(from)
	if err != nil {
		return err
	}
	if days < 1 {
		days = 1
	}
	rangeStart, _ := datastore.DayRange(start)
	rangeEnd := rangeStart.Add(time.Duration(days) * 24 * time.Hour)

	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database output is enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	feed, err := buildFeed(store, settings.Archive.Path, stationID, rangeStart, rangeEnd, count)
	if err != nil {
		return err
	}

	station, err := store.GetStation(stationID)
	if err != nil {
		// Unknown stations still get their feed, just without timezone
		// conversion.
		station = datastore.Station{ID: stationID}
	}
	printFeed(feed, &station)
	return nil
}

// buildFeed concatenates archived and live logs of the range, orders them
// newest first and merges the station's diffusions into them.
func buildFeed(store datastore.Interface, archiveDir string, stationID uint, rangeStart, rangeEnd time.Time, count int) ([]merge.Entry, error) {
	archiver := archive.NewArchiver(store, archiveDir, nil)
	resolver := archive.NewCachedResolver(store, resolverCacheTTL)

	var logs []datastore.Log
	for day := rangeStart; day.Before(rangeEnd); day = day.Add(24 * time.Hour) {
		archived, err := archiver.LoadArchive(stationID, day, resolver)
		if err != nil {
			return nil, fmt.Errorf("reading archive for %s: %w", day.Format("2006-01-02"), err)
		}
		logs = append(logs, archived...)
	}

	live, err := store.Logs().
		Station(stationID).
		After(rangeStart).
		All()
	if err != nil {
		return nil, fmt.Errorf("querying live logs: %w", err)
	}
	for i := range live {
		if live[i].Date.Before(rangeEnd) {
			logs = append(logs, live[i])
		}
	}

	// The merge engine consumes logs newest first.
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})

	diffusions, err := store.DiffusionsBetween(stationID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("querying diffusions: %w", err)
	}

	return merge.Diffusions(logs, diffusions, count), nil
}

func printFeed(feed []merge.Entry, station *datastore.Station) {
	for _, entry := range feed {
		if entry.IsDiffusion() {
			d := entry.Diffusion
			fmt.Printf("%s  diffusion #%d (until %s)\n",
				d.Start.UTC().Format(time.RFC3339), d.ID, d.End.UTC().Format("15:04"))
			continue
		}
		l := entry.Log
		related := ""
		switch {
		case l.Sound != nil:
			related = " sound=" + l.Sound.Name
		case l.Track != nil:
			related = " track=" + l.Track.Title
		case l.Diffusion != nil:
			related = fmt.Sprintf(" diffusion=#%d", l.Diffusion.ID)
		}
		fmt.Printf("%s    %-7s source=%s%s\n",
			l.LocalDate(station).Format(time.RFC3339), l.Type, l.Source, related)
	}
}

func parseDay(day string) (time.Time, error) {
	if day == "" {
		return time.Now().UTC(), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --from %q, expected YYYY-MM-DD: %w", day, err)
	}
	return parsed, nil
}
