// archiver.go: the compaction driver. Moves a station-day's live log rows
// into an archive file and deletes them from live storage.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tphakala/playlog-go/internal/datastore"
	"github.com/tphakala/playlog-go/internal/errors"
	"github.com/tphakala/playlog-go/internal/logging"
	"github.com/tphakala/playlog-go/internal/observability/metrics"
)

// ErrArchiveExists reports that an archive file for the requested
// station-day already exists and force was not set. Callers distinguish
// this conflict from "nothing to archive", which returns a zero count
// and no error.
var ErrArchiveExists = errors.NewStd("archive file already exists")

// archiveLogger is the package logger for archive operations.
var archiveLogger = func() *slog.Logger {
	if l := logging.ForService("archive"); l != nil {
		return l
	}
	return slog.Default().With("service", "archive")
}()

// Archiver drives compaction of live log rows into archive files.
//
// Concurrent compaction of the same archive path is not serialized here;
// the deployment must ensure at most one run per path at a time.
type Archiver struct {
	store   datastore.Interface
	dir     string
	metrics *metrics.ArchivalMetrics
}

// NewArchiver returns an Archiver writing under dir. metrics may be nil.
func NewArchiver(store datastore.Interface, dir string, m *metrics.ArchivalMetrics) *Archiver {
	return &Archiver{store: store, dir: dir, metrics: m}
}

// Path returns the archive file path the Archiver uses for a station-day.
func (a *Archiver) Path(stationID uint, day time.Time) string {
	return Path(a.dir, stationID, day)
}

// MakeArchive compacts every live log of the station on the given UTC
// calendar day into the day's archive file and returns the number of
// archived rows.
//
// Behavior:
//   - the archive file already exists and force is false: nothing is
//     touched and ErrArchiveExists is returned;
//   - no live rows match: returns 0 without creating a file;
//   - force over an existing file merges the new rows into it;
//   - keep leaves the live rows in place after a successful write.
//
// Select, file write and delete run inside one datastore transaction so
// a failed write leaves the live rows untouched.
func (a *Archiver) MakeArchive(stationID uint, day time.Time, force, keep bool) (int, error) {
	started := time.Now()
	path := a.Path(stationID, day)

	existed, err := fileExists(path)
	if err != nil {
		a.metrics.RecordOperation("make_archive", "error")
		return 0, err
	}
	if existed && !force {
		a.metrics.RecordOperation("make_archive", "conflict")
		return 0, errors.New(fmt.Errorf("%w: %s", ErrArchiveExists, path)).
			Component("archive").
			Category(errors.CategoryConflict).
			Context("path", path).
			Build()
	}

	count := 0
	wroteFile := false
	err = a.store.Transaction(func(tx *datastore.DataStore) error {
		logs, err := tx.Logs().Station(stationID).On(day).All()
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			return nil
		}

		if err := Write(path, RecordsFromLogs(logs), existed); err != nil {
			return err
		}
		wroteFile = true

		if !keep {
			ids := make([]uint, len(logs))
			for i := range logs {
				ids[i] = logs[i].ID
			}
			if err := tx.DeleteLogs(ids); err != nil {
				return err
			}
		}
		count = len(logs)
		return nil
	})
	if err != nil {
		// The row delete failed after the file was written: the
		// transaction rolled back, so drop a file we newly created to
		// keep archive and live storage consistent.
		if wroteFile && !existed {
			_ = os.Remove(path)
		}
		a.metrics.RecordOperation("make_archive", "error")
		return 0, err
	}

	a.metrics.RecordOperation("make_archive", "success")
	a.metrics.RecordArchivedRecords(count)
	a.metrics.ObserveDuration("make_archive", time.Since(started).Seconds())
	if count > 0 {
		archiveLogger.Info("archived playout logs",
			"station_id", stationID,
			"day", day.UTC().Format(dayLayout),
			"count", count,
			"kept_live_rows", keep)
	}
	return count, nil
}

// LoadArchive reads the archived logs of a station-day, resolving entity
// references through resolver. Returns empty when no archive exists.
func (a *Archiver) LoadArchive(stationID uint, day time.Time, resolver Resolver) ([]datastore.Log, error) {
	logs, err := Read(a.Path(stationID, day), resolver)
	if err != nil {
		a.metrics.RecordOperation("read_archive", "error")
		return nil, err
	}
	a.metrics.RecordOperation("read_archive", "success")
	return logs, nil
}

// Prune removes archive files whose calendar day is before the cutoff
// day and returns the number of files removed. File names drive the
// decision, archives are never opened.
func (a *Archiver) Prune(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		a.metrics.RecordOperation("prune", "error")
		return 0, errors.New(fmt.Errorf("reading archive directory: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("dir", a.dir).
			Build()
	}

	cutoffDay, _ := datastore.DayRange(cutoff)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := dayFromFileName(entry.Name())
		if !ok || !day.Before(cutoffDay) {
			continue
		}
		path := filepath.Join(a.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			a.metrics.RecordOperation("prune", "error")
			return removed, errors.New(fmt.Errorf("removing archive file: %w", err)).
				Component("archive").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
		removed++
	}

	a.metrics.RecordOperation("prune", "success")
	a.metrics.RecordPrunedFiles(removed)
	if removed > 0 {
		archiveLogger.Info("pruned archive files",
			"dir", a.dir,
			"cutoff", cutoffDay.Format(dayLayout),
			"removed", removed)
	}
	return removed, nil
}

// dayFromFileName parses the calendar day out of an archive file name of
// the form <stationID>_<YYYYMMDD>.log.gz.
func dayFromFileName(name string) (time.Time, bool) {
	if !strings.HasSuffix(name, ".log.gz") {
		return time.Time{}, false
	}
	base := strings.TrimSuffix(name, ".log.gz")
	underscore := strings.LastIndex(base, "_")
	if underscore < 0 {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dayLayout, base[underscore+1:], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.New(fmt.Errorf("checking archive file: %w", err)).
		Component("archive").
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}
