// codec.go: gzip compressed YAML serialization of per-station-per-day
// archive files.
//
// Format decision: a forced re-archive does not append a second gzip
// member. Write reads the existing file, unions records by id (new rows
// win) and rewrites a single gzip member holding a single YAML document,
// so a well-formed archive is always one document. Read stays tolerant of
// multi-member files produced by plain stream appenders: gzip transparently
// decodes concatenated members and records are decoded document by
// document.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tphakala/playlog-go/internal/datastore"
	"github.com/tphakala/playlog-go/internal/errors"
	"gopkg.in/yaml.v3"
)

// dayLayout encodes the calendar day in archive file names.
const dayLayout = "20060102"

// Path returns the archive file path for a station and calendar day:
// <dir>/<stationID>_<YYYYMMDD>.log.gz.
func Path(dir string, stationID uint, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%s.log.gz", stationID, day.UTC().Format(dayLayout)))
}

// Write serializes records into the archive file at path, creating the
// directory if needed. With mergeExisting set, records already present in
// the file are read back first and unioned by id, incoming records
// winning over stored ones.
func Write(path string, records []Record, mergeExisting bool) error {
	if mergeExisting {
		existing, err := readRecords(path)
		if err != nil {
			return err
		}
		records = mergeRecords(existing, records)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(fmt.Errorf("creating archive directory: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	// Write to a temporary file and rename so a failed write never
	// truncates an existing archive.
	tmpPath := path + ".tmp"
	if err := writeRecords(tmpPath, records); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(fmt.Errorf("replacing archive file: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}

func writeRecords(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.New(fmt.Errorf("creating archive file: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	gz := gzip.NewWriter(file)
	enc := yaml.NewEncoder(gz)
	encodeErr := enc.Encode(records)

	// Close order matters: encoder, gzip, then file, so everything is
	// flushed before the handle goes away.
	closeErr := errors.Join(enc.Close(), gz.Close(), file.Close())
	if encodeErr != nil || closeErr != nil {
		return errors.New(fmt.Errorf("writing archive records: %w", errors.Join(encodeErr, closeErr))).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Context("record_count", len(records)).
			Build()
	}
	return nil
}

// mergeRecords unions stored and incoming records by id. Stored order is
// kept for rows both sides know, incoming-only rows append in order.
func mergeRecords(existing, incoming []Record) []Record {
	replacement := make(map[uint]*Record, len(incoming))
	for i := range incoming {
		replacement[incoming[i].ID] = &incoming[i]
	}

	merged := make([]Record, 0, len(existing)+len(incoming))
	for i := range existing {
		if update, ok := replacement[existing[i].ID]; ok {
			merged = append(merged, *update)
			delete(replacement, existing[i].ID)
		} else {
			merged = append(merged, existing[i])
		}
	}
	for i := range incoming {
		if _, ok := replacement[incoming[i].ID]; ok {
			merged = append(merged, incoming[i])
		}
	}
	return merged
}

// readRecords decompresses and decodes every record in the archive file.
// A missing file yields an empty slice and no error.
func readRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(fmt.Errorf("opening archive file: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.New(fmt.Errorf("decompressing archive file: %w", err)).
			Component("archive").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer gz.Close()

	var records []Record
	dec := yaml.NewDecoder(gz)
	for {
		var batch []Record
		if err := dec.Decode(&batch); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.New(fmt.Errorf("parsing archive file: %w", err)).
				Component("archive").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
		records = append(records, batch...)
	}
	return records, nil
}

// Read returns the archived logs stored at path, with entity references
// resolved through one bulk lookup per reference kind. A missing file is
// no data: it returns an empty result and no error. Records referencing
// deleted entities come back with nil references, archived history stays
// readable regardless of what was deleted since.
func Read(path string, resolver Resolver) ([]datastore.Log, error) {
	records, err := readRecords(path)
	if err != nil || len(records) == 0 {
		return nil, err
	}

	soundIDs := collectIDs(records, func(r *Record) *uint { return r.SoundID })
	trackIDs := collectIDs(records, func(r *Record) *uint { return r.TrackID })
	diffusionIDs := collectIDs(records, func(r *Record) *uint { return r.DiffusionID })

	sounds, err := resolver.SoundsByID(soundIDs)
	if err != nil {
		return nil, err
	}
	tracks, err := resolver.TracksByID(trackIDs)
	if err != nil {
		return nil, err
	}
	diffusions, err := resolver.DiffusionsByID(diffusionIDs)
	if err != nil {
		return nil, err
	}

	logs := make([]datastore.Log, len(records))
	for i := range records {
		logs[i] = records[i].toLog(sounds, tracks, diffusions)
	}
	return logs, nil
}

// collectIDs gathers the distinct non-null ids of one reference kind.
func collectIDs(records []Record, ref func(*Record) *uint) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for i := range records {
		id := ref(&records[i])
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	return ids
}
