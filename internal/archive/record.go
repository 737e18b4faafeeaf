// record.go: on-disk record layout for archive files.
//
// Field names are an external contract: readers of previously written
// archives depend on these exact keys.
package archive

import (
	"time"

	"github.com/tphakala/playlog-go/internal/datastore"
)

// Record is the serialized form of one log row. Optional fields are
// omitted from the document when absent.
type Record struct {
	ID          uint      `yaml:"id"`
	StationID   uint      `yaml:"station_id"`
	Type        int       `yaml:"type"`
	Date        time.Time `yaml:"date"`
	Source      string    `yaml:"source,omitempty"`
	Comment     string    `yaml:"comment,omitempty"`
	SoundID     *uint     `yaml:"sound_id,omitempty"`
	TrackID     *uint     `yaml:"track_id,omitempty"`
	DiffusionID *uint     `yaml:"diffusion_id,omitempty"`
}

// RecordFromLog converts a live log row to its archive form.
func RecordFromLog(entry *datastore.Log) Record {
	return Record{
		ID:          entry.ID,
		StationID:   entry.StationID,
		Type:        int(entry.Type),
		Date:        entry.Date.UTC(),
		Source:      entry.Source,
		Comment:     entry.Comment,
		SoundID:     entry.SoundID,
		TrackID:     entry.TrackID,
		DiffusionID: entry.DiffusionID,
	}
}

// RecordsFromLogs converts a batch of live rows to archive records.
func RecordsFromLogs(logs []datastore.Log) []Record {
	records := make([]Record, len(logs))
	for i := range logs {
		records[i] = RecordFromLog(&logs[i])
	}
	return records
}

// toLog reconstitutes a transient log value from the record, attaching
// the resolved entities. Unresolvable references stay nil.
func (r *Record) toLog(sounds map[uint]*datastore.Sound, tracks map[uint]*datastore.Track, diffusions map[uint]*datastore.Diffusion) datastore.Log {
	entry := datastore.Log{
		ID:          r.ID,
		StationID:   r.StationID,
		Type:        datastore.EventType(r.Type),
		Date:        r.Date.UTC(),
		Source:      r.Source,
		Comment:     r.Comment,
		SoundID:     r.SoundID,
		TrackID:     r.TrackID,
		DiffusionID: r.DiffusionID,
	}
	if r.SoundID != nil {
		entry.Sound = sounds[*r.SoundID]
	}
	if r.TrackID != nil {
		entry.Track = tracks[*r.TrackID]
	}
	if r.DiffusionID != nil {
		entry.Diffusion = diffusions[*r.DiffusionID]
	}
	return entry
}
