// model.go: this code defines the data model for the playout log engine
package datastore

import "time"

// EventType enumerates the kinds of broadcast events a source can emit.
// Values are part of the archive file format and must not be reordered.
type EventType int

const (
	EventStop   EventType = iota // audio stopped
	EventStart                   // audio started
	EventCancel                  // scheduled diffusion did not run
	EventOnAir                   // audio is on air
	EventOther                   // anything else reported by a source
)

// String returns a short lowercase name for the event type.
func (t EventType) String() string {
	switch t {
	case EventStop:
		return "stop"
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventOnAir:
		return "on_air"
	case EventOther:
		return "other"
	default:
		return "unknown"
	}
}

// Station owns logs and diffusions. Timezone is the IANA zone used to
// interpret UTC event timestamps for display.
type Station struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Timezone string
}

// Sound is an audio file known to the station, referenced by logs.
type Sound struct {
	ID   uint `gorm:"primaryKey"`
	Name string
	Path string
}

// Track is a playlist item referenced by logs.
type Track struct {
	ID     uint `gorm:"primaryKey"`
	Title  string
	Artist string
}

// Diffusion is a scheduled broadcast slot with a half-open [Start, End)
// window, independent of whether any audio actually played.
type Diffusion struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"index"`
	// Column names avoid the reserved words START and END so the same
	// model works on both sqlite and mysql.
	Start time.Time `gorm:"column:start_at;index"`
	End   time.Time `gorm:"column:end_at"`
}

// Log is a single broadcast event reported by a station source.
//
// Date is an append-only fact: it is set at creation and never updated.
// The three entity references are weak, deleting the referenced entity
// nulls the reference instead of cascading onto the log.
type Log struct {
	ID        uint      `gorm:"primaryKey"`
	StationID uint      `gorm:"index:idx_logs_station_date"`
	Type      EventType `gorm:"index:idx_logs_type"`
	Date      time.Time `gorm:"index:idx_logs_station_date;index:idx_logs_date"`
	Source    string
	Comment   string

	SoundID     *uint `gorm:"index"`
	TrackID     *uint `gorm:"index"`
	DiffusionID *uint `gorm:"index"`

	Sound     *Sound     `gorm:"foreignKey:SoundID;constraint:OnDelete:SET NULL"`
	Track     *Track     `gorm:"foreignKey:TrackID;constraint:OnDelete:SET NULL"`
	Diffusion *Diffusion `gorm:"foreignKey:DiffusionID;constraint:OnDelete:SET NULL"`
}

// Related returns the first resolved reference of the log, checking
// sound, track and diffusion in that order. Returns nil when the log
// references nothing or every reference dangles.
func (l *Log) Related() any {
	switch {
	case l.Sound != nil:
		return l.Sound
	case l.Track != nil:
		return l.Track
	case l.Diffusion != nil:
		return l.Diffusion
	default:
		return nil
	}
}

// LocalDate returns the event timestamp converted to the station's
// timezone. Falls back to UTC when the zone is unknown or unset.
func (l *Log) LocalDate(station *Station) time.Time {
	if station == nil || station.Timezone == "" {
		return l.Date.UTC()
	}
	loc, err := time.LoadLocation(station.Timezone)
	if err != nil {
		return l.Date.UTC()
	}
	return l.Date.In(loc)
}
