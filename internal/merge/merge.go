// Package merge interleaves scheduled diffusions with playout logs into a
// single chronological history feed.
package merge

import (
	"time"

	"github.com/tphakala/playlog-go/internal/datastore"
)

// Entry is one item of the merged feed: either a log or a diffusion.
// Exactly one of the two fields is set.
type Entry struct {
	Log       *datastore.Log
	Diffusion *datastore.Diffusion
}

// IsDiffusion reports whether the entry is a scheduled diffusion.
func (e Entry) IsDiffusion() bool {
	return e.Diffusion != nil
}

// Date returns the entry's position on the timeline: the event timestamp
// for a log, the window start for a diffusion.
func (e Entry) Date() time.Time {
	if e.Diffusion != nil {
		return e.Diffusion.Start
	}
	return e.Log.Date
}

// Diffusions merges logs and diffusions into one chronologically ordered
// feed, nesting each diffusion's logs directly after it.
//
// Inputs follow the storage ordering: logs newest first, diffusions by
// ascending start. Both must be pre-sorted by the caller.
//
// For each diffusion, logs strictly before its start are emitted first,
// then the diffusion, then the logs falling inside its half-open
// [start, end) window. Logs at or after end wait for the next diffusion.
// When either input runs out the rest of the other is appended in
// chronological order, so orphan logs and diffusions without any logged
// airing still appear exactly once. A positive count truncates the
// result.
func Diffusions(logs []datastore.Log, diffusions []datastore.Diffusion, count int) []Entry {
	feed := make([]Entry, 0, len(logs)+len(diffusions))

	// Logs arrive newest first and are consumed as a stack: the oldest
	// remaining log sits at the end of the slice.
	next := len(logs) - 1

	popLog := func() Entry {
		entry := Entry{Log: &logs[next]}
		next--
		return entry
	}

	for _, diffusion := range diffusions {
		d := diffusion

		// Logs preceding the diffusion's window.
		for next >= 0 && logs[next].Date.Before(d.Start) {
			feed = append(feed, popLog())
		}

		feed = append(feed, Entry{Diffusion: &d})

		// Logs inside [start, end): date >= start was just established,
		// keep consuming while date < end.
		for next >= 0 && logs[next].Date.Before(d.End) {
			feed = append(feed, popLog())
		}
	}

	// Remaining logs are newer than every diffusion window.
	for next >= 0 {
		feed = append(feed, popLog())
	}

	if count > 0 && len(feed) > count {
		feed = feed[:count]
	}
	return feed
}
