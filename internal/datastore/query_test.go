package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/playlog-go/internal/conf"
)

// newTestStore opens an isolated SQLite datastore under a temp directory.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "playlog.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open(), "failed to open test database")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(t *testing.T, d int) time.Time {
	t.Helper()
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedQueryFixture(t *testing.T, store *SQLiteStore) (soundID, trackID, diffusionID uint) {
	t.Helper()

	sound := &Sound{Name: "jingle"}
	track := &Track{Title: "So What", Artist: "Miles Davis"}
	diffusion := &Diffusion{StationID: 1, Start: day(t, 10).Add(10 * time.Hour), End: day(t, 10).Add(11 * time.Hour)}
	require.NoError(t, store.SaveSound(sound))
	require.NoError(t, store.SaveTrack(track))
	require.NoError(t, store.SaveDiffusion(diffusion))

	entries := []Log{
		{StationID: 1, Type: EventStart, Date: day(t, 10).Add(10 * time.Hour), SoundID: &sound.ID},
		{StationID: 1, Type: EventOnAir, Date: day(t, 10).Add(10*time.Hour + 5*time.Minute), TrackID: &track.ID},
		{StationID: 1, Type: EventCancel, Date: day(t, 10).Add(12 * time.Hour), DiffusionID: &diffusion.ID},
		{StationID: 1, Type: EventStart, Date: day(t, 11).Add(9 * time.Hour)},
		{StationID: 2, Type: EventStart, Date: day(t, 10).Add(10 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, store.SaveLog(&entries[i]))
	}
	return sound.ID, track.ID, diffusion.ID
}

func TestLogQuery_StationAndDayFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	logs, err := store.Logs().Station(1).On(day(t, 10)).All()
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	for i := range logs {
		assert.EqualValues(t, 1, logs[i].StationID)
	}
	// All returns ascending date order.
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].Date.Before(logs[i-1].Date))
	}

	count, err := store.Logs().Station(2).On(day(t, 10)).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLogQuery_AfterForms(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	// Full timestamp: compares the stored instant.
	logs, err := store.Logs().Station(1).After(day(t, 10).Add(11 * time.Hour)).All()
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// Bare calendar day: time of day of the bound is ignored.
	logs, err = store.Logs().Station(1).AfterDay(day(t, 11).Add(23 * time.Hour)).All()
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestLogQuery_TypeFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	logs, err := store.Logs().Station(1).OnAir().All()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, EventOnAir, logs[0].Type)

	logs, err = store.Logs().Station(1).Start().All()
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestLogQuery_ReferencePresenceFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	withSound, err := store.Logs().Station(1).WithSound(true).All()
	require.NoError(t, err)
	require.Len(t, withSound, 1)
	require.NotNil(t, withSound[0].Sound, "present reference must be preloaded")
	assert.Equal(t, "jingle", withSound[0].Sound.Name)

	withoutDiffusion, err := store.Logs().Station(1).WithDiffusion(false).All()
	require.NoError(t, err)
	assert.Len(t, withoutDiffusion, 3)

	// Filters compose.
	logs, err := store.Logs().Station(1).On(day(t, 10)).WithTrack(true).All()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, EventOnAir, logs[0].Type)
}

func TestLogQuery_NewestOrdersDescending(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	logs, err := store.Logs().Station(1).Newest()
	require.NoError(t, err)
	require.Len(t, logs, 4)
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].Date.After(logs[i-1].Date), "Newest must order newest first")
	}
}

func TestBulkResolvers_OneQueryPerKind(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	soundID, trackID, diffusionID := seedQueryFixture(t, store)

	sounds, err := store.SoundsByID([]uint{soundID, 9999})
	require.NoError(t, err)
	require.Len(t, sounds, 1, "missing ids are absent, not errors")
	assert.Equal(t, "jingle", sounds[soundID].Name)

	tracks, err := store.TracksByID([]uint{trackID})
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	diffusions, err := store.DiffusionsByID([]uint{diffusionID})
	require.NoError(t, err)
	require.Len(t, diffusions, 1)

	empty, err := store.SoundsByID(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDiffusionsBetween_AscendingAndWindowed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := day(t, 10)
	diffusions := []Diffusion{
		{StationID: 1, Start: base.Add(14 * time.Hour), End: base.Add(15 * time.Hour)},
		{StationID: 1, Start: base.Add(10 * time.Hour), End: base.Add(11 * time.Hour)},
		{StationID: 1, Start: base.Add(48 * time.Hour), End: base.Add(49 * time.Hour)}, // outside range
		{StationID: 2, Start: base.Add(10 * time.Hour), End: base.Add(11 * time.Hour)}, // other station
	}
	for i := range diffusions {
		require.NoError(t, store.SaveDiffusion(&diffusions[i]))
	}

	result, err := store.DiffusionsBetween(1, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.True(t, result[0].Start.Before(result[1].Start), "results must be ordered by ascending start")
}

func TestGetLog_PreloadsAndDangles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	sound := &Sound{Name: "jingle"}
	require.NoError(t, store.SaveSound(sound))
	entry := &Log{StationID: 1, Type: EventStart, Date: day(t, 10), SoundID: &sound.ID}
	require.NoError(t, store.SaveLog(entry))

	loaded, err := store.GetLog(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sound)
	assert.Equal(t, sound, loaded.Related())

	// Deleting the referenced entity leaves the log readable with an
	// absent reference.
	require.NoError(t, store.DeleteSound(sound.ID))
	loaded, err = store.GetLog(entry.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.Sound)

	_, err = store.GetLog(99999)
	require.Error(t, err)
}

func TestDeleteLogs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedQueryFixture(t, store)

	ids, err := store.Logs().Station(1).On(day(t, 10)).IDs()
	require.NoError(t, err)
	require.Len(t, ids, 3)

	require.NoError(t, store.DeleteLogs(ids))
	count, err := store.Logs().Station(1).On(day(t, 10)).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, store.DeleteLogs(nil), "empty delete is a no-op")
}

func TestDayRange(t *testing.T) {
	t.Parallel()

	start, end := DayRange(time.Date(2024, 3, 10, 17, 45, 12, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), end)
}
