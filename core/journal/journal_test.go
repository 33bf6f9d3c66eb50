package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/timetable"
	"github.com/kilianp07/timetable/internal/eventbus"
)

func sample(base time.Time) []Record {
	return []Record{
		{ID: "1", Timestamp: base, Action: "set_cell", Target: "Monday_0", Value: "Math", Filled: 1},
		{ID: "2", Timestamp: base.Add(time.Minute), Action: "set_cell", Target: "Monday_1", Value: "English", Filled: 2},
		{ID: "3", Timestamp: base.Add(2 * time.Minute), Action: "clear_cell", Target: "Monday_0", Filled: 1},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	for _, r := range sample(base) {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].ID)
	assert.True(t, base.Equal(all[0].Timestamp))

	sets, err := s.Query(ctx, Query{Action: "set_cell"})
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	cell, err := s.Query(ctx, Query{Target: "Monday_0"})
	require.NoError(t, err)
	assert.Len(t, cell, 2)

	window, err := s.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "English", window[0].Value)

	last, err := s.Query(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "3", last[0].ID)

	none, err := s.Query(ctx, Query{Action: "reset"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "sub", "journal.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingStore(t *testing.T) {
	s, err := NewRotatingStore(filepath.Join(t.TempDir(), "journal.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingStoreRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	s, err := NewRotatingStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	big := make([]byte, 64*1024)
	for i := range big {
		big[i] = 'x'
	}
	rec := Record{ID: "r", Timestamp: time.Now().UTC(), Action: "import", Value: string(big)}
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "journal*.jsonl"))
	assert.Greater(t, len(files), 1)
	out, err := s.Query(context.Background(), Query{Action: "import"})
	require.NoError(t, err)
	assert.Len(t, out, 20)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	cases := []Config{
		{},
		{Backend: BackendJSONL, Options: map[string]any{"path": filepath.Join(dir, "a.jsonl")}},
		{Backend: BackendRotating, Options: map[string]any{"path": filepath.Join(dir, "b.jsonl"), "max_size_mb": "2"}},
		{Backend: BackendSQLite, Options: map[string]any{"path": filepath.Join(dir, "c.db")}},
	}
	for _, cfg := range cases {
		s, err := Open(cfg)
		require.NoError(t, err, cfg.Backend)
		require.NoError(t, s.Append(context.Background(), Record{ID: "x", Timestamp: time.Now().UTC(), Action: "reset"}))
		require.NoError(t, s.Close())
	}
	assert.Equal(t, []string{"jsonl", "memory", "rotating", "sqlite"}, Backends())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "influx"})
	assert.Error(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	assert.Error(t, Register(BackendMemory, func(map[string]any) (Store, error) { return NewMemoryStore(), nil }))
	assert.Error(t, Register("nil", nil))
}

func TestWriterRunDrainsBus(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, nil)
	ids := 0
	w.newID = func() string { ids++; return string(rune('a' + ids - 1)) }

	bus := eventbus.New[timetable.Change](4)
	ch := bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { w.Run(ctx, ch); close(done) }()

	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.FixedZone("GMT+1", 3600))
	bus.Publish(timetable.Change{Action: timetable.ActionSetCell, Target: "Monday_0", Value: "Math", At: at, Filled: 1})
	bus.Publish(timetable.Change{Action: timetable.ActionReset, At: at})
	bus.Close()
	<-done

	recs, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "set_cell", recs[0].Action)
	assert.Equal(t, time.UTC, recs[0].Timestamp.Location())
	assert.Equal(t, "reset", recs[1].Action)
}
