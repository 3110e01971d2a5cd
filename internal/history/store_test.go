package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.Record(ctx, Run{
			ID: id, Collection: "Collection 1", Persona: "Travel Planner", Job: "Plan a trip",
			Mode: "enhanced", Sections: 10 + i,
			StartedAt: base.Add(time.Duration(i) * time.Minute), Duration: 1500 * time.Millisecond,
		}))
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Equal(t, 12, runs[0].Sections)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Minute)))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_RecordReplaces(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	run := Run{ID: "r1", Collection: "c", Persona: "p", Job: "j", Mode: "simple", StartedAt: time.Now()}
	require.NoError(t, s.Record(ctx, run))
	run.Mode = "enhanced"
	require.NoError(t, s.Record(ctx, run))

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "enhanced", runs[0].Mode)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), Run{ID: "r1", StartedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_EmptyList(t *testing.T) {
	runs, err := openStore(t).List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
