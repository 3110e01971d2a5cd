package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_InitRejectsBadDimension(t *testing.T) {
	assert.Error(t, NewStorage().Init(0))
}

func TestStorage_UpsertBeforeInit(t *testing.T) {
	assert.Error(t, NewStorage().Upsert([]string{"a"}, [][]float64{{1}}))
}

func TestStorage_SearchOrdersByCosine(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]string{"a", "b", "c", "d"},
		[][]float64{{0, 1}, {1, 0}, {2, 0}, {1, 1}},
	))

	got, err := s.Search([]float64{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids, "equal scores keep insertion order")
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.0, got[3].Score, 1e-9)

	top, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestStorage_UpsertReplaces(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]string{"a"}, [][]float64{{0, 1}}))
	require.NoError(t, s.Upsert([]string{"a"}, [][]float64{{1, 0}}))
	assert.Len(t, s.ids, 1)

	got, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestStorage_Errors(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]string{"a", "b"}, [][]float64{{1, 0}}))
	assert.Error(t, s.Upsert([]string{"a"}, [][]float64{{1, 0, 0}}))
	_, err := s.Search([]float64{1}, 1)
	assert.Error(t, err)
}

func TestStorage_Clear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert([]string{"a"}, [][]float64{{1}}))
	require.NoError(t, s.Clear())
	assert.Empty(t, s.ids)
	got, err := s.Search([]float64{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
