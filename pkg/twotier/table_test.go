package twotier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/twotier/pkg/twotier"
)

func Test_Create_Returns_Error_When_Capacity_Invalid(t *testing.T) {
	t.Parallel()

	_, err := twotier.Create(0, 8)
	require.ErrorIs(t, err, twotier.ErrInvalidCapacity)

	_, err = twotier.Create(-1, 8)
	require.ErrorIs(t, err, twotier.ErrInvalidCapacity)
}

func Test_Create_Returns_Error_When_ValueWidth_Invalid(t *testing.T) {
	t.Parallel()

	_, err := twotier.Create(16, -1)
	require.ErrorIs(t, err, twotier.ErrInvalidValueWidth)
}

func Test_Create_Rounds_Capacity_Up_To_Power_Of_Two(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(5, 8)
	require.NoError(t, err)

	stats := table.Stats()
	assert.Equal(t, uint64(8), stats.T1Size, "5 should round up to the minimum size of 8")
}

func Test_Create_Allows_Zero_Width_Values(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(16, 0)
	require.NoError(t, err)

	ok := table.Insert(42, nil)
	require.True(t, ok)

	value, found := table.Find(42)
	require.True(t, found)
	assert.Empty(t, value)
}

func Test_Stats_Reports_Geometry(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(64, 4)
	require.NoError(t, err)

	stats := table.Stats()
	assert.Equal(t, uint64(64), stats.T1Size)
	assert.Equal(t, uint64(8), stats.T2Size)
	assert.Equal(t, 4, stats.ValueBytes)
	assert.False(t, stats.ZeroKeyInOverflow)
	assert.Zero(t, stats.T1OverflowChains)
}

func Test_NeedsGrow_Is_False_For_Fresh_Table(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(64, 4)
	require.NoError(t, err)

	assert.False(t, table.NeedsGrow())
}

func Test_NeedsGrow_Becomes_True_Under_Heavy_Overflow_Load(t *testing.T) {
	t.Parallel()

	// A small table with a tiny overflow tier (t2Size = t1Size/8 = 2) exhausts
	// its overflowInsertsRemaining guard (floor(2*0.75)+1 = 2) after two
	// spills to the overflow tier, which happens quickly under load.
	table, err := twotier.Create(16, 2)
	require.NoError(t, err)

	for i := uint64(0); i < 100 && !table.NeedsGrow(); i++ {
		table.Insert(i*104729, []byte{byte(i), byte(i >> 8)})
	}

	assert.True(t, table.NeedsGrow(), "overflowInsertsRemaining should have been exhausted by heavy load on a small table")
}

func Test_Grow_Preserves_All_Entries(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 8)
	require.NoError(t, err)

	want := map[uint64][]byte{}
	for i := uint64(1); i <= 20; i++ {
		v := make([]byte, 8)
		v[0] = byte(i)
		require.True(t, table.Insert(i*97, v))
		want[i*97] = v
	}

	grown, err := table.Grow(256)
	require.NoError(t, err)

	for k, v := range want {
		got, found := grown.Find(k)
		require.True(t, found, "key %d should survive Grow", k)
		assert.Equal(t, v, got)
	}
}
