package twotier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/twotier/pkg/twotier"
)

func Test_Insert_Then_Find_RoundTrips(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 4)
	require.NoError(t, err)

	require.True(t, table.Insert(7, []byte{1, 2, 3, 4}))

	value, found := table.Find(7)
	require.True(t, found)
	assert.Equal(t, []byte{1, 2, 3, 4}, value)
}

func Test_Insert_Overwrites_Existing_Key(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 4)
	require.NoError(t, err)

	require.True(t, table.Insert(7, []byte{1, 1, 1, 1}))
	require.True(t, table.Insert(7, []byte{2, 2, 2, 2}))

	value, found := table.Find(7)
	require.True(t, found)
	assert.Equal(t, []byte{2, 2, 2, 2}, value)
}

func Test_Insert_Rejects_Wrong_Value_Width(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 4)
	require.NoError(t, err)

	ok := table.Insert(7, []byte{1, 2, 3})
	assert.False(t, ok)

	_, found := table.Find(7)
	assert.False(t, found, "a rejected insert must not store anything")
}

func Test_Insert_Zero_Key_Is_Not_Special_In_Primary_Tier(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 2)
	require.NoError(t, err)

	require.True(t, table.Insert(0, []byte{9, 9}))

	value, found := table.Find(0)
	require.True(t, found)
	assert.Equal(t, []byte{9, 9}, value)
}

func Test_Insert_Handles_Colliding_Neighborhood(t *testing.T) {
	t.Parallel()

	// A small table forces collisions within a handful of insertions,
	// exercising the right/left probe and push paths without needing a
	// huge key set, while still leaving the overflow tier enough slack
	// that the handful of possible evictions can't exhaust it.
	table, err := twotier.Create(64, 2)
	require.NoError(t, err)

	keys := []uint64{1, 2, 3, 4, 5, 6}
	for i, k := range keys {
		v := []byte{byte(i), byte(i + 1)}
		require.True(t, table.Insert(k, v), "insert of key %d should place the new key", k)
	}

	for i, k := range keys {
		want := []byte{byte(i), byte(i + 1)}
		got, found := table.Find(k)
		require.True(t, found, "key %d should be found after neighborhood was built up", k)
		assert.Equal(t, want, got)
	}
}

func Test_Insert_Many_Keys_Survive_Heavy_Load(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(512, 8)
	require.NoError(t, err)

	const n = 300

	for i := uint64(0); i < n; i++ {
		v := make([]byte, 8)
		v[0] = byte(i)
		v[1] = byte(i >> 8)
		require.True(t, table.Insert(i*2654435761, v), "insert %d should succeed at this load factor", i)
	}

	for i := uint64(0); i < n; i++ {
		want := make([]byte, 8)
		want[0] = byte(i)
		want[1] = byte(i >> 8)

		got, found := table.Find(i * 2654435761)
		require.True(t, found, "key derived from %d should be present", i)
		assert.Equal(t, want, got)
	}
}
