package twotier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/twotier/pkg/twotier"
)

func Test_Find_Reports_Missing_On_Empty_Table(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 4)
	require.NoError(t, err)

	_, found := table.Find(123)
	assert.False(t, found)
}

func Test_Find_Reports_Missing_For_Unrelated_Key_In_Same_Neighborhood(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(64, 2)
	require.NoError(t, err)

	require.True(t, table.Insert(1, []byte{1, 1}))
	require.True(t, table.Insert(2, []byte{2, 2}))
	require.True(t, table.Insert(3, []byte{3, 3}))

	_, found := table.Find(999999)
	assert.False(t, found)
}

func Test_Find_Returned_Slice_Aliases_Table_Storage(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(32, 4)
	require.NoError(t, err)

	require.True(t, table.Insert(5, []byte{0, 0, 0, 0}))

	value, found := table.Find(5)
	require.True(t, found)

	value[0] = 0xFF

	again, found := table.Find(5)
	require.True(t, found)
	assert.Equal(t, byte(0xFF), again[0], "mutating the returned slice should be visible through a fresh Find")
}

func Test_Find_After_Many_Inserts_Matches_What_Was_Stored(t *testing.T) {
	t.Parallel()

	table, err := twotier.Create(256, 4)
	require.NoError(t, err)

	want := make(map[uint64][4]byte)

	for i := uint64(0); i < 150; i++ {
		k := i * 40503
		v := [4]byte{byte(i), byte(i * 3), byte(i * 7), byte(i * 11)}

		require.True(t, table.Insert(k, v[:]))
		want[k] = v
	}

	for k, v := range want {
		got, found := table.Find(k)
		require.True(t, found)
		assert.Equal(t, v[:], got)
	}
}
