package game

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRooms_Partition(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	for i := 0; i < 50; i++ {
		room0, room1 := assignRooms(ids)

		require.Len(t, room0, 4)
		require.Len(t, room1, 4)

		union := append(append([]string{}, room0...), room1...)
		sort.Strings(union)
		if diff := cmp.Diff(ids, union); diff != "" {
			t.Fatalf("rooms do not partition the players (-want +got):\n%s", diff)
		}

		for _, id := range room0 {
			assert.NotContains(t, room1, id)
		}
	}
}

func TestAssignRooms_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e", "f"}
	assignRooms(ids)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids)
}
