package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/creatorstats/internal/domain"
)

func TestChunkIDs(t *testing.T) {
	ids := make([]int64, 250)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	chunks := ChunkIDs(ids, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)

	// Order and values survive chunking.
	var flattened []int64
	for _, chunk := range chunks {
		flattened = append(flattened, chunk...)
	}
	assert.Equal(t, ids, flattened)
}

func TestChunkIDs_Edges(t *testing.T) {
	assert.Nil(t, ChunkIDs(nil, 100))
	assert.Nil(t, ChunkIDs([]int64{}, 100))

	chunks := ChunkIDs([]int64{1, 2, 3}, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, []int64{1, 2, 3}, chunks[0])

	// Non-positive size falls back to the default instead of panicking.
	chunks = ChunkIDs([]int64{1, 2, 3}, 0)
	require.Len(t, chunks, 1)
}

func TestMergeUnique(t *testing.T) {
	a := []domain.Experience{exp(1, "a1", 10), exp(2, "a2", 20)}
	b := []domain.Experience{exp(2, "b2", 99), exp(3, "b3", 30)}

	merged := mergeUnique(a, b)
	require.Len(t, merged, 3)

	// First-seen order, with the first list winning ties.
	assert.Equal(t, int64(1), merged[0].UniverseID)
	assert.Equal(t, int64(2), merged[1].UniverseID)
	assert.Equal(t, "a2", merged[1].Name)
	assert.Equal(t, int64(3), merged[2].UniverseID)
}

func TestMergeUnique_Empty(t *testing.T) {
	assert.Empty(t, mergeUnique(nil, nil))

	only := []domain.Experience{exp(5, "solo", 1)}
	merged := mergeUnique(only, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, int64(5), merged[0].UniverseID)
}

func TestEligibleRole(t *testing.T) {
	cases := []struct {
		role     string
		isOwner  bool
		eligible bool
	}{
		{"Developer", false, true},
		{"Lead Scripter", false, true},
		{"game-builder", false, true},
		{"CO-OWNER", false, true},
		{"CoOwner", false, true},
		{"Modeler", false, true},
		{"Administrator", false, true},
		{"Development Team", false, true},
		{"Contributors", false, true},
		{"Member", false, false},
		{"Fan", false, false},
		{"", false, false},
		{"Member", true, true}, // owner flag alone qualifies
	}
	for _, tc := range cases {
		m := domain.GroupMembership{RoleName: tc.role, IsOwner: tc.isOwner}
		assert.Equal(t, tc.eligible, eligibleRole(m), "role %q owner=%v", tc.role, tc.isOwner)
	}
}
