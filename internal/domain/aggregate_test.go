package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asset(id string, position int) Asset {
	return Asset{ID: id, EntityID: "E1", Position: position}
}

func positions(assets []Asset) []int {
	out := make([]int, len(assets))
	for i, a := range assets {
		out[i] = a.Position
	}
	return out
}

func TestMergeAssetsIntoEmpty(t *testing.T) {
	incoming := []Asset{asset("a", 0), asset("b", 1), asset("c", 2)}

	merged := MergeAssets(nil, incoming)

	assert.Equal(t, []int{0, 1, 2}, positions(merged))
}

func TestMergeAssetsReplacesByPosition(t *testing.T) {
	existing := []Asset{asset("old0", 0), asset("old1", 1)}
	incoming := []Asset{asset("new0", 0)}

	merged := MergeAssets(existing, incoming)

	require.Len(t, merged, 2)
	assert.Equal(t, "new0", merged[0].ID)
	assert.Equal(t, "old1", merged[1].ID)
}

func TestMergeAssetsAppendsNewPositions(t *testing.T) {
	existing := []Asset{asset("old0", 0)}
	incoming := []Asset{asset("new2", 2), asset("new1", 1)}

	merged := MergeAssets(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, []int{0, 1, 2}, positions(merged))
	assert.Equal(t, "old0", merged[0].ID)
	assert.Equal(t, "new1", merged[1].ID)
	assert.Equal(t, "new2", merged[2].ID)
}

func TestMergeAssetsLaterBatchDuplicateWins(t *testing.T) {
	incoming := []Asset{asset("first", 0), asset("second", 0)}

	merged := MergeAssets(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "second", merged[0].ID)
}

func TestMergeAssetsSortsUnorderedExisting(t *testing.T) {
	existing := []Asset{asset("c", 2), asset("a", 0)}
	incoming := []Asset{asset("b", 1)}

	merged := MergeAssets(existing, incoming)

	assert.Equal(t, []int{0, 1, 2}, positions(merged))
}

func TestMergeAssetsEmptyBatchKeepsExisting(t *testing.T) {
	existing := []Asset{asset("a", 1), asset("b", 0)}

	merged := MergeAssets(existing, nil)

	assert.Equal(t, []int{0, 1}, positions(merged))
}
