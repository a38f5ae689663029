package domain

import "sort"

// MergeAssets folds a batch of freshly written descriptors into an
// entity's existing aggregate. The concatenation of existing then
// incoming is walked once: an element whose position was already seen
// replaces the earlier descriptor in place, otherwise it is appended.
// The result therefore holds exactly one descriptor per distinct
// position, newer entries win ties against older ones, and a later
// duplicate inside the incoming batch wins against an earlier one.
// The merged collection is returned sorted ascending by position.
func MergeAssets(existing, incoming []Asset) []Asset {
	merged := make([]Asset, 0, len(existing)+len(incoming))

	replaceOrAppend := func(a Asset) {
		for i := range merged {
			if merged[i].Position == a.Position {
				merged[i] = a
				return
			}
		}
		merged = append(merged, a)
	}
	for _, a := range existing {
		replaceOrAppend(a)
	}
	for _, a := range incoming {
		replaceOrAppend(a)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Position < merged[j].Position
	})
	return merged
}
