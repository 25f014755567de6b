package domain

import "strings"

// ReferencedIDs collects the asset ids a tree still mentions: ids of image
// values (known image fields, or maps pairing an id with an image url) and
// the comma lists under "ids" keys used by gallery shortcodes. Bare numeric
// ids on widgets, sections or posts are not counted. Any "ids" list counts
// whatever its owner, so an unrelated list of numbers can still hide a ghost.
func ReferencedIDs(tree any) map[int64]bool {
	ids := make(map[int64]bool)
	WalkImageRefs(tree, func(ref ImageRef) {
		ids[ref.AssetID] = true
	})
	collectIDLists(tree, ids)
	return ids
}

func collectIDLists(node any, ids map[int64]bool) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if strings.EqualFold(k, "ids") {
				collectIDList(v, ids)
			}
			collectIDLists(v, ids)
		}
	case []any:
		for _, item := range n {
			collectIDLists(item, ids)
		}
	}
}

func collectIDList(v any, ids map[int64]bool) {
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ",") {
			if id, ok := ParseAssetID(part); ok {
				ids[id] = true
			}
		}
	case []any:
		for _, item := range x {
			if id, ok := ParseAssetID(item); ok {
				ids[id] = true
			}
		}
	}
}

// FindGhosts returns the candidate ids that no longer appear in tree, in
// candidate order. Ghosts are advisory: deleting them is a separate step.
func FindGhosts(tree any, candidates []int64) []int64 {
	present := ReferencedIDs(tree)
	ghosts := []int64{}
	seen := make(map[int64]bool, len(candidates))
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !present[id] {
			ghosts = append(ghosts, id)
		}
	}
	return ghosts
}
