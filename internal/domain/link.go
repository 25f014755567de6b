package domain

import (
	"strconv"
	"strings"
)

// LinkTarget resolves the url a relinked reference should point at for its role
type LinkTarget func(role Role) string

// RelinkReferences rewrites, in place, every image reference to one of the
// duplicate ids so it points at the primary asset. The url is replaced by
// target(role) when that is non-empty. Gallery "ids" lists are rewritten too.
// Returns the number of references changed.
func RelinkReferences(tree any, duplicates map[int64]bool, primaryID int64, target LinkTarget) int {
	changed := 0
	WalkImageRefs(tree, func(ref ImageRef) {
		if !duplicates[ref.AssetID] {
			return
		}
		ref.Value["id"] = primaryID
		if target != nil {
			if url := target(ref.Role); url != "" {
				ref.Value["url"] = url
			}
		}
		changed++
	})
	changed += relinkIDLists(tree, duplicates, primaryID)
	return changed
}

func relinkIDLists(node any, duplicates map[int64]bool, primaryID int64) int {
	changed := 0
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if strings.EqualFold(k, "ids") {
				if s, ok := v.(string); ok {
					parts := strings.Split(s, ",")
					for i, p := range parts {
						if id, ok := ParseAssetID(p); ok && duplicates[id] {
							parts[i] = strconv.FormatInt(primaryID, 10)
							changed++
						}
					}
					n[k] = strings.Join(parts, ",")
					continue
				}
				if arr, ok := v.([]any); ok {
					for i, item := range arr {
						if id, ok := ParseAssetID(item); ok && duplicates[id] {
							arr[i] = primaryID
							changed++
						}
					}
					continue
				}
			}
			changed += relinkIDLists(v, duplicates, primaryID)
		}
	case []any:
		for _, item := range n {
			changed += relinkIDLists(item, duplicates, primaryID)
		}
	}
	return changed
}
