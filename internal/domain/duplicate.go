package domain

import (
	"path"
	"sort"
)

// DuplicateSource tells how a duplicate was found
type DuplicateSource string

const (
	// SourceDuplicate is another media record whose file shares the base key
	SourceDuplicate DuplicateSource = "duplicate"
	// SourceMissingInDatabase is a referenced id with no media record behind it
	SourceMissingInDatabase DuplicateSource = "missing_in_database"
)

// DuplicateDescriptor is one non-primary member of a duplicate group
type DuplicateDescriptor struct {
	ID     int64           `json:"id"`
	Source DuplicateSource `json:"source"`
	File   string          `json:"file,omitempty"` // Backing file, or the referenced url for missing records
}

// DuplicateGroup is a set of assets sharing a base key
type DuplicateGroup struct {
	BaseKey    string                `json:"base_key"`
	PrimaryID  int64                 `json:"primary_id"`
	Duplicates []DuplicateDescriptor `json:"duplicates"`
}

// DuplicateIDs returns the ids of all duplicates in the group
func (g DuplicateGroup) DuplicateIDs() []int64 {
	ids := make([]int64, 0, len(g.Duplicates))
	for _, d := range g.Duplicates {
		ids = append(ids, d.ID)
	}
	return ids
}

// AssetFile is a media asset known to have a resolvable backing file
type AssetFile struct {
	ID   int64
	File string
}

// FindDuplicates groups valid assets by base key and attaches dangling usages
// to the group whose key they share.
//
// Primary selection: among the members valid on the current page
// (validOnPage), the lowest id; when none is, the lowest id of the group.
// The lowest-id rule decides which asset survives a merge, so it must stay
// stable. Groups with fewer than two members are not returned.
func FindDuplicates(assets []AssetFile, validOnPage map[int64]bool, dangling []UsageRecord) []DuplicateGroup {
	byKey := make(map[string][]AssetFile)
	for _, a := range assets {
		if a.ID <= 0 || a.File == "" {
			continue
		}
		key := BaseKey(path.Base(a.File))
		if !IsGroupableKey(key) {
			continue
		}
		byKey[key] = append(byKey[key], a)
	}

	groups := make(map[string]*DuplicateGroup)
	for key, members := range byKey {
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		members = uniqueAssets(members)

		primary := members[0].ID
		for _, m := range members {
			if validOnPage[m.ID] {
				primary = m.ID
				break
			}
		}

		g := &DuplicateGroup{BaseKey: key, PrimaryID: primary}
		for _, m := range members {
			if m.ID == primary {
				continue
			}
			g.Duplicates = append(g.Duplicates, DuplicateDescriptor{ID: m.ID, Source: SourceDuplicate, File: m.File})
		}
		groups[key] = g
	}

	valid := make(map[int64]bool, len(assets))
	for _, a := range assets {
		valid[a.ID] = true
	}

	seen := make(map[int64]bool)
	for _, u := range dangling {
		if u.AssetID <= 0 || valid[u.AssetID] || seen[u.AssetID] {
			continue
		}
		key := BaseKey(u.FileURL)
		g, ok := groups[key]
		if !ok || !IsGroupableKey(key) {
			continue
		}
		seen[u.AssetID] = true
		g.Duplicates = append(g.Duplicates, DuplicateDescriptor{ID: u.AssetID, Source: SourceMissingInDatabase, File: u.FileURL})
	}

	out := make([]DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Duplicates) == 0 {
			continue
		}
		sort.SliceStable(g.Duplicates, func(i, j int) bool { return g.Duplicates[i].ID < g.Duplicates[j].ID })
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrimaryID < out[j].PrimaryID })
	return out
}

func uniqueAssets(sorted []AssetFile) []AssetFile {
	out := sorted[:0]
	var last int64
	for i, a := range sorted {
		if i > 0 && a.ID == last {
			continue
		}
		out = append(out, a)
		last = a.ID
	}
	return out
}

// IndexDuplicates keys groups by primary id
func IndexDuplicates(groups []DuplicateGroup) map[int64][]DuplicateDescriptor {
	idx := make(map[int64][]DuplicateDescriptor, len(groups))
	for _, g := range groups {
		idx[g.PrimaryID] = append(idx[g.PrimaryID], g.Duplicates...)
	}
	return idx
}
