package domain

import (
	"reflect"
	"testing"
)

func TestFindDuplicates_LowestIDIsPrimary(t *testing.T) {
	assets := []AssetFile{
		{ID: 12, File: "2024/05/sunset-1.jpg"},
		{ID: 4, File: "2024/05/sunset.jpg"},
		{ID: 9, File: "2024/06/sunset-scaled.jpg"},
		{ID: 20, File: "2024/06/lighthouse.jpg"},
	}

	groups := FindDuplicates(assets, nil, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}

	g := groups[0]
	if g.BaseKey != "sunset" {
		t.Errorf("expected base key sunset, got %q", g.BaseKey)
	}
	if g.PrimaryID != 4 {
		t.Errorf("expected primary 4, got %d", g.PrimaryID)
	}
	if got := g.DuplicateIDs(); !reflect.DeepEqual(got, []int64{9, 12}) {
		t.Errorf("expected duplicates [9 12], got %v", got)
	}
	for _, d := range g.Duplicates {
		if d.Source != SourceDuplicate {
			t.Errorf("duplicate %d: expected source %q, got %q", d.ID, SourceDuplicate, d.Source)
		}
	}
}

func TestFindDuplicates_PrefersAssetValidOnPage(t *testing.T) {
	assets := []AssetFile{
		{ID: 3, File: "sunset.jpg"},
		{ID: 8, File: "sunset-1.jpg"},
		{ID: 15, File: "sunset-2.jpg"},
	}

	groups := FindDuplicates(assets, map[int64]bool{8: true, 15: true}, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].PrimaryID != 8 {
		t.Errorf("expected primary 8, got %d", groups[0].PrimaryID)
	}
	if got := groups[0].DuplicateIDs(); !reflect.DeepEqual(got, []int64{3, 15}) {
		t.Errorf("expected duplicates [3 15], got %v", got)
	}
}

func TestFindDuplicates_DanglingUsageJoinsGroup(t *testing.T) {
	assets := []AssetFile{{ID: 5, File: "2023/01/beach.jpg"}}
	dangling := []UsageRecord{
		{AssetID: 99, DocumentID: 1, FileURL: "https://example.com/uploads/beach-1024x768.jpg", Dangling: true},
		{AssetID: 99, DocumentID: 2, FileURL: "https://example.com/uploads/beach.jpg", Dangling: true},
		{AssetID: 77, DocumentID: 1, FileURL: "https://example.com/uploads/forest.jpg", Dangling: true},
	}

	groups := FindDuplicates(assets, nil, dangling)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}

	want := DuplicateGroup{
		BaseKey:   "beach",
		PrimaryID: 5,
		Duplicates: []DuplicateDescriptor{
			{ID: 99, Source: SourceMissingInDatabase, File: "https://example.com/uploads/beach-1024x768.jpg"},
		},
	}
	if !reflect.DeepEqual(groups[0], want) {
		t.Errorf("got %+v, want %+v", groups[0], want)
	}
}

func TestFindDuplicates_NeverPrimaryAndDuplicate(t *testing.T) {
	assets := []AssetFile{
		{ID: 1, File: "harbor.jpg"},
		{ID: 1, File: "harbor.jpg"},
		{ID: 2, File: "harbor-1.jpg"},
		{ID: 6, File: "meadow.png"},
		{ID: 7, File: "meadow-300x200.png"},
	}
	dangling := []UsageRecord{{AssetID: 1, FileURL: "harbor.jpg", Dangling: true}}

	groups := FindDuplicates(assets, nil, dangling)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	for _, g := range groups {
		for _, d := range g.Duplicates {
			if d.ID == g.PrimaryID {
				t.Errorf("group %q lists primary %d as duplicate", g.BaseKey, g.PrimaryID)
			}
		}
	}
	if got := groups[0].DuplicateIDs(); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("expected harbor duplicates [2], got %v", got)
	}
}

func TestFindDuplicates_SkipsGenericNames(t *testing.T) {
	assets := []AssetFile{
		{ID: 1, File: "photo.jpg"},
		{ID: 2, File: "photo-1.jpg"},
		{ID: 3, File: "screenshot-2.png"},
		{ID: 4, File: "screenshot.png"},
		{ID: 5, File: ""},
		{ID: 6, File: "ab.jpg"},
		{ID: 7, File: "ab-1.jpg"},
	}

	if groups := FindDuplicates(assets, nil, nil); len(groups) != 0 {
		t.Errorf("expected no groups, got %+v", groups)
	}
}

func TestIndexDuplicates(t *testing.T) {
	groups := []DuplicateGroup{
		{BaseKey: "a", PrimaryID: 1, Duplicates: []DuplicateDescriptor{{ID: 2}}},
		{BaseKey: "b", PrimaryID: 3, Duplicates: []DuplicateDescriptor{{ID: 4}, {ID: 5}}},
	}

	idx := IndexDuplicates(groups)
	if len(idx[1]) != 1 || len(idx[3]) != 2 {
		t.Errorf("unexpected index: %+v", idx)
	}
}
