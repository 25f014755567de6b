package domain

import (
	"reflect"
	"testing"
)

func TestFindGhosts(t *testing.T) {
	before := `{"carousel": [{"id": 41, "url": "/u/a.jpg"}, {"id": 42, "url": "/u/b.jpg"}], "shortcode": {"ids": "50,51"}}`
	after := `{"carousel": [{"id": 41, "url": "/u/a.jpg"}], "shortcode": {"ids": "50,51"}}`

	tests := []struct {
		name       string
		tree       string
		candidates []int64
		want       []int64
	}{
		{name: "removed id is a ghost", tree: after, candidates: []int64{41, 42}, want: []int64{42}},
		{name: "re-added id is not", tree: before, candidates: []int64{41, 42}, want: []int64{}},
		{name: "ids list counts as reference", tree: after, candidates: []int64{51, 52}, want: []int64{52}},
		{name: "candidates deduped", tree: after, candidates: []int64{42, 42, 99}, want: []int64{42, 99}},
		{name: "no candidates", tree: after, candidates: nil, want: []int64{}},
		{
			name:       "widget id is not an image reference",
			tree:       `[{"id": 42, "elType": "widget", "settings": {"carousel": [{"id": 41, "url": "/u/a.jpg"}]}}]`,
			candidates: []int64{41, 42},
			want:       []int64{42},
		},
		{
			name:       "id paired with an image url counts",
			tree:       `{"post": {"id": 7, "title": "Home"}, "thumb": {"id": 42, "url": "/u/b.jpg"}}`,
			candidates: []int64{7, 42},
			want:       []int64{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := decodeSample(t, tt.tree)
			got := FindGhosts(tree, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindGhosts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferencedIDs_ArrayList(t *testing.T) {
	tree := decodeSample(t, `{"gallery_block": {"ids": [3, "4", 0]}}`)
	ids := ReferencedIDs(tree)
	if !ids[3] || !ids[4] || ids[0] {
		t.Errorf("unexpected ids: %v", ids)
	}
}
