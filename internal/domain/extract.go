package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// singleImageFields hold one {id, url} image value
var singleImageFields = map[string]bool{
	"image":                    true,
	"background_image":         true,
	"bg_image":                 true,
	"background_overlay_image": true,
	"testimonial_image":        true,
	"ribbon_image":             true,
	"logo_image":               true,
	"icon_image":               true,
	"avatar":                   true,
	"poster":                   true,
	"video_poster":             true,
}

// listImageFields hold an array of {id, url} image values
var listImageFields = map[string]bool{
	"carousel":   true,
	"gallery":    true,
	"wp_gallery": true,
	"slides":     true,
}

var widgetTypeKeys = []string{"widgetType", "widget_type", "elType"}

var hintKeys = []string{"_css_classes", "css_classes", "css_id", "_element_id", "class", "className"}

// ImageRef is one image value found in a document tree. Value is the live map
// inside the tree, so callers may rewrite it in place.
type ImageRef struct {
	Value    map[string]any
	AssetID  int64
	URL      string
	Field    string
	Role     Role
	Fallback bool // Found by the generic id+url pass rather than a known field
}

// WalkImageRefs visits every image value in tree. Known image-bearing fields
// are reported first; then any remaining map carrying an id and an image url
// is reported with RoleOther. Unknown shapes are skipped silently.
func WalkImageRefs(tree any, fn func(ImageRef)) {
	claimed := make(map[string]bool)

	w := &refWalker{
		fn: func(ref ImageRef) {
			claimed[refKey(ref.AssetID, ref.URL)] = true
			fn(ref)
		},
	}
	w.visit(tree, scope{})

	walkFallback(tree, func(m map[string]any) {
		id, ok := ParseAssetID(m["id"])
		if !ok {
			return
		}
		url, _ := m["url"].(string)
		if url == "" || !HasImageExtension(url) {
			return
		}
		k := refKey(id, url)
		if claimed[k] {
			return
		}
		claimed[k] = true
		fn(ImageRef{Value: m, AssetID: id, URL: url, Field: "", Role: RoleOther, Fallback: true})
	})
}

func refKey(id int64, url string) string {
	return strconv.FormatInt(id, 10) + "|" + url
}

// scope carries inherited context down the tree
type scope struct {
	widgetType string
	hints      string
}

type refWalker struct {
	fn func(ImageRef)
}

func (w *refWalker) visit(node any, sc scope) {
	switch n := node.(type) {
	case map[string]any:
		sc = deriveScope(n, sc)

		for _, k := range sortedKeys(n) {
			v := n[k]
			lk := strings.ToLower(k)
			switch {
			case singleImageFields[lk]:
				if m, ok := v.(map[string]any); ok {
					w.emit(m, k, ClassifyRole(lk, sc.widgetType, sc.hints, false))
					continue
				}
			case listImageFields[lk]:
				if arr, ok := v.([]any); ok {
					role := ClassifyRole(lk, sc.widgetType, sc.hints, true)
					for _, item := range arr {
						if m, ok := item.(map[string]any); ok {
							w.emit(m, k, role)
						}
					}
					continue
				}
			}
			w.visit(v, sc)
		}

	case []any:
		for _, item := range n {
			w.visit(item, sc)
		}
	}
}

func (w *refWalker) emit(m map[string]any, field string, role Role) {
	id, ok := ParseAssetID(m["id"])
	if !ok {
		return
	}
	url, _ := m["url"].(string)
	w.fn(ImageRef{Value: m, AssetID: id, URL: url, Field: field, Role: role})
}

func deriveScope(n map[string]any, parent scope) scope {
	sc := parent
	for _, k := range widgetTypeKeys {
		if s, ok := n[k].(string); ok && s != "" && s != "widget" {
			sc.widgetType = s
			break
		}
	}

	var hints []string
	if parent.hints != "" {
		hints = append(hints, parent.hints)
	}
	collectHints(n, &hints)
	if settings, ok := n["settings"].(map[string]any); ok {
		collectHints(settings, &hints)
	}
	sc.hints = strings.Join(hints, " ")
	return sc
}

func collectHints(m map[string]any, hints *[]string) {
	for _, k := range hintKeys {
		if s, ok := m[k].(string); ok && s != "" {
			*hints = append(*hints, s)
		}
	}
}

func walkFallback(node any, fn func(map[string]any)) {
	switch n := node.(type) {
	case map[string]any:
		fn(n)
		for _, k := range sortedKeys(n) {
			walkFallback(n[k], fn)
		}
	case []any:
		for _, item := range n {
			walkFallback(item, fn)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseAssetID accepts the numeric shapes an id takes in decoded JSON.
// Zero, negative and non-numeric values are rejected.
func ParseAssetID(v any) (int64, bool) {
	var id int64
	switch x := v.(type) {
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		id = int64(x)
	case int:
		id = int64(x)
	case int64:
		id = x
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}

// Extractor turns document trees into usage records
type Extractor struct {
	Boxes []VariantBox
}

// NewExtractor creates an Extractor resolving variant names against boxes
func NewExtractor(boxes []VariantBox) *Extractor {
	return &Extractor{Boxes: boxes}
}

// Extract harvests the image usages of one document. resolve reports whether
// an id belongs to a valid media record; unresolved ids are still recorded,
// flagged Dangling, so they can be matched against existing assets later.
func (x *Extractor) Extract(documentID int64, tree any, resolve func(int64) bool) []UsageRecord {
	var records []UsageRecord
	WalkImageRefs(tree, func(ref ImageRef) {
		records = append(records, UsageRecord{
			AssetID:     ref.AssetID,
			DocumentID:  documentID,
			Role:        ref.Role,
			VariantName: MatchVariant(ref.URL, x.Boxes),
			FileURL:     ref.URL,
			Dangling:    resolve != nil && !resolve(ref.AssetID),
		})
	})
	return records
}

// DecodeTree parses a serialized document tree. Numbers decode as json.Number
// so large ids survive intact.
func DecodeTree(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding document tree: %w", err)
	}
	return tree, nil
}

// EncodeTree serializes a document tree
func EncodeTree(tree any) ([]byte, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding document tree: %w", err)
	}
	return data, nil
}
