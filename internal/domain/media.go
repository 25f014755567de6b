package domain

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// MediaAsset is a stored image record with its backing file and derived variants
type MediaAsset struct {
	ID          int64
	File        string // Path relative to the storage root; empty when the record has no file
	Width       int    // 0 when unknown
	Height      int    // 0 when unknown
	Variants    map[string]VariantFile
	FileMissing bool // Engine-private flag: File is set but nothing exists on disk
}

// HasFile reports whether the asset declares a backing file
func (a *MediaAsset) HasFile() bool {
	return a != nil && a.File != ""
}

// VariantFile is one generated derivative of a media asset
type VariantFile struct {
	File   string `json:"file"` // Base name, stored next to the source file
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VariantBox declares a named output size. Height 0 means "auto" (keep aspect ratio).
type VariantBox struct {
	Name   string `koanf:"name" json:"name" validate:"required"`
	Width  int    `koanf:"width" json:"width" validate:"gt=0"`
	Height int    `koanf:"height" json:"height" validate:"gte=0"`
	Crop   bool   `koanf:"crop" json:"crop"`
	Smart  bool   `koanf:"smart" json:"smart"`
}

// AutoHeight reports whether the box only constrains width
func (b VariantBox) AutoHeight() bool {
	return b.Height == 0
}

// Matches reports whether a WxH pair was produced by this box
func (b VariantBox) Matches(width, height int) bool {
	if width != b.Width {
		return false
	}
	return b.AutoHeight() || height == b.Height
}

// ScaledMasterName is the reserved variant name for the size-reduced master copy
const ScaledMasterName = "scaled"

var dimensionSuffix = regexp.MustCompile(`-(\d+)x(\d+)$`)

// SplitExt splits a file name into stem and extension (extension keeps its dot)
func SplitExt(name string) (stem, ext string) {
	ext = path.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// SourceStem returns the stem derived files are named after.
// A "-scaled" master shares the stem of its original.
func SourceStem(file string) string {
	stem, _ := SplitExt(path.Base(file))
	return strings.TrimSuffix(stem, "-scaled")
}

// DerivedFileName returns the base name of a WxH derivative of file
func DerivedFileName(file string, width, height int) string {
	_, ext := SplitExt(path.Base(file))
	return fmt.Sprintf("%s-%dx%d%s", SourceStem(file), width, height, ext)
}

// ScaledMasterFileName returns the base name of the size-reduced master of file
func ScaledMasterFileName(file string) string {
	_, ext := SplitExt(path.Base(file))
	return SourceStem(file) + "-scaled" + ext
}

// ParseDimensions extracts the trailing -WxH token of a file name or URL
func ParseDimensions(name string) (width, height int, ok bool) {
	stem, _ := SplitExt(path.Base(stripQuery(name)))
	m := dimensionSuffix.FindStringSubmatch(stem)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}

// IsDerivedOf reports whether name is a WxH derivative of the source file
func IsDerivedOf(name, source string) bool {
	stem, ext := SplitExt(path.Base(name))
	_, srcExt := SplitExt(path.Base(source))
	if !strings.EqualFold(ext, srcExt) {
		return false
	}
	m := dimensionSuffix.FindStringIndex(stem)
	if m == nil {
		return false
	}
	return stem[:m[0]] == SourceStem(source)
}

// MatchVariant resolves the variant name of a URL from its dimension suffix.
// Returns "" when the URL has no suffix or no box matches.
func MatchVariant(url string, boxes []VariantBox) string {
	w, h, ok := ParseDimensions(url)
	if !ok {
		return ""
	}
	return MatchBox(w, h, boxes)
}

// MatchBox returns the first box name that matches the dimensions, exact matches first
func MatchBox(width, height int, boxes []VariantBox) string {
	for _, b := range boxes {
		if !b.AutoHeight() && b.Width == width && b.Height == height {
			return b.Name
		}
	}
	for _, b := range boxes {
		if b.AutoHeight() && b.Width == width {
			return b.Name
		}
	}
	return ""
}

// FindBox looks up a configured box by name
func FindBox(name string, boxes []VariantBox) (VariantBox, bool) {
	for _, b := range boxes {
		if b.Name == name {
			return b, true
		}
	}
	return VariantBox{}, false
}

// URLFileName returns the file name a URL points at, without query or fragment
func URLFileName(url string) string {
	return path.Base(stripQuery(url))
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}
