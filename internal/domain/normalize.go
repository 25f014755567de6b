package domain

import (
	"path"
	"regexp"
	"strings"
)

// ImageExtensions lists the extensions treated as images (lower case, with dot)
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".svg":  true,
	".heic": true,
}

// Normalization steps, applied once each and in this order.
var (
	extPattern        = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif|bmp|tiff?|svg|heic)$`)
	scaledPattern     = regexp.MustCompile(`(?i)-scaled(-\d+x\d+)?$`)
	dimensionPattern  = regexp.MustCompile(`-\d+x\d+$`)
	numericPattern    = regexp.MustCompile(`-\d+$`)
	editSuffixPattern = regexp.MustCompile(`(?i)(-(rotated|cropped|edited|resized|compressed))+$`)
)

// genericNamePattern matches camera/OS default names that carry no identity
var genericNamePattern = regexp.MustCompile(`^(screenshot|untitled|image|photo|picture|download|file)[\s_\-.\d]*$`)

// minGroupableKeyLength is the shortest base key considered for duplicate grouping
const minGroupableKeyLength = 3

// BaseKey canonicalizes a file name or URL to the key identifying "the same
// logical photo". Directory, query string and fragment are ignored.
//
//	BaseKey("IMG_2510-scaled-250x0.jpeg") == "img_2510"
//	BaseKey("uploads/2024/05/IMG_2510-1.jpeg?ver=2") == "img_2510"
func BaseKey(name string) string {
	name = path.Base(stripQuery(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == "/" {
		return ""
	}

	key := extPattern.ReplaceAllString(name, "")
	key = scaledPattern.ReplaceAllString(key, "")
	key = dimensionPattern.ReplaceAllString(key, "")
	key = numericPattern.ReplaceAllString(key, "")
	key = editSuffixPattern.ReplaceAllString(key, "")

	return strings.ToLower(strings.TrimSpace(key))
}

// IsGroupableKey reports whether a base key is specific enough to group
// duplicates by. Short keys and generic names are excluded from grouping but
// still participate in orphan scanning.
func IsGroupableKey(key string) bool {
	if len(key) < minGroupableKeyLength {
		return false
	}
	return !genericNamePattern.MatchString(strings.ToLower(key))
}

// HasImageExtension reports whether a file name or URL ends in a known image extension
func HasImageExtension(name string) bool {
	return ImageExtensions[strings.ToLower(path.Ext(stripQuery(name)))]
}
