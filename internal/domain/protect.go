package domain

import "sort"

// ComputeProtectedSet returns the variant names that must survive a
// regeneration of one asset: the variants requested by the caller, every
// variant any document still uses according to the ledger, and every locked
// variant. A variant is never deletable while any document references it.
func ComputeProtectedSet(requested []string, ledgerUsages []UsageRecord, locks []LockEntry) map[string]bool {
	protected := make(map[string]bool)
	for _, name := range requested {
		if name != "" {
			protected[name] = true
		}
	}
	for _, u := range ledgerUsages {
		if u.VariantName != "" {
			protected[u.VariantName] = true
		}
	}
	for _, l := range locks {
		if l.VariantName != "" {
			protected[l.VariantName] = true
		}
	}
	return protected
}

// SortedNames returns the keys of a name set in ascending order
func SortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegenState is the progress of one regeneration request
type RegenState int

const (
	RegenRequested RegenState = iota
	RegenProtectedSetComputed
	RegenStaleFilesRemoved
	RegenVariantsGenerated
	RegenMetadataPersisted
	RegenVerified
)

func (s RegenState) String() string {
	switch s {
	case RegenRequested:
		return "requested"
	case RegenProtectedSetComputed:
		return "protected_set_computed"
	case RegenStaleFilesRemoved:
		return "stale_files_removed"
	case RegenVariantsGenerated:
		return "variants_generated"
	case RegenMetadataPersisted:
		return "metadata_persisted"
	case RegenVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// DerivedFile is a file on disk derived from an asset's source file
type DerivedFile struct {
	Path   string // Relative to the storage root
	Width  int
	Height int
}

// VariantNamesOf returns every variant name a derived file stands for: the
// names recorded in the asset's variant table for that file plus the box
// matching its dimensions.
func VariantNamesOf(f DerivedFile, variants map[string]VariantFile, boxes []VariantBox) []string {
	var names []string
	base := baseName(f.Path)
	for name, v := range variants {
		if v.File == base {
			names = append(names, name)
		}
	}
	if name := MatchBox(f.Width, f.Height, boxes); name != "" {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsStale reports whether a derived file may be deleted: none of its variant
// names is protected and no usage points at the file directly.
func IsStale(f DerivedFile, names []string, protected map[string]bool, referencedFiles map[string]bool) bool {
	if referencedFiles[baseName(f.Path)] {
		return false
	}
	for _, n := range names {
		if protected[n] {
			return false
		}
	}
	return true
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

// ReferencedFileNames returns the base names of the files the usages point at
func ReferencedFileNames(usages []UsageRecord) map[string]bool {
	names := make(map[string]bool, len(usages))
	for _, u := range usages {
		if u.FileURL == "" {
			continue
		}
		names[baseName(stripQuery(u.FileURL))] = true
	}
	return names
}
