package ports

import (
	"context"

	"mediasweep/internal/domain"
)

// Metadata keys the engine owns
const (
	MetaVariants    = "variants"     // JSON object of variant name to domain.VariantFile
	MetaFileMissing = "file_missing" // "1" while the declared file is absent from storage
)

// MediaStore holds media records and their key/value metadata
type MediaStore interface {
	ListAssets(ctx context.Context) ([]domain.MediaAsset, error)
	GetAsset(ctx context.Context, id int64) (*domain.MediaAsset, error)
	CreateAsset(ctx context.Context, asset *domain.MediaAsset) (int64, error)

	// DeleteAsset removes the record and its metadata. With purgeFile the
	// backing file and its derived files are removed from storage as well,
	// except files another asset or a recorded usage still claims.
	DeleteAsset(ctx context.Context, id int64, purgeFile bool) error

	// GetMeta returns the raw value of a metadata key, or nil when unset
	GetMeta(ctx context.Context, id int64, key string) ([]byte, error)
	SetMeta(ctx context.Context, id int64, key string, value []byte) error
}

// Resizer produces one derived variant of a source file.
// The generated file is written next to the source.
type Resizer interface {
	Resize(ctx context.Context, file string, box domain.VariantBox) (domain.VariantFile, error)
}

// FileStore is the storage tree backing media files. Paths are relative to its root.
type FileStore interface {
	Exists(file string) bool
	Remove(file string) error
	Size(file string) (int64, error)

	// Derived lists the WxH derivatives sitting next to a source file
	Derived(file string) ([]domain.DerivedFile, error)

	// WalkImages visits every image file not excluded by configuration.
	// It stops with ctx.Err() when the context is cancelled.
	WalkImages(ctx context.Context, fn func(path string, size int64) error) error

	// URL returns the public url of a stored file
	URL(file string) string
}
