package imaging

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// PathResolver maps storage-relative paths to filesystem paths
type PathResolver interface {
	Abs(file string) (string, error)
}

// Resizer implements ports.Resizer with disintegration/imaging, using
// smartcrop for boxes that ask for it
type Resizer struct {
	paths     PathResolver
	resampler imaging.ResampleFilter
	quality   int
}

// Ensure Resizer implements ports.Resizer
var _ ports.Resizer = (*Resizer)(nil)

// NewResizer creates a resizer writing JPEGs at the given quality
func NewResizer(paths PathResolver, quality int) *Resizer {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Resizer{paths: paths, resampler: imaging.Lanczos, quality: quality}
}

// Resize produces one variant of file and writes it next to the source.
// A box named domain.ScaledMasterName produces the size-reduced master,
// bounded by box.Width on both sides.
func (r *Resizer) Resize(ctx context.Context, file string, box domain.VariantBox) (domain.VariantFile, error) {
	src, err := r.paths.Abs(file)
	if err != nil {
		return domain.VariantFile{}, err
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return domain.VariantFile{}, fmt.Errorf("decoding %s: %w", file, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.VariantFile{}, err
	}

	var out image.Image
	var name string
	if box.Name == domain.ScaledMasterName {
		out = imaging.Fit(img, box.Width, box.Width, r.resampler)
		name = domain.ScaledMasterFileName(file)
	} else {
		out, err = r.render(ctx, img, box)
		if err != nil {
			return domain.VariantFile{}, fmt.Errorf("resizing %s to %s: %w", file, box.Name, err)
		}
		name = domain.DerivedFileName(file, out.Bounds().Dx(), out.Bounds().Dy())
	}

	if err := ctx.Err(); err != nil {
		return domain.VariantFile{}, err
	}

	dst := filepath.Join(filepath.Dir(src), name)
	if err := imaging.Save(out, dst, imaging.JPEGQuality(r.quality)); err != nil {
		return domain.VariantFile{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return domain.VariantFile{File: name, Width: out.Bounds().Dx(), Height: out.Bounds().Dy()}, nil
}

func (r *Resizer) render(ctx context.Context, img image.Image, box domain.VariantBox) (image.Image, error) {
	switch {
	case box.AutoHeight():
		return imaging.Resize(img, box.Width, 0, r.resampler), nil
	case box.Crop && box.Smart:
		return r.smartCrop(ctx, img, box.Width, box.Height)
	case box.Crop:
		return imaging.Fill(img, box.Width, box.Height, imaging.Center, r.resampler), nil
	default:
		return imaging.Fit(img, box.Width, box.Height, r.resampler), nil
	}
}

// smartCrop picks the most interesting region with the box's aspect ratio
// and scales it to the box
func (r *Resizer) smartCrop(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	analyzer := smartcrop.NewAnalyzer(&smartResizer{resampler: r.resampler})

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		crop, err := analyzer.FindBestCrop(img, width, height)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}
		cropped := imaging.Crop(img, result.crop)
		return imaging.Resize(cropped, width, height, r.resampler), nil
	}
}

// smartResizer implements smartcrop.Resizer
type smartResizer struct {
	resampler imaging.ResampleFilter
}

func (s *smartResizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), s.resampler)
}

// Dimensions returns the oriented pixel size of a stored image
func (r *Resizer) Dimensions(file string) (width, height int, err error) {
	src, err := r.paths.Abs(file)
	if err != nil {
		return 0, 0, err
	}
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", file, err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), nil
}
