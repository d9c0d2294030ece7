// Package shape reads image dimensions from file headers without decoding
// pixel data.
package shape

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/extpath"
)

// Dimensions returns the width and height of the image at path.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errs.E(errs.NotFound, "shape.Dimensions", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, errs.Errorf(errs.InvalidArgument, "shape.Dimensions", "%s: unsupported image format", path)
		}
		return 0, 0, fmt.Errorf("reading header of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Prober reports the row count of the first selected frame of a listing. It
// implements plan.HeightProber.
type Prober struct {
	Frames extpath.Spec
}

// AvailableHeight implements plan.HeightProber.
func (p Prober) AvailableHeight(ctx context.Context) (int, error) {
	paths := p.Frames.Paths()
	if len(paths) == 0 {
		return 0, errs.Errorf(errs.InvalidArgument, "shape.AvailableHeight", "no frames selected in %s", p.Frames.Dir)
	}
	w, h, err := Dimensions(paths[0])
	if err != nil {
		return 0, err
	}
	ctxlog.FromContext(ctx).Debug("Probed frame shape.", "path", paths[0], "width", w, "height", h)
	return h, nil
}
