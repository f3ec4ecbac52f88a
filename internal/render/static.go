// Package render draws feature collections to raster images or
// self-contained interactive HTML documents. It is a presentation
// side effect only; nothing here feeds back into the pipeline.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	"github.com/geoflow-io/geoflow/internal/feature"
)

// StaticOptions control the raster output.
type StaticOptions struct {
	Width  int
	Height int

	// Supersample renders at 2x and downscales for smoother edges.
	Supersample bool
}

// DefaultStaticOptions is a 1024px square with supersampling.
var DefaultStaticOptions = StaticOptions{Width: 1024, Height: 1024, Supersample: true}

const margin = 16.0

// Static draws a collection to a raster file. The format follows the
// extension: .png or .webp.
func Static(c *feature.Collection, path string, opts StaticOptions) error {
	if c.Len() == 0 {
		return fmt.Errorf("render %s: empty collection", path)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultStaticOptions
	}

	scale := 1
	if opts.Supersample {
		scale = 2
	}
	w, h := opts.Width*scale, opts.Height*scale

	bound := collectionBound(c)
	tr := newTransform(bound, float64(w), float64(h), margin*float64(scale))

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.15, 0.35, 0.65)
	dc.SetLineWidth(1.5 * float64(scale))

	for i := 0; i < c.Len(); i++ {
		if err := drawGeometry(dc, c.Row(i).Geometry, tr, float64(scale)); err != nil {
			return fmt.Errorf("render %s: row %d: %w", path, i, err)
		}
	}

	img := dc.Image()
	if opts.Supersample {
		small := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
		xdraw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = small
	}

	if err := encodeRaster(img, path); err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("features", c.Len()).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Msg("Static map written")

	return nil
}

func encodeRaster(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".webp":
		err = webp.Encode(f, img, &webp.Options{Lossless: true})
	default:
		err = fmt.Errorf("unsupported raster extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

// transform maps CRS coordinates onto the canvas, y flipped.
type transform struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

func newTransform(b orb.Bound, w, h, margin float64) transform {
	spanX := b.Max[0] - b.Min[0]
	spanY := b.Max[1] - b.Min[1]
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	s := (w - 2*margin) / spanX
	if sy := (h - 2*margin) / spanY; sy < s {
		s = sy
	}
	// center the drawing
	offX := (w - spanX*s) / 2
	offY := (h - spanY*s) / 2
	return transform{minX: b.Min[0], minY: b.Min[1], scale: s, offX: offX, offY: offY, height: h}
}

func (t transform) apply(p orb.Point) (x, y float64) {
	x = t.offX + (p[0]-t.minX)*t.scale
	y = t.height - (t.offY + (p[1]-t.minY)*t.scale)
	return x, y
}

func collectionBound(c *feature.Collection) orb.Bound {
	bound := c.Row(0).Geometry.Bound()
	for i := 1; i < c.Len(); i++ {
		bound = bound.Union(c.Row(i).Geometry.Bound())
	}
	return bound
}

func drawGeometry(dc *gg.Context, g orb.Geometry, tr transform, scale float64) error {
	switch v := g.(type) {
	case orb.Point:
		x, y := tr.apply(v)
		dc.DrawCircle(x, y, 3*scale)
		dc.Fill()
	case orb.MultiPoint:
		for _, p := range v {
			x, y := tr.apply(p)
			dc.DrawCircle(x, y, 3*scale)
			dc.Fill()
		}
	case orb.LineString:
		strokeLine(dc, v, tr)
	case orb.MultiLineString:
		for _, ls := range v {
			strokeLine(dc, ls, tr)
		}
	case orb.Polygon:
		fillPolygon(dc, v, tr)
	case orb.MultiPolygon:
		for _, p := range v {
			fillPolygon(dc, p, tr)
		}
	case orb.Collection:
		for _, m := range v {
			if err := drawGeometry(dc, m, tr, scale); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("geometry type %s is not supported by the static renderer", g.GeoJSONType())
	}
	return nil
}

func strokeLine(dc *gg.Context, ls orb.LineString, tr transform) {
	for i, p := range ls {
		x, y := tr.apply(p)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	dc.Stroke()
}

func fillPolygon(dc *gg.Context, poly orb.Polygon, tr transform) {
	for _, ring := range poly {
		for i, p := range ring {
			x, y := tr.apply(p)
			if i == 0 {
				dc.MoveTo(x, y)
				continue
			}
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	}
	dc.SetRGBA(0.15, 0.35, 0.65, 0.25)
	dc.FillPreserve()
	dc.SetRGBA(0.15, 0.35, 0.65, 1)
	dc.Stroke()
}
