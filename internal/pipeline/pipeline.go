// Package pipeline sequences the configured stages over a working
// collection: load → transform → select → write. Execution is linear,
// synchronous and fail-fast; the first error aborts the run and no
// partial output is written for the failing stage.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/geoflow-io/geoflow/internal/config"
	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
	"github.com/geoflow-io/geoflow/internal/geoio"
	"github.com/geoflow-io/geoflow/internal/render"
	"github.com/geoflow-io/geoflow/internal/wfs"
)

// Runner executes a configured pipeline.
type Runner struct {
	cfg *config.Config
	wfs *wfs.Client

	current *feature.Collection
}

// New builds a runner; the WFS client inherits the config's timeout
// and truncation policy.
func New(cfg *config.Config) *Runner {
	return &Runner{
		cfg: cfg,
		wfs: wfs.New(cfg.WFS.Timeout, wfs.TruncationPolicy(cfg.WFS.Truncation)),
	}
}

// Result returns the working collection after a run.
func (r *Runner) Result() *feature.Collection { return r.current }

// Run executes every configured step in order.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.cfg.Pipeline) == 0 {
		return fmt.Errorf("pipeline has no steps")
	}

	for i := range r.cfg.Pipeline {
		step := &r.cfg.Pipeline[i]
		name := step.Name()

		if err := r.runStep(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		rows := 0
		if r.current != nil {
			rows = r.current.Len()
		}
		log.Debug().
			Int("step", i+1).
			Str("op", name).
			Int("rows", rows).
			Msg("Step complete")
	}

	log.Info().Int("steps", len(r.cfg.Pipeline)).Msg("Pipeline finished")
	return nil
}

func (r *Runner) runStep(ctx context.Context, step *config.Step) error {
	// source stages
	switch {
	case step.Load != "":
		c, err := geoio.Read(step.Load)
		if err != nil {
			return err
		}
		r.current = c
		return nil

	case step.FetchWFS != nil:
		f := step.FetchWFS
		limit := f.MaxFeatures
		if limit <= 0 {
			limit = r.cfg.WFS.MaxFeatures
		}
		res, err := r.wfs.Fetch(ctx, f.URL, f.Layer, wfs.BoundingBox{
			MinX: f.BBox[0], MinY: f.BBox[1], MaxX: f.BBox[2], MaxY: f.BBox[3],
		}, limit)
		if err != nil {
			return err
		}
		r.current = res.Collection
		return nil
	}

	// everything past this point transforms or consumes the working
	// collection
	if r.current == nil {
		return fmt.Errorf("no collection loaded yet (start with load or fetch_wfs)")
	}

	var err error
	switch {
	case step.SetCRS != "":
		var target crs.CRS
		if target, err = crs.Parse(step.SetCRS); err == nil {
			r.current = r.current.WithCRS(target)
		}

	case step.Reproject != "":
		var target crs.CRS
		if target, err = crs.Parse(step.Reproject); err == nil {
			r.current, err = r.current.Reproject(target)
		}

	case len(step.Select) > 0:
		r.current, err = r.current.Select(step.Select...)

	case step.Where != nil:
		r.current, err = r.current.Where(step.Where.Column, feature.Op(step.Where.Op), step.Where.Value)

	case len(step.Mask) > 0:
		r.current, err = r.current.Mask(step.Mask)

	case step.Buffer != nil:
		r.current, err = r.current.Buffer(*step.Buffer)

	case step.UnaryUnion:
		r.current, err = r.current.UnaryUnion()

	case step.ConvexHull:
		r.current, err = r.current.ConvexHull()

	case step.Centroid:
		r.current, err = r.current.Centroid()

	case step.Boundary:
		r.current, err = r.current.Boundary()

	case step.Overlay != nil:
		var other *feature.Collection
		if other, err = geoio.Read(step.Overlay.With); err == nil {
			r.current, err = r.current.Overlay(other, feature.OverlayMode(step.Overlay.Mode))
		}

	case step.Write != "":
		err = geoio.Write(r.current, step.Write)

	case step.RenderStatic != "":
		err = render.Static(r.current, step.RenderStatic, render.StaticOptions{
			Width:       r.cfg.Render.Width,
			Height:      r.cfg.Render.Height,
			Supersample: true,
		})

	case step.RenderHTML != "":
		err = render.Interactive(r.current, step.RenderHTML, r.cfg.Render.Title)

	default:
		err = fmt.Errorf("unhandled step")
	}
	return err
}
