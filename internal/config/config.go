// Package config handles configuration loading and shared settings.
// Policy knobs (WFS timeout, truncation handling, numeric tolerance)
// are explicit fields here, never code defaults buried in call sites.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geoflow-io/geoflow/internal/crs"
)

// Config is the root configuration file structure.
type Config struct {
	// Tolerance is the numeric epsilon for coordinate comparison
	// (round trips, reprojection checks).
	Tolerance float64 `yaml:"tolerance,omitempty"`

	WFS      WFS    `yaml:"wfs,omitempty"`
	Render   Render `yaml:"render,omitempty"`
	Pipeline []Step `yaml:"pipeline,omitempty"`
}

// WFS holds the web-feature-service client policy.
type WFS struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxFeatures int           `yaml:"max_features,omitempty"`
	// Truncation: error | warn | accept
	Truncation string `yaml:"truncation,omitempty"`
}

// Render holds output settings for map rendering.
type Render struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Title  string `yaml:"title,omitempty"`
}

// FetchStep describes a WFS GetFeature request.
type FetchStep struct {
	URL         string     `yaml:"url"`
	Layer       string     `yaml:"layer"`
	BBox        [4]float64 `yaml:"bbox"`
	MaxFeatures int        `yaml:"max_features,omitempty"`
}

// WhereStep filters rows by an attribute predicate.
type WhereStep struct {
	Column string `yaml:"column"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value"`
}

// OverlayStep combines the working collection with another file.
type OverlayStep struct {
	Mode string `yaml:"mode"`
	With string `yaml:"with"`
}

// Step is one pipeline stage. Exactly one field may be set.
type Step struct {
	Load         string       `yaml:"load,omitempty"`
	FetchWFS     *FetchStep   `yaml:"fetch_wfs,omitempty"`
	SetCRS       string       `yaml:"set_crs,omitempty"`
	Reproject    string       `yaml:"reproject,omitempty"`
	Select       []string     `yaml:"select,omitempty"`
	Where        *WhereStep   `yaml:"where,omitempty"`
	Mask         []bool       `yaml:"mask,omitempty"`
	Buffer       *float64     `yaml:"buffer,omitempty"`
	UnaryUnion   bool         `yaml:"unary_union,omitempty"`
	ConvexHull   bool         `yaml:"convex_hull,omitempty"`
	Centroid     bool         `yaml:"centroid,omitempty"`
	Boundary     bool         `yaml:"boundary,omitempty"`
	Overlay      *OverlayStep `yaml:"overlay,omitempty"`
	Write        string       `yaml:"write,omitempty"`
	RenderStatic string       `yaml:"render_static,omitempty"`
	RenderHTML   string       `yaml:"render_html,omitempty"`
}

// Name returns the stage kind for logs and errors, or "" when the
// step does not set exactly one operation.
func (s *Step) Name() string {
	names := s.setFields()
	if len(names) != 1 {
		return ""
	}
	return names[0]
}

func (s *Step) setFields() []string {
	var names []string
	add := func(cond bool, name string) {
		if cond {
			names = append(names, name)
		}
	}
	add(s.Load != "", "load")
	add(s.FetchWFS != nil, "fetch_wfs")
	add(s.SetCRS != "", "set_crs")
	add(s.Reproject != "", "reproject")
	add(len(s.Select) > 0, "select")
	add(s.Where != nil, "where")
	add(len(s.Mask) > 0, "mask")
	add(s.Buffer != nil, "buffer")
	add(s.UnaryUnion, "unary_union")
	add(s.ConvexHull, "convex_hull")
	add(s.Centroid, "centroid")
	add(s.Boundary, "boundary")
	add(s.Overlay != nil, "overlay")
	add(s.Write != "", "write")
	add(s.RenderStatic != "", "render_static")
	add(s.RenderHTML != "", "render_html")
	return names
}

// Load reads and parses the YAML configuration file from the
// specified path and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-9
	}
	if c.WFS.Timeout <= 0 {
		c.WFS.Timeout = 30 * time.Second
	}
	if c.WFS.MaxFeatures <= 0 {
		c.WFS.MaxFeatures = 5000
	}
	if c.WFS.Truncation == "" {
		c.WFS.Truncation = "warn"
	}
	if c.Render.Width <= 0 {
		c.Render.Width = 1024
	}
	if c.Render.Height <= 0 {
		c.Render.Height = 1024
	}
}

// Validate rejects malformed policy values and pipeline steps at load
// time so failures name the config, not a mid-run stage.
func (c *Config) Validate() error {
	switch c.WFS.Truncation {
	case "error", "warn", "accept":
	default:
		return fmt.Errorf("wfs.truncation: %q is not one of error, warn, accept", c.WFS.Truncation)
	}

	for i := range c.Pipeline {
		step := &c.Pipeline[i]
		names := step.setFields()
		if len(names) == 0 {
			return fmt.Errorf("pipeline step %d: no operation set", i+1)
		}
		if len(names) > 1 {
			return fmt.Errorf("pipeline step %d: multiple operations set (%v), want one", i+1, names)
		}

		// CRS strings must parse up front
		for _, s := range []string{step.SetCRS, step.Reproject} {
			if s == "" {
				continue
			}
			if _, err := crs.Parse(s); err != nil {
				return fmt.Errorf("pipeline step %d: %w", i+1, err)
			}
		}
	}
	return nil
}
