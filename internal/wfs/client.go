// Package wfs is a minimal Web Feature Service (2.0.0) client. It only
// speaks GetFeature with JSON output; the payload is parsed by the
// GeoJSON decoder, never by hand.
package wfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/geoflow-io/geoflow/internal/feature"
	"github.com/geoflow-io/geoflow/internal/geoio"
)

// TruncationPolicy decides what happens when a response carries exactly
// as many features as the request allowed, which indicates the server
// may have cut the result short.
type TruncationPolicy string

const (
	TruncationError  TruncationPolicy = "error"
	TruncationWarn   TruncationPolicy = "warn"
	TruncationAccept TruncationPolicy = "accept"
)

// TruncatedError reports a possibly cut-short WFS response.
type TruncatedError struct {
	URL   string
	Layer string
	Count int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("WFS layer %q from %s: feature count %d equals the request limit, result may be truncated",
		e.Layer, e.URL, e.Count)
}

// BoundingBox is the query window in the layer's CRS.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Client issues WFS requests over a plain HTTP client.
type Client struct {
	http       *http.Client
	truncation TruncationPolicy
}

// New builds a client with an explicit timeout; there is no default
// hidden in the code and no automatic retry.
func New(timeout time.Duration, truncation TruncationPolicy) *Client {
	return &Client{
		http:       &http.Client{Timeout: timeout},
		truncation: truncation,
	}
}

// Result is a fetched collection plus the truncation flag.
type Result struct {
	Collection *feature.Collection

	// Truncated is set when the feature count equals the request
	// limit and the policy is not "error".
	Truncated bool
}

// Fetch issues a GetFeature request for one layer within a bounding box
// and parses the response. maxFeatures caps the server-side result and
// drives truncation detection.
func (c *Client) Fetch(ctx context.Context, serviceURL, layer string, bbox BoundingBox, maxFeatures int) (*Result, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, &geoio.IOError{Path: serviceURL, Op: "fetch", Err: err}
	}

	q := u.Query()
	q.Set("service", "WFS")
	q.Set("version", "2.0.0")
	q.Set("request", "GetFeature")
	q.Set("typeNames", layer)
	q.Set("bbox", bbox.String())
	q.Set("outputFormat", "application/json")
	if maxFeatures > 0 {
		q.Set("count", fmt.Sprintf("%d", maxFeatures))
	}
	u.RawQuery = q.Encode()

	log.Debug().
		Str("url", u.String()).
		Str("layer", layer).
		Int("max_features", maxFeatures).
		Msg("WFS GetFeature")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &geoio.IOError{Path: u.String(), Op: "fetch", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &geoio.IOError{Path: u.String(), Op: "fetch", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &geoio.IOError{
			Path: u.String(),
			Op:   "fetch",
			Err:  fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geoio.IOError{Path: u.String(), Op: "fetch", Err: err}
	}

	collection, err := geoio.DecodeGeoJSON(body)
	if err != nil {
		return nil, &geoio.IOError{Path: u.String(), Op: "decode", Err: err}
	}

	result := &Result{Collection: collection}
	if maxFeatures > 0 && collection.Len() == maxFeatures {
		switch c.truncation {
		case TruncationError:
			return nil, &TruncatedError{URL: serviceURL, Layer: layer, Count: collection.Len()}
		case TruncationAccept:
			result.Truncated = true
		default:
			result.Truncated = true
			log.Warn().
				Str("layer", layer).
				Int("count", collection.Len()).
				Msg("Feature count equals the request limit, result may be truncated")
		}
	}

	log.Info().
		Str("layer", layer).
		Int("features", collection.Len()).
		Bool("truncated", result.Truncated).
		Msg("WFS fetch complete")

	return result, nil
}
