package geometry

import "fmt"

// ParseError indicates malformed WKT or WKB input.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	in := e.Input
	if len(in) > 64 {
		in = in[:64] + "..."
	}
	return fmt.Sprintf("parse geometry %q: %v", in, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidGeometryError indicates a structurally empty or degenerate geometry.
type InvalidGeometryError struct {
	Kind   string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid %s geometry: %s", e.Kind, e.Reason)
}
