package network

import "fmt"

// NotFoundError indicates a node lookup on an empty graph or an
// unknown node id.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.What)
}

// NoPathError indicates that source and target live in disconnected
// components.
type NoPathError struct {
	Source, Target int64
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path between node %d and node %d", e.Source, e.Target)
}
