package feature

import (
	"fmt"
	"strings"
)

// SchemaError indicates a reference to a column absent from the schema.
type SchemaError struct {
	Column string
	Schema Schema
}

func (e *SchemaError) Error() string {
	names := make([]string, 0, len(e.Schema))
	for _, f := range e.Schema {
		names = append(names, f.Name)
	}
	return fmt.Sprintf("column %q not in schema (have: %s)", e.Column, strings.Join(names, ", "))
}
