package feature

import "fmt"

// Kind is the declared type of an attribute column.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is a declared attribute column.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered set of attribute columns of a collection.
type Schema []Field

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Check validates a value against the declared kind of a column.
func (f Field) Check(v any) error {
	if v == nil {
		return nil
	}
	switch f.Kind {
	case KindString, KindCategory:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("column %q: want %s, got %T", f.Name, f.Kind, v)
		}
	case KindNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("column %q: want number, got %T", f.Name, v)
		}
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
