package hobby

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Catalog is the ordered list of hobby records. Order is significant: embedding
// rows are stored in catalog order.
type Catalog []Record

// Len returns the number of records.
func (c Catalog) Len() int { return len(c) }

// At returns the record at i, or nil when i is out of range.
func (c Catalog) At(i int) Record {
	if i < 0 || i >= len(c) {
		return nil
	}
	return c[i]
}

// LoadError reports why a catalog could not be read. The catalog returned
// alongside it is always empty and usable.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadCatalog reads the catalog at path. On failure it returns an empty catalog
// and a *LoadError; callers are expected to log it and keep serving.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, &LoadError{Path: path, Err: err}
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return Catalog{}, &LoadError{Path: path, Err: err}
	}
	return cat, nil
}

// ParseCatalog decodes catalog JSON. A list keeps its object elements and
// flattens one level of nested lists; a single object becomes a one-record
// catalog; any other shape is an empty catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	switch v := raw.(type) {
	case []any:
		out := make(Catalog, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case map[string]any:
				out = append(out, Record(it))
			case []any:
				for _, sub := range it {
					if m, ok := sub.(map[string]any); ok {
						out = append(out, Record(m))
					}
				}
			}
		}
		return out, nil
	case map[string]any:
		return Catalog{Record(v)}, nil
	default:
		return Catalog{}, nil
	}
}
