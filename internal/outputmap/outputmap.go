// Package outputmap reads swiftc output file maps.
//
// An output file map is a JSON object keyed by compiler input; each value
// lists the per-input artifacts the build system expects. Only the
// "dependencies" entry is consumed here.
package outputmap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Entry is the artifact set for one compiler input.
// Dependencies is nil when the key is absent or null.
type Entry struct {
	Dependencies *string `json:"dependencies"`
}

// Map is a decoded output file map.
type Map map[string]Entry

// Load reads and decodes the output file map at path.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the compiler invocation
	if err != nil {
		return nil, fmt.Errorf("reading output file map: %w", err)
	}
	return Parse(data)
}

// Parse decodes an output file map.
// The top level must be a JSON object; "null" and other values are rejected.
func Parse(data []byte) (Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing output file map: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("parsing output file map: top level is not an object")
	}
	return m, nil
}

// DependencyPaths returns every non-null dependencies path, ordered by input key.
func (m Map) DependencyPaths() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		if dep := m[k].Dependencies; dep != nil {
			paths = append(paths, *dep)
		}
	}
	return paths
}
