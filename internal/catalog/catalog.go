// Package catalog defines the fixed corruption grid applied to every image:
// an ordered list of corruption names crossed with severities 1 through 5.
//
// A Catalog is immutable once constructed. Callers receive copies of its
// contents, so one run can never mutate the grid seen by another.
package catalog

import (
	"fmt"
	"strings"
)

// Severity bounds for generated variants. Severity 0 denotes the clean
// baseline and only appears in metric tables.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// excluded lists the weather-dependent corruptions never generated.
var excluded = map[string]bool{
	"snow":  true,
	"frost": true,
	"fog":   true,
}

// defaultNames is the external corruption catalog minus snow, frost and fog,
// in the collaborator's declaration order.
var defaultNames = []string{
	"gaussian_noise",
	"shot_noise",
	"impulse_noise",
	"defocus_blur",
	"glass_blur",
	"motion_blur",
	"zoom_blur",
	"brightness",
	"contrast",
	"elastic_transform",
	"pixelate",
	"jpeg_compression",
	"speckle_noise",
	"gaussian_blur",
	"spatter",
	"saturate",
}

// Variant identifies one (severity, corruption) cell of the grid.
type Variant struct {
	Severity   int
	Corruption string
}

func (v Variant) String() string {
	return fmt.Sprintf("%d/%s", v.Severity, v.Corruption)
}

// Catalog is an ordered, validated set of corruption names.
type Catalog struct {
	names []string
}

// Default returns the standard 16-corruption catalog.
func Default() Catalog {
	c, err := New(defaultNames)
	if err != nil {
		panic(fmt.Sprintf("catalog: default catalog invalid: %v", err))
	}
	return c
}

// DefaultNames returns a copy of the standard corruption names.
func DefaultNames() []string {
	return append([]string(nil), defaultNames...)
}

// New validates names and returns a Catalog holding a private copy of them.
//
// Names must be non-empty, unique, free of path separators (they become a
// directory level in every output path) and must not name a weather
// corruption.
func New(names []string) (Catalog, error) {
	if len(names) == 0 {
		return Catalog{}, fmt.Errorf("catalog: at least one corruption name is required")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return Catalog{}, fmt.Errorf("catalog: empty corruption name")
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return Catalog{}, fmt.Errorf("catalog: corruption name %q is not a valid path segment", name)
		}
		if excluded[name] {
			return Catalog{}, fmt.Errorf("catalog: weather corruption %q is not supported", name)
		}
		if seen[name] {
			return Catalog{}, fmt.Errorf("catalog: duplicate corruption name %q", name)
		}
		seen[name] = true
	}

	return Catalog{names: append([]string(nil), names...)}, nil
}

// Names returns a copy of the corruption names in catalog order.
func (c Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of corruption names.
func (c Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether name is part of the catalog.
func (c Catalog) Contains(name string) bool {
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

// Severities returns the generated severity levels in ascending order.
func Severities() []int {
	out := make([]int, 0, MaxSeverity-MinSeverity+1)
	for s := MinSeverity; s <= MaxSeverity; s++ {
		out = append(out, s)
	}
	return out
}

// Variants returns the full cross product with severity as the outer loop
// and corruption name as the inner loop.
func (c Catalog) Variants() []Variant {
	out := make([]Variant, 0, len(c.names)*(MaxSeverity-MinSeverity+1))
	for _, sev := range Severities() {
		for _, name := range c.names {
			out = append(out, Variant{Severity: sev, Corruption: name})
		}
	}
	return out
}
