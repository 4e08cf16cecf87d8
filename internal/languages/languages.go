// Package languages maps catalog language codes to display names.
package languages

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry resolves display names for language codes.
type Registry struct {
	names map[string]string
}

// Defaults returns the built-in registry covering the supported Indian
// languages.
func Defaults() *Registry {
	return &Registry{names: map[string]string{
		"ml": "Malayalam",
		"hi": "Hindi",
		"ta": "Tamil",
		"te": "Telugu",
		"kn": "Kannada",
	}}
}

// Load builds a registry from a YAML file mapping codes to display names
// (e.g. "ml: Malayalam"). An empty path returns Defaults(); a non-empty
// file replaces the built-ins entirely.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading languages file: %w", err)
	}

	var names map[string]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing languages file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("languages file %s defines no languages", path)
	}

	return &Registry{names: names}, nil
}

// Name returns the display name for code, falling back to the upper-cased
// code for unknown languages.
func (r *Registry) Name(code string) string {
	if name, ok := r.names[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// Known reports whether code has a configured display name.
func (r *Registry) Known(code string) bool {
	_, ok := r.names[code]
	return ok
}

// Codes returns all configured language codes in no particular order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.names))
	for code := range r.names {
		codes = append(codes, code)
	}
	return codes
}
