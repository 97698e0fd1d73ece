package formats

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Format describes a match format: how many overs each innings runs and
// how many legal balls make an over.
type Format struct {
	Name         string `yaml:"name"`
	OversPerSide int    `yaml:"overs_per_side"`
	BallsPerOver int    `yaml:"balls_per_over"`
}

// Registry holds the known match formats keyed by name.
type Registry struct {
	formats map[string]Format
}

type fileSchema struct {
	Formats []Format `yaml:"formats"`
}

// Defaults returns the built-in formats used when no config file exists.
func Defaults() *Registry {
	return &Registry{formats: map[string]Format{
		"t20": {Name: "t20", OversPerSide: 20, BallsPerOver: 6},
		"odi": {Name: "odi", OversPerSide: 50, BallsPerOver: 6},
	}}
}

// Load reads a YAML formats file. A missing file falls back to Defaults.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read formats file: %w", err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse formats file: %w", err)
	}

	reg := &Registry{formats: make(map[string]Format, len(schema.Formats))}
	for _, f := range schema.Formats {
		if f.Name == "" {
			return nil, fmt.Errorf("format with empty name in %s", path)
		}
		if f.BallsPerOver <= 0 {
			f.BallsPerOver = 6
		}
		reg.formats[f.Name] = f
	}
	return reg, nil
}

// Get looks a format up by name.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// Names lists the registered format names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	return names
}
