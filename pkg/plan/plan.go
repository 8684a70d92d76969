package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a plan encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Plan is a set of targets to augment.
type Plan struct {
	Targets []Target `json:"targets" yaml:"targets" toml:"targets"`
}

// Target names one Function and the advice to attach to it, in order.
type Target struct {
	Owner  string   `json:"owner" yaml:"owner" toml:"owner"`
	Name   string   `json:"name" yaml:"name" toml:"name"`
	Advice []Advice `json:"advice" yaml:"advice" toml:"advice"`
}

// ID returns the TargetID the entry refers to.
func (t Target) ID() domain.TargetID {
	return domain.TargetID{Owner: t.Owner, Name: t.Name}
}

// Advice is one catalog entry with its parameters.
type Advice struct {
	Kind   string         `json:"kind" yaml:"kind" toml:"kind"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// FormatOf guesses the encoding from the file extension. Unknown extensions
// are read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load reads a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	p, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a plan in the given format.
func Parse(data []byte, format Format) (*Plan, error) {
	var p Plan
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&p)
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&p)
		if err != nil && len(bytes.TrimSpace(data)) == 0 {
			err = nil
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &p, nil
}
