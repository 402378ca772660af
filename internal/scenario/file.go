package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// File is a scenario document as loaded from disk. The engine itself
// never reads files; scenario documents exist for the CLI and tests.
type File struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario models.
	Description string `yaml:"description"`

	// Parameters maps parameter names to values.
	Parameters map[string]float64 `yaml:"parameters"`

	// Outputs optionally restricts the tracked series.
	// Empty means the model's default outputs.
	Outputs []string `yaml:"outputs,omitempty"`
}

// Scenario returns the file's parameters as a Scenario.
func (f *File) Scenario() Scenario {
	s := make(Scenario, len(f.Parameters))
	for name, val := range f.Parameters {
		s[name] = val
	}
	return s
}

// Load reads and validates a scenario YAML document.
//
// Validation happens in two passes: strict YAML decoding (unknown fields
// rejected, catching typos), then unification against the embedded CUE
// schema. Parameter range checks are not performed here; they belong to
// Validate/Apply so a run and a loaded file fail identically.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML scenario bytes. See Load.
func Parse(data []byte) (*File, error) {
	// Strict decode catches typos like "parameter:" vs "parameters:".
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateSchema(&f); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &f, nil
}

// validateSchema unifies the decoded document with the #Scenario CUE
// schema and reports the first violation.
func validateSchema(f *File) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if !def.Exists() {
		return fmt.Errorf("scenario schema missing #Scenario definition")
	}

	params := make(map[string]any, len(f.Parameters))
	for name, val := range f.Parameters {
		params[name] = val
	}
	doc := map[string]any{
		"name":        f.Name,
		"description": f.Description,
		"parameters":  params,
	}
	if len(f.Outputs) > 0 {
		doc["outputs"] = f.Outputs
	}

	val := ctx.Encode(doc)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode scenario document: %w", err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
