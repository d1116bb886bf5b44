// Package definition loads declarative pipeline definitions. A definition
// names the steps of a pipeline with their rank, join, keys and inputs, and
// may declare placeholder input tables. It carries no code, so registries
// built from it describe a pipeline without being able to run it.
package definition

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// CurrentVersion is the definition format version written when none is given.
const CurrentVersion = "v1"

// Definition is a parsed pipeline definition file.
type Definition struct {
	Version     string  `yaml:"version" toml:"version" hcl:"version,optional"`
	Name        string  `yaml:"name" toml:"name" hcl:"name,optional"`
	Description string  `yaml:"description" toml:"description" hcl:"description,optional"`
	Steps       []Step  `yaml:"steps" toml:"steps" hcl:"step,block"`
	Inputs      []Input `yaml:"inputs" toml:"inputs" hcl:"input,block"`

	// Path is the file the definition was loaded from, if any.
	Path string `yaml:"-" toml:"-"`
}

// Step declares one pipeline step.
type Step struct {
	Name                 string   `yaml:"name" toml:"name" hcl:"name,label"`
	Rank                 int      `yaml:"rank" toml:"rank" hcl:"rank"`
	Join                 string   `yaml:"join" toml:"join" hcl:"join,optional"`
	Keys                 []string `yaml:"keys" toml:"keys" hcl:"keys,optional"`
	Inputs               []string `yaml:"inputs" toml:"inputs" hcl:"inputs,optional"`
	Optional             bool     `yaml:"optional" toml:"optional" hcl:"optional,optional"`
	SkipUniqueValidation bool     `yaml:"skip_unique_validation" toml:"skip_unique_validation" hcl:"skip_unique_validation,optional"`
	Description          string   `yaml:"description" toml:"description" hcl:"description,optional"`
}

// Spec converts the step into a hub.StepSpec.
func (s Step) Spec() (hub.StepSpec, error) {
	join, err := hub.ParseJoinKind(s.Join)
	if err != nil {
		return hub.StepSpec{}, err
	}
	spec := hub.StepSpec{
		Name:                 s.Name,
		Rank:                 s.Rank,
		Join:                 join,
		Keys:                 s.Keys,
		Inputs:               s.Inputs,
		Optional:             s.Optional,
		SkipUniqueValidation: s.SkipUniqueValidation,
		Description:          strings.TrimSpace(s.Description),
	}
	if err := spec.Validate(); err != nil {
		return hub.StepSpec{}, err
	}
	return spec, nil
}

// Title returns the definition name, falling back to the file name.
func (d *Definition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Path != "" {
		base := filepath.Base(d.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "pipeline"
}

// Validate checks the version and every step and input.
func (d *Definition) Validate() error {
	if err := checkVersion(d.Version); err != nil {
		return err.WithContext(d.location("version"))
	}
	if _, err := d.Registry(); err != nil {
		return err
	}
	_, err := d.InputNodes()
	return err
}

// Registry registers every step with no producer. The registry can be
// inspected and graphed but not executed.
func (d *Definition) Registry() (*hub.Registry, error) {
	reg := hub.NewRegistry()
	for i, step := range d.Steps {
		at := d.location(fmt.Sprintf("steps[%d]", i))
		if step.Name != "" {
			at = d.location(fmt.Sprintf("steps[%d] %q", i, step.Name))
		}

		spec, err := step.Spec()
		if err != nil {
			return nil, invalid(err, at)
		}
		if err := reg.RegisterSpec(spec, nil); err != nil {
			return nil, invalid(err, at)
		}
	}
	return reg, nil
}

// InputNodes returns the declared input placeholders as empty table nodes.
func (d *Definition) InputNodes() ([]hub.TableNode, error) {
	nodes := make([]hub.TableNode, 0, len(d.Inputs))
	seen := make(map[string]bool, len(d.Inputs))
	for i, in := range d.Inputs {
		node, err := in.node()
		if err != nil {
			return nil, err.WithContext(d.location(fmt.Sprintf("inputs[%d]", i)))
		}
		if seen[node.Name()] {
			return nil, NewLoadError(ErrCodeInputInvalid,
				fmt.Sprintf("input %q is declared twice", node.Name())).
				WithContext(d.location(fmt.Sprintf("inputs[%d]", i)))
		}
		seen[node.Name()] = true
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (d *Definition) location(field string) string {
	if d.Path == "" {
		return field
	}
	return d.Path + ": " + field
}

func invalid(err error, at string) *LoadError {
	le := NewLoadError(ErrCodeInvalid, "invalid step").
		WithContext(at).
		WithUnderlying(err)
	var herr *hub.Error
	if errors.As(err, &herr) && herr.Suggestion != "" {
		le = le.WithSuggestion(herr.Suggestion)
	}
	return le
}

func checkVersion(v string) *LoadError {
	if v == "" {
		return nil
	}
	normalized := v
	if !strings.HasPrefix(normalized, "v") {
		normalized = "v" + normalized
	}
	if !semver.IsValid(normalized) {
		return NewLoadError(ErrCodeInvalid, fmt.Sprintf("version %q is not a semantic version", v)).
			WithSuggestion(fmt.Sprintf("Use version: %s", CurrentVersion))
	}
	if semver.Major(normalized) != semver.Major(CurrentVersion) {
		return NewLoadError(ErrCodeVersionUnsupported,
			fmt.Sprintf("definition version %s is not supported", v)).
			WithSuggestion(fmt.Sprintf("This build reads %s definitions", CurrentVersion))
	}
	return nil
}
