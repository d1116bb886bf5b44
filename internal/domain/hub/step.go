package hub

import (
	"context"
	"fmt"
)

// Producer builds a step's table from its inputs, passed in the order the
// step declares them.
type Producer func(ctx context.Context, inputs []Table) (Table, error)

// StepSpec is the static description of a step.
type StepSpec struct {
	Name     string
	Rank     int
	Join     JoinKind
	Keys     []string
	Inputs   []string
	Optional bool
	// SkipUniqueValidation disables the duplicate-key check on the result.
	SkipUniqueValidation bool
	Description          string
}

// StepOption customizes a StepSpec during Register.
type StepOption func(*StepSpec)

// Keys sets the join keys.
func Keys(keys ...string) StepOption {
	return func(s *StepSpec) { s.Keys = keys }
}

// Join sets the join kind.
func Join(kind JoinKind) StepOption {
	return func(s *StepSpec) { s.Join = kind }
}

// Inputs declares the tables the step consumes.
func Inputs(names ...string) StepOption {
	return func(s *StepSpec) { s.Inputs = names }
}

// Optional marks the step as skippable when an input is unavailable.
func Optional() StepOption {
	return func(s *StepSpec) { s.Optional = true }
}

// SkipUniqueValidation disables the duplicate-key check.
func SkipUniqueValidation() StepOption {
	return func(s *StepSpec) { s.SkipUniqueValidation = true }
}

// Describe attaches human-readable documentation.
func Describe(text string) StepOption {
	return func(s *StepSpec) { s.Description = text }
}

// Validate checks the registration rules for a single step.
func (s StepSpec) Validate() error {
	if s.Name == "" {
		return NewError(KindConfiguration, ErrCodeConfigInvalid, "step name must not be empty")
	}
	if s.Name == RootName {
		return errReservedName(s.Name).WithStep(s.Name)
	}
	if s.Rank < 0 {
		return NewError(KindConfiguration, ErrCodeConfigInvalid,
			fmt.Sprintf("rank must be >= 0, got %d", s.Rank)).
			WithStep(s.Name).
			WithSuggestion("Rank -1 is reserved for input tables supplied at construction")
	}
	if err := ValidateKeys(s.Join, s.Keys); err != nil {
		return err.(*Error).WithStep(s.Name)
	}
	for _, in := range s.Inputs {
		if in == "" {
			return NewError(KindConfiguration, ErrCodeConfigInvalid, "input names must not be empty").
				WithStep(s.Name)
		}
		if in == RootName {
			return errReservedName(in).WithStep(s.Name)
		}
		if in == s.Name {
			return NewError(KindConfiguration, ErrCodeConfigInvalid, "step lists itself as an input").
				WithStep(s.Name)
		}
	}
	return nil
}

func (s StepSpec) clone() StepSpec {
	c := s
	c.Join = s.Join.normalize()
	c.Keys = append([]string(nil), s.Keys...)
	c.Inputs = append([]string(nil), s.Inputs...)
	return c
}
