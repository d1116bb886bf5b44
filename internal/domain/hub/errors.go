package hub

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error.
type Kind string

// Error kinds.
const (
	KindConfiguration Kind = "configuration"
	KindDuplication   Kind = "duplication"
	KindShape         Kind = "shape"
	KindLookup        Kind = "lookup"
	KindState         Kind = "state"
)

// Error codes.
const (
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodeUnsupportedJoin    = "UNSUPPORTED_JOIN"
	ErrCodeTableDuplicate     = "TABLE_DUPLICATE"
	ErrCodeKeysDuplicate      = "KEYS_DUPLICATE"
	ErrCodeInvalidReturn      = "INVALID_RETURN"
	ErrCodeKeysMissing        = "KEYS_MISSING"
	ErrCodeTableNotFound      = "TABLE_NOT_FOUND"
	ErrCodeDependencyNotFound = "DEPENDENCY_NOT_FOUND"
	ErrCodeNoTables           = "NO_TABLES"
	ErrCodeAlreadyExecuted    = "ALREADY_EXECUTED"
	ErrCodeStepFailed         = "STEP_FAILED"
	ErrCodeJoinFailed         = "JOIN_FAILED"
	ErrCodeFilterFailed       = "FILTER_FAILED"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrDuplication   = &Error{Kind: KindDuplication}
	ErrShape         = &Error{Kind: KindShape}
	ErrLookup        = &Error{Kind: KindLookup}
	ErrState         = &Error{Kind: KindState}
)

// Error is returned by every operation in this package.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	Step       string   // step that raised or requested
	Table      string   // table the error is about, if different from Step
	Known      []string // known table names, set on lookup errors
	Suggestion string
	Underlying error
}

// NewError creates an Error.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Error returns the single-line message.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Step != "" {
		fmt.Fprintf(&b, "step %q: ", e.Step)
	}
	b.WriteString(e.Message)
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, " (known tables: %s)", strings.Join(e.Known, ", "))
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches on Code when the target carries one, otherwise on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Kind != "" && e.Kind == t.Kind
}

// Format returns a multi-line description with every detail set.
func (e *Error) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Step != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.Step)
	}
	if e.Table != "" {
		fmt.Fprintf(&b, "\n  Table: %s", e.Table)
	}
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, "\n  Known tables: %s", strings.Join(e.Known, ", "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	return b.String()
}

func (e *Error) clone() *Error {
	c := *e
	c.Known = append([]string(nil), e.Known...)
	return &c
}

// WithStep returns a copy with the step set.
func (e *Error) WithStep(step string) *Error {
	c := e.clone()
	c.Step = step
	return c
}

// WithTable returns a copy with the table set.
func (e *Error) WithTable(table string) *Error {
	c := e.clone()
	c.Table = table
	return c
}

// WithKnown returns a copy listing the known table names, sorted.
func (e *Error) WithKnown(names []string) *Error {
	c := e.clone()
	c.Known = append([]string(nil), names...)
	sort.Strings(c.Known)
	return c
}

// WithSuggestion returns a copy with the suggestion set.
func (e *Error) WithSuggestion(suggestion string) *Error {
	c := e.clone()
	c.Suggestion = suggestion
	return c
}

// WithUnderlying returns a copy wrapping err.
func (e *Error) WithUnderlying(err error) *Error {
	c := e.clone()
	c.Underlying = err
	return c
}

func errTableDuplicate(name string) *Error {
	return NewError(KindDuplication, ErrCodeTableDuplicate,
		fmt.Sprintf("table %q is duplicated", name)).
		WithTable(name).
		WithSuggestion("Give every step and input table a unique name")
}

func errTableNotFound(name string, known []string) *Error {
	return NewError(KindLookup, ErrCodeTableNotFound,
		fmt.Sprintf("table %q is not found", name)).
		WithTable(name).
		WithKnown(known)
}

func errDependencyNotFound(step, missing string, known []string) *Error {
	return NewError(KindLookup, ErrCodeDependencyNotFound,
		fmt.Sprintf("input table %q is not available", missing)).
		WithStep(step).
		WithTable(missing).
		WithKnown(known).
		WithSuggestion("Supply the table as an input, register a step producing it, or mark the step optional")
}

func errKeysMissing(step string, expected, found []string) *Error {
	return NewError(KindShape, ErrCodeKeysMissing,
		fmt.Sprintf("keys %v are not all columns of the returned table; columns: %v", expected, found)).
		WithStep(step)
}

func errKeysDuplicate(step string, keys []string) *Error {
	return NewError(KindDuplication, ErrCodeKeysDuplicate,
		fmt.Sprintf("returned table has duplicate rows on keys %v", keys)).
		WithStep(step).
		WithSuggestion("Deduplicate the table or register the step with SkipUniqueValidation")
}

// RootName names the table every step folds into. No step or input may
// use it.
const RootName = "root"

// IsReservedName reports whether name is taken by the root table.
func IsReservedName(name string) bool {
	return name == RootName
}

func errReservedName(name string) *Error {
	return NewError(KindConfiguration, ErrCodeConfigInvalid,
		fmt.Sprintf("table name %q is reserved for the root table", name)).
		WithTable(name).
		WithSuggestion(fmt.Sprintf("Rename the table, for example to %q", name+"_table"))
}
