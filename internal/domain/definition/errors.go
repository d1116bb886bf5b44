package definition

import (
	"fmt"
	"strings"
)

// Error codes for definition loading.
const (
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeFileRead           = "FILE_READ"
	ErrCodeFormatUnsupported  = "FORMAT_UNSUPPORTED"
	ErrCodeParse              = "DEFINITION_PARSE"
	ErrCodeInvalid            = "DEFINITION_INVALID"
	ErrCodeVersionUnsupported = "VERSION_UNSUPPORTED"
	ErrCodeInputDecode        = "INPUT_DECODE"
	ErrCodeInputInvalid       = "INPUT_INVALID"
)

// LoadError is a user-facing error about a definition file or an input
// descriptor.
type LoadError struct {
	Code       string
	Message    string
	Context    string // file path, step or input the error is about
	Suggestion string
	Underlying error
}

// NewLoadError creates a LoadError.
func NewLoadError(code, message string) *LoadError {
	return &LoadError{Code: code, Message: message}
}

// Error returns the message with its context.
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Underlying
}

// Is matches LoadErrors by code.
func (e *LoadError) Is(target error) bool {
	if t, ok := target.(*LoadError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a multi-line description.
func (e *LoadError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	return b.String()
}

// WithContext returns a copy with the context set.
func (e *LoadError) WithContext(ctx string) *LoadError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a copy with the suggestion set.
func (e *LoadError) WithSuggestion(suggestion string) *LoadError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a copy wrapping err.
func (e *LoadError) WithUnderlying(err error) *LoadError {
	c := *e
	c.Underlying = err
	return &c
}
