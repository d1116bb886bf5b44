package hub

import (
	"fmt"
	"strings"
)

// JoinKind is the relational operation used to fold a table onto the root.
type JoinKind string

// Supported join kinds. JoinNone marks an intermediate table that only
// feeds other steps.
const (
	JoinNone  JoinKind = "none"
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
	JoinSemi  JoinKind = "semi"
	JoinAnti  JoinKind = "anti"
	JoinCross JoinKind = "cross"
)

// JoinKinds lists every supported kind in declaration order.
func JoinKinds() []JoinKind {
	return []JoinKind{JoinNone, JoinInner, JoinLeft, JoinRight, JoinFull, JoinSemi, JoinAnti, JoinCross}
}

// ParseJoinKind converts a user-facing string into a JoinKind.
// The empty string means none and "outer" is accepted as an alias of full.
func ParseJoinKind(s string) (JoinKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "", string(JoinNone):
		return JoinNone, nil
	case "outer":
		return JoinFull, nil
	}

	kind := JoinKind(normalized)
	if kind.Valid() {
		return kind, nil
	}

	return JoinNone, NewError(KindConfiguration, ErrCodeUnsupportedJoin,
		fmt.Sprintf("unsupported join kind %q", s)).
		WithSuggestion("Use one of: none, inner, left, right, full, semi, anti, cross")
}

// Valid reports whether k is one of the supported kinds.
func (k JoinKind) Valid() bool {
	for _, kind := range JoinKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Joins reports whether tables of this kind are folded onto the root.
func (k JoinKind) Joins() bool {
	return k != JoinNone && k != ""
}

// IsKeyed reports whether the kind requires join keys.
func (k JoinKind) IsKeyed() bool {
	return k.Joins() && k != JoinCross
}

// String returns the kind name.
func (k JoinKind) String() string {
	if k == "" {
		return string(JoinNone)
	}
	return string(k)
}

// ValidateKeys checks that keys suit kind: keyed joins need at least one
// key, none and cross take none, and keys are non-empty and distinct.
func ValidateKeys(kind JoinKind, keys []string) error {
	if !kind.Valid() && kind != "" {
		return NewError(KindConfiguration, ErrCodeUnsupportedJoin,
			fmt.Sprintf("unsupported join kind %q", string(kind)))
	}
	if kind.IsKeyed() && len(keys) == 0 {
		return NewError(KindConfiguration, ErrCodeConfigInvalid,
			fmt.Sprintf("join %q requires at least one key", kind)).
			WithSuggestion("Declare the columns the table is joined on")
	}
	if !kind.IsKeyed() && len(keys) > 0 {
		return NewError(KindConfiguration, ErrCodeConfigInvalid,
			fmt.Sprintf("join %q does not take keys, got %v", kind, keys)).
			WithSuggestion("Remove the keys or choose a keyed join")
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" {
			return NewError(KindConfiguration, ErrCodeConfigInvalid, "join keys must not be empty strings")
		}
		if seen[key] {
			return NewError(KindConfiguration, ErrCodeConfigInvalid,
				fmt.Sprintf("join key %q is listed twice", key))
		}
		seen[key] = true
	}
	return nil
}
