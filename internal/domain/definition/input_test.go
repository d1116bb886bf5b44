package definition

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

func TestParseInput(t *testing.T) {
	t.Parallel()

	node, err := ParseInput(`{"name": "input_table1", "keys": ["id"], "join": "left"}`)
	require.NoError(t, err)

	assert.Equal(t, "input_table1", node.Name())
	assert.Equal(t, []string{"id"}, node.Keys())
	assert.Equal(t, hub.JoinLeft, node.Join())
	assert.True(t, node.IsEmpty())
}

func TestParseInput_JoinOmitted(t *testing.T) {
	t.Parallel()

	node, err := ParseInput(`{"name": "lookup"}`)
	require.NoError(t, err)
	assert.Equal(t, hub.JoinNone, node.Join())
	assert.Empty(t, node.Keys())
}

func TestParseInput_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"malformed json", `{"name": "x"`, ErrCodeInputDecode},
		{"wrong type", `{"name": 3}`, ErrCodeInputDecode},
		{"reserved name", `{"name": "root"}`, ErrCodeInputInvalid},
		{"no name", `{"keys": ["id"], "join": "left"}`, ErrCodeInputInvalid},
		{"keys without join", `{"name": "x", "keys": ["id"]}`, ErrCodeInputInvalid},
		{"unknown join", `{"name": "x", "keys": ["id"], "join": "sideways"}`, ErrCodeInputInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseInput(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, &LoadError{Code: tt.code})
		})
	}
}

func TestParseInput_DecodeErrorWrapsJSONError(t *testing.T) {
	t.Parallel()

	_, err := ParseInput(`not json`)
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "not json", le.Context)
	assert.Contains(t, le.Format(), "Suggestion:")
}

func TestParseInputs(t *testing.T) {
	t.Parallel()

	nodes, err := ParseInputs([]string{`{"name": "a"}`, `{"name": "b", "keys": ["id"], "join": "inner"}`})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "b", nodes[1].Name())

	_, err = ParseInputs([]string{`{"name": "a"}`, `{`})
	assert.ErrorIs(t, err, &LoadError{Code: ErrCodeInputDecode})
}

func TestInput_Node(t *testing.T) {
	t.Parallel()

	_, err := Input{Name: "x", Join: "cross", Keys: []string{"id"}}.Node()
	require.Error(t, err)
	assert.ErrorIs(t, err, hub.ErrConfiguration)

	node, err := Input{Name: " spaced ", Join: "cross"}.Node()
	require.NoError(t, err)
	assert.Equal(t, "spaced", node.Name())
}

func TestLoadError_Format(t *testing.T) {
	t.Parallel()

	err := NewLoadError(ErrCodeParse, "cannot parse").
		WithContext("a.yaml").
		WithSuggestion("fix it").
		WithUnderlying(errors.New("line 3"))

	assert.Equal(t, "cannot parse (at a.yaml): line 3", err.Error())
	assert.Equal(t, "[DEFINITION_PARSE] cannot parse\n  Location: a.yaml\n  Suggestion: fix it\n  Cause: line 3", err.Format())
	assert.False(t, err.Is(errors.New("x")))
}
