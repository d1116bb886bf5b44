package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/datahub/internal/adapters/logging"
	"github.com/felixgeelhaar/datahub/internal/domain/definition"
	"github.com/felixgeelhaar/datahub/internal/domain/hub"
	"github.com/felixgeelhaar/datahub/internal/ports"
)

var pipelinePath = filepath.Join("testdata", "pipeline.yaml")

func TestDataHub_Load(t *testing.T) {
	t.Parallel()

	p, err := New(&bytes.Buffer{}).Load(context.Background(), pipelinePath, []string{
		`{"name": "input_table2", "keys": ["id"], "join": "inner"}`,
		`{"name": "extra"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, p.Registry.Len())
	require.Len(t, p.Inputs, 3)
	assert.Equal(t, "input_table1", p.Inputs[0].Name())
	assert.Equal(t, "input_table2", p.Inputs[1].Name())
	assert.Equal(t, hub.JoinInner, p.Inputs[1].Join(), "descriptor overrides file input")
	assert.Equal(t, "extra", p.Inputs[2].Name())

	sink := p.Graph.Sink()
	assert.Equal(t, 3, sink.Level)
}

func TestDataHub_Report(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := New(&out).Report(context.Background(), pipelinePath, nil)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "# Complicated Data Hub\n"), s)
	assert.Contains(t, s, "### table1_2\n\n_No description._")
	assert.Contains(t, s, "```mermaid\ngraph LR\n")
	assert.Contains(t, s, `table3 -->|"left(id)"| root`)
}

func TestDataHub_Graph(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, New(&out).Graph(context.Background(), pipelinePath, nil))

	assert.True(t, strings.HasPrefix(out.String(), "graph LR\n"))
	assert.Contains(t, out.String(), "input_table2 ~~~ table1_3")
}

func TestDataHub_Validate(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, New(&out).Validate(context.Background(), pipelinePath))
	assert.Equal(t, "complicated data hub: 9 steps, 2 inputs, 5 levels\n", out.String())
}

func TestDataHub_Load_BadDescriptorIsLogged(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithOutput(&logs), logging.WithTimestamp(false))

	_, err := New(&bytes.Buffer{}).WithLogger(logger).
		Load(context.Background(), pipelinePath, []string{`{"name":`})

	require.Error(t, err)
	assert.ErrorIs(t, err, &definition.LoadError{Code: definition.ErrCodeInputDecode})
	assert.Contains(t, logs.String(), "[ERROR] failed to parse input table descriptor")
}

func TestDataHub_Load_LoggerFromContext(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := logging.NewConsoleLogger(logging.WithOutput(&logs), logging.WithTimestamp(false), logging.WithLevel(ports.LevelDebug))
	ctx := ports.ContextWithLogger(context.Background(), logger)

	_, err := New(&bytes.Buffer{}).Load(ctx, pipelinePath, nil)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "loaded pipeline definition")
}

func TestDataHub_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		inputs []string
		code   string
	}{
		{"missing file", filepath.Join("testdata", "missing.yaml"), nil, definition.ErrCodeFileNotFound},
		{"invalid descriptor", pipelinePath, []string{`{"keys": ["id"]}`}, definition.ErrCodeInputInvalid},
		{
			"repeated descriptor", pipelinePath,
			[]string{`{"name": "lookup"}`, `{"name": "lookup", "keys": ["id"], "join": "left"}`},
			definition.ErrCodeInputInvalid,
		},
		{"input named like a step", filepath.Join("testdata", "clash.yaml"), []string{`{"name": "events"}`}, definition.ErrCodeInputInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(&bytes.Buffer{}).Load(context.Background(), tt.path, tt.inputs)
			require.Error(t, err)
			assert.ErrorIs(t, err, &definition.LoadError{Code: tt.code})
		})
	}
}

func TestDataHub_Load_DescriptorReplacesFileInput(t *testing.T) {
	t.Parallel()

	p, err := New(&bytes.Buffer{}).Load(context.Background(), pipelinePath,
		[]string{`{"name": "input_table2", "keys": ["id"], "join": "inner"}`})
	require.NoError(t, err)

	require.Len(t, p.Inputs, 2)
	assert.Equal(t, "input_table2", p.Inputs[1].Name())
	assert.Equal(t, hub.JoinInner, p.Inputs[1].Join())
}

func TestMergeInputs(t *testing.T) {
	t.Parallel()

	a := hub.NewEmptyTableNode("a", nil, hub.JoinNone)
	b := hub.NewEmptyTableNode("b", nil, hub.JoinNone)
	b2 := hub.NewEmptyTableNode("b", []string{"id"}, hub.JoinLeft)
	c := hub.NewEmptyTableNode("c", nil, hub.JoinCross)

	got := mergeInputs([]hub.TableNode{a, b}, []hub.TableNode{b2, c})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Name(), got[1].Name(), got[2].Name()})
	assert.Equal(t, hub.JoinLeft, got[1].Join())
}
