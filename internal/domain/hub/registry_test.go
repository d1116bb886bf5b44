package hub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopProducer(_ context.Context, _ []Table) (Table, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register("table1", 0, noopProducer,
		Keys("id"), Join(JoinLeft), Inputs("input_table"), Optional(), SkipUniqueValidation(), Describe("first"))
	require.NoError(t, err)

	spec, ok := r.Lookup("table1")
	require.True(t, ok)
	assert.Equal(t, StepSpec{
		Name:                 "table1",
		Rank:                 0,
		Join:                 JoinLeft,
		Keys:                 []string{"id"},
		Inputs:               []string{"input_table"},
		Optional:             true,
		SkipUniqueValidation: true,
		Description:          "first",
	}, spec)
	assert.NotNil(t, r.producer("table1"))
	assert.Equal(t, 1, r.Len())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_DefaultsToNoJoinAndUniqueValidation(t *testing.T) {
	t.Parallel()

	r := NewRegistry().MustRegister("scratch", 3, noopProducer)
	spec, _ := r.Lookup("scratch")

	assert.Equal(t, JoinNone, spec.Join)
	assert.False(t, spec.SkipUniqueValidation)
	assert.False(t, spec.Optional)
}

func TestRegistry_Register_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		step    string
		rank    int
		opts    []StepOption
		wantErr string
	}{
		{"empty name", "", 0, nil, "name must not be empty"},
		{"negative rank", "t", -1, nil, "rank must be >= 0"},
		{"keyed join without keys", "t", 0, []StepOption{Join(JoinLeft)}, "requires at least one key"},
		{"keys without join", "t", 0, []StepOption{Keys("id")}, "does not take keys"},
		{"cross with keys", "t", 0, []StepOption{Join(JoinCross), Keys("id")}, "does not take keys"},
		{"unsupported join", "t", 0, []StepOption{Join("outer_coalesce"), Keys("id")}, "unsupported join"},
		{"self input", "t", 0, []StepOption{Inputs("t")}, "lists itself"},
		{"empty input", "t", 0, []StepOption{Inputs("")}, "input names must not be empty"},
		{"root as name", RootName, 0, nil, "reserved for the root table"},
		{"root as input", "t", 0, []StepOption{Inputs(RootName)}, "reserved for the root table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewRegistry().Register(tt.step, tt.rank, noopProducer, tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestRegistry_Register_RootSuggestsRename(t *testing.T) {
	t.Parallel()

	err := NewRegistry().Register(RootName, 0, noopProducer)
	require.Error(t, err)

	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, RootName, herr.Step)
	assert.Contains(t, herr.Suggestion, "root_table")
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	t.Parallel()

	r := NewRegistry().MustRegister("table1", 0, noopProducer)
	err := r.Register("table1", 1, noopProducer)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Steps_OrderedByRankThenRegistration(t *testing.T) {
	t.Parallel()

	r := NewRegistry().
		MustRegister("c", 2, noopProducer).
		MustRegister("a", 0, noopProducer).
		MustRegister("d", 1, noopProducer).
		MustRegister("b", 0, noopProducer).
		MustRegister("e", 1, noopProducer)

	var names []string
	for _, s := range r.Steps() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "d", "e", "c"}, names)

	var registered []string
	for _, s := range r.Specs() {
		registered = append(registered, s.Name)
	}
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, registered)
}

func TestRegistry_SpecsAreCopies(t *testing.T) {
	t.Parallel()

	keys := []string{"id"}
	r := NewRegistry()
	require.NoError(t, r.RegisterSpec(StepSpec{Name: "t", Join: JoinLeft, Keys: keys}, nil))
	keys[0] = "mutated"

	specs := r.Specs()
	assert.Equal(t, []string{"id"}, specs[0].Keys)

	specs[0].Keys[0] = "mutated"
	again, _ := r.Lookup("t")
	assert.Equal(t, []string{"id"}, again.Keys)
}

func TestRegistry_RegisterSpec_NilProducer(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterSpec(StepSpec{Name: "report_only"}, nil))
	assert.Nil(t, r.producer("report_only"))
}

func TestMustRegister_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewRegistry().MustRegister("bad", -2, noopProducer)
	})
}
