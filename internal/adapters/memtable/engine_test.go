package memtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

func joinFixture() (*Table, *Table) {
	left := MustNew(
		Col("id", "a", "b", "c", nil),
		Col("v", 1, 2, 3, 4),
	)
	right := MustNew(
		Col("id", "b", "c", "c", "d", nil),
		Col("v", 20, 30, 31, 40, 50),
		Col("w", "x", "y", "z", "q", "n"),
	)
	return left, right
}

func TestEngine_Join(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		how  hub.JoinKind
		want *Table
	}{
		{
			name: "inner",
			how:  hub.JoinInner,
			want: MustNew(
				Col("id", "b", "c", "c"),
				Col("v", 2, 3, 3),
				Col("v_r", 20, 30, 31),
				Col("w", "x", "y", "z"),
			),
		},
		{
			name: "left keeps unmatched and null keys",
			how:  hub.JoinLeft,
			want: MustNew(
				Col("id", "a", "b", "c", "c", nil),
				Col("v", 1, 2, 3, 3, 4),
				Col("v_r", nil, 20, 30, 31, nil),
				Col("w", nil, "x", "y", "z", nil),
			),
		},
		{
			name: "right coalesces keys",
			how:  hub.JoinRight,
			want: MustNew(
				Col("id", "b", "c", "c", "d", nil),
				Col("v", 2, 3, 3, nil, nil),
				Col("v_r", 20, 30, 31, 40, 50),
				Col("w", "x", "y", "z", "q", "n"),
			),
		},
		{
			name: "full appends unmatched right rows",
			how:  hub.JoinFull,
			want: MustNew(
				Col("id", "a", "b", "c", "c", nil, "d", nil),
				Col("v", 1, 2, 3, 3, 4, nil, nil),
				Col("v_r", nil, 20, 30, 31, nil, 40, 50),
				Col("w", nil, "x", "y", "z", nil, "q", "n"),
			),
		},
		{
			name: "semi keeps left columns",
			how:  hub.JoinSemi,
			want: MustNew(Col("id", "b", "c"), Col("v", 2, 3)),
		},
		{
			name: "anti keeps unmatched left rows",
			how:  hub.JoinAnti,
			want: MustNew(Col("id", "a", nil), Col("v", 1, 4)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			left, right := joinFixture()
			got, err := NewEngine().Join(left, right, []string{"id"}, tt.how, "_r")
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.(*Table)), "got:\n%s\nwant:\n%s", got, tt.want)
		})
	}
}

func TestEngine_Join_Cross(t *testing.T) {
	t.Parallel()

	left := MustNew(Col("id", "a", "b"))
	right := MustNew(Col("id", 1, 2), Col("k", "x", "y"))

	got, err := NewEngine().Join(left, right, nil, hub.JoinCross, "_sizes")
	require.NoError(t, err)

	want := MustNew(
		Col("id", "a", "a", "b", "b"),
		Col("id_sizes", 1, 2, 1, 2),
		Col("k", "x", "y", "x", "y"),
	)
	assert.True(t, want.Equal(got.(*Table)), "got:\n%s", got)
}

func TestEngine_Join_CompositeKeys(t *testing.T) {
	t.Parallel()

	left := MustNew(Col("a", 1, 1, 2), Col("b", "x", "y", "x"))
	right := MustNew(Col("a", 1, 2), Col("b", "y", "x"), Col("c", true, false))

	got, err := NewEngine().Join(left, right, []string{"a", "b"}, hub.JoinLeft, "_r")
	require.NoError(t, err)

	want := MustNew(
		Col("a", 1, 1, 2),
		Col("b", "x", "y", "x"),
		Col("c", nil, true, false),
	)
	assert.True(t, want.Equal(got.(*Table)), "got:\n%s", got)
}

func TestEngine_Join_KeyTypesDoNotMix(t *testing.T) {
	t.Parallel()

	left := MustNew(Col("id", 1))
	right := MustNew(Col("id", "1"), Col("n", 9))

	got, err := NewEngine().Join(left, right, []string{"id"}, hub.JoinInner, "_r")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestEngine_CompositeKeyCellBoundaries(t *testing.T) {
	t.Parallel()

	// Both rows concatenate to the same text when cells are joined with
	// a plain separator.
	tbl := MustNew(
		Col("a", "x\x00string:y", "x"),
		Col("b", "z", "y\x00string:z"),
		Col("n", 1, 2),
	)

	unique, err := NewEngine().Unique(tbl, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, unique.Len())

	left := MustNew(Col("a", "x\x00string:y"), Col("b", "z"))
	right := MustNew(Col("a", "x"), Col("b", "y\x00string:z"), Col("n", 2))
	joined, err := NewEngine().Join(left, right, []string{"a", "b"}, hub.JoinInner, "_r")
	require.NoError(t, err)
	assert.Equal(t, 0, joined.Len())
}

func TestEngine_Join_Errors(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	left := MustNew(Col("id", "a"))
	right := MustNew(Col("key", "a"))

	_, err := e.Join(left, right, []string{"id"}, hub.JoinLeft, "_r")
	assert.ErrorContains(t, err, `key "id" missing from right table`)

	_, err = e.Join(left, left, []string{"id"}, hub.JoinKind("lateral"), "_r")
	assert.ErrorContains(t, err, "unsupported join")

	_, err = e.Join(left, fakeTable{}, []string{"id"}, hub.JoinLeft, "_r")
	assert.ErrorContains(t, err, "unsupported table type")
}

func TestEngine_Join_SuffixCollision(t *testing.T) {
	t.Parallel()

	left := MustNew(Col("id", "a"), Col("v", 1), Col("v_r", 2))
	right := MustNew(Col("id", "a"), Col("v", 3))

	_, err := NewEngine().Join(left, right, []string{"id"}, hub.JoinLeft, "_r")
	assert.ErrorContains(t, err, `duplicate column "v_r"`)
}

func TestEngine_Filter(t *testing.T) {
	t.Parallel()

	tbl := MustNew(Col("id", "a", "b", "c"), Col("n", 1, 2, 3))
	got, err := NewEngine().Filter(tbl, func(r hub.Row) bool {
		v, _ := r.Value("n")
		return v.(int) >= 2
	})
	require.NoError(t, err)
	assert.True(t, MustNew(Col("id", "b", "c"), Col("n", 2, 3)).Equal(got.(*Table)))
}

func TestEngine_Filter_AndMatchesSequential(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	tbl := MustNew(Col("n", 1, 2, 3, 4, 5, 6))
	even := func(r hub.Row) bool { v, _ := r.Value("n"); return v.(int)%2 == 0 }
	big := func(r hub.Row) bool { v, _ := r.Value("n"); return v.(int) > 2 }

	combined, err := e.Filter(tbl, hub.And(even, big))
	require.NoError(t, err)

	first, err := e.Filter(tbl, even)
	require.NoError(t, err)
	sequential, err := e.Filter(first, big)
	require.NoError(t, err)

	assert.True(t, combined.(*Table).Equal(sequential.(*Table)))
	assert.Equal(t, 2, combined.Len())
}

func TestEngine_Unique(t *testing.T) {
	t.Parallel()

	tbl := MustNew(
		Col("id", "a", "a", "b", nil, nil),
		Col("n", 1, 2, 3, 4, 5),
	)
	got, err := NewEngine().Unique(tbl, []string{"id"})
	require.NoError(t, err)
	assert.True(t, MustNew(Col("id", "a", "b", nil), Col("n", 1, 3, 4)).Equal(got.(*Table)), "got:\n%s", got)

	_, err = NewEngine().Unique(tbl, []string{"nope"})
	assert.ErrorContains(t, err, `key "nope" missing`)
}

type fakeTable struct{}

func (fakeTable) Columns() []string { return nil }
func (fakeTable) Len() int          { return 0 }
