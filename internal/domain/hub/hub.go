package hub

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/datahub/internal/ports"
)

// PostStep transforms the folded table before filtering.
type PostStep func(ctx context.Context, t Table) (Table, error)

// Hub holds the state of one pipeline: the root table, the inputs, every
// table produced so far and the rank of every known name. A Hub must not
// be used from several goroutines at once.
type Hub struct {
	registry *Registry
	engine   Engine
	root     Table
	logger   ports.Logger
	postStep PostStep

	inputs []TableNode
	tables map[string]TableNode
	rank   map[string]int
	order  []string // inputs in supply order, then steps in execution order

	named []namedTable
	life  *lifecycle
}

type namedTable struct {
	name  string
	table Table
}

// Option configures a Hub.
type Option func(*Hub)

// WithInput supplies an already wrapped input table.
func WithInput(node TableNode) Option {
	return func(h *Hub) { h.inputs = append(h.inputs, node) }
}

// WithNamedTable supplies a bare table that only feeds steps.
func WithNamedTable(name string, table Table) Option {
	return func(h *Hub) { h.named = append(h.named, namedTable{name: name, table: table}) }
}

// WithLogger sets the logger. Without one, the logger attached to the
// Execute context is used, if any.
func WithLogger(logger ports.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithPostStep sets the hook applied to the folded table.
func WithPostStep(fn PostStep) Option {
	return func(h *Hub) { h.postStep = fn }
}

// New creates a Hub. Inputs get rank -1 and are folded before any step,
// in the order they were supplied.
func New(registry *Registry, engine Engine, root Table, opts ...Option) (*Hub, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if engine == nil {
		return nil, NewError(KindShape, ErrCodeInvalidReturn, "engine must not be nil")
	}
	if root == nil {
		return nil, NewError(KindShape, ErrCodeInvalidReturn, "root table must not be nil")
	}

	h := &Hub{
		registry: registry,
		engine:   engine,
		root:     root,
		tables:   make(map[string]TableNode),
		rank:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}

	for _, nt := range h.named {
		if nt.table == nil {
			return nil, NewError(KindShape, ErrCodeInvalidReturn,
				fmt.Sprintf("named table %q must not be nil", nt.name)).
				WithTable(nt.name)
		}
		h.inputs = append(h.inputs, NewTableNode(nt.name, nt.table, nil, JoinNone))
	}

	for _, spec := range registry.Specs() {
		h.rank[spec.Name] = spec.Rank
	}
	for _, in := range h.inputs {
		if err := h.addInput(in); err != nil {
			return nil, err
		}
	}

	if len(h.rank) == 0 {
		return nil, NewError(KindState, ErrCodeNoTables, "there are no tables in the hub").
			WithSuggestion("Register at least one step or supply an input table")
	}

	life, err := newLifecycle()
	if err != nil {
		return nil, fmt.Errorf("build run lifecycle: %w", err)
	}
	h.life = life
	return h, nil
}

func (h *Hub) addInput(in TableNode) error {
	if in.Name() == "" {
		return NewError(KindConfiguration, ErrCodeConfigInvalid, "input table name must not be empty")
	}
	if in.Name() == RootName {
		return errReservedName(in.Name())
	}
	if in.IsEmpty() {
		return NewError(KindShape, ErrCodeInvalidReturn,
			fmt.Sprintf("input %q has no table", in.Name())).
			WithTable(in.Name())
	}
	if err := ValidateKeys(in.Join(), in.Keys()); err != nil {
		return err.(*Error).WithTable(in.Name())
	}
	if !hasColumns(in.Table(), in.Keys()) {
		return errKeysMissing("", in.Keys(), in.Table().Columns()).WithTable(in.Name())
	}
	if _, exists := h.rank[in.Name()]; exists {
		return errTableDuplicate(in.Name())
	}

	h.rank[in.Name()] = -1
	h.tables[in.Name()] = in
	h.order = append(h.order, in.Name())
	return nil
}

// Get returns the table registered under name.
func (h *Hub) Get(name string) (TableNode, error) {
	node, ok := h.tables[name]
	if !ok {
		return TableNode{}, errTableNotFound(name, h.Names())
	}
	return node, nil
}

// Names returns the names of the tables currently held, sorted.
func (h *Hub) Names() []string {
	names := make([]string, 0, len(h.tables))
	for name := range h.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rank returns the rank of a step or input; inputs have rank -1.
func (h *Hub) Rank(name string) (int, bool) {
	r, ok := h.rank[name]
	return r, ok
}

// State returns the lifecycle state.
func (h *Hub) State() State {
	return h.life.state()
}

// Runs returns how many runs were started and how many failed.
func (h *Hub) Runs() (started, failed int) {
	return h.life.stats.Runs, h.life.stats.Failures
}

// Reset drops every produced table and returns the hub to idle. Inputs are
// kept. Reset on an idle hub is a no-op.
func (h *Hub) Reset() {
	if h.State() == StateIdle {
		return
	}
	for name, r := range h.rank {
		if r >= 0 {
			delete(h.tables, name)
		}
	}
	h.order = h.order[:len(h.inputs)]
	h.life.send(EventReset)
}

func (h *Hub) loggerFor(ctx context.Context) ports.Logger {
	if h.logger != nil {
		return h.logger
	}
	return ports.LoggerFromContext(ctx)
}
