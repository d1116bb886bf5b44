package hub

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/datahub/internal/ports"
)

// Execute runs every registered step in rank order, folds the joinable
// tables onto the root, applies the post-step hook and keeps the rows
// matching all preds. The first error aborts the run and leaves the hub
// in StateFailed; call Reset to run again.
func (h *Hub) Execute(ctx context.Context, preds ...Predicate) (Table, error) {
	if st := h.State(); st != StateIdle {
		return nil, NewError(KindState, ErrCodeAlreadyExecuted,
			fmt.Sprintf("hub is %s, not idle", st)).
			WithSuggestion("Call Reset before executing again")
	}

	log := newRunLog(h.loggerFor(ctx), uuid.New().String())
	h.life.send(EventExecute)
	log.info(ctx, "executing pipeline",
		ports.F("steps", h.registry.Len()),
		ports.F("inputs", len(h.inputs)))

	if err := h.executeSteps(ctx, log); err != nil {
		return nil, h.fail(ctx, log, err)
	}
	if len(h.tables) == 0 {
		return nil, h.fail(ctx, log, NewError(KindState, ErrCodeNoTables, "table set is empty after execution"))
	}

	h.life.send(EventFold)
	out, err := h.fold(ctx, log, preds)
	if err != nil {
		return nil, h.fail(ctx, log, err)
	}

	h.life.send(EventComplete)
	log.info(ctx, "pipeline completed",
		ports.F("rows", out.Len()),
		ports.F("columns", len(out.Columns())))
	return out, nil
}

func (h *Hub) fail(ctx context.Context, log runLog, err error) error {
	h.life.send(EventFail)
	log.error(ctx, "pipeline failed", ports.Err(err))
	return err
}

func (h *Hub) executeSteps(ctx context.Context, log runLog) error {
	for _, spec := range h.registry.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.runStep(ctx, log, spec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) runStep(ctx context.Context, log runLog, spec StepSpec) error {
	if _, exists := h.tables[spec.Name]; exists {
		return errTableDuplicate(spec.Name).WithStep(spec.Name)
	}

	inputs, missing := h.resolve(spec.Inputs)
	if len(missing) > 0 {
		if !spec.Optional {
			return errDependencyNotFound(spec.Name, missing[0], h.Names())
		}
		log.info(ctx, "skipping optional step",
			ports.F("step", spec.Name),
			ports.F("missing", missing))
		h.store(NewEmptyTableNode(spec.Name, spec.Keys, spec.Join))
		return nil
	}

	produce := h.registry.producer(spec.Name)
	if produce == nil {
		return NewError(KindConfiguration, ErrCodeConfigInvalid, "step has no producer").
			WithStep(spec.Name).
			WithSuggestion("Register the step with a producer before executing")
	}

	log.debug(ctx, "running step",
		ports.F("step", spec.Name),
		ports.F("rank", spec.Rank),
		ports.F("inputs", spec.Inputs))

	table, err := produce(ctx, inputs)
	if err != nil {
		return NewError(KindState, ErrCodeStepFailed, "step failed").
			WithStep(spec.Name).
			WithUnderlying(err)
	}
	if err := h.validateResult(spec, table); err != nil {
		return err
	}

	h.store(NewTableNode(spec.Name, table, spec.Keys, spec.Join))
	log.debug(ctx, "step produced table",
		ports.F("step", spec.Name),
		ports.F("rows", table.Len()))
	return nil
}

// resolve binds input names to available tables in declared order.
// Empty nodes count as missing.
func (h *Hub) resolve(names []string) ([]Table, []string) {
	tables := make([]Table, 0, len(names))
	var missing []string
	for _, name := range names {
		node, ok := h.tables[name]
		if !ok || node.IsEmpty() {
			missing = append(missing, name)
			continue
		}
		tables = append(tables, node.Table())
	}
	return tables, missing
}

func (h *Hub) store(node TableNode) {
	h.tables[node.Name()] = node
	h.order = append(h.order, node.Name())
}

func (h *Hub) validateResult(spec StepSpec, table Table) error {
	if table == nil {
		return NewError(KindShape, ErrCodeInvalidReturn, "step returned no table").
			WithStep(spec.Name)
	}
	if len(spec.Keys) == 0 {
		return nil
	}
	if !hasColumns(table, spec.Keys) {
		return errKeysMissing(spec.Name, spec.Keys, table.Columns())
	}
	if spec.SkipUniqueValidation {
		return nil
	}

	unique, err := h.engine.Unique(table, spec.Keys)
	if err != nil {
		return NewError(KindShape, ErrCodeInvalidReturn, "cannot check key uniqueness").
			WithStep(spec.Name).
			WithUnderlying(err)
	}
	if unique.Len() != table.Len() {
		return errKeysDuplicate(spec.Name, spec.Keys)
	}
	return nil
}

// runLog tags every entry with the run ID and tolerates a nil logger.
type runLog struct {
	logger ports.Logger
}

func newRunLog(logger ports.Logger, runID string) runLog {
	if logger == nil {
		return runLog{}
	}
	return runLog{logger: logger.With(ports.F("run_id", runID))}
}

func (l runLog) debug(ctx context.Context, msg string, fields ...ports.Field) {
	if l.logger != nil {
		l.logger.Debug(ctx, msg, fields...)
	}
}

func (l runLog) info(ctx context.Context, msg string, fields ...ports.Field) {
	if l.logger != nil {
		l.logger.Info(ctx, msg, fields...)
	}
}

func (l runLog) error(ctx context.Context, msg string, fields ...ports.Field) {
	if l.logger != nil {
		l.logger.Error(ctx, msg, fields...)
	}
}
