package hub

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/datahub/internal/ports"
)

// fold joins every joinable, non-empty table onto the root in execution
// order. Colliding right-side columns are suffixed with "_" + table name.
func (h *Hub) fold(ctx context.Context, log runLog, preds []Predicate) (Table, error) {
	out := h.root
	for _, name := range h.order {
		node := h.tables[name]
		if !node.foldable() {
			continue
		}

		joined, err := h.engine.Join(out, node.Table(), node.Keys(), node.Join(), "_"+name)
		if err != nil {
			return nil, NewError(KindShape, ErrCodeJoinFailed,
				fmt.Sprintf("cannot %s join table", node.Join())).
				WithTable(name).
				WithUnderlying(err)
		}
		log.debug(ctx, "folded table",
			ports.F("table", name),
			ports.F("join", node.Join().String()),
			ports.F("rows", joined.Len()))
		out = joined
	}

	if h.postStep != nil {
		processed, err := h.postStep(ctx, out)
		if err != nil {
			return nil, NewError(KindState, ErrCodeStepFailed, "post step failed").
				WithUnderlying(err)
		}
		if processed == nil {
			return nil, NewError(KindShape, ErrCodeInvalidReturn, "post step returned no table")
		}
		out = processed
	}

	if len(preds) == 0 {
		return out, nil
	}
	filtered, err := h.engine.Filter(out, And(preds...))
	if err != nil {
		return nil, NewError(KindShape, ErrCodeFilterFailed, "cannot filter folded table").
			WithUnderlying(err)
	}
	return filtered, nil
}
