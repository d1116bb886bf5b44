// Package hub implements the table-pipeline orchestrator.
//
// A Registry holds named, ranked steps. Each step produces one table from
// the tables it declares as inputs. A Hub binds a registry to a root table,
// an Engine and any externally supplied inputs. Execute runs the steps in
// rank order and folds every joinable result onto the root table. It then
// applies the post-step hook and the conjunction of the given predicates.
//
//	reg := hub.NewRegistry()
//	reg.MustRegister("scores", 0, loadScores, hub.Keys("id"), hub.Join(hub.JoinLeft))
//	h, err := hub.New(reg, engine, root)
//	out, err := h.Execute(ctx)
package hub
