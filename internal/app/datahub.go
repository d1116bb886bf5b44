// Package app wires definition loading, dataflow building and report
// rendering for the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/datahub/internal/adapters/logging"
	"github.com/felixgeelhaar/datahub/internal/domain/dataflow"
	"github.com/felixgeelhaar/datahub/internal/domain/definition"
	"github.com/felixgeelhaar/datahub/internal/domain/hub"
	"github.com/felixgeelhaar/datahub/internal/domain/report"
	"github.com/felixgeelhaar/datahub/internal/ports"
)

// DataHub is the application orchestrator.
type DataHub struct {
	out    io.Writer
	logger ports.Logger
}

// New creates a DataHub writing to out.
func New(out io.Writer) *DataHub {
	return &DataHub{out: out}
}

// WithLogger sets the logger used for diagnostics.
func (d *DataHub) WithLogger(logger ports.Logger) *DataHub {
	d.logger = logger
	return d
}

// Pipeline is a loaded definition together with everything derived from it.
type Pipeline struct {
	Definition *definition.Definition
	Registry   *hub.Registry
	Inputs     []hub.TableNode
	Graph      *dataflow.Graph
}

// Load reads the definition at path and merges the file's inputs with the
// JSON descriptors in rawInputs. A descriptor replaces a file input of the
// same name; two descriptors sharing a name are rejected.
func (d *DataHub) Load(ctx context.Context, path string, rawInputs []string) (*Pipeline, error) {
	log := d.log(ctx)

	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := def.Registry()
	if err != nil {
		return nil, err
	}
	fileInputs, err := def.InputNodes()
	if err != nil {
		return nil, err
	}

	extra := make([]hub.TableNode, 0, len(rawInputs))
	seen := make(map[string]bool, len(rawInputs))
	for _, raw := range rawInputs {
		node, err := definition.ParseInput(raw)
		if err != nil {
			var le *definition.LoadError
			if errors.As(err, &le) && le.Code == definition.ErrCodeInputDecode {
				log.Error(ctx, "failed to parse input table descriptor",
					ports.F("input", raw), ports.Err(le.Underlying))
			}
			return nil, err
		}
		if seen[node.Name()] {
			return nil, definition.NewLoadError(definition.ErrCodeInputInvalid,
				fmt.Sprintf("input %q is given more than once", node.Name())).
				WithContext(raw).
				WithSuggestion("Pass each --input-table name once")
		}
		seen[node.Name()] = true
		extra = append(extra, node)
	}

	inputs := mergeInputs(fileInputs, extra)
	for _, in := range inputs {
		if _, clash := reg.Lookup(in.Name()); clash {
			return nil, definition.NewLoadError(definition.ErrCodeInputInvalid,
				fmt.Sprintf("input %q has the same name as a step", in.Name())).
				WithContext(path)
		}
	}

	log.Debug(ctx, "loaded pipeline definition",
		ports.F("path", path),
		ports.F("steps", reg.Len()),
		ports.F("inputs", len(inputs)))

	return &Pipeline{
		Definition: def,
		Registry:   reg,
		Inputs:     inputs,
		Graph:      dataflow.Build(reg.Steps(), inputs),
	}, nil
}

// Report writes the Markdown report for the definition at path.
func (d *DataHub) Report(ctx context.Context, path string, rawInputs []string) error {
	p, err := d.Load(ctx, path, rawInputs)
	if err != nil {
		return err
	}

	meta := report.Meta{
		Name:        p.Definition.Title(),
		Description: p.Definition.Description,
		Inputs:      p.Inputs,
	}
	if err := report.Write(d.out, meta, p.Registry.Steps(), p.Graph); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Graph writes only the Mermaid dataflow diagram.
func (d *DataHub) Graph(ctx context.Context, path string, rawInputs []string) error {
	p, err := d.Load(ctx, path, rawInputs)
	if err != nil {
		return err
	}
	_, err = io.WriteString(d.out, dataflow.Mermaid(p.Graph))
	return err
}

// Validate loads the definition and reports a one-line summary.
func (d *DataHub) Validate(ctx context.Context, path string) error {
	p, err := d.Load(ctx, path, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(d.out, "%s: %d steps, %d inputs, %d levels\n",
		p.Definition.Title(), p.Registry.Len(), len(p.Inputs), len(p.Graph.Levels()))
	return err
}

func (d *DataHub) log(ctx context.Context) ports.Logger {
	if d.logger != nil {
		return d.logger
	}
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	return logging.NewNopLogger()
}

func mergeInputs(base, override []hub.TableNode) []hub.TableNode {
	index := make(map[string]int, len(base)+len(override))
	out := make([]hub.TableNode, 0, len(base)+len(override))
	for _, list := range [][]hub.TableNode{base, override} {
		for _, n := range list {
			if i, ok := index[n.Name()]; ok {
				out[i] = n
				continue
			}
			index[n.Name()] = len(out)
			out = append(out, n)
		}
	}
	return out
}
