// Package report renders a Markdown description of a pipeline: its title,
// the input tables, a rank/join/keys overview, per-step documentation and
// a Mermaid dataflow diagram.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/datahub/internal/domain/dataflow"
	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

const noDescription = "_No description._"

// Meta describes what the steps alone do not: the pipeline's name and
// description and the input tables supplied at run time.
type Meta struct {
	Name        string
	Description string
	Inputs      []hub.TableNode
}

// Render returns the Markdown report. A nil graph is built from steps and
// meta.Inputs.
func Render(meta Meta, steps []hub.StepSpec, g *dataflow.Graph) string {
	var b strings.Builder
	_ = Write(&b, meta, steps, g)
	return b.String()
}

// Write writes the Markdown report to w.
func Write(w io.Writer, meta Meta, steps []hub.StepSpec, g *dataflow.Graph) error {
	if g == nil {
		g = dataflow.Build(steps, meta.Inputs)
	}
	ordered := append([]hub.StepSpec(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank < ordered[j].Rank
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(meta.Name))
	if d := strings.TrimSpace(meta.Description); d != "" {
		fmt.Fprintf(&b, "%s\n\n", d)
	}

	if len(meta.Inputs) > 0 {
		b.WriteString("## Inputs\n\n")
		b.WriteString(inputsTable(meta.Inputs))
		b.WriteString("\n\n")
	}

	b.WriteString("## Tables\n\n")
	if len(ordered) == 0 {
		b.WriteString("_No steps._\n\n")
	} else {
		b.WriteString(stepsTable(ordered))
		b.WriteString("\n\n")
	}

	b.WriteString("## Steps\n\n")
	for _, s := range ordered {
		fmt.Fprintf(&b, "### %s\n\n", s.Name)
		desc := strings.TrimSpace(s.Description)
		if desc == "" {
			desc = noDescription
		}
		fmt.Fprintf(&b, "%s\n\n", desc)
	}

	b.WriteString("## Dataflow\n\n```mermaid\n")
	b.WriteString(dataflow.Mermaid(g))
	b.WriteString("```\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func title(name string) string {
	name = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	if name == "" {
		return "Pipeline"
	}
	return cases.Title(language.English).String(name)
}

func stepsTable(steps []hub.StepSpec) string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"Rank", "Name", "Join", "Keys", "Optional", "Inputs"})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	for _, s := range steps {
		w.AppendRow(table.Row{
			s.Rank,
			s.Name,
			s.Join.String(),
			listOrDash(s.Keys),
			yesNo(s.Optional),
			listOrDash(s.Inputs),
		})
	}
	return w.RenderMarkdown()
}

func inputsTable(inputs []hub.TableNode) string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"Name", "Join", "Keys"})
	for _, in := range inputs {
		w.AppendRow(table.Row{in.Name(), in.Join().String(), listOrDash(in.Keys())})
	}
	return w.RenderMarkdown()
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
