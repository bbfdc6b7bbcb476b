package report

import (
	"fmt"
	"io"
	"strings"

	"diaggroups/internal/graph"
)

type mermaidEdge struct {
	from string
	to   string
}

// mermaidDiagram accumulates nodes and edges in first-seen order.
type mermaidDiagram struct {
	ids    map[string]string
	labels []string
	seen   map[mermaidEdge]bool
	edges  []mermaidEdge
}

func (d *mermaidDiagram) node(label string) string {
	if id, ok := d.ids[label]; ok {
		return id
	}
	id := fmt.Sprintf("n%d", len(d.labels))
	d.ids[label] = id
	d.labels = append(d.labels, label)
	return id
}

func (d *mermaidDiagram) edge(from, to string) {
	e := mermaidEdge{from: d.node(from), to: d.node(to)}
	if !d.seen[e] {
		d.seen[e] = true
		d.edges = append(d.edges, e)
	}
}

// writeMermaid renders the enable relation as a flow chart. Cycles show up
// as back edges; diamonds share a single node.
func writeMermaid(w io.Writer, g *graph.Graph, opts Options) error {
	d := &mermaidDiagram{ids: map[string]string{}, seen: map[mermaidEdge]bool{}}
	for _, name := range selected(g, opts) {
		top := "-W" + name
		d.node(top)
		if opts.Unique {
			continue
		}
		stack := []string{top}
		err := g.WalkReferences(name, 1, opts.Expand, func(e graph.Entry) error {
			label := "-W" + e.Switch
			if e.Unresolved {
				label = "<unresolved " + e.Record + ">"
			}
			stack = stack[:e.Depth]
			d.edge(stack[len(stack)-1], label)
			stack = append(stack, label)
			return nil
		})
		if err != nil {
			return err
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")
	for _, label := range d.labels {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", d.ids[label], mermaidEscape(label)))
	}
	for _, e := range d.edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", e.from, e.to))
	}
	sb.WriteString("```\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func mermaidEscape(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;")
	return r.Replace(s)
}
