package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"diaggroups/internal/graph"

	"gopkg.in/yaml.v3"
)

// Format selects the report encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMermaid Format = "mermaid"
)

// ParseFormat accepts "text", "json", "yaml" or "mermaid"; empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatMermaid:
		return f, nil
	}
	return "", fmt.Errorf("invalid report format %q (want text, json, yaml or mermaid)", s)
}

// Options selects which switches are reported and how.
type Options struct {
	// TopLevel reports only root switches.
	TopLevel bool
	// Unique omits the reference expansion below each switch.
	Unique bool
	Format Format
	Expand graph.ExpandOptions
}

// Switch is the structured form of one reported switch.
type Switch struct {
	Name      string   `json:"switch" yaml:"switch"`
	Record    string   `json:"record" yaml:"record"`
	Root      bool     `json:"root" yaml:"root"`
	EnabledBy []string `json:"enabled_by,omitempty" yaml:"enabled_by,omitempty"`
	Enables   []*Node  `json:"enables,omitempty" yaml:"enables,omitempty"`
}

// Node is one referenced switch in the structured expansion tree.
type Node struct {
	Switch     string  `json:"switch,omitempty" yaml:"switch,omitempty"`
	Record     string  `json:"record" yaml:"record"`
	Unresolved bool    `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Cycle      bool    `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Enables    []*Node `json:"enables,omitempty" yaml:"enables,omitempty"`
}

// Write renders the report for g. Nothing is written if any query fails,
// so a failed report never leaves partial output behind.
func Write(w io.Writer, g *graph.Graph, opts Options) error {
	var buf bytes.Buffer
	var err error
	switch opts.Format {
	case FormatText, "":
		err = writeText(&buf, g, opts)
	case FormatJSON:
		err = writeJSON(&buf, g, opts)
	case FormatYAML:
		err = writeYAML(&buf, g, opts)
	case FormatMermaid:
		err = writeMermaid(&buf, g, opts)
	default:
		err = fmt.Errorf("invalid report format %q", opts.Format)
	}
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// selected returns the switches to report in ascending order.
func selected(g *graph.Graph, opts Options) []string {
	if opts.TopLevel {
		return g.Roots()
	}
	return g.Switches()
}

func writeText(w io.Writer, g *graph.Graph, opts Options) error {
	for _, name := range selected(g, opts) {
		fmt.Fprintf(w, "-W%s\n", name)
		if opts.Unique {
			continue
		}
		err := g.WalkReferences(name, 1, opts.Expand, func(e graph.Entry) error {
			_, err := io.WriteString(w, textLine(e))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func textLine(e graph.Entry) string {
	indent := strings.Repeat("  ", e.Depth)
	switch {
	case e.Unresolved:
		return fmt.Sprintf("# %s<unresolved %s>\n", indent, e.Record)
	case e.Cycle:
		return fmt.Sprintf("# %s-W%s (cycle)\n", indent, e.Switch)
	}
	return fmt.Sprintf("# %s-W%s\n", indent, e.Switch)
}

// Build returns the structured report used by the JSON and YAML encodings.
func Build(g *graph.Graph, opts Options) ([]Switch, error) {
	names := selected(g, opts)
	out := make([]Switch, 0, len(names))
	for _, name := range names {
		owner, _ := g.Owner(name)
		root, err := g.IsRoot(name)
		if err != nil {
			return nil, err
		}
		parents, err := g.Parents(name)
		if err != nil {
			return nil, err
		}
		sw := Switch{Name: name, Record: owner, Root: root, EnabledBy: parents}
		if !opts.Unique {
			tree, err := buildTree(g, name, opts.Expand)
			if err != nil {
				return nil, err
			}
			sw.Enables = tree
		}
		out = append(out, sw)
	}
	return out, nil
}

// buildTree nests the depth-first entry stream using a stack of open levels.
func buildTree(g *graph.Graph, name string, expand graph.ExpandOptions) ([]*Node, error) {
	var roots []*Node
	var stack []*Node
	err := g.WalkReferences(name, 1, expand, func(e graph.Entry) error {
		n := &Node{Switch: e.Switch, Record: e.Record, Unresolved: e.Unresolved, Cycle: e.Cycle}
		stack = stack[:e.Depth-1]
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.Enables = append(parent.Enables, n)
		}
		stack = append(stack, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}

func writeJSON(w io.Writer, g *graph.Graph, opts Options) error {
	switches, err := Build(g, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(switches); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, g *graph.Graph, opts Options) error {
	switches, err := Build(g, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(switches); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
