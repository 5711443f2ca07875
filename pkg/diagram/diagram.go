// Package diagram draws a sequence as a Mermaid flowchart or an ASCII tree.
// The steps between an if or for marker and its matching end are nested
// under the marker. When a trace is given, each step is marked with its
// outcome.
package diagram

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/tseq/pkg/engine"
	"github.com/ormasoftchile/tseq/pkg/sequence"
)

// Format represents the output diagram format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatASCII   Format = "ascii"
)

// Generate produces a diagram of seq. tr may be nil.
func Generate(name string, seq *sequence.Sequence, tr *engine.Trace, format Format) (string, error) {
	if seq == nil {
		return "", fmt.Errorf("nil sequence")
	}
	if name == "" {
		name = "sequence"
	}
	root := buildTree(seq.Steps(), kindsOf(tr))
	switch format {
	case FormatMermaid:
		return generateMermaid(name, root), nil
	case FormatASCII:
		return generateASCII(name, root), nil
	default:
		return "", fmt.Errorf("unsupported diagram format: %s", format)
	}
}

// --- tree ---

type node struct {
	index    int
	label    string
	control  bool
	kind     engine.Kind // empty when the step has not run
	children []*node
}

func kindsOf(tr *engine.Trace) map[sequence.StepID]engine.Kind {
	kinds := make(map[sequence.StepID]engine.Kind)
	if tr == nil {
		return kinds
	}
	for _, r := range tr.Results {
		kinds[r.StepID] = r.Kind
	}
	return kinds
}

// buildTree nests the steps after each if/for under it. The closing end is
// a sibling of its opener; an end with nothing to close stays where it is.
func buildTree(steps []sequence.Step, kinds map[sequence.StepID]engine.Kind) *node {
	root := &node{index: -1}
	stack := []*node{root}
	for i, st := range steps {
		n := &node{index: i, label: st.Label(), kind: kinds[st.ID()]}
		cs, isControl := st.(*sequence.ControlStep)
		n.control = isControl
		if isControl && cs.Kind() == sequence.ControlEnd && len(stack) > 1 {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		top.children = append(top.children, n)
		if isControl && cs.Kind() != sequence.ControlEnd {
			stack = append(stack, n)
		}
	}
	return root
}

func glyph(n *node) string {
	switch {
	case n.kind != "":
		return kindGlyph(n.kind)
	case n.control:
		return "◆"
	default:
		return "○"
	}
}

func kindGlyph(k engine.Kind) string {
	switch k {
	case engine.KindSuccess:
		return "✓"
	case engine.KindFailure:
		return "✗"
	case engine.KindNotFound:
		return "?"
	case engine.KindArgumentError:
		return "!"
	default:
		return "◆"
	}
}

// --- Mermaid flowchart ---

func generateMermaid(name string, root *node) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString(fmt.Sprintf("    START([%q])\n", escMermaid(name)))

	var order []*node
	writeMermaidNodes(&b, root.children, 1, &order)

	prev := "START"
	for _, n := range order {
		b.WriteString(fmt.Sprintf("    %s --> %s\n", prev, nodeID(n)))
		prev = nodeID(n)
	}

	for _, n := range order {
		if style := kindStyle(n.kind); style != "" {
			b.WriteString(fmt.Sprintf("    style %s %s\n", nodeID(n), style))
		}
	}
	return b.String()
}

// writeMermaidNodes defines the nodes of one level and wraps each block body
// in a subgraph. order collects the nodes in step order for the edges.
func writeMermaidNodes(b *strings.Builder, nodes []*node, depth int, order *[]*node) {
	pad := strings.Repeat("    ", depth)
	for _, n := range nodes {
		*order = append(*order, n)
		b.WriteString(pad + nodeDefinition(n) + "\n")
		if len(n.children) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%ssubgraph %s_body [\"%s\"]\n", pad, nodeID(n), escMermaid(n.label)))
		writeMermaidNodes(b, n.children, depth+1, order)
		b.WriteString(pad + "end\n")
	}
}

func nodeID(n *node) string {
	return fmt.Sprintf("s%d", n.index+1)
}

func nodeDefinition(n *node) string {
	text := fmt.Sprintf("%d. %s", n.index+1, escMermaid(n.label))
	if n.kind != "" {
		text = kindGlyph(n.kind) + " " + text
	}
	if n.control {
		return fmt.Sprintf(`%s{{"%s"}}`, nodeID(n), text)
	}
	return fmt.Sprintf(`%s["%s"]`, nodeID(n), text)
}

func kindStyle(k engine.Kind) string {
	switch k {
	case engine.KindSuccess:
		return "fill:#0d6,stroke:#0a5,color:#fff"
	case engine.KindFailure:
		return "fill:#d33,stroke:#a22,color:#fff"
	case engine.KindNotFound, engine.KindArgumentError:
		return "fill:#e60,stroke:#c40,color:#fff"
	default:
		return ""
	}
}

func escMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, `'`, "#apos;")
	return s
}

// --- ASCII ---

func generateASCII(name string, root *node) string {
	var b strings.Builder

	width := runewidth.StringWidth(name) + 4
	b.WriteString("╔" + strings.Repeat("═", width) + "╗\n")
	b.WriteString("║" + centerPad(name, width) + "║\n")
	b.WriteString("╚═╤" + strings.Repeat("═", width-2) + "╝\n")

	if len(root.children) == 0 {
		b.WriteString("  └─ (empty)\n")
		return b.String()
	}
	writeASCIINodes(&b, root.children, "  ")
	return b.String()
}

func writeASCIINodes(b *strings.Builder, nodes []*node, prefix string) {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		b.WriteString(fmt.Sprintf("%s%s%s %d. %s\n", prefix, branch, glyph(n), n.index+1, n.label))
		writeASCIINodes(b, n.children, prefix+next)
	}
}

// centerPad centers s within width using spaces, based on display width.
func centerPad(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	total := width - sw
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
