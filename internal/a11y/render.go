package a11y

import (
	"fmt"
	"strconv"
	"strings"
)

// Render flattens a (typically already-Filtered) node list to the
// line-oriented compact text format, DFS from the first node at depth 0.
func Render(nodes []Node) string {
	if len(nodes) == 0 {
		return ""
	}

	byID := make(map[string]*Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].NodeID] = &nodes[i]
	}

	var b strings.Builder
	root := &nodes[0]
	var dfs func(n *Node, depth int)
	dfs = func(n *Node, depth int) {
		line := renderLine(n, depth)
		if line != "" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
		}
		for _, id := range n.ChildIDs {
			child, ok := byID[id]
			if !ok {
				continue
			}
			dfs(child, depth+1)
		}
	}
	dfs(root, 0)

	return b.String()
}

// renderLine formats one node's compact text line. The line is never
// empty: it always carries at least the indent, the uid and the role.
func renderLine(n *Node, depth int) string {
	var b strings.Builder

	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("uid=")
	if n.BackendDOMNodeID != nil {
		fmt.Fprintf(&b, "%d_%d", depth, *n.BackendDOMNodeID)
	} else {
		b.WriteString(n.NodeID)
	}

	b.WriteByte(' ')
	b.WriteString(n.RoleString())

	name := n.NameString()
	if name != "" {
		fmt.Fprintf(&b, " %q", name)
	}

	writeAttrs(&b, n, name)

	return b.String()
}

func writeAttrs(b *strings.Builder, n *Node, name string) {
	if url := n.StringProperty("url"); url != "" {
		fmt.Fprintf(b, " url=%q", url)
	}
	if n.BoolProperty("focusable") {
		b.WriteString(" focusable")
	}
	if n.BoolProperty("focused") {
		b.WriteString(" focused")
	}
	if n.BoolProperty("multiline") {
		b.WriteString(" multiline")
	}

	if checked, ok := n.Property("checked"); ok {
		switch v := checked.(type) {
		case string:
			if v == "mixed" {
				b.WriteString(" checked=mixed")
			} else if v == "true" {
				b.WriteString(" checked")
			}
		case bool:
			if v {
				b.WriteString(" checked")
			}
		}
	}

	if expanded, ok := n.Property("expanded"); ok {
		if e, _ := expanded.(bool); e {
			b.WriteString(" expanded")
		} else {
			b.WriteString(" collapsed")
		}
	}

	if n.BoolProperty("selected") {
		b.WriteString(" selected")
	}
	if n.BoolProperty("disabled") {
		b.WriteString(" disabled")
	}
	if n.BoolProperty("required") {
		b.WriteString(" required")
	}

	if level, ok := n.Property("level"); ok {
		fmt.Fprintf(b, " level=%s", formatNumber(level))
	}

	if value := n.StringProperty("value"); value != "" && value != name {
		fmt.Fprintf(b, " value=%q", value)
	}
}

// formatNumber renders a numeric property value (CDP delivers these as
// float64 once decoded from JSON) without a trailing ".0".
func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}
