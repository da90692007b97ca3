package quadtree

import (
	"fmt"
	"strings"
)

// Height is 1 for a Tip and 1 + the tallest child for a Branch.
func Height[R any](n Node[R]) int {
	return fold(n, func(l layer[R, int]) int {
		if l.tip {
			return 1
		}
		return 1 + max(l.children[0], l.children[1], l.children[2], l.children[3])
	})
}

// Size counts the entries held by all tips.
func Size[R any](n Node[R]) int {
	return fold(n, func(l layer[R, int]) int {
		if l.tip {
			return len(l.entries)
		}
		return l.children[0] + l.children[1] + l.children[2] + l.children[3]
	})
}

// Walk visits n and its descendants in pre-order, NW, NE, SW, SE. Returning
// false from visit skips the children of that node.
func Walk[R any](n Node[R], visit func(Node[R]) bool) {
	if !visit(n) {
		return
	}
	if b, ok := n.(*Branch[R]); ok {
		for _, c := range b.Children() {
			Walk(c, visit)
		}
	}
}

// Show renders the tree for debugging. Each tip prints its entry count,
// midpoint and corners; each branch lays its quadrants out as a 2x2 grid.
func Show[R any](n Node[R]) string {
	return fold(n, func(l layer[R, string]) string {
		if l.tip {
			return fmt.Sprintf("[ %d // %v // %v _ %v ]", len(l.entries), l.rect.Midpoint(), l.rect.Min, l.rect.Max)
		}
		var sb strings.Builder
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "| %s | %s |\n", indent(l.children[0]), indent(l.children[1]))
		fmt.Fprintf(&sb, "| %s | %s |\n", indent(l.children[2]), indent(l.children[3]))
		return sb.String()
	})
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", "\n  ")
}
