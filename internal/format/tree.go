package format

import (
	"fmt"
	"strings"

	"chainrack/internal/model"
)

// RenderTree renders the chain as an indented text tree, one node per
// line. Shared by `chainrack show --tree` and scripting users who want
// something greppable instead of JSON.
func RenderTree(c *model.Chain) string {
	var b strings.Builder
	for _, n := range c.Nodes {
		renderNode(&b, n, 0)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n *model.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s\n", indent, nodeLine(n))
	if n.IsGroup() {
		for _, c := range n.Group.Children {
			renderNode(b, c, depth+1)
		}
	}
}

func nodeLine(n *model.Node) string {
	var parts []string
	if n.IsGroup() {
		glyph := "=" // serial
		if n.Group.Mode == model.GroupParallel {
			glyph = "||"
		}
		parts = append(parts, fmt.Sprintf("[%d] %s group %s", n.ID, glyph, n.Name))
		if n.Group.DryWet != 1.0 {
			parts = append(parts, fmt.Sprintf("wet %.0f%%", n.Group.DryWet*100))
		}
		if n.Group.DuckAmount > 0 {
			parts = append(parts, fmt.Sprintf("duck %.0f%%/%.0fms", n.Group.DuckAmount*100, n.Group.DuckReleaseMS))
		}
		if n.Collapsed {
			parts = append(parts, "collapsed")
		}
	} else {
		parts = append(parts, fmt.Sprintf("[%d] %s (%s)", n.ID, n.Name, n.Plugin.Format))
		if n.Plugin.Bypassed {
			parts = append(parts, "bypassed")
		}
		if n.Plugin.DryWet != 1.0 {
			parts = append(parts, fmt.Sprintf("wet %.0f%%", n.Plugin.DryWet*100))
		}
	}
	if n.Solo {
		parts = append(parts, "solo")
	}
	if n.Mute {
		parts = append(parts, "mute")
	}
	if n.BranchGainDB != 0 {
		parts = append(parts, fmt.Sprintf("%+.1fdB", n.BranchGainDB))
	}
	return strings.Join(parts, "  ")
}
