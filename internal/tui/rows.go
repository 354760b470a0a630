package tui

import (
	"fmt"
	"strings"

	"chainrack/internal/model"
	"chainrack/internal/resolve"
)

// Glyphs for the two group modes and the collapse state.
const (
	glyphSerial    = "▸▸"
	glyphParallel  = "⫲"
	glyphCollapsed = "▸"
	glyphExpanded  = "▾"
)

// row is one visible line of the rack: a node at a depth. Children of
// collapsed groups are not flattened.
type row struct {
	id    model.NodeID
	depth int
	node  *model.Node
}

func flattenChain(c *model.Chain) []row {
	var rows []row
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, row{id: n.ID, depth: depth, node: n})
			if n.IsGroup() && !n.Collapsed {
				walk(n.Group.Children, depth+1)
			}
		}
	}
	walk(c.Nodes, 0)
	return rows
}

// rackWidth is the virtual width of the projected drop geometry. Only
// ratios matter: the pointer's X decides serial (left half) vs parallel
// (right half) on slot drops.
const rackWidth = 100.0

// grabPositions returns the number of grab-cursor stops: one gap before
// each row, one slot per row, one trailing gap.
func grabPositions(rows []row) int {
	return 2*len(rows) + 1
}

// grabTargets projects the visible rows into the drop-target geometry
// the resolver consumes. Even positions are insertion gaps, odd ones the
// row bodies; each occupies a unit-height band.
func grabTargets(c *model.Chain, rows []row) []resolve.Target {
	var ts []resolve.Target
	for i, r := range rows {
		parentID, idx := c.FindParent(r.id)
		gap := resolve.Target{
			Kind:   resolve.InsertionZone,
			Bounds: resolve.Rect{X: 0, Y: float64(2 * i), W: rackWidth, H: 1},
			Parent: parentID,
			Index:  idx,
			Below:  r.id,
		}
		if i > 0 {
			gap.Above = rows[i-1].id
		}
		ts = append(ts, gap)

		body := resolve.Target{
			Bounds: resolve.Rect{X: 0, Y: float64(2*i + 1), W: rackWidth, H: 1},
		}
		if r.node.IsGroup() {
			body.Kind = resolve.GroupContainer
			body.Group = r.id
		} else {
			body.Kind = resolve.PluginSlot
			body.Node = r.id
		}
		ts = append(ts, body)
	}

	tail := resolve.Target{
		Kind:   resolve.InsertionZone,
		Bounds: resolve.Rect{X: 0, Y: float64(2 * len(rows)), W: rackWidth, H: 1},
		Parent: model.RootID,
		Index:  len(c.Nodes),
	}
	if len(rows) > 0 {
		tail.Above = rows[len(rows)-1].id
	}
	return append(ts, tail)
}

// grabPointer is the virtual pointer for a grab-cursor position. The
// left flag picks the serial half of a slot, otherwise the parallel one.
func grabPointer(pos int, left bool) resolve.Point {
	x := rackWidth * 0.75
	if left {
		x = rackWidth * 0.25
	}
	return resolve.Point{X: x, Y: float64(pos) + 0.5}
}

func renderRow(r row, marked bool) string {
	indent := strings.Repeat("  ", r.depth)
	mark := "  "
	if marked {
		mark = styleMarked().Render("◆ ")
	}

	n := r.node
	var line string
	if n.IsGroup() {
		arrow := glyphExpanded
		if n.Collapsed {
			arrow = glyphCollapsed
		}
		glyph := glyphSerial
		if n.Group.Mode == model.GroupParallel {
			glyph = glyphParallel
		}
		line = styleGroup().Render(fmt.Sprintf("%s %s %s", arrow, glyph, groupLabel(n)))
	} else {
		name := n.Name
		if name == "" {
			name = n.Plugin.Path
		}
		if n.Plugin.Bypassed {
			name = styleBypassed().Render(name)
		}
		line = fmt.Sprintf("%s %s", name, styleMuted().Render(n.Plugin.Format))
	}

	var flags []string
	if n.Solo {
		flags = append(flags, "S")
	}
	if n.Mute {
		flags = append(flags, "M")
	}
	if n.IsPlugin() && n.Plugin.DryWet != 1.0 {
		flags = append(flags, fmt.Sprintf("%.0f%%", n.Plugin.DryWet*100))
	}
	if n.BranchGainDB != 0 {
		flags = append(flags, fmt.Sprintf("%+.1fdB", n.BranchGainDB))
	}
	if len(flags) > 0 {
		line += "  " + styleMuted().Render(strings.Join(flags, " "))
	}

	return indent + mark + line
}

func groupLabel(n *model.Node) string {
	name := n.Name
	if name == "" {
		if n.Group.Mode == model.GroupParallel {
			name = "parallel"
		} else {
			name = "serial"
		}
	}
	label := name
	if n.Group.DryWet != 1.0 {
		label += fmt.Sprintf(" %.0f%%", n.Group.DryWet*100)
	}
	if n.Group.DuckAmount > 0 {
		label += fmt.Sprintf(" duck %.0f%%", n.Group.DuckAmount*100)
	}
	return label
}
