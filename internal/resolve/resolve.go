// Package resolve turns an ambiguous drag-and-drop gesture into exactly
// one deterministic chain edit. The UI reports the set of active drop
// targets with their geometry; the resolver picks one with a fixed
// priority order and emits the corresponding engine action.
package resolve

import "chainrack/internal/model"

// Rect is the pixel bounding box of a drop target or the dragged item.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Overlap returns the intersection area of two rects.
func (r Rect) Overlap(o Rect) float64 {
	w := min(r.X+r.W, o.X+o.W) - max(r.X, o.X)
	h := min(r.Y+r.H, o.Y+o.H) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

type Point struct {
	X, Y float64
}

type TargetKind int

const (
	// InsertionZone is the thin gap between two siblings (or at either
	// end of a child list): drop to move the node there.
	InsertionZone TargetKind = iota
	// PluginSlot is the body of another node: drop to form a group of
	// the two.
	PluginSlot
	// GroupContainer is the open area of a group: drop to append.
	GroupContainer
)

// Target is one active drop target published by the view.
type Target struct {
	Kind   TargetKind
	Bounds Rect

	// InsertionZone: destination parent and index, plus the node ids
	// directly above/below the gap (0 when absent).
	Parent model.NodeID
	Index  int
	Above  model.NodeID
	Below  model.NodeID

	// PluginSlot: the node occupying the slot.
	Node model.NodeID

	// GroupContainer: the group to append into.
	Group model.NodeID
}

// Drag describes a drag gesture at drop time.
type Drag struct {
	Node     model.NodeID // dragged node
	Pointer  Point
	Bounds   Rect // dragged item's bounding box (broad-phase fallback)
	Targets  []Target
	Modifier bool // e.g. alt held: insertion drop becomes a parallel pair
}

// ActionKind tells the caller which engine operation to run.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionGroup
)

// Action is the single edit a resolved drop maps to.
type Action struct {
	Kind ActionKind

	// ActionMove
	Node   model.NodeID
	Parent model.NodeID
	Index  int

	// ActionGroup
	Members []model.NodeID
	Mode    model.GroupMode

	// DissolveHint names a group the view may dissolve immediately for
	// responsiveness. It is advisory only: the engine's own cleanup pass
	// stays the single authoritative enforcement point and will reach
	// the same result.
	DissolveHint model.NodeID
}

// Resolve maps a drag gesture to at most one action.
func Resolve(c *model.Chain, d Drag) (Action, bool) {
	if c == nil || c.FindByID(d.Node) == nil {
		return Action{}, false
	}

	candidates := contained(d)
	if len(candidates) == 0 {
		candidates = broadPhase(d)
	}

	for _, t := range candidates {
		act, ok := actionFor(c, d, t)
		if !ok {
			continue
		}
		if !legal(c, d.Node, t) {
			continue
		}
		return act, true
	}
	return Action{}, false
}

// contained keeps the targets whose bounds contain the pointer. Plugin
// slots win over thinner insertion zones overlapping them.
func contained(d Drag) []Target {
	var hit []Target
	for _, t := range d.Targets {
		if t.Bounds.Contains(d.Pointer) {
			hit = append(hit, t)
		}
	}
	var slots []Target
	for _, t := range hit {
		if t.Kind == PluginSlot {
			slots = append(slots, t)
		}
	}
	if len(slots) > 0 {
		return slots
	}
	return hit
}

// broadPhase falls back to the target with the greatest bounding-box
// overlap against the dragged item. Large sparse targets (an empty group
// container) rarely sit under the pointer itself.
func broadPhase(d Drag) []Target {
	best := -1
	bestArea := 0.0
	for i, t := range d.Targets {
		a := t.Bounds.Overlap(d.Bounds)
		if a > bestArea {
			bestArea = a
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return []Target{d.Targets[best]}
}

func actionFor(c *model.Chain, d Drag, t Target) (Action, bool) {
	switch t.Kind {
	case InsertionZone:
		if d.Modifier && t.Above != model.RootID && t.Below != model.RootID {
			// Modifier drop between two nodes: pair them in parallel.
			return Action{
				Kind:    ActionGroup,
				Members: []model.NodeID{t.Above, t.Below},
				Mode:    model.GroupParallel,
			}, true
		}
		act := Action{Kind: ActionMove, Node: d.Node, Parent: t.Parent, Index: t.Index}
		act.DissolveHint = dissolveHint(c, d.Node, t.Parent)
		return act, true

	case PluginSlot:
		if t.Node == d.Node {
			return Action{}, false
		}
		mode := model.GroupParallel
		if d.Pointer.X < t.Bounds.X+t.Bounds.W/2 {
			mode = model.GroupSerial
		}
		return Action{
			Kind:    ActionGroup,
			Members: []model.NodeID{t.Node, d.Node},
			Mode:    mode,
		}, true

	case GroupContainer:
		children, ok := c.Children(t.Group)
		if !ok {
			return Action{}, false
		}
		act := Action{Kind: ActionMove, Node: d.Node, Parent: t.Group, Index: len(children)}
		act.DissolveHint = dissolveHint(c, d.Node, t.Group)
		return act, true
	}
	return Action{}, false
}

// dissolveHint reports the dragged node's source group when moving away
// would leave it with fewer than two children.
func dissolveHint(c *model.Chain, dragged, targetParent model.NodeID) model.NodeID {
	srcParent, _ := c.FindParent(dragged)
	if srcParent == model.RootID || srcParent == targetParent {
		return model.RootID
	}
	children, ok := c.Children(srcParent)
	if !ok || len(children)-1 > 1 {
		return model.RootID
	}
	return srcParent
}

// legal rejects drops onto the dragged node itself or into its own
// subtree, walking from the target up to the root.
func legal(c *model.Chain, dragged model.NodeID, t Target) bool {
	var anchor model.NodeID
	switch t.Kind {
	case InsertionZone:
		anchor = t.Parent
	case PluginSlot:
		anchor = t.Node
	case GroupContainer:
		anchor = t.Group
	}
	for anchor != model.RootID {
		if anchor == dragged {
			return false
		}
		parent, idx := c.FindParent(anchor)
		if idx < 0 {
			return false
		}
		anchor = parent
	}
	return true
}
