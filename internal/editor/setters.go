package editor

import (
	"chainrack/internal/bridge"
	"chainrack/internal/chain"
	"chainrack/internal/model"
)

// Typed wrappers over SetField, one per engine setter.

func (e *Editor) SetGroupMode(id model.NodeID, mode model.GroupMode) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "groupMode", Text: string(mode)},
		func(c *model.Chain) bool { return chain.SetGroupMode(c, id, mode) })
}

func (e *Editor) SetGroupDryWet(id model.NodeID, v float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "groupDryWet", Value: v},
		func(c *model.Chain) bool { return chain.SetGroupDryWet(c, id, v) })
}

func (e *Editor) SetGroupDuck(id model.NodeID, amount, releaseMS float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "duck", Value: amount, Int: int(releaseMS)},
		func(c *model.Chain) bool { return chain.SetGroupDuck(c, id, amount, releaseMS) })
}

func (e *Editor) SetBranchGain(id model.NodeID, db float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "branchGain", Value: db},
		func(c *model.Chain) bool { return chain.SetBranchGain(c, id, db) })
}

func (e *Editor) SetSolo(id model.NodeID, on bool) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "solo", Flag: on},
		func(c *model.Chain) bool { return chain.SetSolo(c, id, on) })
}

func (e *Editor) SetMute(id model.NodeID, on bool) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "mute", Flag: on},
		func(c *model.Chain) bool { return chain.SetMute(c, id, on) })
}

func (e *Editor) ToggleBypass(id model.NodeID) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "bypass"},
		func(c *model.Chain) bool { return chain.ToggleBypass(c, id) })
}

// ToggleCollapsed flips the view-only collapse flag. It skips the bridge
// entirely: the signal graph does not care how the tree is displayed.
func (e *Editor) ToggleCollapsed(id model.NodeID) bool {
	e.mu.Lock()
	cur := e.hist.Current()
	if !chain.ToggleCollapsed(cur, id) {
		e.mu.Unlock()
		return false
	}
	e.hist.Commit(cur)
	fns := e.bumpLocked()
	e.mu.Unlock()
	notifyAll(fns)
	return true
}

func (e *Editor) SetInputGain(id model.NodeID, db float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "inputGain", Value: db},
		func(c *model.Chain) bool { return chain.SetInputGain(c, id, db) })
}

func (e *Editor) SetOutputGain(id model.NodeID, db float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "outputGain", Value: db},
		func(c *model.Chain) bool { return chain.SetOutputGain(c, id, db) })
}

func (e *Editor) SetDryWet(id model.NodeID, v float64) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "dryWet", Value: v},
		func(c *model.Chain) bool { return chain.SetDryWet(c, id, v) })
}

func (e *Editor) SetMidSide(id model.NodeID, mode model.MidSideMode) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "midSide", Int: int(mode)},
		func(c *model.Chain) bool { return chain.SetMidSide(c, id, mode) })
}

func (e *Editor) SetSidechain(id model.NodeID, source int) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "sidechain", Int: source},
		func(c *model.Chain) bool { return chain.SetSidechain(c, id, source) })
}

func (e *Editor) RenameNode(id model.NodeID, name string) bool {
	return e.SetField(
		bridge.Op{Kind: bridge.OpSetField, Node: id, Field: "name", Text: name},
		func(c *model.Chain) bool { return chain.RenameNode(c, id, name) })
}
