package chain

import "chainrack/internal/model"

// Field-only setters. Each updates a single field on the targeted node
// and has no structural side effects; a missing id or a node of the
// wrong kind is a no-op.

func SetGroupMode(c *model.Chain, id model.NodeID, mode model.GroupMode) bool {
	if mode != model.GroupSerial && mode != model.GroupParallel {
		return false
	}
	n := find(c, id)
	if !n.IsGroup() || n.Group.Mode == mode {
		return false
	}
	n.Group.Mode = mode
	return true
}

func SetGroupDryWet(c *model.Chain, id model.NodeID, v float64) bool {
	n := find(c, id)
	if !n.IsGroup() {
		return false
	}
	n.Group.DryWet = clampF(v, 0, 1)
	return true
}

// SetGroupDuck sets the ducking amount (0-1) and envelope release
// (50-1000 ms) on a group.
func SetGroupDuck(c *model.Chain, id model.NodeID, amount, releaseMS float64) bool {
	n := find(c, id)
	if !n.IsGroup() {
		return false
	}
	n.Group.DuckAmount = clampF(amount, 0, 1)
	n.Group.DuckReleaseMS = clampF(releaseMS, 50, 1000)
	return true
}

func SetBranchGain(c *model.Chain, id model.NodeID, db float64) bool {
	n := find(c, id)
	if n == nil {
		return false
	}
	n.BranchGainDB = db
	return true
}

func SetSolo(c *model.Chain, id model.NodeID, on bool) bool {
	n := find(c, id)
	if n == nil {
		return false
	}
	n.Solo = on
	return true
}

func SetMute(c *model.Chain, id model.NodeID, on bool) bool {
	n := find(c, id)
	if n == nil {
		return false
	}
	n.Mute = on
	return true
}

func ToggleBypass(c *model.Chain, id model.NodeID) bool {
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.Bypassed = !n.Plugin.Bypassed
	return true
}

func ToggleCollapsed(c *model.Chain, id model.NodeID) bool {
	n := find(c, id)
	if !n.IsGroup() {
		return false
	}
	n.Collapsed = !n.Collapsed
	return true
}

func SetInputGain(c *model.Chain, id model.NodeID, db float64) bool {
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.InputGainDB = db
	return true
}

func SetOutputGain(c *model.Chain, id model.NodeID, db float64) bool {
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.OutputGainDB = db
	return true
}

func SetDryWet(c *model.Chain, id model.NodeID, v float64) bool {
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.DryWet = clampF(v, 0, 1)
	return true
}

func SetMidSide(c *model.Chain, id model.NodeID, mode model.MidSideMode) bool {
	if mode < model.MidSideOff || mode > model.MidSideFull {
		return false
	}
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.MidSide = mode
	return true
}

func SetSidechain(c *model.Chain, id model.NodeID, source int) bool {
	if source != model.SidechainNone && source != model.SidechainExternal {
		return false
	}
	n := find(c, id)
	if !n.IsPlugin() {
		return false
	}
	n.Plugin.Sidechain = source
	return true
}

func RenameNode(c *model.Chain, id model.NodeID, name string) bool {
	n := find(c, id)
	if n == nil {
		return false
	}
	n.Name = name
	return true
}

func find(c *model.Chain, id model.NodeID) *model.Node {
	if c == nil {
		return nil
	}
	return c.FindByID(id)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
