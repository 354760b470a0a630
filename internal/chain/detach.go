// Package chain implements the structural edit operations on the plugin
// chain tree. Every operation is total: it validates its input up front
// and either applies completely or leaves the chain untouched, reporting
// the outcome as a changed flag. Operations never panic and never return
// a partially mutated tree.
package chain

import "chainrack/internal/model"

// detach removes the node from its parent's child slice and returns it
// together with its former parent id and sibling index.
func detach(c *model.Chain, id model.NodeID) (*model.Node, model.NodeID, int, bool) {
	parentID, idx := c.FindParent(id)
	if idx < 0 {
		return nil, model.RootID, -1, false
	}
	if parentID == model.RootID {
		n := c.Nodes[idx]
		c.Nodes = append(c.Nodes[:idx], c.Nodes[idx+1:]...)
		return n, parentID, idx, true
	}
	parent := c.FindByID(parentID)
	n := parent.Group.Children[idx]
	parent.Group.Children = append(parent.Group.Children[:idx], parent.Group.Children[idx+1:]...)
	return n, parentID, idx, true
}

// insertAt places the node into the parent's children at idx, clamped to
// [0, len]. The parent must be RootID or an existing group.
func insertAt(c *model.Chain, parentID model.NodeID, idx int, n *model.Node) bool {
	if parentID == model.RootID {
		idx = clamp(idx, 0, len(c.Nodes))
		c.Nodes = append(c.Nodes[:idx], append([]*model.Node{n}, c.Nodes[idx:]...)...)
		return true
	}
	parent := c.FindByID(parentID)
	if !parent.IsGroup() {
		return false
	}
	ch := parent.Group.Children
	idx = clamp(idx, 0, len(ch))
	parent.Group.Children = append(ch[:idx], append([]*model.Node{n}, ch[idx:]...)...)
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
