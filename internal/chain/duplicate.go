package chain

import "chainrack/internal/model"

// DuplicateNode deep-copies the node (including every descendant of a
// group), assigns fresh ids throughout the copy, and inserts it
// immediately after the original in the same parent. Returns the copy's
// id. No-op if the node is missing.
func DuplicateNode(c *model.Chain, nodeID model.NodeID) (model.NodeID, bool) {
	if c == nil || nodeID == model.RootID {
		return 0, false
	}
	n := c.FindByID(nodeID)
	if n == nil {
		return 0, false
	}
	parentID, idx := c.FindParent(nodeID)

	cp := n.Clone()
	next := c.MaxID() + 1
	var renumber func(x *model.Node)
	renumber = func(x *model.Node) {
		x.ID = next
		next++
		if x.IsGroup() {
			for _, ch := range x.Group.Children {
				renumber(ch)
			}
		}
	}
	renumber(cp)

	insertAt(c, parentID, idx+1, cp)
	return cp.ID, true
}
