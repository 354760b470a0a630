package chain

import "chainrack/internal/model"

// MoveNode detaches the node from its current parent and inserts it into
// the target parent's children (RootID for the top level) at targetIndex,
// clamped to [0, len]. When source and target parent are the same and the
// source index precedes the target index, the target index is decremented
// to compensate for the removal shift.
//
// No-op (returns false) if the node or target parent is missing, the
// target parent is not a group, or the move would place the node inside
// its own subtree.
func MoveNode(c *model.Chain, nodeID, targetParentID model.NodeID, targetIndex int) bool {
	if c == nil || nodeID == model.RootID || nodeID == targetParentID {
		return false
	}
	node := c.FindByID(nodeID)
	if node == nil {
		return false
	}
	if targetParentID != model.RootID {
		parent := c.FindByID(targetParentID)
		if !parent.IsGroup() {
			return false
		}
	}
	// Reject cycles: the target parent must not live inside the moved
	// node's subtree.
	if c.IsDescendant(nodeID, targetParentID) {
		return false
	}

	srcParentID, srcIdx := c.FindParent(nodeID)
	if srcIdx < 0 {
		return false
	}

	n, _, _, ok := detach(c, nodeID)
	if !ok {
		return false
	}
	if srcParentID == targetParentID && srcIdx < targetIndex {
		targetIndex--
	}
	insertAt(c, targetParentID, targetIndex, n)

	// The source group may have dropped below two children.
	cleanupFrom(c, srcParentID)
	return true
}
