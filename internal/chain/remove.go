package chain

import "chainrack/internal/model"

// RemoveNode deletes the node (and its entire subtree if a group) from
// its parent, then restores the group-arity invariant along the former
// parent's ancestor chain. No-op if the id is missing.
func RemoveNode(c *model.Chain, nodeID model.NodeID) bool {
	if c == nil || nodeID == model.RootID {
		return false
	}
	_, parentID, _, ok := detach(c, nodeID)
	if !ok {
		return false
	}
	cleanupFrom(c, parentID)
	return true
}
