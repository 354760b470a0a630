package chain

import "chainrack/internal/model"

// AddPlugin creates a plugin node with a fresh id and inserts it into the
// given parent (RootID for the top level) at index, clamped to [0, len].
// No-op if the parent is missing or not a group.
func AddPlugin(c *model.Chain, parentID model.NodeID, index int, name, format, path string) (model.NodeID, bool) {
	if c == nil {
		return 0, false
	}
	if parentID != model.RootID {
		parent := c.FindByID(parentID)
		if !parent.IsGroup() {
			return 0, false
		}
	}
	n := model.NewPlugin(c.MaxID()+1, name, format, path)
	insertAt(c, parentID, index, n)
	return n.ID, true
}
