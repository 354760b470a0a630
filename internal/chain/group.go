package chain

import "chainrack/internal/model"

// CreateGroup detaches the selected nodes and nests them, in their
// pre-operation relative (processing) order, inside a new group with the
// given mode. The group takes the slot previously occupied by the first
// selected node and gets a fresh id, which is returned.
//
// No-op if fewer than two ids are given, any id is missing or duplicated,
// or one selected node contains another.
func CreateGroup(c *model.Chain, nodeIDs []model.NodeID, mode model.GroupMode) (model.NodeID, bool) {
	if c == nil || len(nodeIDs) < 2 {
		return 0, false
	}
	seen := map[model.NodeID]bool{}
	for _, id := range nodeIDs {
		if id == model.RootID || seen[id] || c.FindByID(id) == nil {
			return 0, false
		}
		seen[id] = true
	}
	// A node cannot be grouped with its own ancestor; detaching the
	// ancestor would carry the descendant along with it.
	for _, a := range nodeIDs {
		for _, b := range nodeIDs {
			if a != b && c.IsDescendant(a, b) {
				return 0, false
			}
		}
	}

	// Anchor: the first selected node's slot. Selected siblings that
	// precede it are about to be detached, so count only unselected ones.
	anchorParent, anchorIdx := c.FindParent(nodeIDs[0])
	siblings, _ := c.Children(anchorParent)
	insertIdx := 0
	for _, sib := range siblings[:anchorIdx] {
		if !seen[sib.ID] {
			insertIdx++
		}
	}

	// Processing order, not selection order.
	ordered := make([]model.NodeID, 0, len(nodeIDs))
	for _, id := range c.AllIDs() {
		if seen[id] {
			ordered = append(ordered, id)
		}
	}

	freshID := c.MaxID() + 1

	formerParents := make([]model.NodeID, 0, len(ordered))
	group := model.NewGroup(freshID, mode)
	for _, id := range ordered {
		n, parentID, _, ok := detach(c, id)
		if !ok {
			// Unreachable after validation; validated ids stay present
			// because no cleanup runs between detaches.
			continue
		}
		group.Group.Children = append(group.Group.Children, n)
		formerParents = append(formerParents, parentID)
	}

	insertAt(c, anchorParent, insertIdx, group)

	for _, pid := range formerParents {
		cleanupFrom(c, pid)
	}
	return freshID, true
}

// DissolveGroup replaces the group with its own children, spliced into
// the parent at the group's position, order preserved. Legal at root
// level. No-op if the id is missing, is the root, or is not a group.
func DissolveGroup(c *model.Chain, groupID model.NodeID) bool {
	if c == nil || groupID == model.RootID {
		return false
	}
	g := c.FindByID(groupID)
	if !g.IsGroup() {
		return false
	}
	parentID, idx := c.FindParent(groupID)
	if idx < 0 {
		return false
	}
	children := g.Group.Children
	if parentID == model.RootID {
		c.Nodes = append(c.Nodes[:idx], append(children, c.Nodes[idx+1:]...)...)
	} else {
		parent := c.FindByID(parentID)
		sibs := parent.Group.Children
		parent.Group.Children = append(sibs[:idx], append(children, sibs[idx+1:]...)...)
	}
	cleanupFrom(c, parentID)
	return true
}
