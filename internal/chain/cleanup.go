package chain

import "chainrack/internal/model"

// cleanupFrom restores the group-arity invariant after a structural edit:
// every non-root group keeps >= 2 children. It walks the ancestor chain
// from the mutation site to the root once; empty groups are deleted and
// single-child groups are dissolved (the child promoted to the group's
// slot). Only the ancestor chain's child counts can have changed, so a
// single walk suffices.
func cleanupFrom(c *model.Chain, parentID model.NodeID) {
	for parentID != model.RootID {
		g := c.FindByID(parentID)
		if !g.IsGroup() {
			return
		}
		nextParent, idx := c.FindParent(parentID)
		if idx < 0 {
			return
		}
		switch len(g.Group.Children) {
		case 0:
			removeChildAt(c, nextParent, idx)
		case 1:
			child := g.Group.Children[0]
			replaceChildAt(c, nextParent, idx, child)
		}
		parentID = nextParent
	}
}

func removeChildAt(c *model.Chain, parentID model.NodeID, idx int) {
	if parentID == model.RootID {
		c.Nodes = append(c.Nodes[:idx], c.Nodes[idx+1:]...)
		return
	}
	parent := c.FindByID(parentID)
	parent.Group.Children = append(parent.Group.Children[:idx], parent.Group.Children[idx+1:]...)
}

func replaceChildAt(c *model.Chain, parentID model.NodeID, idx int, n *model.Node) {
	if parentID == model.RootID {
		c.Nodes[idx] = n
		return
	}
	parent := c.FindByID(parentID)
	parent.Group.Children[idx] = n
}
