package chain

import (
	"fmt"

	"chainrack/internal/model"
)

// Validate checks the structural invariants the engine maintains: each
// node is exactly one of plugin/group, ids are unique and non-root, and
// every non-root group holds at least two children.
func Validate(c *model.Chain) error {
	if c == nil {
		return fmt.Errorf("nil chain")
	}
	seen := map[model.NodeID]bool{}
	var walk func(n *model.Node, depth int) error
	walk = func(n *model.Node, depth int) error {
		if n == nil {
			return fmt.Errorf("nil node")
		}
		if n.ID == model.RootID {
			return fmt.Errorf("node uses reserved root id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
		switch {
		case n.IsPlugin() && n.IsGroup():
			return fmt.Errorf("node %d is both plugin and group", n.ID)
		case !n.IsPlugin() && !n.IsGroup():
			return fmt.Errorf("node %d is neither plugin nor group", n.ID)
		case n.IsGroup():
			if len(n.Group.Children) < 2 {
				return fmt.Errorf("group %d has %d children", n.ID, len(n.Group.Children))
			}
			for _, ch := range n.Group.Children {
				if err := walk(ch, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, n := range c.Nodes {
		if err := walk(n, 0); err != nil {
			return err
		}
	}
	return nil
}
