package model

import "encoding/json"

// FindByID returns the node with the given id, or nil. RootID is the
// implicit root and never resolves to a node.
func (c *Chain) FindByID(id NodeID) *Node {
	if c == nil || id == RootID {
		return nil
	}
	return findIn(c.Nodes, id)
}

func findIn(nodes []*Node, id NodeID) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if n.IsGroup() {
			if found := findIn(n.Group.Children, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindParent returns the parent group id of the node and the node's index
// among its siblings. Top-level nodes report RootID. Returns (0, -1) if
// the node is not in the chain.
func (c *Chain) FindParent(id NodeID) (NodeID, int) {
	if c == nil || id == RootID {
		return RootID, -1
	}
	for i, n := range c.Nodes {
		if n.ID == id {
			return RootID, i
		}
	}
	var walk func(g *Node) (NodeID, int)
	walk = func(g *Node) (NodeID, int) {
		for i, ch := range g.Group.Children {
			if ch.ID == id {
				return g.ID, i
			}
			if ch.IsGroup() {
				if pid, idx := walk(ch); idx >= 0 {
					return pid, idx
				}
			}
		}
		return RootID, -1
	}
	for _, n := range c.Nodes {
		if n.IsGroup() {
			if pid, idx := walk(n); idx >= 0 {
				return pid, idx
			}
		}
	}
	return RootID, -1
}

// Children returns the child slice addressed by a parent id (RootID means
// the top level). The second result is false if the id does not resolve
// to the root or a group.
func (c *Chain) Children(parentID NodeID) ([]*Node, bool) {
	if c == nil {
		return nil, false
	}
	if parentID == RootID {
		return c.Nodes, true
	}
	n := c.FindByID(parentID)
	if !n.IsGroup() {
		return nil, false
	}
	return n.Group.Children, true
}

// IsDescendant reports whether descendantID lives somewhere inside the
// subtree rooted at ancestorID.
func (c *Chain) IsDescendant(ancestorID, descendantID NodeID) bool {
	anc := c.FindByID(ancestorID)
	if !anc.IsGroup() {
		return false
	}
	return findIn(anc.Group.Children, descendantID) != nil
}

// CollectPlugins appends every plugin leaf in processing order.
func (c *Chain) CollectPlugins() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.IsPlugin() {
				out = append(out, n)
			} else if n.IsGroup() {
				walk(n.Group.Children)
			}
		}
	}
	walk(c.Nodes)
	return out
}

// CountPlugins counts plugin leaves in the whole chain.
func (c *Chain) CountPlugins() int { return len(c.CollectPlugins()) }

// MaxID returns the largest id present in the chain (RootID for an empty
// chain). Fresh ids are allocated as MaxID+1.
func (c *Chain) MaxID() NodeID {
	max := RootID
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.ID > max {
				max = n.ID
			}
			if n.IsGroup() {
				walk(n.Group.Children)
			}
		}
	}
	walk(c.Nodes)
	return max
}

// AllIDs returns every node id in depth-first order.
func (c *Chain) AllIDs() []NodeID {
	var out []NodeID
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n.ID)
			if n.IsGroup() {
				walk(n.Group.Children)
			}
		}
	}
	walk(c.Nodes)
	return out
}

// Clone deep-copies the chain. History entries rely on clones being
// immune to later mutation of the live tree.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return nil
	}
	out := &Chain{Nodes: make([]*Node, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	return out
}

// Clone deep-copies a node and its subtree, keeping ids.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Plugin != nil {
		p := *n.Plugin
		cp.Plugin = &p
	}
	if n.Group != nil {
		g := *n.Group
		g.Children = make([]*Node, 0, len(n.Group.Children))
		for _, ch := range n.Group.Children {
			g.Children = append(g.Children, ch.Clone())
		}
		cp.Group = &g
	}
	return &cp
}

// Equal reports deep structural equality. Callers use it to detect
// no-op operations.
func (c *Chain) Equal(other *Chain) bool {
	a, err := json.Marshal(c)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}
