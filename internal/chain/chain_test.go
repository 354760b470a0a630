package chain

import (
	"testing"

	"chainrack/internal/model"
)

func plugin(id model.NodeID, name string) *model.Node {
	return model.NewPlugin(id, name, "VST3", "/plugins/"+name+".vst3")
}

func group(id model.NodeID, mode model.GroupMode, children ...*model.Node) *model.Node {
	g := model.NewGroup(id, mode)
	g.Group.Children = children
	return g
}

func ids(c *model.Chain) []model.NodeID { return c.AllIDs() }

func wantIDs(t *testing.T, c *model.Chain, want ...model.NodeID) {
	t.Helper()
	got := ids(c)
	if len(got) != len(want) {
		t.Fatalf("id order: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id order: got %v, want %v", got, want)
		}
	}
}

func mustValid(t *testing.T, c *model.Chain) {
	t.Helper()
	if err := Validate(c); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestCreateGroupRejectsSingleNode(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "eq")}}
	before := c.Clone()

	if _, ok := CreateGroup(c, []model.NodeID{1}, model.GroupSerial); ok {
		t.Fatalf("expected rejection for 1-node group")
	}
	if !c.Equal(before) {
		t.Fatalf("rejected op must leave chain unchanged")
	}
}

func TestCreateGroupWrapsTwoPlugins(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "eq"), plugin(2, "comp")}}

	gid, ok := CreateGroup(c, []model.NodeID{1, 2}, model.GroupParallel)
	if !ok {
		t.Fatalf("CreateGroup failed")
	}
	if gid != 3 {
		t.Fatalf("expected fresh id 3; got %d", gid)
	}
	if len(c.Nodes) != 1 || !c.Nodes[0].IsGroup() {
		t.Fatalf("expected single group at root")
	}
	g := c.Nodes[0]
	if g.Group.Mode != model.GroupParallel {
		t.Fatalf("expected parallel group")
	}
	if g.Group.DryWet != 1.0 || g.Group.DuckAmount != 0 {
		t.Fatalf("group defaults wrong: dryWet=%v duck=%v", g.Group.DryWet, g.Group.DuckAmount)
	}
	wantIDs(t, c, 3, 1, 2)
	mustValid(t, c)
}

func TestCreateGroupKeepsProcessingOrder(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "a"), plugin(2, "b"), plugin(3, "c")}}

	// Selection order reversed; children must come out in chain order.
	gid, ok := CreateGroup(c, []model.NodeID{3, 1}, model.GroupSerial)
	if !ok {
		t.Fatalf("CreateGroup failed")
	}
	g := c.FindByID(gid)
	if g.Group.Children[0].ID != 1 || g.Group.Children[1].ID != 3 {
		t.Fatalf("children out of order: %v", ids(c))
	}
	// Anchored at the first selected node's former slot (node 3, after b).
	wantIDs(t, c, 2, gid, 1, 3)
	mustValid(t, c)
}

func TestCreateGroupRejectsNestedSelection(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b"))}}
	before := c.Clone()

	if _, ok := CreateGroup(c, []model.NodeID{3, 1}, model.GroupSerial); ok {
		t.Fatalf("grouping a node with its ancestor must be rejected")
	}
	if !c.Equal(before) {
		t.Fatalf("rejected op must leave chain unchanged")
	}
}

func TestCreateGroupDissolvesEmptiedParent(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
		plugin(4, "c"),
	}}

	gid, ok := CreateGroup(c, []model.NodeID{1, 2}, model.GroupParallel)
	if !ok {
		t.Fatalf("CreateGroup failed")
	}
	// Group 3 held exactly the selection; it collapses onto the new group.
	if c.FindByID(3) != nil {
		t.Fatalf("emptied parent group should be gone")
	}
	wantIDs(t, c, gid, 1, 2, 4)
	mustValid(t, c)
}

func TestRemoveNodeAutoDissolvesGroup(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
	}}

	if !RemoveNode(c, 1) {
		t.Fatalf("RemoveNode failed")
	}
	// Group 3 is down to one child and dissolves; plugin 2 is promoted.
	wantIDs(t, c, 2)
	if c.Nodes[0].IsGroup() {
		t.Fatalf("expected promoted plugin at root")
	}
	mustValid(t, c)
}

func TestRemoveNodeCascadesUpAncestors(t *testing.T) {
	inner := group(4, model.GroupParallel, plugin(1, "a"), plugin(2, "b"))
	outer := group(5, model.GroupSerial, inner, plugin(3, "c"))
	c := &model.Chain{Nodes: []*model.Node{outer}}

	// Removing a and b in turn: inner dissolves, then outer keeps 2.
	if !RemoveNode(c, 1) {
		t.Fatalf("remove 1 failed")
	}
	wantIDs(t, c, 5, 2, 3)
	if !RemoveNode(c, 2) {
		t.Fatalf("remove 2 failed")
	}
	wantIDs(t, c, 3)
	mustValid(t, c)
}

func TestRemoveGroupRemovesSubtree(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
		plugin(4, "c"),
	}}

	if !RemoveNode(c, 3) {
		t.Fatalf("RemoveNode failed")
	}
	wantIDs(t, c, 4)
	mustValid(t, c)
}

func TestMoveNodeSameParentForward(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "a"), plugin(2, "b"), plugin(3, "c")}}

	// Move a to just after b. Target index 2 counts the pre-removal
	// layout; without compensation a would land after c.
	if !MoveNode(c, 1, model.RootID, 2) {
		t.Fatalf("MoveNode failed")
	}
	wantIDs(t, c, 2, 1, 3)
	mustValid(t, c)
}

func TestMoveNodeIndexClamped(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "a"), plugin(2, "b")}}

	if !MoveNode(c, 1, model.RootID, 99) {
		t.Fatalf("MoveNode failed")
	}
	wantIDs(t, c, 2, 1)

	if !MoveNode(c, 1, model.RootID, -5) {
		t.Fatalf("MoveNode failed")
	}
	wantIDs(t, c, 1, 2)
}

func TestMoveNodeIntoOwnSubtreeRejected(t *testing.T) {
	inner := group(4, model.GroupSerial, plugin(1, "a"), plugin(2, "b"))
	outer := group(5, model.GroupSerial, inner, plugin(3, "c"))
	c := &model.Chain{Nodes: []*model.Node{outer}}
	before := c.Clone()

	if MoveNode(c, 5, 4, 0) {
		t.Fatalf("moving a group into its own descendant must fail")
	}
	if MoveNode(c, 5, 5, 0) {
		t.Fatalf("moving a group into itself must fail")
	}
	if !c.Equal(before) {
		t.Fatalf("rejected op must leave chain unchanged")
	}
}

func TestMoveNodeRejectsPluginParent(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "a"), plugin(2, "b")}}
	before := c.Clone()

	if MoveNode(c, 1, 2, 0) {
		t.Fatalf("plugin cannot be a parent")
	}
	if MoveNode(c, 1, 99, 0) {
		t.Fatalf("missing parent must fail")
	}
	if MoveNode(c, 99, model.RootID, 0) {
		t.Fatalf("missing node must fail")
	}
	if !c.Equal(before) {
		t.Fatalf("rejected op must leave chain unchanged")
	}
}

func TestMoveLastChildOutDissolvesGroup(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupParallel, plugin(1, "a"), plugin(2, "b")),
	}}

	if !MoveNode(c, 1, model.RootID, 0) {
		t.Fatalf("MoveNode failed")
	}
	// Group 3 is left with one child and dissolves.
	wantIDs(t, c, 1, 2)
	mustValid(t, c)
}

func TestMoveNodeIntoGroupAppends(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(4, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
		plugin(3, "c"),
	}}

	if !MoveNode(c, 3, 4, 2) {
		t.Fatalf("MoveNode failed")
	}
	wantIDs(t, c, 4, 1, 2, 3)
	mustValid(t, c)
}

func TestDissolveGroupSplicesInPlace(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		plugin(1, "pre"),
		group(4, model.GroupSerial, plugin(2, "a"), plugin(3, "b")),
		plugin(5, "post"),
	}}

	if !DissolveGroup(c, 4) {
		t.Fatalf("DissolveGroup failed")
	}
	wantIDs(t, c, 1, 2, 3, 5)
	mustValid(t, c)
}

func TestDissolveGroupMissingIDIsNoop(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
	}}
	before := c.Clone()

	if DissolveGroup(c, 42) {
		t.Fatalf("missing id must be a no-op")
	}
	if DissolveGroup(c, model.RootID) {
		t.Fatalf("root cannot be dissolved")
	}
	if DissolveGroup(c, 1) {
		t.Fatalf("plugins cannot be dissolved")
	}
	if !c.Equal(before) {
		t.Fatalf("chain must be unchanged")
	}
}

func TestDissolveNestedGroupLeavesParentIntact(t *testing.T) {
	inner := group(4, model.GroupParallel, plugin(1, "a"), plugin(2, "b"))
	outer := group(5, model.GroupSerial, inner, plugin(3, "c"))
	c := &model.Chain{Nodes: []*model.Node{outer}}

	if !DissolveGroup(c, 4) {
		t.Fatalf("DissolveGroup failed")
	}
	wantIDs(t, c, 5, 1, 2, 3)
	mustValid(t, c)
}

func TestDuplicatePluginGetsFreshID(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{plugin(1, "a"), plugin(2, "b")}}

	id, ok := DuplicateNode(c, 1)
	if !ok {
		t.Fatalf("DuplicateNode failed")
	}
	if id != 3 {
		t.Fatalf("expected fresh id 3; got %d", id)
	}
	// Copy sits immediately after the original.
	wantIDs(t, c, 1, 3, 2)
	mustValid(t, c)
}

func TestDuplicateGroupRenumbersSubtree(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupParallel, plugin(1, "a"), plugin(2, "b")),
	}}

	id, ok := DuplicateNode(c, 3)
	if !ok {
		t.Fatalf("DuplicateNode failed")
	}
	cp := c.FindByID(id)
	if !cp.IsGroup() || len(cp.Group.Children) != 2 {
		t.Fatalf("copy is not a 2-child group")
	}
	mustValid(t, c) // unique ids across original + copy
	if cp.Group.Children[0].Name != "a" || cp.Group.Children[1].Name != "b" {
		t.Fatalf("copy lost plugin payloads")
	}
}

func TestAddPluginDefaults(t *testing.T) {
	c := &model.Chain{}
	id, ok := AddPlugin(c, model.RootID, 0, "eq", "VST3", "/plugins/eq.vst3")
	if !ok || id != 1 {
		t.Fatalf("AddPlugin: ok=%v id=%d", ok, id)
	}
	p := c.FindByID(id)
	if p.Plugin.DryWet != 1.0 || p.Plugin.Bypassed {
		t.Fatalf("plugin defaults wrong: %+v", p.Plugin)
	}
	if _, ok := AddPlugin(c, id, 0, "x", "VST3", "/x"); ok {
		t.Fatalf("plugin cannot be a parent")
	}
}

func TestSettersValidateKindAndRange(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		group(3, model.GroupSerial, plugin(1, "a"), plugin(2, "b")),
	}}

	if SetGroupMode(c, 1, model.GroupParallel) {
		t.Fatalf("SetGroupMode on plugin must be a no-op")
	}
	if !SetGroupMode(c, 3, model.GroupParallel) {
		t.Fatalf("SetGroupMode failed")
	}
	if SetGroupMode(c, 3, model.GroupParallel) {
		t.Fatalf("same-mode set should report unchanged")
	}

	if !SetDryWet(c, 1, 1.7) {
		t.Fatalf("SetDryWet failed")
	}
	if got := c.FindByID(1).Plugin.DryWet; got != 1.0 {
		t.Fatalf("dry/wet not clamped: %v", got)
	}

	if !SetGroupDuck(c, 3, 0.5, 10) {
		t.Fatalf("SetGroupDuck failed")
	}
	if got := c.FindByID(3).Group.DuckReleaseMS; got != 50 {
		t.Fatalf("duck release not clamped to 50: %v", got)
	}

	if !ToggleBypass(c, 2) || !c.FindByID(2).Plugin.Bypassed {
		t.Fatalf("ToggleBypass failed")
	}
	if ToggleBypass(c, 3) {
		t.Fatalf("groups have no bypass")
	}
	if ToggleCollapsed(c, 1) {
		t.Fatalf("plugins have no collapse")
	}
	if !ToggleCollapsed(c, 3) || !c.FindByID(3).Collapsed {
		t.Fatalf("ToggleCollapsed failed")
	}

	if SetMidSide(c, 1, model.MidSideMode(9)) {
		t.Fatalf("out-of-range mid/side mode must be rejected")
	}
	if SetSidechain(c, 1, 7) {
		t.Fatalf("unknown sidechain source must be rejected")
	}

	if SetSolo(c, 99, true) || SetMute(c, 99, true) || SetBranchGain(c, 99, -6) {
		t.Fatalf("missing id must be a no-op")
	}
	mustValid(t, c)
}

func TestInvariantsAcrossOperationSequence(t *testing.T) {
	c := &model.Chain{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, ok := AddPlugin(c, model.RootID, 99, name, "VST3", "/"+name); !ok {
			t.Fatalf("AddPlugin %s failed", name)
		}
	}

	g1, ok := CreateGroup(c, []model.NodeID{1, 2}, model.GroupParallel)
	if !ok {
		t.Fatalf("group 1 failed")
	}
	g2, ok := CreateGroup(c, []model.NodeID{g1, 3}, model.GroupSerial)
	if !ok {
		t.Fatalf("group 2 failed")
	}
	if !MoveNode(c, 4, g1, 0) {
		t.Fatalf("move into nested group failed")
	}
	if _, ok := DuplicateNode(c, g2); !ok {
		t.Fatalf("duplicate outer group failed")
	}
	if !RemoveNode(c, 1) || !RemoveNode(c, 2) || !RemoveNode(c, 4) {
		t.Fatalf("removals failed")
	}
	mustValid(t, c)
}
