package tui

import (
	"math"
	"testing"

	"chainrack/internal/bridge"
	"chainrack/internal/editor"
	"chainrack/internal/model"
	"chainrack/internal/resolve"
	"chainrack/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T) (*appModel, *editor.Editor) {
	t.Helper()
	lb := bridge.NewLoopback()
	t.Cleanup(lb.Close)
	ed := editor.New(&model.Chain{}, lb)
	m := newAppModel(ed, store.Store{Dir: t.TempDir()})
	return m, ed
}

func TestFlattenSkipsCollapsedChildren(t *testing.T) {
	g := model.NewGroup(3, model.GroupSerial)
	g.Group.Children = []*model.Node{
		model.NewPlugin(1, "eq", "VST3", "/eq"),
		model.NewPlugin(2, "comp", "VST3", "/comp"),
	}
	c := &model.Chain{Nodes: []*model.Node{g}}

	if got := len(flattenChain(c)); got != 3 {
		t.Fatalf("expanded group should flatten to 3 rows, got %d", got)
	}
	g.Collapsed = true
	if got := len(flattenChain(c)); got != 1 {
		t.Fatalf("collapsed group should flatten to 1 row, got %d", got)
	}
}

func TestGrabTargetsGeometry(t *testing.T) {
	c := &model.Chain{Nodes: []*model.Node{
		model.NewPlugin(1, "eq", "VST3", "/eq"),
		model.NewPlugin(2, "comp", "VST3", "/comp"),
	}}
	rows := flattenChain(c)
	ts := grabTargets(c, rows)

	// gap, slot, gap, slot, tail gap
	if len(ts) != 5 {
		t.Fatalf("expected 5 targets, got %d", len(ts))
	}
	if ts[0].Kind != resolve.InsertionZone || ts[0].Index != 0 || ts[0].Below != 1 {
		t.Fatalf("first gap wrong: %+v", ts[0])
	}
	if ts[1].Kind != resolve.PluginSlot || ts[1].Node != 1 {
		t.Fatalf("first slot wrong: %+v", ts[1])
	}
	tail := ts[len(ts)-1]
	if tail.Kind != resolve.InsertionZone || tail.Index != 2 || tail.Above != 2 {
		t.Fatalf("tail gap wrong: %+v", tail)
	}

	// The grab pointer for each position lands inside that target.
	for pos, target := range ts {
		if !target.Bounds.Contains(grabPointer(pos, true)) {
			t.Fatalf("pointer for pos %d misses its target %+v", pos, target)
		}
	}
}

func TestGrabDropFormsParallelGroup(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	ed.AddPlugin(model.RootID, 1, "comp", "VST3", "/comp")
	m.refresh()

	// Grab the first plugin, land on the second one's right half.
	m.Update(key("v"))
	if m.mode != modeGrab {
		t.Fatalf("v must enter grab mode")
	}
	m.Update(key("j"))
	m.Update(key("j"))
	m.Update(key("l"))
	m.Update(key("enter"))

	if m.mode != modeNormal {
		t.Fatalf("drop must leave grab mode")
	}
	c := ed.Chain()
	if len(c.Nodes) != 1 || !c.Nodes[0].IsGroup() || c.Nodes[0].Group.Mode != model.GroupParallel {
		t.Fatalf("expected a parallel group, got %+v", c.Nodes)
	}
}

func TestGrabDropOntoSelfRejected(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	m.refresh()

	m.Update(key("v"))
	m.Update(key("enter")) // pointer starts on the grabbed node's own slot

	if len(ed.Chain().Nodes) != 1 {
		t.Fatalf("self-drop must not change the chain")
	}
	if !m.statusErr {
		t.Fatalf("self-drop should flash an error")
	}
}

func TestMarkAndGroupKeys(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	ed.AddPlugin(model.RootID, 1, "comp", "VST3", "/comp")
	m.refresh()

	m.Update(key("space"))
	m.Update(key("j"))
	m.Update(key("space"))
	m.Update(key("G"))

	c := ed.Chain()
	if len(c.Nodes) != 1 || !c.Nodes[0].IsGroup() || c.Nodes[0].Group.Mode != model.GroupParallel {
		t.Fatalf("G must group the marked nodes in parallel: %+v", c.Nodes)
	}
	if len(m.marked) != 0 {
		t.Fatalf("marks must clear after grouping")
	}
}

func TestGroupWithSingleMarkFlashesError(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	m.refresh()

	m.Update(key("space"))
	m.Update(key("g"))
	if !m.statusErr {
		t.Fatalf("grouping one node should flash an error")
	}
	if len(ed.Chain().Nodes) != 1 {
		t.Fatalf("chain must be unchanged")
	}
}

func TestDryWetKeysCoalesceIntoOneUndoStep(t *testing.T) {
	m, ed := newTestModel(t)
	id, _ := ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	m.refresh()

	m.Update(key("["))
	m.Update(key("["))
	m.Update(key("["))
	m.Update(key("j")) // any other key ends the gesture

	if got := ed.Chain().FindByID(id).Plugin.DryWet; math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("expected dry/wet 0.85, got %v", got)
	}
	if !ed.Undo() {
		t.Fatalf("undo failed")
	}
	if got := ed.Chain().FindByID(id).Plugin.DryWet; got != 1.0 {
		t.Fatalf("gesture must undo as one step, got %v", got)
	}
}

func TestCollapseToggleOnEnter(t *testing.T) {
	m, ed := newTestModel(t)
	a, _ := ed.AddPlugin(model.RootID, 0, "eq", "VST3", "/eq")
	b, _ := ed.AddPlugin(model.RootID, 1, "comp", "VST3", "/comp")
	ed.CreateGroup([]model.NodeID{a, b}, model.GroupSerial)
	m.refresh()

	if len(m.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.rows))
	}
	m.cursor = 0
	m.Update(key("enter"))
	if len(m.rows) != 1 {
		t.Fatalf("collapse must hide children, got %d rows", len(m.rows))
	}
	m.Update(key("enter"))
	if len(m.rows) != 3 {
		t.Fatalf("expand must show children again, got %d rows", len(m.rows))
	}
}

func TestPickerAddsPlugin(t *testing.T) {
	m, ed := newTestModel(t)
	m.refresh()

	m.Update(key("a"))
	if m.mode != modePicker {
		t.Fatalf("a must open the picker")
	}
	m.Update(key("enter"))
	if m.mode != modeNormal {
		t.Fatalf("enter must close the picker")
	}
	c := ed.Chain()
	if len(c.Nodes) != 1 || !c.Nodes[0].IsPlugin() {
		t.Fatalf("picker enter must add a plugin: %+v", c.Nodes)
	}
}
