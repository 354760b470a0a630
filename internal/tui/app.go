// Package tui is the interactive terminal front end: a rack view of the
// chain tree with keyboard editing, a grab mode that routes node moves
// through the drop resolver, snapshot slots and a help overlay.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainrack/internal/docs"
	"chainrack/internal/editor"
	"chainrack/internal/history"
	"chainrack/internal/model"
	"chainrack/internal/resolve"
	"chainrack/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeNormal mode = iota
	modeGrab
	modePicker
	modeRename
	modeHelp
)

type (
	tickMsg         time.Time
	chainChangedMsg struct{}
)

var slotKeys = map[string]int{"1": 0, "2": 1, "3": 2, "4": 3}
var slotSaveKeys = map[string]int{"!": 0, "@": 1, "#": 2, "$": 3}
var slotLabels = [history.NumSlots]string{"A", "B", "C", "D"}

type appModel struct {
	ed *editor.Editor
	st store.Store

	rows   []row
	cursor int
	marked map[model.NodeID]bool

	mode mode

	// grab mode
	grabNode     model.NodeID
	grabPos      int
	grabLeft     bool
	grabModifier bool

	picker   list.Model
	input    textinput.Model
	renameID model.NodeID

	gestureActive bool

	width, height int
	status        string
	statusErr     bool
	lastMod       time.Time
}

func newAppModel(ed *editor.Editor, st store.Store) *appModel {
	m := &appModel{
		ed:      ed,
		st:      st,
		marked:  map[model.NodeID]bool{},
		lastMod: st.ModTime(),
		width:   80,
		height:  24,
	}
	m.refresh()
	return m
}

// Run starts the TUI on the given editor. It returns when the user
// quits; persisting the chain is the caller's job.
func Run(ed *editor.Editor, st store.Store) error {
	applyColorProfilePreference()
	applyThemePreference()

	p := tea.NewProgram(newAppModel(ed, st), tea.WithAltScreen())
	ed.Subscribe(func() { p.Send(chainChangedMsg{}) })
	_, err := p.Run()
	return err
}

func (m *appModel) Init() tea.Cmd {
	return pollStore()
}

func pollStore() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh re-flattens the tree and drops stale cursor/marks.
func (m *appModel) refresh() {
	c := m.ed.Chain()
	m.rows = flattenChain(c)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	for id := range m.marked {
		if c.FindByID(id) == nil {
			delete(m.marked, id)
		}
	}
}

func (m *appModel) endGesture() {
	if m.gestureActive {
		m.ed.EndGesture()
		m.gestureActive = false
	}
}

func (m *appModel) flash(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *appModel) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.mode == modePicker {
			m.picker.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case chainChangedMsg:
		m.refresh()
		return m, nil

	case tickMsg:
		// Pick up edits made by CLI commands in another terminal.
		if mod := m.st.ModTime(); mod.After(m.lastMod) {
			m.lastMod = mod
			if c, err := m.st.Load(); err == nil && !c.Equal(m.ed.Chain()) {
				m.ed.ApplyAuthoritative(model.Snapshot{Nodes: c.Nodes})
				m.refresh()
			}
		}
		return m, pollStore()

	case tea.KeyMsg:
		switch m.mode {
		case modeGrab:
			return m.updateGrab(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeRename:
			return m.updateRename(msg)
		case modeHelp:
			m.mode = modeNormal
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Continuous-value keys extend a gesture; anything else closes it.
	switch key {
	case "[", "]", "{", "}":
	default:
		m.endGesture()
	}
	m.status = ""

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case " ":
		if r, ok := m.currentRow(); ok {
			if m.marked[r.id] {
				delete(m.marked, r.id)
			} else {
				m.marked[r.id] = true
			}
		}

	case "g", "G":
		gm := model.GroupSerial
		if key == "G" {
			gm = model.GroupParallel
		}
		ids := m.markedIDs()
		if len(ids) < 2 {
			m.flash("mark 2+ nodes with space first", true)
			break
		}
		if _, ok := m.ed.CreateGroup(ids, gm); !ok {
			m.flash("cannot group: nested or missing selection", true)
			break
		}
		m.marked = map[model.NodeID]bool{}
		m.refresh()

	case "x":
		if r, ok := m.currentRow(); ok {
			if !m.ed.DissolveGroup(r.id) {
				m.flash("not a group", true)
			}
			m.refresh()
		}

	case "d":
		if r, ok := m.currentRow(); ok {
			if !m.ed.RemoveNode(r.id) {
				m.flash("remove failed", true)
			}
			m.refresh()
		}

	case "D":
		if r, ok := m.currentRow(); ok {
			if _, ok := m.ed.DuplicateNode(r.id); !ok {
				m.flash("duplicate failed", true)
			}
			m.refresh()
		}

	case "a":
		m.picker = newPicker(m.st.Dir, m.width-4, m.height-4)
		m.mode = modePicker

	case "r":
		if r, ok := m.currentRow(); ok {
			ti := textinput.New()
			ti.Placeholder = "name"
			ti.SetValue(r.node.Name)
			ti.Focus()
			m.input = ti
			m.renameID = r.id
			m.mode = modeRename
		}

	case "enter", "tab":
		if r, ok := m.currentRow(); ok && r.node.IsGroup() {
			m.ed.ToggleCollapsed(r.id)
			m.refresh()
		}

	case "b":
		if r, ok := m.currentRow(); ok {
			if !m.ed.ToggleBypass(r.id) {
				m.flash("bypass is plugin-only", true)
			}
		}

	case "m":
		if r, ok := m.currentRow(); ok {
			m.ed.SetMute(r.id, !r.node.Mute)
		}

	case "s":
		if r, ok := m.currentRow(); ok {
			m.ed.SetSolo(r.id, !r.node.Solo)
		}

	case "o":
		if r, ok := m.currentRow(); ok && r.node.IsGroup() {
			next := model.GroupParallel
			if r.node.Group.Mode == model.GroupParallel {
				next = model.GroupSerial
			}
			m.ed.SetGroupMode(r.id, next)
		}

	case "v":
		if r, ok := m.currentRow(); ok {
			m.grabNode = r.id
			m.grabPos = 2*m.cursor + 1
			m.grabLeft = true
			m.grabModifier = false
			m.mode = modeGrab
		}

	case "[", "]":
		m.adjustDryWet(key == "]")

	case "{", "}":
		m.adjustBranchGain(key == "}")

	case "u":
		if !m.ed.Undo() {
			m.flash("nothing to undo", true)
		}
		m.refresh()

	case "U", "ctrl+r":
		if !m.ed.Redo() {
			m.flash("nothing to redo", true)
		}
		m.refresh()

	case "?":
		m.mode = modeHelp

	default:
		if slot, ok := slotSaveKeys[key]; ok {
			if err := m.ed.SaveSnapshot(context.Background(), slot); err != nil {
				m.flash("snapshot save failed: "+err.Error(), true)
			} else {
				m.flash("saved slot "+slotLabels[slot], false)
			}
			break
		}
		if slot, ok := slotKeys[key]; ok {
			res, ok := m.ed.RecallSnapshot(context.Background(), slot)
			if !ok {
				m.flash("slot "+slotLabels[slot]+" is empty", true)
				break
			}
			if !res.Success {
				m.flash("recalled slot "+slotLabels[slot]+" with load failures", true)
			} else {
				m.flash("recalled slot "+slotLabels[slot], false)
			}
			m.refresh()
		}
	}

	m.refresh()
	return m, nil
}

// adjustDryWet nudges the dry/wet of the node under the cursor inside a
// coalesced gesture: held-down repeats land as one undo step.
func (m *appModel) adjustDryWet(up bool) {
	r, ok := m.currentRow()
	if !ok {
		return
	}
	if !m.gestureActive {
		m.ed.BeginGesture()
		m.gestureActive = true
	}
	delta := -0.05
	if up {
		delta = 0.05
	}
	if r.node.IsGroup() {
		m.ed.SetGroupDryWet(r.id, r.node.Group.DryWet+delta)
	} else {
		m.ed.SetDryWet(r.id, r.node.Plugin.DryWet+delta)
	}
}

func (m *appModel) adjustBranchGain(up bool) {
	r, ok := m.currentRow()
	if !ok {
		return
	}
	if !m.gestureActive {
		m.ed.BeginGesture()
		m.gestureActive = true
	}
	delta := -1.0
	if up {
		delta = 1.0
	}
	m.ed.SetBranchGain(r.id, r.node.BranchGainDB+delta)
}

func (m *appModel) markedIDs() []model.NodeID {
	// Keep the rack's visual order so the group preserves it.
	var ids []model.NodeID
	for _, r := range m.rows {
		if m.marked[r.id] {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func (m *appModel) updateGrab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxPos := grabPositions(m.rows) - 1
	switch msg.String() {
	case "esc", "v", "q":
		m.mode = modeNormal

	case "j", "down":
		if m.grabPos < maxPos {
			m.grabPos++
		}
	case "k", "up":
		if m.grabPos > 0 {
			m.grabPos--
		}
	case "h", "left":
		m.grabLeft = true
	case "l", "right":
		m.grabLeft = false
	case "p":
		m.grabModifier = !m.grabModifier

	case "enter":
		c := m.ed.Chain()
		drag := resolve.Drag{
			Node:     m.grabNode,
			Pointer:  grabPointer(m.grabPos, m.grabLeft),
			Bounds:   resolve.Rect{X: 0, Y: float64(m.grabPos), W: rackWidth, H: 1},
			Targets:  grabTargets(c, m.rows),
			Modifier: m.grabModifier,
		}
		if _, ok := m.ed.Drop(drag); !ok {
			m.flash("no valid drop there", true)
		}
		m.mode = modeNormal
		m.refresh()
	}
	return m, nil
}

func (m *appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.picker.FilterState() != list.Filtering {
			m.mode = modeNormal
			return m, nil
		}
	case "enter":
		if m.picker.FilterState() != list.Filtering {
			if e, ok := m.picker.SelectedItem().(catalogEntry); ok {
				parent, index := m.insertionPoint()
				if _, ok := m.ed.AddPlugin(parent, index, e.Name, e.Format, e.Path); !ok {
					m.flash("add failed", true)
				}
			}
			m.mode = modeNormal
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// insertionPoint places new plugins right after the cursor row, inside
// the same parent; with an empty rack they go to the root.
func (m *appModel) insertionPoint() (model.NodeID, int) {
	r, ok := m.currentRow()
	if !ok {
		return model.RootID, 0
	}
	if r.node.IsGroup() && !r.node.Collapsed {
		return r.id, len(r.node.Group.Children)
	}
	parent, idx := m.ed.Chain().FindParent(r.id)
	return parent, idx + 1
}

func (m *appModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name != "" {
			m.ed.RenameNode(m.renameID, name)
		}
		m.mode = modeNormal
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) View() string {
	switch m.mode {
	case modePicker:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	case modeHelp:
		return renderMarkdown(helpMarkdown(), min(m.width-2, 78))
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styleMuted().Render("  empty chain; press a to add a plugin"))
		b.WriteString("\n")
	}

	for i, r := range m.rows {
		if m.mode == modeGrab {
			if m.grabPos == 2*i {
				b.WriteString(m.insertionLine())
			}
			line := renderRow(r, m.marked[r.id])
			if m.grabPos == 2*i+1 {
				line = lipgloss.NewStyle().Background(colorGrabBg).Render(line + m.slotHint(r))
			}
			if r.id == m.grabNode {
				line = styleMuted().Render(renderRow(r, false))
			}
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}

		line := renderRow(r, m.marked[r.id])
		if i == m.cursor {
			line = styleSelected().Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.mode == modeGrab && m.grabPos == 2*len(m.rows) {
		b.WriteString(m.insertionLine())
	}

	if m.mode == modeRename {
		b.WriteString("\n  rename: " + m.input.View() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m *appModel) headerView() string {
	c := m.ed.Chain()
	parts := []string{
		lipgloss.NewStyle().Bold(true).Render("chainrack"),
		fmt.Sprintf("%d plugin(s)", c.CountPlugins()),
	}
	if slot := m.ed.History().ActiveSlot(); slot >= 0 {
		parts = append(parts, "slot "+slotLabels[slot])
	}
	return "  " + strings.Join(parts, styleMuted().Render("  •  "))
}

func (m *appModel) footerView() string {
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleError()
		}
		return "  " + st.Render(m.status)
	}
	hint := "j/k move  space mark  g/G group  v grab  a add  d del  u undo  ? help  q quit"
	if m.mode == modeGrab {
		hint = "j/k position  h/l serial/parallel  p pair-modifier  enter drop  esc cancel"
	}
	return "  " + styleMuted().Render(hint)
}

func (m *appModel) insertionLine() string {
	style := lipgloss.NewStyle().Foreground(colorAccent)
	label := "insert here"
	if m.grabModifier {
		label = "pair above/below in parallel"
	}
	return style.Render("  ├─── "+label+" ───") + "\n"
}

func (m *appModel) slotHint(r row) string {
	if r.node.IsGroup() {
		return styleMuted().Render("  → into group")
	}
	if m.grabLeft {
		return styleMuted().Render("  → serial pair")
	}
	return styleMuted().Render("  → parallel pair")
}

func helpMarkdown() string {
	var b strings.Builder
	b.WriteString(`# chainrack keys

| Key | Action |
|-----|--------|
| j / k | move cursor |
| space | mark node for grouping |
| g / G | group marked nodes serial / parallel |
| o | toggle group mode |
| x | dissolve group |
| v | grab node, then j/k h/l and enter to drop |
| a | add plugin |
| d / D | remove / duplicate |
| r | rename |
| b / m / s | bypass / mute / solo |
| [ ] | dry-wet down / up (one undo step while held) |
| { } | branch gain down / up |
| u / U | undo / redo |
| 1-4, shift+1-4 | recall / save snapshot slot A-D |
| enter | collapse / expand group |
| q | quit |
`)
	if body, ok := docs.Get("chains"); ok {
		b.WriteString("\n---\n\n")
		b.WriteString(body)
	}
	return b.String()
}
