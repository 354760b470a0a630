// Package history keeps the undo/redo stacks and the four named snapshot
// slots for the chain editor. Entries are deep clones, immune to later
// mutation of the live tree.
package history

import (
	"context"
	"sync"
	"time"

	"chainrack/internal/bridge"
	"chainrack/internal/model"
)

const (
	// MaxDepth caps the undo stack; the oldest entry is evicted on
	// overflow.
	MaxDepth = 50

	// NumSlots is the number of named snapshot slots (A-D).
	NumSlots = 4
)

// Manager owns the current tree plus its history. All methods are safe
// for concurrent use; snapshot slot operations are additionally
// single-flight per slot.
type Manager struct {
	mu      sync.Mutex
	current *model.Chain
	past    []*model.Chain
	future  []*model.Chain

	slots      [NumSlots]*model.SavedSlot
	activeSlot int // -1 when no slot is active

	slotMu [NumSlots]sync.Mutex

	br bridge.Bridge
}

func NewManager(initial *model.Chain, br bridge.Bridge) *Manager {
	if initial == nil {
		initial = &model.Chain{}
	}
	return &Manager{current: initial, activeSlot: -1, br: br}
}

// Current returns a deep copy of the current tree.
func (m *Manager) Current() *model.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Commit pushes the pre-mutation tree onto the undo stack (evicting the
// oldest beyond MaxDepth), clears the redo stack, and makes newTree
// current. The manager takes ownership of newTree.
func (m *Manager) Commit(newTree *model.Chain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushPast(m.current.Clone())
	m.future = nil
	m.current = newTree
}

func (m *Manager) pushPast(c *model.Chain) {
	m.past = append(m.past, c)
	if len(m.past) > MaxDepth {
		m.past = m.past[len(m.past)-MaxDepth:]
	}
}

// Undo restores the previous tree. Underflow is a silent no-op.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.past) == 0 {
		return false
	}
	top := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, m.current)
	m.current = top
	return true
}

// Redo reapplies the most recently undone tree. Underflow is a silent
// no-op.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.future) == 0 {
		return false
	}
	top := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.pushPast(m.current)
	m.current = top
	return true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Depth returns the undo stack size.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past)
}

// SaveSnapshot exports the current tree through the bridge (so the
// snapshot carries authoritative plugin parameter state) and stores it,
// timestamped, in the slot. The slot becomes active.
func (m *Manager) SaveSnapshot(ctx context.Context, slot int) error {
	if slot < 0 || slot >= NumSlots {
		return nil
	}
	m.slotMu[slot].Lock()
	defer m.slotMu[slot].Unlock()

	snap, err := m.br.ExportChain(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = &model.SavedSlot{Snapshot: snap, SavedAt: time.Now().UTC()}
	m.activeSlot = slot
	return nil
}

// RecallSnapshot commits the current tree (so recall is undoable), then
// replaces it with the slot's snapshot, importing it through the bridge.
// An empty slot is a no-op. Import failures are reported in the result;
// the authoritative correction arrives via onChainChanged.
func (m *Manager) RecallSnapshot(ctx context.Context, slot int) (bridge.ImportResult, bool) {
	if slot < 0 || slot >= NumSlots {
		return bridge.ImportResult{}, false
	}
	m.slotMu[slot].Lock()
	defer m.slotMu[slot].Unlock()

	m.mu.Lock()
	saved := m.slots[slot]
	if saved == nil {
		m.mu.Unlock()
		return bridge.ImportResult{}, false
	}
	snap := (&model.Chain{Nodes: saved.Snapshot.Nodes}).Clone()
	m.pushPast(m.current.Clone())
	m.future = nil
	m.current = snap
	m.activeSlot = slot
	m.mu.Unlock()

	res := m.br.ImportChain(ctx, model.Snapshot{Nodes: snap.Clone().Nodes})
	return res, true
}

// Slot returns a copy of the saved slot, or nil if empty.
func (m *Manager) Slot(slot int) *model.SavedSlot {
	if slot < 0 || slot >= NumSlots {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := m.slots[slot]
	if saved == nil {
		return nil
	}
	cp := *saved
	cp.Snapshot = model.Snapshot{Nodes: (&model.Chain{Nodes: saved.Snapshot.Nodes}).Clone().Nodes}
	return &cp
}

// RestoreSlot seeds a slot from persisted state without touching the
// undo stacks (used when loading the store on startup).
func (m *Manager) RestoreSlot(slot int, saved *model.SavedSlot) {
	if slot < 0 || slot >= NumSlots || saved == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = saved
}

// Stacks returns clones of the undo and redo stacks, oldest first. Used
// to persist history across CLI invocations.
func (m *Manager) Stacks() (past, future []*model.Chain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.past {
		past = append(past, c.Clone())
	}
	for _, c := range m.future {
		future = append(future, c.Clone())
	}
	return past, future
}

// RestoreStacks seeds the undo/redo stacks from persisted state without
// committing anything (startup only). Oversized stacks are trimmed to
// the newest MaxDepth entries.
func (m *Manager) RestoreStacks(past, future []*model.Chain) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(past) > MaxDepth {
		past = past[len(past)-MaxDepth:]
	}
	m.past = past
	m.future = future
}

// ActiveSlot returns the active slot index, -1 when none.
func (m *Manager) ActiveSlot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeSlot
}
