// Package editor owns the live chain and wires the mutation engine, the
// history manager and the audio-engine bridge into the surface the CLI
// and TUI consume. The tree is single-writer: every edit runs to
// completion under one mutex before the next is processed. Edits apply
// optimistically and are mirrored to the bridge fire-and-forget; an
// authoritative tree pushed back by the engine replaces the local one
// wholesale as an ordinary commit.
package editor

import (
	"context"
	"sync"

	"chainrack/internal/bridge"
	"chainrack/internal/chain"
	"chainrack/internal/history"
	"chainrack/internal/model"
	"chainrack/internal/resolve"
)

type Editor struct {
	mu   sync.Mutex
	hist *history.Manager
	br   bridge.Bridge

	// gesture, when non-nil, is the working tree of a continuous-value
	// gesture (slider drag). Ticks mutate it without committing; the
	// single commit happens at gesture end.
	gesture      *model.Chain
	gestureDirty bool

	version uint64
	subs    map[uint64]func()
	nextSub uint64
}

func New(initial *model.Chain, br bridge.Bridge) *Editor {
	e := &Editor{
		hist: history.NewManager(initial, br),
		br:   br,
	}
	br.OnChainChanged(e.ApplyAuthoritative)
	return e
}

// Chain returns a deep copy of the tree as the user currently sees it.
func (e *Editor) Chain() *model.Chain {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture != nil {
		return e.gesture.Clone()
	}
	return e.hist.Current()
}

// Version increments on every visible change; observers may poll it
// instead of subscribing.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Subscribe registers a change callback and returns its unsubscribe
// handle; long-lived observers (websocket connections) must release it.
// Callbacks run outside the editor lock and must not assume a
// particular goroutine.
func (e *Editor) Subscribe(fn func()) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = map[uint64]func(){}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Editor) bumpLocked() []func() {
	e.version++
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notifyAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// structural runs one engine operation against a working copy and, when
// it changed anything, commits and mirrors it.
func (e *Editor) structural(op bridge.Op, apply func(c *model.Chain) bool) bool {
	e.mu.Lock()
	cur := e.hist.Current()
	if !apply(cur) {
		e.mu.Unlock()
		return false
	}
	e.hist.Commit(cur)
	fns := e.bumpLocked()
	e.mu.Unlock()

	e.br.Notify(op)
	notifyAll(fns)
	return true
}

func (e *Editor) AddPlugin(parent model.NodeID, index int, name, format, path string) (model.NodeID, bool) {
	var id model.NodeID
	ok := e.structural(
		bridge.Op{Kind: bridge.OpAddPlugin, Parent: parent, Index: index, Name: name, Format: format, Path: path},
		func(c *model.Chain) bool {
			var ok bool
			id, ok = chain.AddPlugin(c, parent, index, name, format, path)
			return ok
		})
	return id, ok
}

func (e *Editor) MoveNode(node, parent model.NodeID, index int) bool {
	return e.structural(
		bridge.Op{Kind: bridge.OpMoveNode, Node: node, Parent: parent, Index: index},
		func(c *model.Chain) bool { return chain.MoveNode(c, node, parent, index) })
}

func (e *Editor) CreateGroup(members []model.NodeID, mode model.GroupMode) (model.NodeID, bool) {
	var id model.NodeID
	ok := e.structural(
		bridge.Op{Kind: bridge.OpCreateGroup, Members: members, Mode: mode},
		func(c *model.Chain) bool {
			var ok bool
			id, ok = chain.CreateGroup(c, members, mode)
			return ok
		})
	return id, ok
}

func (e *Editor) DissolveGroup(group model.NodeID) bool {
	return e.structural(
		bridge.Op{Kind: bridge.OpDissolveGroup, Node: group},
		func(c *model.Chain) bool { return chain.DissolveGroup(c, group) })
}

func (e *Editor) DuplicateNode(node model.NodeID) (model.NodeID, bool) {
	var id model.NodeID
	ok := e.structural(
		bridge.Op{Kind: bridge.OpDuplicateNode, Node: node},
		func(c *model.Chain) bool {
			var ok bool
			id, ok = chain.DuplicateNode(c, node)
			return ok
		})
	return id, ok
}

func (e *Editor) RemoveNode(node model.NodeID) bool {
	return e.structural(
		bridge.Op{Kind: bridge.OpRemoveNode, Node: node},
		func(c *model.Chain) bool { return chain.RemoveNode(c, node) })
}

// SetField applies one field-only setter. During a gesture the change is
// applied to the working tree and mirrored, but committed to history
// only at gesture end.
func (e *Editor) SetField(op bridge.Op, apply func(c *model.Chain) bool) bool {
	e.mu.Lock()
	if e.gesture != nil {
		if !apply(e.gesture) {
			e.mu.Unlock()
			return false
		}
		e.gestureDirty = true
		fns := e.bumpLocked()
		e.mu.Unlock()
		e.br.Notify(op)
		notifyAll(fns)
		return true
	}
	e.mu.Unlock()
	return e.structural(op, apply)
}

// BeginGesture starts coalescing continuous-value edits: intermediate
// ticks reach the engine but only the value at gesture end lands in
// history.
func (e *Editor) BeginGesture() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture == nil {
		e.gesture = e.hist.Current()
		e.gestureDirty = false
	}
}

// EndGesture commits the gesture's final tree, if anything changed.
func (e *Editor) EndGesture() {
	e.mu.Lock()
	g := e.gesture
	dirty := e.gestureDirty
	e.gesture = nil
	e.gestureDirty = false
	if g == nil || !dirty {
		e.mu.Unlock()
		return
	}
	e.hist.Commit(g)
	fns := e.bumpLocked()
	e.mu.Unlock()
	notifyAll(fns)
}

// Resolve maps a drag gesture to its action without applying it.
func (e *Editor) Resolve(d resolve.Drag) (resolve.Action, bool) {
	return resolve.Resolve(e.Chain(), d)
}

// Drop resolves a drag gesture and applies the resulting action.
func (e *Editor) Drop(d resolve.Drag) (resolve.Action, bool) {
	act, ok := e.Resolve(d)
	if !ok {
		return resolve.Action{}, false
	}
	switch act.Kind {
	case resolve.ActionMove:
		if !e.MoveNode(act.Node, act.Parent, act.Index) {
			return resolve.Action{}, false
		}
	case resolve.ActionGroup:
		if _, ok := e.CreateGroup(act.Members, act.Mode); !ok {
			return resolve.Action{}, false
		}
	}
	return act, true
}

// Undo steps back one commit and re-imports the restored tree into the
// engine (fire-and-forget; divergence comes back via onChainChanged).
func (e *Editor) Undo() bool {
	e.mu.Lock()
	if !e.hist.Undo() {
		e.mu.Unlock()
		return false
	}
	cur := e.hist.Current()
	fns := e.bumpLocked()
	e.mu.Unlock()

	go e.br.ImportChain(context.Background(), model.Snapshot{Nodes: cur.Nodes})
	notifyAll(fns)
	return true
}

func (e *Editor) Redo() bool {
	e.mu.Lock()
	if !e.hist.Redo() {
		e.mu.Unlock()
		return false
	}
	cur := e.hist.Current()
	fns := e.bumpLocked()
	e.mu.Unlock()

	go e.br.ImportChain(context.Background(), model.Snapshot{Nodes: cur.Nodes})
	notifyAll(fns)
	return true
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// SaveSnapshot stores the current tree in a named slot (A-D as 0-3).
func (e *Editor) SaveSnapshot(ctx context.Context, slot int) error {
	return e.hist.SaveSnapshot(ctx, slot)
}

// RecallSnapshot restores a named slot as an undoable commit.
func (e *Editor) RecallSnapshot(ctx context.Context, slot int) (bridge.ImportResult, bool) {
	res, ok := e.hist.RecallSnapshot(ctx, slot)
	if !ok {
		return res, false
	}
	e.mu.Lock()
	fns := e.bumpLocked()
	e.mu.Unlock()
	notifyAll(fns)
	return res, true
}

// History exposes slot metadata to the CLI/TUI.
func (e *Editor) History() *history.Manager { return e.hist }

// ApplyAuthoritative replaces the local tree with the engine's, treated
// as an ordinary commit: the pre-replace tree lands on the undo stack
// and the redo stack is cleared. External mirroring layers use the same
// entry point.
func (e *Editor) ApplyAuthoritative(snap model.Snapshot) {
	incoming := (&model.Chain{Nodes: snap.Nodes}).Clone()
	e.mu.Lock()
	if e.hist.Current().Equal(incoming) {
		e.mu.Unlock()
		return
	}
	// A pending gesture is based on a tree the engine just rejected.
	e.gesture = nil
	e.gestureDirty = false
	e.hist.Commit(incoming)
	fns := e.bumpLocked()
	e.mu.Unlock()
	notifyAll(fns)
}
