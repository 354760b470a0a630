package bridge

import (
	"context"
	"encoding/base64"
	"sync"

	"chainrack/internal/chain"
	"chainrack/internal/model"
)

// Loopback is an in-process stand-in for the external audio engine. It
// keeps its own authoritative copy of the chain, applies mirrored ops on
// a single worker goroutine (preserving their order), and refuses to load
// plugins whose format is not in its allow-list. A partially failed
// import triggers an onChainChanged push with the reconciled tree, the
// same way a real engine reports a plugin that failed to instantiate.
type Loopback struct {
	mu       sync.Mutex
	mirror   *model.Chain
	formats  map[string]bool
	onChange []func(model.Snapshot)

	ops     chan Op
	done    chan struct{}
	pending sync.WaitGroup

	closeMu sync.Mutex
	closed  bool
}

// NewLoopback starts a loopback engine accepting the given plugin
// formats (nil means accept everything).
func NewLoopback(formats ...string) *Loopback {
	lb := &Loopback{
		mirror: &model.Chain{},
		ops:    make(chan Op, 64),
		done:   make(chan struct{}),
	}
	if len(formats) > 0 {
		lb.formats = map[string]bool{}
		for _, f := range formats {
			lb.formats[f] = true
		}
	}
	go lb.run()
	return lb
}

// Close stops the worker. Pending notifications are applied first.
// Closing twice is a no-op.
func (lb *Loopback) Close() {
	lb.closeMu.Lock()
	if lb.closed {
		lb.closeMu.Unlock()
		return
	}
	lb.closed = true
	lb.closeMu.Unlock()
	close(lb.ops)
	<-lb.done
}

func (lb *Loopback) run() {
	defer close(lb.done)
	for op := range lb.ops {
		lb.apply(op)
		lb.pending.Done()
	}
}

// Notify queues one mirrored edit. The editor treats this as
// fire-and-forget; after Close it drops the op instead.
func (lb *Loopback) Notify(op Op) {
	lb.closeMu.Lock()
	defer lb.closeMu.Unlock()
	if lb.closed {
		return
	}
	lb.pending.Add(1)
	lb.ops <- op
}

// apply replays an edit against the mirror with the same engine
// operations the editor used, so both sides stay in sync (including
// fresh-id allocation, which is deterministic per tree).
func (lb *Loopback) apply(op Op) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	c := lb.mirror
	switch op.Kind {
	case OpAddPlugin:
		chain.AddPlugin(c, op.Parent, op.Index, op.Name, op.Format, op.Path)
	case OpMoveNode:
		chain.MoveNode(c, op.Node, op.Parent, op.Index)
	case OpCreateGroup:
		chain.CreateGroup(c, op.Members, op.Mode)
	case OpDissolveGroup:
		chain.DissolveGroup(c, op.Node)
	case OpDuplicateNode:
		chain.DuplicateNode(c, op.Node)
	case OpRemoveNode:
		chain.RemoveNode(c, op.Node)
	case OpSetField:
		lb.applySet(c, op)
	}
}

func (lb *Loopback) applySet(c *model.Chain, op Op) {
	switch op.Field {
	case "groupMode":
		chain.SetGroupMode(c, op.Node, model.GroupMode(op.Text))
	case "groupDryWet":
		chain.SetGroupDryWet(c, op.Node, op.Value)
	case "duck":
		chain.SetGroupDuck(c, op.Node, op.Value, float64(op.Int))
	case "branchGain":
		chain.SetBranchGain(c, op.Node, op.Value)
	case "solo":
		chain.SetSolo(c, op.Node, op.Flag)
	case "mute":
		chain.SetMute(c, op.Node, op.Flag)
	case "bypass":
		chain.ToggleBypass(c, op.Node)
	case "collapsed":
		chain.ToggleCollapsed(c, op.Node)
	case "inputGain":
		chain.SetInputGain(c, op.Node, op.Value)
	case "outputGain":
		chain.SetOutputGain(c, op.Node, op.Value)
	case "dryWet":
		chain.SetDryWet(c, op.Node, op.Value)
	case "midSide":
		chain.SetMidSide(c, op.Node, model.MidSideMode(op.Int))
	case "sidechain":
		chain.SetSidechain(c, op.Node, op.Int)
	case "name":
		chain.RenameNode(c, op.Node, op.Text)
	}
}

// ExportChain serializes the authoritative tree. Plugins get their
// engine-side parameter state attached.
func (lb *Loopback) ExportChain(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()
	cp := lb.mirror.Clone()
	for _, p := range cp.CollectPlugins() {
		if p.Plugin.PresetData == "" {
			p.Plugin.PresetData = base64.StdEncoding.EncodeToString(
				[]byte("state:" + p.Plugin.Format + ":" + p.Plugin.Path))
		}
	}
	return model.Snapshot{Nodes: cp.Nodes}, nil
}

// ImportChain replaces the mirror with the snapshot. Plugins in formats
// the engine cannot host are dropped from the authoritative tree and
// reported per slot; the reconciled tree is then pushed through
// onChainChanged so the editor can converge.
func (lb *Loopback) ImportChain(ctx context.Context, snap model.Snapshot) ImportResult {
	if err := ctx.Err(); err != nil {
		return ImportResult{Success: false, Slots: []SlotResult{{Reason: err.Error()}}}
	}

	incoming := (&model.Chain{Nodes: snap.Nodes}).Clone()

	res := ImportResult{Success: true}
	var failed []model.NodeID
	for _, p := range incoming.CollectPlugins() {
		sr := SlotResult{Node: p.ID, Loaded: true}
		if lb.formats != nil && !lb.formats[p.Plugin.Format] {
			sr.Loaded = false
			sr.Reason = "unsupported plugin format: " + p.Plugin.Format
			failed = append(failed, p.ID)
			res.Success = false
		}
		res.Slots = append(res.Slots, sr)
	}
	// Removing the failed plugins runs the same arity cleanup the editor
	// uses, so the reconciled tree is structurally valid.
	for _, id := range failed {
		chain.RemoveNode(incoming, id)
	}

	lb.mu.Lock()
	lb.mirror = incoming
	callbacks := append([]func(model.Snapshot){}, lb.onChange...)
	reconciled := incoming.Clone()
	lb.mu.Unlock()

	if len(failed) > 0 {
		for _, fn := range callbacks {
			fn(model.Snapshot{Nodes: reconciled.Nodes})
		}
	}
	return res
}

func (lb *Loopback) OnChainChanged(fn func(model.Snapshot)) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.onChange = append(lb.onChange, fn)
}

// Drain blocks until every queued notification has been applied. Tests
// use it to observe the mirror deterministically.
func (lb *Loopback) Drain() {
	lb.pending.Wait()
}

// Mirror returns a deep copy of the engine's current tree.
func (lb *Loopback) Mirror() *model.Chain {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.mirror.Clone()
}
