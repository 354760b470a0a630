// Package bridge defines the boundary to the authoritative audio engine.
// The editor updates its own tree optimistically and mirrors every edit
// to the bridge; the engine owns the real signal graph and may push back
// a corrected tree at any time.
package bridge

import (
	"context"

	"chainrack/internal/model"
)

type OpKind string

const (
	OpAddPlugin     OpKind = "addPlugin"
	OpMoveNode      OpKind = "moveNode"
	OpCreateGroup   OpKind = "createGroup"
	OpDissolveGroup OpKind = "dissolveGroup"
	OpDuplicateNode OpKind = "duplicateNode"
	OpRemoveNode    OpKind = "removeNode"
	OpSetField      OpKind = "setField"
)

// Op mirrors one engine operation across the bridge. Only the fields
// relevant to the kind are set.
type Op struct {
	Kind OpKind `json:"kind"`

	Node   model.NodeID `json:"node,omitempty"`
	Parent model.NodeID `json:"parent,omitempty"`
	Index  int          `json:"index,omitempty"`

	Members []model.NodeID  `json:"members,omitempty"`
	Mode    model.GroupMode `json:"mode,omitempty"`

	Name   string `json:"name,omitempty"`
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`

	// Field setters: field name plus whichever value applies.
	Field string  `json:"field,omitempty"`
	Value float64 `json:"value,omitempty"`
	Flag  bool    `json:"flag,omitempty"`
	Int   int     `json:"int,omitempty"`
	Text  string  `json:"text,omitempty"`
}

// SlotResult reports the engine's outcome for one plugin during import.
type SlotResult struct {
	Node   model.NodeID `json:"node"`
	Loaded bool         `json:"loaded"`
	Reason string       `json:"reason,omitempty"`
}

// ImportResult is the bridge's answer to an import. Failures are values,
// never errors crossing the boundary.
type ImportResult struct {
	Success bool         `json:"success"`
	Slots   []SlotResult `json:"perSlotResults"`
}

// Bridge is the consumed interface of the external audio engine.
type Bridge interface {
	// ExportChain returns the authoritative serialized tree, including
	// plugin parameter state.
	ExportChain(ctx context.Context) (model.Snapshot, error)

	// ImportChain replaces the engine's graph with the snapshot. Plugins
	// the engine cannot load are reported per slot.
	ImportChain(ctx context.Context, snap model.Snapshot) ImportResult

	// Notify mirrors one committed edit, fire-and-forget. It must not
	// block the caller.
	Notify(op Op)

	// OnChainChanged subscribes to out-of-band authoritative changes.
	// The delivered snapshot replaces the local tree wholesale.
	OnChainChanged(fn func(model.Snapshot))
}
