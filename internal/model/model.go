package model

import "time"

// NodeID identifies a node for the node's whole lifetime. IDs are stable
// across grouping and dissolving; they are only retired when the node is
// removed from the chain.
type NodeID int

// RootID is the implicit root of the chain. It is addressable as a parent
// in operations but is never a Node itself: it cannot be moved, dissolved
// or removed.
const RootID NodeID = 0

type GroupMode string

const (
	GroupSerial   GroupMode = "serial"
	GroupParallel GroupMode = "parallel"
)

// MidSideMode selects how a plugin sees the stereo field.
type MidSideMode int

const (
	MidSideOff  MidSideMode = 0
	MidSideMid  MidSideMode = 1 // process mid only
	MidSideSide MidSideMode = 2 // process side only
	MidSideFull MidSideMode = 3 // mid on L input, side on R input
)

// Sidechain source selectors.
const (
	SidechainNone     = 0
	SidechainExternal = 1 // host sidechain bus
)

// PluginData is the leaf payload of a Node.
type PluginData struct {
	Format       string      `json:"format"` // e.g. "VST3", "AU"
	Path         string      `json:"path"`   // file or identifier
	Bypassed     bool        `json:"bypassed"`
	InputGainDB  float64     `json:"inputGainDb"`
	OutputGainDB float64     `json:"outputGainDb"`
	DryWet       float64     `json:"dryWet"` // 0=dry, 1=wet
	MidSide      MidSideMode `json:"midSideMode"`
	Sidechain    int         `json:"sidechainSource"`
	LatencyHint  int         `json:"latencyHint,omitempty"` // samples
	// PresetData carries engine-authoritative parameter state (opaque,
	// base64). Populated by the bridge on export; empty for local edits.
	PresetData string `json:"presetData,omitempty"`
}

// GroupData is the container payload of a Node.
type GroupData struct {
	Mode       GroupMode `json:"mode"`
	DryWet     float64   `json:"dryWet"` // serial groups only
	DuckAmount float64   `json:"duckAmount"`
	// DuckReleaseMS is the ducking envelope release, 50-1000.
	DuckReleaseMS float64 `json:"duckReleaseMs"`
	Children      []*Node `json:"children"`
}

// Node is a tagged union: exactly one of Plugin or Group is non-nil.
type Node struct {
	ID   NodeID `json:"id"`
	Name string `json:"name,omitempty"`

	// BranchGainDB is meaningful only under a parallel parent.
	BranchGainDB float64 `json:"branchGainDb"`
	Solo         bool    `json:"solo"`
	Mute         bool    `json:"mute"`
	Collapsed    bool    `json:"collapsed"` // view-only

	Plugin *PluginData `json:"plugin,omitempty"`
	Group  *GroupData  `json:"group,omitempty"`
}

func (n *Node) IsPlugin() bool { return n != nil && n.Plugin != nil }
func (n *Node) IsGroup() bool  { return n != nil && n.Group != nil }

// Chain is an ordered forest of top-level nodes under the implicit root.
type Chain struct {
	Nodes []*Node `json:"nodes"`
}

// Snapshot is the persisted chain layout: a plain recursive record of the
// tree, the wire format shared with the bridge and with saved slots.
type Snapshot struct {
	Nodes []*Node `json:"nodes"`
}

// SavedSlot is one of the named snapshot slots (A-D).
type SavedSlot struct {
	Snapshot Snapshot  `json:"snapshot"`
	SavedAt  time.Time `json:"savedAt"`
}

// NewPlugin returns a plugin node with per-instance defaults (dry/wet
// fully wet, unity gains).
func NewPlugin(id NodeID, name, format, path string) *Node {
	return &Node{
		ID:   id,
		Name: name,
		Plugin: &PluginData{
			Format: format,
			Path:   path,
			DryWet: 1.0,
		},
	}
}

// NewGroup returns an empty group node with group defaults.
func NewGroup(id NodeID, mode GroupMode) *Node {
	return &Node{
		ID: id,
		Group: &GroupData{
			Mode:          mode,
			DryWet:        1.0,
			DuckAmount:    0,
			DuckReleaseMS: 200,
		},
	}
}
