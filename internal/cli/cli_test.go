package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"chainrack/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: chainrack %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
	}
	return env
}

func data(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env["data"])
	}
	return d
}

func TestCLIEditLifecycle(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, "--dir", dir, "init")

	a := mustRun(t, "--dir", dir, "add", "EQ", "--format", "VST3", "--path", "/plugins/eq.vst3")
	if id, _ := data(t, a)["id"].(float64); id != 1 {
		t.Fatalf("expected first node id 1; got: %#v", a["data"])
	}
	mustRun(t, "--dir", dir, "add", "Comp", "--format", "VST3", "--path", "/plugins/comp.vst3")

	g := mustRun(t, "--dir", dir, "group", "1", "2", "--mode", "parallel")
	gid, _ := data(t, g)["id"].(float64)
	if gid != 3 {
		t.Fatalf("expected group id 3; got: %#v", g["data"])
	}

	show := mustRun(t, "--dir", dir, "show")
	chain, _ := data(t, show)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("expected one top-level node after grouping; got: %#v", chain)
	}
	if plugins, _ := data(t, show)["plugins"].(float64); plugins != 2 {
		t.Fatalf("expected 2 plugins; got: %v", data(t, show)["plugins"])
	}

	// Removing one child dissolves the group.
	mustRun(t, "--dir", dir, "remove", "2")
	show = mustRun(t, "--dir", dir, "show")
	chain, _ = data(t, show)["chain"].(map[string]any)
	nodes, _ = chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("expected one top-level node; got: %#v", chain)
	}
	if n, _ := nodes[0].(map[string]any); n["id"].(float64) != 1 {
		t.Fatalf("expected surviving plugin promoted to root; got: %#v", nodes[0])
	}
}

func TestCLIUndoAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, "--dir", dir, "add", "EQ", "--format", "VST3", "--path", "/eq")
	mustRun(t, "--dir", dir, "add", "Comp", "--format", "VST3", "--path", "/comp")

	undo := mustRun(t, "--dir", dir, "undo")
	if ok, _ := data(t, undo)["undone"].(bool); !ok {
		t.Fatalf("undo should succeed: %#v", undo["data"])
	}
	chain, _ := data(t, undo)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("undo must drop the second plugin; got: %#v", chain)
	}

	redo := mustRun(t, "--dir", dir, "redo")
	chain, _ = data(t, redo)["chain"].(map[string]any)
	nodes, _ = chain["nodes"].([]any)
	if len(nodes) != 2 {
		t.Fatalf("redo must restore the second plugin; got: %#v", chain)
	}
}

func TestCLIRejectedEditExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "add", "EQ", "--format", "VST3", "--path", "/eq")

	_, _, err := runCLI(t, []string{"--dir", dir, "move", "1", "--parent", "1"})
	if err == nil {
		t.Fatalf("moving a node into itself must fail")
	}

	// The stored chain is untouched.
	show := mustRun(t, "--dir", dir, "show")
	chain, _ := data(t, show)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("rejected edit must not change the store; got: %#v", chain)
	}
}

func TestCLISetFields(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "add", "EQ", "--format", "VST3", "--path", "/eq")

	set := mustRun(t, "--dir", dir, "set", "1", "dry-wet", "0.4")
	node, _ := data(t, set)["node"].(map[string]any)
	plugin, _ := node["plugin"].(map[string]any)
	if got, _ := plugin["dryWet"].(float64); got != 0.4 {
		t.Fatalf("dry-wet not applied: %#v", node)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "set", "1", "group-mode", "parallel"}); err == nil {
		t.Fatalf("group-mode on a plugin must fail")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "set", "1", "mid-side", "9"}); err == nil {
		t.Fatalf("out-of-range mid-side must fail")
	}
}

func TestCLISnapshotSlots(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "add", "EQ", "--format", "VST3", "--path", "/eq")

	save := mustRun(t, "--dir", dir, "snapshot", "save", "A")
	if slot, _ := data(t, save)["slot"].(string); slot != "A" {
		t.Fatalf("expected slot A; got: %#v", save["data"])
	}

	mustRun(t, "--dir", dir, "remove", "1")

	recall := mustRun(t, "--dir", dir, "snapshot", "recall", "a")
	if ok, _ := data(t, recall)["success"].(bool); !ok {
		t.Fatalf("recall should succeed: %#v", recall["data"])
	}
	chain, _ := data(t, recall)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("recall must restore the plugin; got: %#v", chain)
	}

	list := mustRun(t, "--dir", dir, "snapshot", "list")
	slots, _ := data(t, list)["slots"].([]any)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots; got: %#v", list["data"])
	}
	first, _ := slots[0].(map[string]any)
	if saved, _ := first["saved"].(bool); !saved {
		t.Fatalf("slot A should be saved: %#v", first)
	}
}

func TestCLIPresetLifecycle(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "add", "Verb", "--format", "VST3", "--path", "/verb")
	mustRun(t, "--dir", dir, "preset", "save", "wet", "drums")

	mustRun(t, "--dir", dir, "remove", "1")

	load := mustRun(t, "--dir", dir, "preset", "load", "wet", "drums")
	chain, _ := data(t, load)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("preset load must restore the chain; got: %#v", chain)
	}

	list := mustRun(t, "--dir", dir, "preset", "list")
	presets, _ := data(t, list)["presets"].([]any)
	if len(presets) != 1 {
		t.Fatalf("expected one preset; got: %#v", list["data"])
	}

	mustRun(t, "--dir", dir, "preset", "delete", "wet", "drums")
	if _, _, err := runCLI(t, []string{"--dir", dir, "preset", "load", "wet", "drums"}); err == nil {
		t.Fatalf("loading a deleted preset must fail")
	}
}

func TestCLIPersistFailureFailsCommand(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "add", "EQ", "--path", "/plugins/eq.vst3")

	// Occupy the atomic-save temp path with a non-empty directory so the
	// chain write cannot land.
	tmp := filepath.Join(dir, store.ChainFileName+".tmp")
	if err := os.MkdirAll(filepath.Join(tmp, "block"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "add", "Comp", "--path", "/plugins/comp.vst3"}); err == nil {
		t.Fatalf("a failed chain write must fail the command")
	}

	if err := os.RemoveAll(tmp); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	s := mustRun(t, "--dir", dir, "show")
	chain, _ := data(t, s)["chain"].(map[string]any)
	nodes, _ := chain["nodes"].([]any)
	if len(nodes) != 1 {
		t.Fatalf("failed write must not persist the edit; got %d nodes", len(nodes))
	}
}
