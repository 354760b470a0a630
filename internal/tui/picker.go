package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
)

// catalogEntry is one installable plugin shown in the add picker.
type catalogEntry struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

func (e catalogEntry) Title() string       { return e.Name }
func (e catalogEntry) Description() string { return e.Format + "  " + e.Path }
func (e catalogEntry) FilterValue() string { return e.Name }

// defaultCatalog stands in for a real plugin scan.
var defaultCatalog = []catalogEntry{
	{Name: "Channel EQ", Format: "VST3", Path: "/plugins/channel-eq.vst3"},
	{Name: "Bus Compressor", Format: "VST3", Path: "/plugins/bus-comp.vst3"},
	{Name: "Tape Saturator", Format: "VST3", Path: "/plugins/tape.vst3"},
	{Name: "Plate Reverb", Format: "AU", Path: "/plugins/plate.component"},
	{Name: "Stereo Delay", Format: "AU", Path: "/plugins/delay.component"},
	{Name: "Limiter", Format: "VST3", Path: "/plugins/limiter.vst3"},
	{Name: "De-Esser", Format: "VST3", Path: "/plugins/deesser.vst3"},
	{Name: "Utility Gain", Format: "VST3", Path: "/plugins/gain.vst3"},
}

// loadCatalog reads plugins.json from the store dir when present, so
// users can point the picker at their actual plugin list.
func loadCatalog(dir string) []catalogEntry {
	b, err := os.ReadFile(filepath.Join(dir, "plugins.json"))
	if err != nil {
		return defaultCatalog
	}
	var entries []catalogEntry
	if err := json.Unmarshal(b, &entries); err != nil || len(entries) == 0 {
		return defaultCatalog
	}
	return entries
}

func newPicker(dir string, width, height int) list.Model {
	entries := loadCatalog(dir)
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e)
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Add plugin"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}
