package cli

import (
	"fmt"
	"strings"

	"chainrack/internal/history"

	"github.com/spf13/cobra"
)

var slotNames = [history.NumSlots]string{"A", "B", "C", "D"}

func parseSlot(s string) (int, error) {
	for i, name := range slotNames {
		if strings.EqualFold(s, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid slot %q (want A, B, C or D)", s)
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save/recall the four named snapshot slots (A-D)",
	}
	cmd.AddCommand(newSnapshotSaveCmd(app))
	cmd.AddCommand(newSnapshotRecallCmd(app))
	cmd.AddCommand(newSnapshotListCmd(app))
	return cmd
}

func newSnapshotSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save <A|B|C|D>",
		Short: "Save the current chain (with plugin state) into a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			slot, err := parseSlot(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			// Let queued edits land in the engine first so the export
			// carries up-to-date plugin state.
			s.lb.Drain()
			if err := s.ed.SaveSnapshot(cmd.Context(), slot); err != nil {
				return writeErr(cmd, err)
			}
			saved := s.ed.History().Slot(slot)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"slot":    slotNames[slot],
					"savedAt": saved.SavedAt,
					"plugins": len(saved.Snapshot.Nodes),
				},
			})
		},
	}
}

func newSnapshotRecallCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recall <A|B|C|D>",
		Short: "Recall a slot (undoable; reports per-plugin load results)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			slot, err := parseSlot(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			res, ok := s.ed.RecallSnapshot(cmd.Context(), slot)
			if !ok {
				return writeErr(cmd, errNotFound("snapshot slot", slotNames[slot]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"slot":           slotNames[slot],
					"success":        res.Success,
					"perSlotResults": res.Slots,
					"chain":          s.ed.Chain(),
				},
			})
		},
	}
}

func newSnapshotListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the slots and their saved-at times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			type slotInfo struct {
				Slot    string `json:"slot"`
				Saved   bool   `json:"saved"`
				SavedAt string `json:"savedAt,omitempty"`
				Nodes   int    `json:"nodes,omitempty"`
			}
			var out []slotInfo
			for i := 0; i < history.NumSlots; i++ {
				info := slotInfo{Slot: slotNames[i]}
				if sl := s.ed.History().Slot(i); sl != nil {
					info.Saved = true
					info.SavedAt = sl.SavedAt.Format("2006-01-02T15:04:05Z07:00")
					info.Nodes = len(sl.Snapshot.Nodes)
				}
				out = append(out, info)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"slots":      out,
					"activeSlot": activeSlotName(s.ed.History().ActiveSlot()),
				},
			})
		},
	}
}

func activeSlotName(i int) string {
	if i < 0 || i >= history.NumSlots {
		return ""
	}
	return slotNames[i]
}
