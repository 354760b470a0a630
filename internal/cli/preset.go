package cli

import (
	"strings"

	"chainrack/internal/model"

	"github.com/spf13/cobra"
)

func newPresetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save/load named full-chain presets",
	}
	cmd.AddCommand(newPresetSaveCmd(app))
	cmd.AddCommand(newPresetLoadCmd(app))
	cmd.AddCommand(newPresetListCmd(app))
	cmd.AddCommand(newPresetDeleteCmd(app))
	return cmd
}

func presetName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newPresetSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current chain (with plugin state) as a preset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := presetName(args)
			if name == "" {
				return writeErr(cmd, errRejected("preset save", "empty name"))
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			s.lb.Drain()
			snap, err := s.lb.ExportChain(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.st.SavePreset(cmd.Context(), name, snap); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"name": name, "nodes": len(snap.Nodes)},
			})
		},
	}
}

func newPresetLoadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Replace the chain with a preset (undoable)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := presetName(args)
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			p, err := s.st.LoadPreset(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if p == nil {
				return writeErr(cmd, errNotFound("preset", name))
			}

			// Commit the preset tree locally, then hand it to the engine.
			// A partial load comes back reconciled via onChainChanged.
			s.ed.ApplyAuthoritative(model.Snapshot{Nodes: p.Snapshot.Nodes})
			res := s.lb.ImportChain(cmd.Context(), p.Snapshot)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"name":           p.Name,
					"success":        res.Success,
					"perSlotResults": res.Slots,
					"chain":          s.ed.Chain(),
				},
			})
		},
	}
}

func newPresetListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			presets, err := s.st.ListPresets(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			type info struct {
				Name      string `json:"name"`
				CreatedAt string `json:"createdAt"`
				Nodes     int    `json:"nodes"`
			}
			out := []info{}
			for _, p := range presets {
				out = append(out, info{
					Name:      p.Name,
					CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
					Nodes:     len(p.Snapshot.Nodes),
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"presets": out},
			})
		},
	}
}

func newPresetDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := presetName(args)
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			ok, err := s.st.DeletePreset(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errNotFound("preset", name))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": name},
			})
		},
	}
}
