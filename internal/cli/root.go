package cli

import (
	"context"
	"os"
	"strings"

	"chainrack/internal/bridge"
	"chainrack/internal/editor"
	"chainrack/internal/format"
	"chainrack/internal/history"
	"chainrack/internal/model"
	"chainrack/internal/store"
	"chainrack/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string

	// EngineFormats is the plugin-format allow-list handed to the
	// loopback engine. Empty means accept everything.
	EngineFormats string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "chainrack",
		Short:        "Plugin chain editor CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  chainrack

  # Scriptable commands
  chainrack show --tree

  # Build a parallel compression bus
  chainrack add "Comp" --format VST3 --path /plugins/comp.vst3
  chainrack add "Limiter" --format VST3 --path /plugins/limit.vst3
  chainrack group 1 2 --mode parallel
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CHAINRACK_DIR", ""), "Path to store dir (default: nearest .chainrack above the working directory)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CHAINRACK_FORMAT", "json"), "Output format (json)")
	cmd.PersistentFlags().StringVar(&app.EngineFormats, "engine-formats", envOr("CHAINRACK_ENGINE_FORMATS", ""), "Comma-separated plugin formats the engine hosts (empty: all)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newGroupCmd(app))
	cmd.AddCommand(newDissolveCmd(app))
	cmd.AddCommand(newDuplicateCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newPresetCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

func runTUI(app *App) error {
	s, err := openSession(app)
	if err != nil {
		return err
	}
	err = tui.Run(s.ed, s.st)
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

// session wires store + loopback engine + editor for the lifetime of
// one command (or one TUI run). close persists everything back.
type session struct {
	app *App
	st  store.Store
	lb  *bridge.Loopback
	ed  *editor.Editor
}

func openSession(app *App) (*session, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = dir
	}
	st := store.Store{Dir: dir}

	c, err := st.Load()
	if err != nil {
		return nil, err
	}

	lb := bridge.NewLoopback(engineFormats(app)...)
	// Seed the engine mirror before the editor subscribes, so loading a
	// persisted chain does not register as an authoritative push.
	lb.ImportChain(context.Background(), model.Snapshot{Nodes: c.Clone().Nodes})

	ed := editor.New(c, lb)

	past, future, err := st.LoadHistory()
	if err != nil {
		return nil, err
	}
	ed.History().RestoreStacks(past, future)

	slots, err := st.LoadSlots(context.Background())
	if err != nil {
		return nil, err
	}
	for i, sl := range slots {
		ed.History().RestoreSlot(i, sl)
	}

	return &session{app: app, st: st, lb: lb, ed: ed}, nil
}

func (s *session) close() error {
	s.lb.Drain()
	defer s.lb.Close()

	if err := s.st.Save(s.ed.Chain()); err != nil {
		return err
	}
	past, future := s.ed.History().Stacks()
	if err := s.st.SaveHistory(past, future); err != nil {
		return err
	}
	for i := 0; i < history.NumSlots; i++ {
		if sl := s.ed.History().Slot(i); sl != nil {
			if err := s.st.SaveSlot(context.Background(), i, sl); err != nil {
				return err
			}
		}
	}
	return nil
}

// finish persists the session on the way out of a command. A failed
// write must fail the command: the stored chain would otherwise diverge
// from what the success envelope reported.
func (s *session) finish(cmd *cobra.Command, err *error) {
	if cerr := s.close(); cerr != nil && *err == nil {
		*err = writeErr(cmd, cerr)
	}
}

func engineFormats(app *App) []string {
	raw := strings.TrimSpace(app.EngineFormats)
	if raw == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(err.Error())
	return err
}
