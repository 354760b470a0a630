package cli

import (
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the last edit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			undone := s.ed.Undo()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"undone":  undone,
					"chain":   s.ed.Chain(),
					"canUndo": s.ed.CanUndo(),
					"canRedo": s.ed.CanRedo(),
				},
			})
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone edit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			redone := s.ed.Redo()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"redone":  redone,
					"chain":   s.ed.Chain(),
					"canUndo": s.ed.CanUndo(),
					"canRedo": s.ed.CanRedo(),
				},
			})
		},
	}
}
