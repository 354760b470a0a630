package cli

import (
	"path/filepath"

	"chainrack/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage (.chainrack directory)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.st.Ensure(); err != nil {
				s.lb.Close()
				return writeErr(cmd, err)
			}
			if err := s.close(); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        app.Dir,
					"chainPath":  filepath.Join(app.Dir, store.ChainFileName),
					"sqlitePath": filepath.Join(app.Dir, store.SQLiteFileName),
				},
			})
		},
	}
	return cmd
}
