package cli

import (
	"fmt"
	"strconv"

	"chainrack/internal/format"
	"chainrack/internal/model"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "show [node-id]",
		Short: "Show the chain (or one node) as JSON or a text tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			c := s.ed.Chain()
			if len(args) == 1 {
				id, err := parseNodeID(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				n := c.FindByID(id)
				if n == nil {
					return writeErr(cmd, errNotFound("node", args[0]))
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"node": n}})
			}

			if tree {
				_, err := fmt.Fprint(cmd.OutOrStdout(), format.RenderTree(c))
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"chain":   c,
					"plugins": c.CountPlugins(),
					"canUndo": s.ed.CanUndo(),
					"canRedo": s.ed.CanRedo(),
				},
			})
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Print a plain-text tree instead of JSON")
	return cmd
}

func parseNodeID(s string) (model.NodeID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid node id: %q", s)
	}
	return model.NodeID(n), nil
}
