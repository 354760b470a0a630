package cli

import (
	"strings"

	"chainrack/internal/model"

	"github.com/spf13/cobra"
)

// Structural edit commands. Each one opens a session, applies a single
// editor operation, and persists on close; rejected edits exit non-zero
// without touching the stored chain.

func newAddCmd(app *App) *cobra.Command {
	var formatName, path string
	var parent, index int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a plugin to the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			if index < 0 {
				if ch, ok := s.ed.Chain().Children(model.NodeID(parent)); ok {
					index = len(ch)
				}
			}
			id, ok := s.ed.AddPlugin(model.NodeID(parent), index, args[0], formatName, path)
			if !ok {
				return writeErr(cmd, errRejected("add", "parent is not a group or does not exist"))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": id, "node": s.ed.Chain().FindByID(id)},
			})
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "VST3", "Plugin format (VST3|AU|...)")
	cmd.Flags().StringVar(&path, "path", "", "Plugin binary path")
	cmd.Flags().IntVar(&parent, "parent", int(model.RootID), "Parent group id (0: root)")
	cmd.Flags().IntVar(&index, "index", -1, "Insertion index (-1: append)")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var parent, index int

	cmd := &cobra.Command{
		Use:   "move <node-id>",
		Short: "Move a node to a new parent/position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			if index < 0 {
				if ch, ok := s.ed.Chain().Children(model.NodeID(parent)); ok {
					index = len(ch)
				}
			}
			if !s.ed.MoveNode(id, model.NodeID(parent), index) {
				return writeErr(cmd, errRejected("move", "target missing, not a group, or inside the moved subtree"))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"chain": s.ed.Chain()},
			})
		},
	}

	cmd.Flags().IntVar(&parent, "parent", int(model.RootID), "Destination group id (0: root)")
	cmd.Flags().IntVar(&index, "index", -1, "Destination index (-1: append)")
	return cmd
}

func newGroupCmd(app *App) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "group <node-id> <node-id> [node-id...]",
		Short: "Wrap two or more nodes in a new group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var ids []model.NodeID
			for _, a := range args {
				id, err := parseNodeID(a)
				if err != nil {
					return writeErr(cmd, err)
				}
				ids = append(ids, id)
			}
			gm := model.GroupMode(strings.ToLower(mode))
			if gm != model.GroupSerial && gm != model.GroupParallel {
				return writeErr(cmd, errRejected("group", "mode must be serial or parallel"))
			}

			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			id, ok := s.ed.CreateGroup(ids, gm)
			if !ok {
				return writeErr(cmd, errRejected("group", "selection must be 2+ distinct existing nodes, none inside another"))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": id, "node": s.ed.Chain().FindByID(id)},
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "serial", "Group mode (serial|parallel)")
	return cmd
}

func newDissolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dissolve <group-id>",
		Short: "Replace a group with its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			if !s.ed.DissolveGroup(id) {
				return writeErr(cmd, errNotFound("group", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"chain": s.ed.Chain()},
			})
		},
	}
}

func newDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <node-id>",
		Short: "Duplicate a node (subtree included) next to the original",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			newID, ok := s.ed.DuplicateNode(id)
			if !ok {
				return writeErr(cmd, errNotFound("node", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": newID, "node": s.ed.Chain().FindByID(newID)},
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Remove a node (groups dissolve when left with one child)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			if !s.ed.RemoveNode(id) {
				return writeErr(cmd, errNotFound("node", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"chain": s.ed.Chain()},
			})
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node-id> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			if !s.ed.RenameNode(id, args[1]) {
				return writeErr(cmd, errNotFound("node", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"node": s.ed.Chain().FindByID(id)},
			})
		},
	}
}
