package cli

import (
	"fmt"
	"strconv"
	"strings"

	"chainrack/internal/model"

	"github.com/spf13/cobra"
)

func newSetCmd(app *App) *cobra.Command {
	var releaseMS float64

	cmd := &cobra.Command{
		Use:   "set <node-id> <field> [value]",
		Short: "Set a node field (gain, dry/wet, solo, mute, bypass, ...)",
		Long: strings.TrimSpace(`
Set one field on a node. Fields:

  Any node:     branch-gain <db> | solo <bool> | mute <bool> | collapsed
  Plugins:      bypass | input-gain <db> | output-gain <db> | dry-wet <0..1>
                mid-side <0..3> | sidechain <0|1>
  Groups:       group-mode <serial|parallel> | group-dry-wet <0..1>
                duck <0..1> [--release-ms <50..1000>]
`),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseNodeID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			field := strings.ToLower(args[1])
			val := ""
			if len(args) == 3 {
				val = args[2]
			}

			s, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.finish(cmd, &err)

			ok, err := applySet(s, id, field, val, releaseMS)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errRejected("set "+field, "node missing, wrong kind, or value out of range"))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"node": s.ed.Chain().FindByID(id)},
			})
		},
	}

	cmd.Flags().Float64Var(&releaseMS, "release-ms", 200, "Duck release time in ms (with `set <id> duck`)")
	return cmd
}

func applySet(s *session, id model.NodeID, field, val string, releaseMS float64) (bool, error) {
	switch field {
	case "group-mode":
		return s.ed.SetGroupMode(id, model.GroupMode(strings.ToLower(val))), nil
	case "group-dry-wet":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetGroupDryWet(id, f), nil
	case "duck":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetGroupDuck(id, f, releaseMS), nil
	case "branch-gain":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetBranchGain(id, f), nil
	case "solo":
		b, err := parseBool(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetSolo(id, b), nil
	case "mute":
		b, err := parseBool(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetMute(id, b), nil
	case "bypass":
		return s.ed.ToggleBypass(id), nil
	case "collapsed":
		return s.ed.ToggleCollapsed(id), nil
	case "input-gain":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetInputGain(id, f), nil
	case "output-gain":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetOutputGain(id, f), nil
	case "dry-wet":
		f, err := parseFloat(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetDryWet(id, f), nil
	case "mid-side":
		n, err := parseInt(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetMidSide(id, model.MidSideMode(n)), nil
	case "sidechain":
		n, err := parseInt(field, val)
		if err != nil {
			return false, err
		}
		return s.ed.SetSidechain(id, n), nil
	default:
		return false, fmt.Errorf("unknown field: %q", field)
	}
}

func parseFloat(field, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", field, val)
	}
	return f, nil
}

func parseInt(field, val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", field, val)
	}
	return n, nil
}

func parseBool(field, val string) (bool, error) {
	if val == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: invalid bool %q", field, val)
	}
	return b, nil
}
