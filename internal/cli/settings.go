package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

type settingsOpts struct {
	from string
	set  []string
	json bool
	yaml bool
}

// settingsCommand creates the "settings" command.
func (c *CLI) settingsCommand() *cobra.Command {
	var opts settingsOpts

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Apply settings updates and print the result",
		Long: `Start from the default settings (or a saved settings file), apply each
--set update in order through the settings reducer, and print the result.

Selecting pen, pencil or marker as the instrument also applies that
instrument's font, color and thickness. Field names are case-insensitive
and accept dashes or underscores.`,
		Example: `  scribbleforge settings --set paper=grid --set instrument=marker
  scribbleforge settings --from style.json --set ink-bleed=40 --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.json, opts.yaml)
			if err != nil {
				return err
			}

			start := style.Default()
			if opts.from != "" {
				if start, err = loadSettingsFile(opts.from); err != nil {
					return err
				}
			}

			s, err := applyUpdates(start, opts.set)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), s, format, style.Diff(start, s))
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "start from a settings file (.json or .yaml)")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "update a field (field=value); repeatable")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print settings as JSON")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print settings as YAML")

	cmd.AddCommand(c.presetsCommand())
	return cmd
}

// presetsCommand creates the "settings presets" subcommand.
func (c *CLI) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List instrument presets and allowed values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, presetsTable())
			fmt.Fprintln(w)
			printKeyValue(w, "fonts", joinValues(style.FontFamilies()))
			printKeyValue(w, "papers", joinValues(style.Papers()))
			printKeyValue(w, "fields", joinValues(style.Fields()))
			return nil
		},
	}
}

// applyUpdates applies "field=value" updates in order.
func applyUpdates(s style.Settings, updates []string) (style.Settings, error) {
	for _, u := range updates {
		f, v, err := parseUpdate(u)
		if err != nil {
			return s, err
		}
		if s, err = style.Apply(s, f, v); err != nil {
			return s, err
		}
	}
	return s, nil
}

// parseUpdate splits "field=value" and parses both halves.
func parseUpdate(u string) (style.Field, any, error) {
	name, raw, ok := strings.Cut(u, "=")
	if !ok {
		return "", nil, errs.New(errs.ErrCodeInvalidInput, "invalid update %q: want field=value", u)
	}
	f, err := style.ParseField(name)
	if err != nil {
		return "", nil, err
	}
	v, err := style.ParseValue(f, raw)
	if err != nil {
		return "", nil, err
	}
	return f, v, nil
}

// loadSettingsFile reads settings saved by "analyze --json" or
// "settings --yaml". Missing fields keep their defaults; out-of-range
// fields are an error.
func loadSettingsFile(path string) (style.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return style.Settings{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read settings")
	}

	var p style.Partial
	var dropped []style.Field
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return style.Settings{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
		}
		p, dropped = p.Sanitize()
	default:
		if p, dropped, err = style.ParsePartialJSON(data); err != nil {
			return style.Settings{}, err
		}
	}
	if len(dropped) > 0 {
		return style.Settings{}, errs.New(errs.ErrCodeInvalidValue, "%s: invalid fields %v", path, dropped)
	}
	return style.Merge(style.Default(), p), nil
}

func joinValues[T ~string](vs []T) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
