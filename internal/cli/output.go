package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

// Output formats for settings.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resolveFormat picks the output format from the --json and --yaml flags.
func resolveFormat(asJSON, asYAML bool) (string, error) {
	switch {
	case asJSON && asYAML:
		return "", errs.New(errs.ErrCodeInvalidInput, "--json and --yaml are mutually exclusive")
	case asJSON:
		return formatJSON, nil
	case asYAML:
		return formatYAML, nil
	}
	return formatTable, nil
}

// writeSettings writes s in the given format. In table form the fields
// listed in changed are highlighted.
func writeSettings(w io.Writer, s style.Settings, format string, changed []style.Field) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, settingsTable(s, changed))
		return err
	}
}

// settingsTable renders s as a two-column table.
func settingsTable(s style.Settings, changed []style.Field) string {
	fields := style.Fields()
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{string(f), formatValue(style.Get(s, f))}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Field", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if row >= 0 && row < len(fields) && slices.Contains(changed, fields[row]) {
				return base.Inherit(styleChanged)
			}
			if col == 0 {
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

// presetsTable renders the instrument preset table.
func presetsTable() string {
	var rows [][]string
	for _, inst := range style.Instruments() {
		p, ok := style.PresetFor(inst)
		if !ok {
			rows = append(rows, []string{string(inst), "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{string(inst), string(p.FontFamily), p.Color, formatValue(p.Thickness)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Instrument", "Font", "Color", "Thickness").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
