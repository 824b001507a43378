// Package output renders model lists for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatAuto  Format = ""
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value. An empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// Resolve picks table for terminals and JSON otherwise when f is auto.
func Resolve(f Format, w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if IsTerminal(w) {
		return FormatTable
	}
	return FormatJSON
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Write renders list to w in format f.
func Write(w io.Writer, list []models.ModelInfo, f Format) error {
	switch Resolve(f, w) {
	case FormatTable:
		_, err := fmt.Fprintln(w, Table(list))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(list)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := MarshalJSON(list)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// MarshalJSON renders list as indented JSON with a trailing newline.
func MarshalJSON(list []models.ModelInfo) ([]byte, error) {
	data, err := json.MarshalIndent(nonNil(list), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func nonNil(list []models.ModelInfo) []models.ModelInfo {
	if list == nil {
		return []models.ModelInfo{}
	}
	return list
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Table renders list as a bordered table.
func Table(list []models.ModelInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("IDENTIFIER", "NAME", "PROVIDER", "MODE", "PRO", "REASONING").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, m := range list {
		t.Row(m.Identifier, m.Name, m.Provider, m.Mode, yesNo(m.IsPro), yesNo(m.SupportsReasoning))
	}
	return t.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Detail renders a single model as aligned key/value lines.
func Detail(m models.ModelInfo) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Width(20)
	rows := []struct{ k, v string }{
		{"identifier", m.Identifier},
		{"name", m.Name},
		{"description", m.Description},
		{"mode", m.Mode},
		{"provider", m.Provider},
		{"is_pro", strconv.FormatBool(m.IsPro)},
		{"supports_reasoning", strconv.FormatBool(m.SupportsReasoning)},
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r.k), r.v))
		sb.WriteByte('\n')
	}
	return sb.String()
}
