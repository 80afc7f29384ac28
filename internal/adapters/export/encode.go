// Package export renders boards as text lines, JSON, YAML, spreadsheets and charts.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/types"
)

// Format names a textual output format.
type Format string

// Known formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatLines Format = "lines"
)

// Formats lists the accepted formats in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatLines}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

// Lines writes each row in the pasteable "<rank>. <name> (<score>m with <partner>)" form.
func Lines(w io.Writer, rows []types.Entry) error {
	for _, r := range rows {
		line := model.FormatLine(r.Rank, model.Entry{Name: r.Name, Score: r.Score, Partner: r.Partner})
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write lines: %w", err)
		}
	}
	return nil
}
