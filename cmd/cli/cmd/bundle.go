// Package cmd - Row bundle loading
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"forecast-accuracy/core/types"
)

// bundle is the on-disk input shape: one JSON object with an array of
// rows per source. Row values may be strings or numbers; both are
// normalized to the canonical string form the core expects.
type bundle map[string][]map[string]interface{}

// loadBundle reads a row bundle file
func loadBundle(path string) (catalog []types.RawRow, sources map[types.SourceKind][]types.RawRow, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, nil, fmt.Errorf("parsing bundle %s: %w", path, err)
	}

	sources = make(map[types.SourceKind][]types.RawRow)
	for name, rawRows := range b {
		rows := make([]types.RawRow, 0, len(rawRows))
		for _, raw := range rawRows {
			row := make(types.RawRow, len(raw))
			for field, value := range raw {
				row[field] = stringify(value)
			}
			rows = append(rows, row)
		}
		if types.SourceKind(name) == types.SourceCatalog {
			catalog = rows
			continue
		}
		sources[types.SourceKind(name)] = rows
	}
	return catalog, sources, nil
}

func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return json.Number(fmt.Sprintf("%v", value)).String()
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", value)
	}
}

// resolveMonth parses --month, defaulting to the previous calendar month
// (the last fully closed month).
func resolveMonth(arg string) (time.Time, error) {
	if arg == "" {
		return types.MonthStart(time.Now().UTC()).AddDate(0, -1, 0), nil
	}
	t, err := time.Parse("2006-01", arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("--month must be in YYYY-MM format")
	}
	return types.MonthStart(t), nil
}

// writeOutput writes to the path, or stdout when the path is empty
func writeOutput(path string, render func(f *os.File) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return render(f)
}
