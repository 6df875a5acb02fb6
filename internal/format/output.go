package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Formats lists the accepted output formats.
var Formats = []string{"json", "yaml", "table"}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
// - table (lists of records, or a single record as key/value rows)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml":
		return WriteYAML(w, v)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// generic converts v through JSON so yaml and table output use the same
// field names as json.
func generic(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}

func WriteYAML(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}

// Tabler is implemented by payloads that choose their own columns.
type Tabler interface {
	TableHeader() []string
	TableRows() [][]string
}

func WriteTable(w io.Writer, v any) error {
	if tb, ok := v.(Tabler); ok {
		return render(w, tb.TableHeader(), tb.TableRows())
	}
	x, err := generic(v)
	if err != nil {
		return err
	}
	switch t := x.(type) {
	case []any:
		if len(t) == 0 {
			_, err := fmt.Fprintln(w, "(0 rows)")
			return err
		}
		cols := columns(t)
		rows := make([][]string, 0, len(t))
		for _, item := range t {
			m, _ := item.(map[string]any)
			row := make([]string, len(cols))
			for i, c := range cols {
				row[i] = cell(m[c])
			}
			rows = append(rows, row)
		}
		return render(w, cols, rows)
	case map[string]any:
		keys := sortedKeys(t)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, cell(t[k])})
		}
		return render(w, []string{"field", "value"}, rows)
	default:
		_, err := fmt.Fprintln(w, cell(t))
		return err
	}
}

func render(w io.Writer, header []string, rows [][]string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// columns returns the union of keys across records, "id" first, then sorted.
func columns(items []any) []string {
	seen := map[string]bool{}
	var cols []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range m {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if (cols[i] == "id") != (cols[j] == "id") {
			return cols[i] == "id"
		}
		return cols[i] < cols[j]
	})
	return cols
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if float64(int64(t)) == t {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(string(b))
	}
}
