package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"dpdmap/internal/geom"
	"dpdmap/internal/mapview"
)

// refreshAttrs rebuilds the table columns/rows from the loaded features
func (m *Model) refreshAttrs() {
	cols, rows := buildAttributes(m.view.Features())
	// If there are no rows, disable attributes view to avoid rendering panics
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols))
	maxColW := 24
	for _, c := range cols {
		w := min(maxColW, max(len(c)+2, 6))
		tcols = append(tcols, table.Column{Title: c, Width: w})
	}
	trows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		trows = append(trows, table.Row(r))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns one row per feature: its number, the population
// and density with their fill color, then every other property key in
// first-seen order.
func buildAttributes(features []geom.Feature) ([]string, [][]string) {
	order := []string{}
	seen := map[string]bool{geom.PropTotalPop: true, geom.PropDensity: true}
	for _, f := range features {
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	cols := append([]string{"#", geom.PropTotalPop, geom.PropDensity, "color"}, order...)

	rows := make([][]string, 0, len(features))
	for i, f := range features {
		vals := make([]string, 0, len(cols))
		vals = append(vals, fmt.Sprintf("%d", i+1))
		if f.HasPop {
			vals = append(vals, fmt.Sprintf("%g", f.TotalPop))
		} else {
			vals = append(vals, "")
		}
		if f.HasDense {
			vals = append(vals, fmt.Sprintf("%.4f", f.Density), mapview.ColorFor(f.Density))
		} else {
			vals = append(vals, "", "")
		}
		for _, k := range order {
			vals = append(vals, formatValue(f.Properties[k]))
		}
		rows = append(rows, vals)
	}
	return cols, rows
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
