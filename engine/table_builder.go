package engine

// ============================================================================
// TABLE BUILDER — Produces TableData from prepared rows
// ============================================================================

// BuildTable produces a table from column definitions and prepared rows.
// Rows shorter than the column list are padded with empty cells.
func BuildTable(title string, columns []Column, rows [][]string) *TableData {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		out = append(out, row)
	}
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
	}
}

// TextColumn and NumberColumn are shorthand column definitions.
func TextColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

func NumberColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "number", Align: "right"}
}
