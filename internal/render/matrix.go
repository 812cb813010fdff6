// Package render projects evaluation results into tables and text panels.
package render

import "strconv"

// MatrixTable is a labeled tabular view of a confusion matrix.
type MatrixTable struct {
	// Headers holds one column index label per matrix column.
	Headers []string
	Rows    []MatrixRow
}

// MatrixRow is one matrix row with its row-index label.
type MatrixRow struct {
	Label string
	Cells []string
}

// ConfusionTable projects matrix into a labeled table. Any N is supported,
// including 0. Ragged input is rendered as received: the column count is the
// longest row and each row keeps exactly its own cells.
func ConfusionTable(matrix [][]int) MatrixTable {
	cols := 0
	for _, row := range matrix {
		if len(row) > cols {
			cols = len(row)
		}
	}
	table := MatrixTable{
		Headers: make([]string, cols),
		Rows:    make([]MatrixRow, len(matrix)),
	}
	for c := 0; c < cols; c++ {
		table.Headers[c] = strconv.Itoa(c)
	}
	for r, row := range matrix {
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = strconv.Itoa(v)
		}
		table.Rows[r] = MatrixRow{Label: strconv.Itoa(r), Cells: cells}
	}
	return table
}

// Empty reports whether the table has neither columns nor rows.
func (t MatrixTable) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// Grid returns the header line and the rows as plain cells, with a blank
// corner cell in front of the headers and the row label in front of each row.
func (t MatrixTable) Grid() ([]string, [][]string) {
	header := append([]string{""}, t.Headers...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string{row.Label}, row.Cells...)
	}
	return header, rows
}

// Lines renders the table as right-aligned plain text.
func (t MatrixTable) Lines() []string {
	if t.Empty() {
		return nil
	}
	header, rows := t.Grid()
	rightAlign := make(map[int]bool, len(header))
	for i := range header {
		rightAlign[i] = true
	}
	return formatTable(header, rows, rightAlign)
}
