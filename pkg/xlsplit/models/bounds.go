// Package models defines the data structures shared by the conversion engine,
// the workbook adapters and the output writers.
package models

import "fmt"

// SheetBounds is the rectangular extent of a worksheet.
// All fields are 0-based and inclusive.
type SheetBounds struct {
	// FirstRow is the row holding the header.
	FirstRow int `json:"first_row"`
	// LastRow is the last row that may hold data.
	LastRow int `json:"last_row"`
	// FirstCol is the column the header starts at.
	FirstCol int `json:"first_col"`
	// LastCol is the last populated column.
	LastCol int `json:"last_col"`
}

// Degenerate reports whether the bounds describe no cell at all.
func (b SheetBounds) Degenerate() bool {
	return b.FirstRow < 0 || b.FirstCol < 0 || b.LastRow < b.FirstRow || b.LastCol < b.FirstCol
}

// DataRows returns the number of candidate data rows below the header.
func (b SheetBounds) DataRows() int {
	if b.Degenerate() {
		return 0
	}
	return b.LastRow - b.FirstRow
}

// Columns returns the number of columns covered by the bounds.
func (b SheetBounds) Columns() int {
	if b.Degenerate() {
		return 0
	}
	return b.LastCol - b.FirstCol + 1
}

func (b SheetBounds) String() string {
	return fmt.Sprintf("rows %d-%d, cols %d-%d", b.FirstRow, b.LastRow, b.FirstCol, b.LastCol)
}
