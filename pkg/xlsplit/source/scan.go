package source

import "github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"

// boundsScanner tracks the bounding box of non-empty cells while rows are
// streamed through it.
type boundsScanner struct {
	minRow, maxRow int
	minCol, maxCol int
}

func newBoundsScanner() *boundsScanner {
	return &boundsScanner{minRow: -1, maxRow: -1, minCol: -1, maxCol: -1}
}

// observeRow records every non-empty cell of a row whose cells start at column 0.
func (s *boundsScanner) observeRow(rowIdx int, cells []string) {
	for colIdx, cell := range cells {
		s.observe(rowIdx, colIdx, cell)
	}
}

func (s *boundsScanner) observe(rowIdx, colIdx int, cell string) {
	if cell == "" {
		return
	}
	if s.minRow < 0 || rowIdx < s.minRow {
		s.minRow = rowIdx
	}
	if s.maxRow < 0 || rowIdx > s.maxRow {
		s.maxRow = rowIdx
	}
	if s.minCol < 0 || colIdx < s.minCol {
		s.minCol = colIdx
	}
	if s.maxCol < 0 || colIdx > s.maxCol {
		s.maxCol = colIdx
	}
}

// bounds returns the observed extent. Rows are counted from the top of the
// sheet so that the header is always the sheet's first row.
func (s *boundsScanner) bounds() (models.SheetBounds, bool) {
	if s.minRow < 0 {
		return models.SheetBounds{}, false
	}
	return models.SheetBounds{
		FirstRow: 0,
		LastRow:  s.maxRow,
		FirstCol: s.minCol,
		LastCol:  s.maxCol,
	}, true
}
