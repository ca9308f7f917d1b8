package source

import (
	"strings"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
	"github.com/xuri/excelize/v2"
)

// parseDimension parses a sheet dimension reference such as "A1:D10",
// "$B$2:$C$9" or "A1" into 0-based bounds.
func parseDimension(ref string) (models.SheetBounds, bool) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return models.SheetBounds{}, false
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return models.SheetBounds{}, false
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.SheetBounds{}, false
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return models.SheetBounds{}, false
		}
	}

	// Ranges may be written bottom-right first.
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}

	return models.SheetBounds{
		FirstRow: startRow - 1,
		LastRow:  endRow - 1,
		FirstCol: startCol - 1,
		LastCol:  endCol - 1,
	}, true
}

// singleCell reports whether b covers exactly one cell. Writers emit "A1"
// for sheets they never computed a dimension for, so such a reference is
// not trusted.
func singleCell(b models.SheetBounds) bool {
	return b.FirstRow == b.LastRow && b.FirstCol == b.LastCol
}
