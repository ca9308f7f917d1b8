package xlsplit

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// CellReader looks cells up by 0-based row and column.
type CellReader interface {
	Cell(row, col int) (value string, ok bool, err error)
}

// ResolveHeader reads the header row across the bounds. Blank cells are
// dropped, so the header may be shorter than the column range.
func ResolveHeader(cells CellReader, b models.SheetBounds) (models.Header, error) {
	header := make(models.Header, 0, b.Columns())
	for col := b.FirstCol; col <= b.LastCol; col++ {
		v, _, err := cells.Cell(b.FirstRow, col)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		if v = strings.TrimSpace(v); v != "" {
			header = append(header, v)
		}
	}
	if len(header) == 0 {
		return nil, ErrNoHeaderFields
	}
	return header, nil
}
