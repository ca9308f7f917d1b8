package xlsplit

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// ExtractRecord reads row across the header-aligned columns
// [FirstCol, FirstCol+len(header)-1]. Cells right of that window are ignored
// even when populated. empty is true when every value trims to "".
func ExtractRecord(cells CellReader, row int, header models.Header, b models.SheetBounds) (rec models.Record, empty bool, err error) {
	rec = make(models.Record, len(header))
	empty = true
	for i := range header {
		v, _, err := cells.Cell(row, b.FirstCol+i)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		v = strings.TrimSpace(v)
		rec[i] = v
		if v != "" {
			empty = false
		}
	}
	return rec, empty, nil
}
