package source

import (
	"fmt"
	"io"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
	"github.com/xuri/excelize/v2"
)

type xlsxWorkbook struct {
	f *excelize.File
}

func openXLSXFile(path string) (*xlsxWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxWorkbook{f: f}, nil
}

func openXLSXReader(r io.Reader) (*xlsxWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &xlsxWorkbook{f: f}, nil
}

// NewXLSX wraps an already opened excelize file. Closing the returned
// workbook closes f.
func NewXLSX(f *excelize.File) Workbook {
	return &xlsxWorkbook{f: f}
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *xlsxWorkbook) Sheet(name string) (Sheet, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSheet, name)
	}
	return &xlsxSheet{f: w.f, name: name, cur: -1}, nil
}

func (w *xlsxWorkbook) Close() error {
	return w.f.Close()
}

// xlsxSheet serves cell lookups from a forward-only row iterator, keeping
// only the current row decoded. Looking back re-opens the iterator, so
// top-to-bottom access costs a single pass over the sheet XML.
type xlsxSheet struct {
	f    *excelize.File
	name string

	rows *excelize.Rows
	cur  int // 0-based row held in cols, -1 before the first row
	cols []string
	done bool
}

func (s *xlsxSheet) Name() string {
	return s.name
}

// Bounds trusts the sheet dimension record when it spans more than one cell
// and otherwise scans the rows.
func (s *xlsxSheet) Bounds() (models.SheetBounds, bool, error) {
	dim, err := s.f.GetSheetDimension(s.name)
	if err == nil {
		if b, ok := parseDimension(dim); ok && !singleCell(b) {
			b.FirstRow = 0
			return b, true, nil
		}
	}
	return s.scanBounds()
}

func (s *xlsxSheet) scanBounds() (models.SheetBounds, bool, error) {
	rows, err := s.f.Rows(s.name)
	if err != nil {
		return models.SheetBounds{}, false, err
	}
	defer rows.Close()

	scanner := newBoundsScanner()
	for rowIdx := 0; rows.Next(); rowIdx++ {
		cells, err := rows.Columns()
		if err != nil {
			return models.SheetBounds{}, false, err
		}
		scanner.observeRow(rowIdx, cells)
	}
	if err := rows.Error(); err != nil {
		return models.SheetBounds{}, false, err
	}

	b, ok := scanner.bounds()
	return b, ok, nil
}

func (s *xlsxSheet) Cell(row, col int) (string, bool, error) {
	if row < 0 || col < 0 {
		return "", false, nil
	}
	if err := s.seek(row); err != nil {
		return "", false, fmt.Errorf("read row %d of %q: %w", row+1, s.name, err)
	}
	if col >= len(s.cols) {
		return "", false, nil
	}
	v := s.cols[col]
	return v, v != "", nil
}

func (s *xlsxSheet) seek(row int) error {
	if s.rows != nil && row == s.cur {
		return nil
	}
	if s.rows == nil || row < s.cur {
		if err := s.reset(); err != nil {
			return err
		}
	}

	for s.cur < row {
		if s.done {
			s.cur = row
			s.cols = nil
			return nil
		}
		if !s.rows.Next() {
			s.done = true
			if err := s.rows.Error(); err != nil {
				return err
			}
			continue
		}
		s.cur++
		cols, err := s.rows.Columns()
		if err != nil {
			return err
		}
		s.cols = cols
	}
	return nil
}

func (s *xlsxSheet) reset() error {
	if s.rows != nil {
		s.rows.Close()
	}
	rows, err := s.f.Rows(s.name)
	if err != nil {
		s.rows = nil
		return err
	}
	s.rows = rows
	s.cur = -1
	s.cols = nil
	s.done = false
	return nil
}

func (s *xlsxSheet) Close() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}
