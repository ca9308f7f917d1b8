package source

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// xlsCharset is used for BIFF string records that carry no encoding of their own.
const xlsCharset = "utf-8"

type xlsWorkbook struct {
	wb *xls.WorkBook
}

// openXLS decodes a BIFF workbook. The decoder panics on some malformed
// streams; those panics are returned as errors.
func openXLS(data []byte) (w *xlsWorkbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("malformed xls stream: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), xlsCharset)
	if err != nil {
		return nil, err
	}
	return &xlsWorkbook{wb: wb}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	names := make([]string, 0, w.wb.NumSheets())
	for i := 0; i < w.wb.NumSheets(); i++ {
		if ws := w.wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	return names
}

func (w *xlsWorkbook) Sheet(name string) (Sheet, error) {
	for i := 0; i < w.wb.NumSheets(); i++ {
		ws := w.wb.GetSheet(i)
		if ws != nil && ws.Name == name {
			return &xlsSheet{ws: ws}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSheet, name)
}

// Close is a no-op: the BIFF stream is decoded from memory.
func (w *xlsWorkbook) Close() error {
	return nil
}

type xlsSheet struct {
	ws *xls.WorkSheet
}

func (s *xlsSheet) Name() string {
	return s.ws.Name
}

func (s *xlsSheet) Bounds() (models.SheetBounds, bool, error) {
	scanner := newBoundsScanner()
	for i := 0; i <= int(s.ws.MaxRow); i++ {
		row := s.ws.Row(i)
		if row == nil {
			continue
		}
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			scanner.observe(i, j, row.Col(j))
		}
	}
	b, ok := scanner.bounds()
	return b, ok, nil
}

func (s *xlsSheet) Cell(row, col int) (string, bool, error) {
	if row < 0 || col < 0 || row > int(s.ws.MaxRow) {
		return "", false, nil
	}
	r := s.ws.Row(row)
	if r == nil || col < r.FirstCol() || col >= r.LastCol() {
		return "", false, nil
	}
	v := r.Col(col)
	return v, v != "", nil
}

func (s *xlsSheet) Close() error {
	return nil
}
