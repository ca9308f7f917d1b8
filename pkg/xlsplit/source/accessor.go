// Package source adapts workbook decoders to the cell accessor consumed by
// the conversion engine.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// ErrUnsupportedFormat indicates the input is neither an OOXML nor a BIFF workbook.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// ErrUnknownSheet indicates the workbook has no sheet with the requested name.
var ErrUnknownSheet = errors.New("unknown sheet")

// Workbook is an opened, decoded workbook.
type Workbook interface {
	// SheetNames returns the sheet names in workbook order.
	SheetNames() []string
	// Sheet opens the sheet with the exact given name.
	Sheet(name string) (Sheet, error)
	Close() error
}

// Sheet gives random access to the cells of one worksheet.
type Sheet interface {
	Name() string
	// Bounds returns the rectangular extent of the sheet.
	// ok is false when the sheet holds no populated cell.
	Bounds() (b models.SheetBounds, ok bool, err error)
	// Cell returns the display value at the 0-based (row, col).
	// ok is false when the cell is absent or blank.
	Cell(row, col int) (value string, ok bool, err error)
	Close() error
}

// Format identifies a workbook container format.
type Format string

const (
	// FormatUnknown is returned when neither magic bytes nor extension match.
	FormatUnknown Format = ""
	// FormatXLSX covers the OOXML package formats (.xlsx, .xlsm).
	FormatXLSX Format = "xlsx"
	// FormatXLS covers the legacy BIFF format (.xls).
	FormatXLS Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat identifies the container from its leading bytes, falling
// back to the file extension.
func DetectFormat(head []byte, fileName string) Format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(head, oleMagic):
		return FormatXLS
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatUnknown
}

// Open opens the workbook stored at path.
func Open(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	head := make([]byte, len(oleMagic))
	n, err := io.ReadFull(f, head)
	f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}

	switch DetectFormat(head[:n], path) {
	case FormatXLSX:
		return openXLSXFile(path)
	case FormatXLS:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return openXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// OpenBytes opens an in-memory workbook. fileName is only used to detect the
// format when the content carries no recognizable signature.
func OpenBytes(data []byte, fileName string) (Workbook, error) {
	switch DetectFormat(data, fileName) {
	case FormatXLSX:
		return openXLSXReader(bytes.NewReader(data))
	case FormatXLS:
		return openXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}
