package xlsplit

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/source"
)

var validate = validator.New()

// ConvertRequest asks for one sheet of a workbook to be split into chunks.
// The workbook is read from Path, or from Data when Path is empty.
type ConvertRequest struct {
	Path string `validate:"required_without=Data"`
	Data []byte `validate:"required_without=Path"`
	// FileName is the original file name chunk names derive from.
	// Defaults to the base name of Path.
	FileName string
	// SheetName selects the sheet. Empty selects the first sheet.
	SheetName string
	// ChunkCapacity is the number of records per chunk.
	ChunkCapacity int `validate:"gt=0"`
}

// ListSheetsRequest asks for the sheet names of a workbook.
type ListSheetsRequest struct {
	Path     string `validate:"required_without=Data"`
	Data     []byte `validate:"required_without=Path"`
	FileName string
}

// Validate checks the request fields.
func (r ConvertRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Validate checks the request fields.
func (r ListSheetsRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (r ConvertRequest) fileName() string {
	return originalName(r.FileName, r.Path)
}

func (r ConvertRequest) open() (source.Workbook, error) {
	return openSource(r.Path, r.Data, r.fileName())
}

func (r ListSheetsRequest) open() (source.Workbook, error) {
	return openSource(r.Path, r.Data, originalName(r.FileName, r.Path))
}

func originalName(fileName, path string) string {
	if fileName != "" {
		return fileName
	}
	if path != "" {
		return filepath.Base(path)
	}
	return "workbook"
}

func openSource(path string, data []byte, fileName string) (source.Workbook, error) {
	var (
		wb  source.Workbook
		err error
	)
	if path != "" {
		wb, err = source.Open(path)
	} else {
		wb, err = source.OpenBytes(data, fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return wb, nil
}
