package xlsplit

import (
	"errors"
	"fmt"
)

// ErrInvalidSource indicates the input could not be read as a workbook.
var ErrInvalidSource = errors.New("invalid source")

// ErrEmptySheet indicates the selected sheet has no rows or degenerate bounds.
var ErrEmptySheet = errors.New("sheet is empty")

// ErrNoHeaderFields indicates the first row of the sheet is entirely blank.
var ErrNoHeaderFields = errors.New("no header found in the first row")

// ErrSheetNotFound indicates the requested sheet is absent. Conversions
// recover from it by falling back to the first sheet.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrEncodingFailure indicates a chunk could not be serialized or handed to its sink.
var ErrEncodingFailure = errors.New("chunk encoding failed")

// ErrCancelled indicates the conversion was cancelled by the caller.
var ErrCancelled = errors.New("conversion cancelled")

// ErrInvalidRequest indicates a request failed validation.
var ErrInvalidRequest = errors.New("invalid request")

// Stage names the step of a conversion run an error happened in.
type Stage string

const (
	StageRequest Stage = "request"
	StageOpen    Stage = "open"
	StageHeader  Stage = "header"
	StageExtract Stage = "extract"
	StageEncode  Stage = "encode"
)

// ConversionError represents an error during a conversion run.
type ConversionError struct {
	SheetName string
	Stage     Stage
	Err       error
}

func (e *ConversionError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("conversion error (%s): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("conversion error in sheet %q (%s): %v", e.SheetName, e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(sheetName string, stage Stage, err error) *ConversionError {
	return &ConversionError{
		SheetName: sheetName,
		Stage:     stage,
		Err:       err,
	}
}
