package models

// ConversionResult is the outcome of one successful conversion run.
type ConversionResult struct {
	// Headers is the resolved header used for every chunk.
	Headers Header `json:"headers"`
	// TotalRecordCount is the number of non-empty records written.
	TotalRecordCount int `json:"total_record_count"`
	// Chunks lists the produced segments ordered by Index.
	Chunks []Chunk `json:"chunks"`
	// ChunkCount is len(Chunks).
	ChunkCount int `json:"chunk_count"`
	// SheetName is the sheet actually converted, after name fallback.
	SheetName string `json:"sheet_name"`
	// SheetNames lists every sheet of the source workbook.
	SheetNames []string `json:"sheet_names"`
}
