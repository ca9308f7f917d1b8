package models

// Chunk is one finalized, size-bounded output segment.
type Chunk struct {
	// Index is the 0-based sequence index of the chunk within its run.
	Index int `json:"index"`
	// FileName is the deterministic file name of the segment.
	FileName string `json:"file_name"`
	// Content is the encoded CSV blob. It is nil when chunks are
	// streamed to a sink and only their metadata is retained.
	Content []byte `json:"content,omitempty"`
	// RecordCount is the number of data records in the segment (always >= 1).
	RecordCount int `json:"record_count"`
	// SheetName is the sheet the records were read from.
	SheetName string `json:"sheet_name"`
	// SizeBytes is the length of the encoded blob.
	SizeBytes int64 `json:"size_bytes"`
	// SHA256 is the hex digest of the encoded blob.
	SHA256 string `json:"sha256"`
}

// Metadata returns a copy of the chunk without its content.
func (c Chunk) Metadata() Chunk {
	c.Content = nil
	return c
}
