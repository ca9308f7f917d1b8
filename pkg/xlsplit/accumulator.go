package xlsplit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// maxPreallocRecords caps the buffer capacity reserved up front so that a
// huge chunk capacity does not reserve memory a small sheet never uses.
const maxPreallocRecords = 4096

// Accumulator buffers records and encodes them into chunks of at most
// capacity records. Only the current buffer is held; it is replaced by a
// fresh one as soon as it has been encoded.
type Accumulator struct {
	header     models.Header
	capacity   int
	baseName   string
	sheetName  string
	multiSheet bool

	buf   []models.Record
	index int
}

// NewAccumulator creates an accumulator for one run. A capacity below 1 is
// treated as 1.
func NewAccumulator(header models.Header, capacity int, fileName, sheetName string, multiSheet bool) *Accumulator {
	if capacity < 1 {
		capacity = 1
	}
	a := &Accumulator{
		header:     header,
		capacity:   capacity,
		baseName:   BaseName(fileName),
		sheetName:  sheetName,
		multiSheet: multiSheet,
	}
	a.buf = a.newBuffer()
	return a
}

// Append adds a record and returns the chunk flushed when the buffer
// reached capacity, or nil.
func (a *Accumulator) Append(rec models.Record) (*models.Chunk, error) {
	a.buf = append(a.buf, rec)
	if len(a.buf) >= a.capacity {
		return a.Flush()
	}
	return nil, nil
}

// Flush encodes the buffered records into a chunk. It returns nil without
// advancing the chunk index when nothing is buffered.
func (a *Accumulator) Flush() (*models.Chunk, error) {
	if len(a.buf) == 0 {
		return nil, nil
	}

	content, err := EncodeCSV(a.header, a.buf)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d: %v", ErrEncodingFailure, a.index, err)
	}
	sum := sha256.Sum256(content)

	chunk := &models.Chunk{
		Index:       a.index,
		FileName:    ChunkFileName(a.baseName, a.sheetName, a.multiSheet, a.index),
		Content:     content,
		RecordCount: len(a.buf),
		SheetName:   a.sheetName,
		SizeBytes:   int64(len(content)),
		SHA256:      hex.EncodeToString(sum[:]),
	}

	a.index++
	a.buf = a.newBuffer()
	return chunk, nil
}

// Buffered returns the number of records waiting for the next flush.
func (a *Accumulator) Buffered() int {
	return len(a.buf)
}

// Flushed returns the number of chunks produced so far.
func (a *Accumulator) Flushed() int {
	return a.index
}

func (a *Accumulator) newBuffer() []models.Record {
	return make([]models.Record, 0, min(a.capacity, maxPreallocRecords))
}
