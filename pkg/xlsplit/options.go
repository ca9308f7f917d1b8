// Package xlsplit converts one sheet of a workbook into size-bounded CSV
// chunks while keeping at most one chunk of records in memory.
package xlsplit

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

const (
	// DefaultChunkCapacity is the number of records per chunk used when none is given.
	DefaultChunkCapacity = 100000
	// DefaultBatchSize is the number of rows processed between yield points.
	DefaultBatchSize = 10000
)

// ContentMode selects what finalized chunks retain.
type ContentMode string

const (
	// ContentInline keeps every chunk's encoded content in the result.
	ContentInline ContentMode = "inline"
	// ContentMetadata drops the content once the chunk was handed to the sink.
	ContentMetadata ContentMode = "metadata"
)

// ChunkSink receives every chunk, with its content, the moment it is flushed.
// A returned error aborts the run.
type ChunkSink func(chunk models.Chunk) error

// Options configures conversion behavior.
type Options struct {
	// ChunkCapacity is the maximum number of records per chunk.
	ChunkCapacity int `validate:"gte=0"`
	// BatchSize is the number of rows read between yield points.
	// Zero means DefaultBatchSize.
	BatchSize int `validate:"gte=0"`
	// Content selects whether chunks keep their content in events and results.
	// If empty, content is kept unless a Sink is set.
	Content ContentMode `validate:"omitempty,oneof=inline metadata"`
	// Sink optionally streams chunks out as they are produced.
	Sink ChunkSink `validate:"-"`
	// Logger receives structured run logs. Nil discards them.
	Logger logrus.FieldLogger `validate:"-"`
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{
		ChunkCapacity: DefaultChunkCapacity,
		BatchSize:     DefaultBatchSize,
	}
}

// ShouldRetainContent returns whether chunk content is kept after flushing.
func (o Options) ShouldRetainContent() bool {
	if o.Content != "" {
		return o.Content == ContentInline
	}
	return o.Sink == nil
}

func (o Options) chunkCapacity() int {
	if o.ChunkCapacity > 0 {
		return o.ChunkCapacity
	}
	return DefaultChunkCapacity
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger
}
