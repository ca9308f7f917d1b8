package xlsplit

import "github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"

// EventKind names an event for framing on external transports.
type EventKind string

const (
	KindSheetNames EventKind = "sheet_names"
	KindProgress   EventKind = "progress"
	KindChunk      EventKind = "chunk"
	KindCompleted  EventKind = "completed"
	KindFailed     EventKind = "failed"
	KindCancelled  EventKind = "cancelled"
)

// Event is a message emitted by a conversion task. The set of events is
// closed; consumers match on the concrete type:
//
//	switch ev := ev.(type) {
//	case xlsplit.ProgressEvent:
//	case xlsplit.ChunkReadyEvent:
//	case xlsplit.CompletedEvent:
//	case xlsplit.FailedEvent:
//	case xlsplit.CancelledEvent:
//	case xlsplit.SheetNamesEvent:
//	}
type Event interface {
	Kind() EventKind
	event()
}

// SheetNamesEvent answers a ListSheetsRequest.
type SheetNamesEvent struct {
	Names []string `json:"names"`
}

// ProgressEvent reports the advancement of a conversion.
// Percent stays below 100 until the run completes.
type ProgressEvent struct {
	Percent         int    `json:"percent"`
	ProcessedCount  int    `json:"processed_count"`
	TotalCount      int    `json:"total_count"`
	ChunksGenerated int    `json:"chunks_generated"`
	Message         string `json:"message"`
}

// ChunkReadyEvent announces a finalized chunk.
type ChunkReadyEvent struct {
	Chunk models.Chunk `json:"chunk"`
}

// CompletedEvent is the last event of a successful run.
type CompletedEvent struct {
	Result models.ConversionResult `json:"result"`
}

// FailedEvent terminates a run that hit an error.
type FailedEvent struct {
	Err     error  `json:"-"`
	Message string `json:"error"`
}

// CancelledEvent terminates a run stopped by its caller.
type CancelledEvent struct{}

func (SheetNamesEvent) Kind() EventKind { return KindSheetNames }
func (ProgressEvent) Kind() EventKind   { return KindProgress }
func (ChunkReadyEvent) Kind() EventKind { return KindChunk }
func (CompletedEvent) Kind() EventKind  { return KindCompleted }
func (FailedEvent) Kind() EventKind     { return KindFailed }
func (CancelledEvent) Kind() EventKind  { return KindCancelled }

func (SheetNamesEvent) event() {}
func (ProgressEvent) event()   {}
func (ChunkReadyEvent) event() {}
func (CompletedEvent) event()  {}
func (FailedEvent) event()     {}
func (CancelledEvent) event()  {}

// Terminal reports whether ev ends a task.
func Terminal(ev Event) bool {
	switch ev.(type) {
	case CompletedEvent, FailedEvent, CancelledEvent, SheetNamesEvent:
		return true
	}
	return false
}

func failedEvent(err error) FailedEvent {
	return FailedEvent{Err: err, Message: err.Error()}
}
