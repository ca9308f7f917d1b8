package xlsplit

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/source"
)

// EmitFunc receives the events of a run in order.
type EmitFunc func(Event)

// Convert opens the workbook named by req and converts the requested sheet.
// Every outcome, including request and open failures, is also reported
// through emit.
func Convert(ctx context.Context, req ConvertRequest, opts Options, emit EmitFunc) (*models.ConversionResult, error) {
	emit = orDiscard(emit)

	if err := req.Validate(); err != nil {
		cerr := NewConversionError("", StageRequest, err)
		emit(failedEvent(cerr))
		return nil, cerr
	}
	if err := validate.Struct(opts); err != nil {
		cerr := NewConversionError("", StageRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		emit(failedEvent(cerr))
		return nil, cerr
	}

	emit(ProgressEvent{Percent: percentStart, Message: "opening workbook"})

	wb, err := req.open()
	if err != nil {
		cerr := NewConversionError("", StageOpen, err)
		emit(failedEvent(cerr))
		return nil, cerr
	}
	defer wb.Close()

	opts.ChunkCapacity = req.ChunkCapacity
	return NewConverter(opts).run(ctx, wb, req.fileName(), req.SheetName, emit, false)
}

// ListSheets returns the sheet names of the workbook named by req without
// reading any sheet data.
func ListSheets(req ListSheetsRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	wb, err := req.open()
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.SheetNames(), nil
}

// ResolveSheetName picks the sheet to convert: an exact match, then a
// case-insensitive match, then the first sheet. The returned error wraps
// ErrSheetNotFound when the fallback was used; it is informational only.
func ResolveSheetName(names []string, requested string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrInvalidSource)
	}
	if strings.TrimSpace(requested) == "" {
		return names[0], nil
	}
	for _, name := range names {
		if name == requested {
			return name, nil
		}
	}
	for _, name := range names {
		if strings.EqualFold(name, requested) {
			return name, nil
		}
	}
	return names[0], fmt.Errorf("%w: %q, using %q", ErrSheetNotFound, requested, names[0])
}

// Converter drives conversion runs. It holds no per-run state and may be
// reused sequentially or concurrently.
type Converter struct {
	opts Options
}

// NewConverter creates a converter with the given options.
func NewConverter(opts Options) *Converter {
	return &Converter{opts: opts}
}

// Run converts sheetName (or its fallback) of an opened workbook. fileName
// is the original file name chunk names derive from. emit may be nil.
func (c *Converter) Run(ctx context.Context, wb source.Workbook, fileName, sheetName string, emit EmitFunc) (*models.ConversionResult, error) {
	return c.run(ctx, wb, fileName, sheetName, orDiscard(emit), true)
}

func (c *Converter) run(ctx context.Context, wb source.Workbook, fileName, sheetName string, emit EmitFunc, announce bool) (*models.ConversionResult, error) {
	r := &run{
		opts:     c.opts,
		emit:     emit,
		state:    StateIdle,
		fileName: fileName,
		log:      c.opts.logger().WithField("file", fileName),
	}
	if announce {
		emit(ProgressEvent{Percent: percentStart, Message: "reading workbook"})
	}
	return r.execute(ctx, wb, sheetName)
}

// run is the state of a single conversion. It is owned by one goroutine.
type run struct {
	opts     Options
	emit     EmitFunc
	log      logrus.FieldLogger
	state    State
	fileName string

	sheetName string
	progress  *progressTracker
	result    models.ConversionResult
}

func (r *run) execute(ctx context.Context, wb source.Workbook, requested string) (*models.ConversionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.cancel()
	}

	names := wb.SheetNames()
	sheetName, err := ResolveSheetName(names, requested)
	if errors.Is(err, ErrSheetNotFound) {
		r.log.WithField("requested", requested).Warnf("sheet not found, falling back to %q", sheetName)
	} else if err != nil {
		return nil, r.fail(StageOpen, err)
	}
	r.sheetName = sheetName
	r.log = r.log.WithField("sheet", sheetName)
	r.result.SheetName = sheetName
	r.result.SheetNames = names

	sheet, err := wb.Sheet(sheetName)
	if err != nil {
		return nil, r.fail(StageOpen, fmt.Errorf("%w: %v", ErrInvalidSource, err))
	}
	defer sheet.Close()

	r.transition(StateResolvingHeader)

	bounds, ok, err := sheet.Bounds()
	if err != nil {
		return nil, r.fail(StageHeader, fmt.Errorf("%w: %v", ErrInvalidSource, err))
	}
	if !ok || bounds.Degenerate() {
		return nil, r.fail(StageHeader, ErrEmptySheet)
	}

	header, err := ResolveHeader(sheet, bounds)
	if err != nil {
		return nil, r.fail(StageHeader, err)
	}
	r.result.Headers = header

	total := bounds.DataRows()
	r.progress = newProgressTracker(total)
	r.emit(r.progress.event(percentDataStart, 0, 0,
		fmt.Sprintf("reading sheet %q: %d column(s), %d row(s) to process", sheetName, len(header), total)))
	r.log.WithFields(logrus.Fields{"bounds": bounds.String(), "columns": len(header)}).Info("header resolved")

	r.transition(StateExtracting)

	acc := NewAccumulator(header, r.opts.chunkCapacity(), r.fileName, sheetName, len(names) > 1)
	processed := 0
	batch := r.opts.batchSize()

	for start := bounds.FirstRow + 1; start <= bounds.LastRow; start += batch {
		end := min(start+batch-1, bounds.LastRow)

		for row := start; row <= end; row++ {
			rec, empty, err := ExtractRecord(sheet, row, header, bounds)
			if err != nil {
				return nil, r.fail(StageExtract, err)
			}
			if empty {
				continue
			}
			processed++

			chunk, err := acc.Append(rec)
			if err != nil {
				return nil, r.fail(StageEncode, err)
			}
			if chunk == nil {
				continue
			}
			if err := r.publish(*chunk); err != nil {
				return nil, r.fail(StageEncode, err)
			}
			n := len(r.result.Chunks)
			r.emit(r.progress.event(r.progress.percent(processed), processed, n, chunkingMessage(processed, total, n)))
			if err := yield(ctx); err != nil {
				return nil, r.cancel()
			}
		}

		lastBatch := end == bounds.LastRow
		if pct := r.progress.percent(processed); r.progress.due(pct, lastBatch) {
			n := len(r.result.Chunks)
			r.emit(r.progress.event(pct, processed, n, extractingMessage(processed, total, n)))
		}
		if err := yield(ctx); err != nil {
			return nil, r.cancel()
		}
	}

	r.transition(StateFinalizing)

	chunk, err := acc.Flush()
	if err != nil {
		return nil, r.fail(StageEncode, err)
	}
	if chunk != nil {
		if err := r.publish(*chunk); err != nil {
			return nil, r.fail(StageEncode, err)
		}
	}

	r.transition(StateCompleted)
	r.result.TotalRecordCount = processed
	r.result.ChunkCount = len(r.result.Chunks)
	if r.result.Chunks == nil {
		r.result.Chunks = []models.Chunk{}
	}
	r.log.WithFields(logrus.Fields{"records": processed, "chunks": r.result.ChunkCount}).Info("conversion completed")

	result := r.result
	r.emit(CompletedEvent{Result: result})
	return &result, nil
}

// publish hands a flushed chunk to the sink and records it in the result.
func (r *run) publish(chunk models.Chunk) error {
	if r.opts.Sink != nil {
		if err := r.opts.Sink(chunk); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrEncodingFailure, chunk.FileName, err)
		}
	}
	if !r.opts.ShouldRetainContent() {
		chunk = chunk.Metadata()
	}
	r.result.Chunks = append(r.result.Chunks, chunk)
	r.log.WithFields(logrus.Fields{"chunk": chunk.FileName, "records": chunk.RecordCount}).Debug("chunk flushed")
	r.emit(ChunkReadyEvent{Chunk: chunk})
	return nil
}

func (r *run) transition(next State) {
	if !r.state.CanTransition(next) {
		panic(fmt.Sprintf("xlsplit: invalid state transition %s -> %s", r.state, next))
	}
	r.log.WithFields(logrus.Fields{"from": string(r.state), "state": string(next)}).Debug("state transition")
	r.state = next
}

func (r *run) fail(stage Stage, err error) error {
	r.transition(StateFailed)
	cerr := NewConversionError(r.sheetName, stage, err)
	r.log.WithError(err).WithField("stage", string(stage)).Error("conversion failed")
	r.emit(failedEvent(cerr))
	return cerr
}

func (r *run) cancel() error {
	r.transition(StateCancelled)
	r.log.Info("conversion cancelled")
	r.emit(CancelledEvent{})
	return NewConversionError(r.sheetName, StageExtract, ErrCancelled)
}

// yield lets other goroutines run and reports whether the run was cancelled.
func yield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

func orDiscard(emit EmitFunc) EmitFunc {
	if emit == nil {
		return func(Event) {}
	}
	return emit
}
