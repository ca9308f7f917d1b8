package xlsplit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("event channel was not closed")
			return nil
		}
	}
}

func largeWorkbook(t *testing.T, n int) []byte {
	t.Helper()
	rows := make([][]any, 0, n+1)
	rows = append(rows, []any{"id", "name"})
	for i := 1; i <= n; i++ {
		rows = append(rows, []any{i, "name" + strconv.Itoa(i)})
	}
	return xlsxBytes(t, map[string][][]any{"Data": rows}, []string{"Data"})
}

func TestWorkerConvert(t *testing.T) {
	w := NewWorker(DefaultOptions())
	defer w.Close()

	data := xlsxBytes(t, map[string][][]any{"S": {{"a"}, {"1"}, {"2"}}}, []string{"S"})
	events := drain(t, w.Convert(ConvertRequest{Data: data, FileName: "w.xlsx", ChunkCapacity: 1}))

	if len(events) == 0 {
		t.Fatal("no events")
	}
	done, ok := events[len(events)-1].(CompletedEvent)
	if !ok {
		t.Fatalf("last event = %T, expected CompletedEvent", events[len(events)-1])
	}
	if done.Result.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, expected 2", done.Result.ChunkCount)
	}
	for _, ev := range events[:len(events)-1] {
		if Terminal(ev) {
			t.Errorf("terminal event %T before the end", ev)
		}
	}
}

func TestWorkerListSheets(t *testing.T) {
	w := NewWorker(DefaultOptions())
	defer w.Close()

	data := xlsxBytes(t, map[string][][]any{"One": {{"a"}}, "Two": {{"b"}}}, []string{"One", "Two"})
	events := drain(t, w.ListSheets(ListSheetsRequest{Data: data, FileName: "w.xlsx"}))

	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	names, ok := events[0].(SheetNamesEvent)
	if !ok {
		t.Fatalf("event = %T, expected SheetNamesEvent", events[0])
	}
	if len(names.Names) != 2 || names.Names[0] != "One" || names.Names[1] != "Two" {
		t.Errorf("Names = %v", names.Names)
	}
}

func TestWorkerListSheetsInvalidSource(t *testing.T) {
	w := NewWorker(DefaultOptions())
	defer w.Close()

	events := drain(t, w.ListSheets(ListSheetsRequest{Data: []byte("nope"), FileName: "x.xlsx"}))
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	failed, ok := events[0].(FailedEvent)
	if !ok || !errors.Is(failed.Err, ErrInvalidSource) {
		t.Errorf("event = %+v, expected FailedEvent wrapping ErrInvalidSource", events[0])
	}
}

func TestWorkerInvalidRequest(t *testing.T) {
	w := NewWorker(DefaultOptions())
	defer w.Close()

	events := drain(t, w.Convert(ConvertRequest{FileName: "x.xlsx", ChunkCapacity: 10}))
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	if failed, ok := events[0].(FailedEvent); !ok || !errors.Is(failed.Err, ErrInvalidRequest) {
		t.Errorf("event = %+v", events[0])
	}
}

func TestWorkerPreemption(t *testing.T) {
	w := NewWorker(DefaultOptions())
	defer w.Close()

	first := w.Convert(ConvertRequest{Data: largeWorkbook(t, 5000), FileName: "big.xlsx", ChunkCapacity: 100})
	small := xlsxBytes(t, map[string][][]any{"S": {{"a"}, {"1"}}}, []string{"S"})
	second := w.Convert(ConvertRequest{Data: small, FileName: "small.xlsx", ChunkCapacity: 10})

	secondEvents := drain(t, second)
	if _, ok := secondEvents[len(secondEvents)-1].(CompletedEvent); !ok {
		t.Errorf("second task ended with %T", secondEvents[len(secondEvents)-1])
	}

	firstEvents := drain(t, first)
	for _, ev := range firstEvents {
		if _, ok := ev.(FailedEvent); ok {
			t.Errorf("preempted task reported failure: %+v", ev)
		}
	}
}

func TestWorkerCancel(t *testing.T) {
	w := NewWorker(DefaultOptions())
	w.Cancel()

	ch := w.Convert(ConvertRequest{Data: largeWorkbook(t, 5000), FileName: "big.xlsx", ChunkCapacity: 50})
	w.Cancel()
	events := drain(t, ch)

	for _, ev := range events {
		if _, ok := ev.(FailedEvent); ok {
			t.Errorf("cancelled task reported failure: %+v", ev)
		}
	}
	w.Close()
}

func TestDeliverAfterCancelDropsCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan Event, 1)
	deliver(ctx, ch, CompletedEvent{})

	select {
	case ev := <-ch:
		if _, ok := ev.(CancelledEvent); !ok {
			t.Errorf("delivered %T, expected CancelledEvent", ev)
		}
	default:
		t.Fatal("nothing delivered")
	}

	ch <- ProgressEvent{}
	done := make(chan struct{})
	go func() {
		deliver(ctx, ch, CancelledEvent{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked on a full channel after cancellation")
	}
}
