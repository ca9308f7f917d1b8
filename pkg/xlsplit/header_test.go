package xlsplit

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/source"
)

func gridSheet(t *testing.T, rows [][]string) (source.Sheet, models.SheetBounds) {
	t.Helper()
	sheet, err := source.NewGrid().AddSheet("Data", rows).Sheet("Data")
	if err != nil {
		t.Fatalf("Sheet failed: %v", err)
	}
	b, ok, err := sheet.Bounds()
	if err != nil || !ok {
		t.Fatalf("Bounds failed: ok=%v err=%v", ok, err)
	}
	return sheet, b
}

func TestResolveHeader(t *testing.T) {
	sheet, b := gridSheet(t, [][]string{
		{"", " Name ", "", "Age"},
		{"", "Ann", "", "30"},
	})

	header, err := ResolveHeader(sheet, b)
	if err != nil {
		t.Fatalf("ResolveHeader failed: %v", err)
	}
	if !reflect.DeepEqual(header, models.Header{"Name", "Age"}) {
		t.Errorf("header = %q", header)
	}
}

func TestResolveHeaderBlankFirstRow(t *testing.T) {
	sheet, b := gridSheet(t, [][]string{
		{"", ""},
		{"Ann", "30"},
	})

	_, err := ResolveHeader(sheet, b)
	if !errors.Is(err, ErrNoHeaderFields) {
		t.Errorf("error = %v, expected ErrNoHeaderFields", err)
	}
}

func TestExtractRecord(t *testing.T) {
	sheet, b := gridSheet(t, [][]string{
		{"Name", "Age"},
		{" Ann ", "30", "ignored"},
		{"", "  "},
		{"Bo"},
	})
	header := models.Header{"Name", "Age"}

	tests := []struct {
		row      int
		expected models.Record
		empty    bool
	}{
		{1, models.Record{"Ann", "30"}, false},
		{2, models.Record{"", ""}, true},
		{3, models.Record{"Bo", ""}, false},
		{9, models.Record{"", ""}, true},
	}

	for _, tt := range tests {
		rec, empty, err := ExtractRecord(sheet, tt.row, header, b)
		if err != nil {
			t.Fatalf("ExtractRecord(%d) failed: %v", tt.row, err)
		}
		if empty != tt.empty {
			t.Errorf("row %d empty = %v, expected %v", tt.row, empty, tt.empty)
		}
		if !reflect.DeepEqual(rec, tt.expected) {
			t.Errorf("row %d = %q, expected %q", tt.row, rec, tt.expected)
		}
	}
}

func TestRecordMap(t *testing.T) {
	rec := models.Record{"1", "2", "3"}
	m := rec.Map(models.Header{"a", "b", "a"})
	if m["a"] != "3" || m["b"] != "2" {
		t.Errorf("Map = %v, expected rightmost duplicate to win", m)
	}
}
