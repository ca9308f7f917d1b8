package source

import (
	"testing"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		fileName string
		expected Format
	}{
		{"zip magic", []byte("PK\x03\x04rest"), "data.bin", FormatXLSX},
		{"ole magic", append([]byte{}, oleMagic...), "data.bin", FormatXLS},
		{"xlsx ext", []byte("??"), "Report.XLSX", FormatXLSX},
		{"xlsm ext", nil, "macro.xlsm", FormatXLSX},
		{"xls ext", nil, "legacy.xls", FormatXLS},
		{"magic wins", []byte("PK\x03\x04"), "legacy.xls", FormatXLSX},
		{"unknown", []byte("text"), "notes.txt", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.head, tt.fileName); got != tt.expected {
				t.Errorf("DetectFormat = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		ref      string
		expected models.SheetBounds
		ok       bool
	}{
		{"A1:D10", models.SheetBounds{FirstRow: 0, LastRow: 9, FirstCol: 0, LastCol: 3}, true},
		{"$B$2:$C$9", models.SheetBounds{FirstRow: 1, LastRow: 8, FirstCol: 1, LastCol: 2}, true},
		{"D10:A1", models.SheetBounds{FirstRow: 0, LastRow: 9, FirstCol: 0, LastCol: 3}, true},
		{"C3", models.SheetBounds{FirstRow: 2, LastRow: 2, FirstCol: 2, LastCol: 2}, true},
		{"", models.SheetBounds{}, false},
		{"A1:B2:C3", models.SheetBounds{}, false},
		{"nonsense", models.SheetBounds{}, false},
	}

	for _, tt := range tests {
		got, ok := parseDimension(tt.ref)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("parseDimension(%q) = %+v, %v; expected %+v, %v", tt.ref, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestSingleCell(t *testing.T) {
	if !singleCell(models.SheetBounds{}) {
		t.Error("A1 bounds should be a single cell")
	}
	if singleCell(models.SheetBounds{LastRow: 1}) {
		t.Error("two rows are not a single cell")
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid().AddSheet("S", [][]string{
		{},
		{"", "", "x"},
		{"", "y"},
		{},
	})
	sheet, err := g.Sheet("S")
	if err != nil {
		t.Fatalf("Sheet failed: %v", err)
	}

	b, ok, err := sheet.Bounds()
	if err != nil || !ok {
		t.Fatalf("Bounds failed: ok=%v err=%v", ok, err)
	}
	expected := models.SheetBounds{FirstRow: 0, LastRow: 2, FirstCol: 1, LastCol: 2}
	if b != expected {
		t.Errorf("Bounds = %+v, expected %+v", b, expected)
	}

	if v, ok, _ := sheet.Cell(1, 2); v != "x" || !ok {
		t.Errorf("Cell(1, 2) = %q, %v", v, ok)
	}
	if _, ok, _ := sheet.Cell(5, 0); ok {
		t.Error("out of range cell should be absent")
	}
	if _, err := g.Sheet("missing"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestGridEmpty(t *testing.T) {
	sheet, _ := NewGrid().AddSheet("S", [][]string{{"", ""}}).Sheet("S")
	if _, ok, _ := sheet.Bounds(); ok {
		t.Error("blank grid should have no bounds")
	}
}
