package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{{"Name", "Age"}, {"Alice", "30"}, {"Bob", "25"}, {"Carol", "41"}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	path := filepath.Join(dir, "people.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSheetsCommand(t *testing.T) {
	input := writeWorkbook(t, t.TempDir())

	out, err := execute(t, "sheets", input, "--json", "--log-level", "error")
	if err != nil {
		t.Fatalf("sheets failed: %v", err)
	}

	var got map[string][]string
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got["sheet_names"]) != 1 || got["sheet_names"][0] != "Sheet1" {
		t.Errorf("sheet_names = %v", got["sheet_names"])
	}
}

func TestConvertCommandWritesChunks(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir)
	outDir := filepath.Join(dir, "out")

	if _, err := execute(t, "convert", input, "-o", outDir, "--chunk-size", "2", "--manifest", "--log-level", "error"); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(outDir, "people-partie-001.csv"))
	if err != nil {
		t.Fatalf("first chunk missing: %v", err)
	}
	if string(first) != "Name,Age\nAlice,30\nBob,25\n" {
		t.Errorf("first chunk = %q", first)
	}
	second, err := os.ReadFile(filepath.Join(outDir, "people-partie-002.csv"))
	if err != nil {
		t.Fatalf("second chunk missing: %v", err)
	}
	if string(second) != "Name,Age\nCarol,41\n" {
		t.Errorf("second chunk = %q", second)
	}
	if _, err := os.Stat(filepath.Join(outDir, "manifest.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
}

func TestConvertCommandMissingFile(t *testing.T) {
	_, err := execute(t, "convert", filepath.Join(t.TempDir(), "missing.xlsx"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("expected file not found error, got %v", err)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	input := writeWorkbook(t, t.TempDir())
	if _, err := execute(t, "sheets", input, "--log-level", "loud"); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}
