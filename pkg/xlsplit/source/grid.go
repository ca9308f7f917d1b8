package source

import (
	"fmt"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// Grid is an in-memory workbook built from rows of strings.
type Grid struct {
	names  []string
	sheets map[string][][]string
}

// NewGrid returns an empty in-memory workbook.
func NewGrid() *Grid {
	return &Grid{sheets: make(map[string][][]string)}
}

// AddSheet appends a sheet. rows[r][c] is the cell at 0-based (r, c).
// Adding an existing name replaces its rows.
func (g *Grid) AddSheet(name string, rows [][]string) *Grid {
	if _, ok := g.sheets[name]; !ok {
		g.names = append(g.names, name)
	}
	g.sheets[name] = rows
	return g
}

func (g *Grid) SheetNames() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)
	return names
}

func (g *Grid) Sheet(name string) (Sheet, error) {
	rows, ok := g.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSheet, name)
	}
	return &gridSheet{name: name, rows: rows}, nil
}

func (g *Grid) Close() error {
	return nil
}

type gridSheet struct {
	name string
	rows [][]string
}

func (s *gridSheet) Name() string {
	return s.name
}

func (s *gridSheet) Bounds() (models.SheetBounds, bool, error) {
	scanner := newBoundsScanner()
	for i, row := range s.rows {
		scanner.observeRow(i, row)
	}
	b, ok := scanner.bounds()
	return b, ok, nil
}

func (s *gridSheet) Cell(row, col int) (string, bool, error) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return "", false, nil
	}
	v := s.rows[row][col]
	return v, v != "", nil
}

func (s *gridSheet) Close() error {
	return nil
}
