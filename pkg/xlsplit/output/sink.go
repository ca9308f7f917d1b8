package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// DirSink writes each chunk to its own file in a directory. Files are
// replaced atomically so a reader never observes a partial chunk.
type DirSink struct {
	dir     string
	written []string
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Write stores chunk under its file name. It matches xlsplit.ChunkSink.
func (s *DirSink) Write(chunk models.Chunk) error {
	if chunk.Content == nil {
		return fmt.Errorf("chunk %d has no content", chunk.Index)
	}
	path := s.Path(chunk.FileName)
	if err := atomic.WriteFile(path, bytes.NewReader(chunk.Content)); err != nil {
		return fmt.Errorf("write chunk %d: %w", chunk.Index, err)
	}
	s.written = append(s.written, path)
	return nil
}

// Path returns where a chunk file name is stored.
func (s *DirSink) Path(fileName string) string {
	return filepath.Join(s.dir, SafeFileName(fileName))
}

// Dir returns the sink directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Written returns the paths written so far, in order.
func (s *DirSink) Written() []string {
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// SafeFileName replaces path separators so a sheet name cannot escape the
// output directory.
func SafeFileName(name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "." || name == ".." || name == "" {
		return "_"
	}
	return name
}
