package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// ManifestFileName is the name of the manifest written next to the chunks.
const ManifestFileName = "manifest.json"

// ChunkMeta describes a single chunk within a manifest.
type ChunkMeta struct {
	Index       int    `json:"index"`
	FileName    string `json:"file_name"`
	RecordCount int    `json:"record_count"`
	SizeBytes   int64  `json:"size_bytes"`
	SHA256      string `json:"sha256"`
}

// Manifest describes a conversion run and all its chunks.
type Manifest struct {
	OriginalName  string      `json:"original_name"`
	SheetName     string      `json:"sheet_name"`
	Headers       []string    `json:"headers"`
	TotalRecords  int         `json:"total_records"`
	ChunkCapacity int         `json:"chunk_capacity"`
	TotalChunks   int         `json:"total_chunks"`
	Chunks        []ChunkMeta `json:"chunks"`
	CreatedAt     string      `json:"created_at"`
}

// NewManifest builds the manifest of a result.
func NewManifest(originalName string, capacity int, result *models.ConversionResult, now time.Time) *Manifest {
	m := &Manifest{
		OriginalName:  originalName,
		SheetName:     result.SheetName,
		Headers:       result.Headers,
		TotalRecords:  result.TotalRecordCount,
		ChunkCapacity: capacity,
		TotalChunks:   len(result.Chunks),
		Chunks:        make([]ChunkMeta, 0, len(result.Chunks)),
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}
	for _, c := range result.Chunks {
		m.Chunks = append(m.Chunks, ChunkMeta{
			Index:       c.Index,
			FileName:    SafeFileName(c.FileName),
			RecordCount: c.RecordCount,
			SizeBytes:   c.SizeBytes,
			SHA256:      c.SHA256,
		})
	}
	return m
}

// WriteManifest writes m as manifest.json into dir and returns its path.
func WriteManifest(dir string, m *Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFileName)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
