package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := xlsplit.ListSheets(xlsplit.ListSheetsRequest{Data: data, FileName: name})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sheet_names": names})
}

func (s *Server) handleStartConversion(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chunkSize := s.chunkSize
	if v := r.FormValue("chunk_size"); v != "" {
		chunkSize, err = strconv.Atoi(v)
		if err != nil || chunkSize <= 0 {
			writeError(w, http.StatusBadRequest, "chunk_size must be a positive integer")
			return
		}
	}

	req := xlsplit.ConvertRequest{
		Data:          data,
		FileName:      name,
		SheetName:     r.FormValue("sheet"),
		ChunkCapacity: chunkSize,
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.Start(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Location", "/conversions/"+job.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID})
}

func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleEvents streams the job's events as Server-Sent Events, replaying
// those already recorded and following new ones until the job ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	next := 0
	for {
		evs, changed, finished := job.EventsSince(next)
		for _, ev := range evs {
			if err := writeEvent(w, next, ev); err != nil {
				s.log.WithError(err).WithField("job", job.ID).Debug("event stream closed")
				return
			}
			next++
		}
		_ = rc.Flush()
		if finished && len(evs) == 0 {
			return
		}
		if finished {
			continue
		}

		select {
		case <-changed:
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleDownloadChunk(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "chunk index must be an integer")
		return
	}
	chunk, ok := job.Chunk(index)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("chunk %d not found", index))
		return
	}

	path := job.ChunkPath(chunk)
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusGone, "chunk file is no longer available")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("X-Chunk-SHA256", chunk.SHA256)
	http.ServeContent(w, r, filepath.Base(path), stat.ModTime(), f)
}

func (s *Server) handleDeleteConversion(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, errJobNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUpload reads the "file" form field, bounded by the configured size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", fmt.Errorf("invalid upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("uploaded file is empty")
	}
	return data, filepath.Base(header.Filename), nil
}

// writeEvent writes ev as one SSE frame. Chunk contents never go on the wire.
func writeEvent(w io.Writer, id int, ev xlsplit.Event) error {
	var payload any
	switch ev := ev.(type) {
	case xlsplit.ChunkReadyEvent:
		payload = ev.Chunk.Metadata()
	case xlsplit.CompletedEvent:
		res := ev.Result
		res.Chunks = make([]models.Chunk, len(ev.Result.Chunks))
		for i, c := range ev.Result.Chunks {
			res.Chunks[i] = c.Metadata()
		}
		payload = res
	default:
		payload = ev
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, ev.Kind(), data)
	return err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, xlsplit.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, xlsplit.ErrInvalidSource):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
