package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/output"
)

// Job states reported by the API.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

var errJobNotFound = errors.New("conversion not found")

// Job is one conversion started through the API. Its chunks are written to a
// private directory and its events are kept so late subscribers can replay
// them.
type Job struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	worker *xlsplit.Worker
	sink   *output.DirSink

	mu         sync.Mutex
	events     []xlsplit.Event
	changed    chan struct{}
	state      string
	progress   *xlsplit.ProgressEvent
	chunks     []models.Chunk
	result     *models.ConversionResult
	errMsg     string
	finishedAt time.Time
	done       chan struct{}
}

// JobSnapshot is the JSON view of a job.
type JobSnapshot struct {
	ID         string                   `json:"id"`
	FileName   string                   `json:"file_name"`
	State      string                   `json:"state"`
	Progress   *xlsplit.ProgressEvent   `json:"progress,omitempty"`
	Chunks     []models.Chunk           `json:"chunks"`
	Result     *models.ConversionResult `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	FinishedAt *time.Time               `json:"finished_at,omitempty"`
}

// Snapshot returns the current state of the job.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := JobSnapshot{
		ID:        j.ID,
		FileName:  j.FileName,
		State:     j.state,
		Chunks:    append([]models.Chunk{}, j.chunks...),
		Result:    j.result,
		Error:     j.errMsg,
		CreatedAt: j.CreatedAt,
	}
	if j.progress != nil {
		p := *j.progress
		snap.Progress = &p
	}
	if !j.finishedAt.IsZero() {
		t := j.finishedAt
		snap.FinishedAt = &t
	}
	return snap
}

// Chunk returns the metadata of a chunk flushed so far.
func (j *Job) Chunk(index int) (models.Chunk, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.chunks {
		if c.Index == index {
			return c, true
		}
	}
	return models.Chunk{}, false
}

// ChunkPath returns where a chunk's file is stored.
func (j *Job) ChunkPath(c models.Chunk) string {
	return j.sink.Path(c.FileName)
}

// Done is closed when the job reached a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// EventsSince returns the events recorded from index from on, a channel
// closed on the next change, and whether the job is finished.
func (j *Job) EventsSince(from int) ([]xlsplit.Event, <-chan struct{}, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var evs []xlsplit.Event
	if from < len(j.events) {
		evs = append(evs, j.events[from:]...)
	}
	return evs, j.changed, j.state != JobRunning
}

func (j *Job) record(ev xlsplit.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch ev := ev.(type) {
	case xlsplit.ProgressEvent:
		j.progress = &ev
	case xlsplit.ChunkReadyEvent:
		j.chunks = append(j.chunks, ev.Chunk)
	case xlsplit.CompletedEvent:
		res := ev.Result
		j.result = &res
		j.state = JobCompleted
	case xlsplit.FailedEvent:
		j.errMsg = ev.Message
		j.state = JobFailed
	case xlsplit.CancelledEvent:
		j.state = JobCancelled
	}
	j.events = append(j.events, ev)
	j.broadcast()
}

// finish marks the job terminal once its event channel is drained. A job
// whose worker was cancelled before it could report is marked cancelled.
func (j *Job) finish() {
	j.mu.Lock()
	if j.state == JobRunning {
		j.state = JobCancelled
		j.events = append(j.events, xlsplit.CancelledEvent{})
	}
	j.finishedAt = time.Now()
	j.broadcast()
	j.mu.Unlock()
	close(j.done)
}

// broadcast wakes every waiter. Callers hold j.mu.
func (j *Job) broadcast() {
	close(j.changed)
	j.changed = make(chan struct{})
}

func (j *Job) expired(now time.Time, ttl time.Duration) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state != JobRunning && !j.finishedAt.IsZero() && now.Sub(j.finishedAt) > ttl
}

// Store owns the running and finished jobs.
type Store struct {
	workDir string
	opts    xlsplit.Options
	log     logrus.FieldLogger

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates a store keeping job directories under workDir.
func NewStore(workDir string, opts xlsplit.Options, log logrus.FieldLogger) (*Store, error) {
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "xlsplit")
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Store{
		workDir: workDir,
		opts:    opts,
		log:     log,
		jobs:    make(map[string]*Job),
	}, nil
}

// Start creates a job for req and begins converting it.
func (s *Store) Start(req xlsplit.ConvertRequest) (*Job, error) {
	id := uuid.New().String()
	sink, err := output.NewDirSink(filepath.Join(s.workDir, id))
	if err != nil {
		return nil, err
	}

	log := s.log.WithField("job", id)
	opts := s.opts
	opts.Sink = sink.Write
	opts.Content = xlsplit.ContentMetadata
	opts.Logger = log

	job := &Job{
		ID:        id,
		FileName:  req.FileName,
		CreatedAt: time.Now(),
		worker:    xlsplit.NewWorker(opts),
		sink:      sink,
		changed:   make(chan struct{}),
		state:     JobRunning,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	events := job.worker.Convert(req)
	go func() {
		for ev := range events {
			job.record(ev)
		}
		job.worker.Close()
		job.finish()
		log.WithField("state", job.Snapshot().State).Info("job finished")
	}()

	log.WithField("file", req.FileName).Info("job started")
	return job, nil
}

// Get returns the job with the given id.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errJobNotFound
	}
	return job, nil
}

// Delete cancels the job, waits for it to stop and removes its files.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()
	if !ok {
		return errJobNotFound
	}
	return s.remove(job)
}

// Sweep removes finished jobs older than ttl and returns how many were removed.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	var expired []*Job
	for id, job := range s.jobs {
		if job.expired(now, ttl) {
			expired = append(expired, job)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, job := range expired {
		if err := s.remove(job); err != nil {
			s.log.WithError(err).WithField("job", job.ID).Warn("failed to remove expired job")
		}
	}
	return len(expired)
}

// Close cancels every job and waits for them to stop. Job files are kept.
func (s *Store) Close() {
	s.mu.RLock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.mu.RUnlock()

	for _, job := range jobs {
		job.worker.Cancel()
	}
	for _, job := range jobs {
		<-job.done
	}
}

func (s *Store) remove(job *Job) error {
	job.worker.Cancel()
	<-job.done
	if err := os.RemoveAll(job.sink.Dir()); err != nil {
		return fmt.Errorf("remove job %s: %w", job.ID, err)
	}
	s.log.WithField("job", job.ID).Info("job removed")
	return nil
}
