package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/rianperez08/Magic-resize/internal/config"
	"github.com/rianperez08/Magic-resize/internal/engine"
)

// LocalExporter runs exports in-process with the frame renderer. Jobs run
// one at a time in submission order.
type LocalExporter struct {
	// Base supplies every option a Job does not carry (sink, encoder,
	// workers, ...).
	Base config.Config

	mu     sync.Mutex
	seq    int
	jobs   map[JobID]*localJob
	queue  chan *localJob
	start  sync.Once
	cancel context.CancelFunc
}

type localJob struct {
	id     JobID
	cfg    *config.Config
	status Status
	err    error
}

func NewLocalExporter(base config.Config) *LocalExporter {
	return &LocalExporter{
		Base:  base,
		jobs:  make(map[JobID]*localJob),
		queue: make(chan *localJob, 16),
	}
}

func (e *LocalExporter) Submit(ctx context.Context, job Job) (JobID, error) {
	cfg := e.Base
	cfg.ImageA, cfg.ImageB, cfg.OutputVideo = job.ImageA, job.ImageB, job.Output
	if job.FPS > 0 {
		cfg.FPS = job.FPS
	}
	if job.Seconds > 0 {
		cfg.Seconds = job.Seconds
	}
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}

	e.start.Do(e.run)

	e.mu.Lock()
	e.seq++
	j := &localJob{id: JobID(fmt.Sprintf("job-%d", e.seq)), cfg: &cfg, status: StatusQueued}
	e.jobs[j.id] = j
	e.mu.Unlock()

	select {
	case e.queue <- j:
		return j.id, nil
	case <-ctx.Done():
		e.setStatus(j, StatusFailed, ctx.Err())
		return "", ctx.Err()
	}
}

func (e *LocalExporter) Status(ctx context.Context, id JobID) (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return j.status, nil
}

func (e *LocalExporter) Failure(id JobID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if j, ok := e.jobs[id]; ok {
		return j.err
	}
	return nil
}

// Close stops the worker; queued jobs that never started are marked failed.
func (e *LocalExporter) Close() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *LocalExporter) run() {
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				e.failQueued(ctx.Err())
				return
			case j := <-e.queue:
				e.setStatus(j, StatusInProgress, nil)
				project := engine.NewVideoProject(j.cfg)
				if err := project.Run(ctx); err != nil {
					e.setStatus(j, StatusFailed, err)
					continue
				}
				e.setStatus(j, StatusDone, nil)
			}
		}
	}()
}

func (e *LocalExporter) failQueued(err error) {
	for {
		select {
		case j := <-e.queue:
			e.setStatus(j, StatusFailed, err)
		default:
			return
		}
	}
}

func (e *LocalExporter) setStatus(j *localJob, s Status, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j.status = s
	j.err = err
}
