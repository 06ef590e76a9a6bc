// Package export models an asynchronous video export service: a job is
// submitted once, then its status is polled until it reaches Done or Failed.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Status int

const (
	StatusQueued Status = iota + 1
	StatusInProgress
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// validNext lists the transitions a job may make between two polls.
var validNext = map[Status][]Status{
	StatusQueued:     {StatusQueued, StatusInProgress, StatusDone, StatusFailed},
	StatusInProgress: {StatusInProgress, StatusDone, StatusFailed},
}

// CanTransition reports whether a job observed in from may next be observed
// in to. Terminal states never change.
func CanTransition(from, to Status) bool {
	if from == 0 {
		return to >= StatusQueued && to <= StatusFailed
	}
	for _, s := range validNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

type JobID string

// Job describes one export: the image pair, output and timing parameters.
type Job struct {
	ImageA  string
	ImageB  string
	Output  string
	FPS     int
	Seconds float64
}

// Exporter is the collaborator contract.
type Exporter interface {
	Submit(ctx context.Context, job Job) (JobID, error)
	Status(ctx context.Context, id JobID) (Status, error)
}

// FailureReporter is implemented by exporters that can explain a failure.
type FailureReporter interface {
	Failure(id JobID) error
}

var (
	ErrExportFailed  = errors.New("export failed")
	ErrBadTransition = errors.New("invalid export status transition")
	ErrUnknownJob    = errors.New("unknown export job")
)

// DefaultPollOptions polls every 1.5s, never faster than 100ms or slower
// than 10s.
var DefaultPollOptions = PollOptions{
	Interval:    1500 * time.Millisecond,
	MinInterval: 100 * time.Millisecond,
	MaxInterval: 10 * time.Second,
}

type PollOptions struct {
	Interval    time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	// OnStatus, if set, is called for every observed status.
	OnStatus func(Status)
}

func (o PollOptions) interval() time.Duration {
	d := o.Interval
	if o.MinInterval > 0 && d < o.MinInterval {
		d = o.MinInterval
	}
	if o.MaxInterval > 0 && d > o.MaxInterval {
		d = o.MaxInterval
	}
	if d <= 0 {
		d = DefaultPollOptions.Interval
	}
	return d
}

// Wait polls exp until job id is terminal. A Failed job returns an error
// wrapping ErrExportFailed. Status errors are returned as-is, without retry.
func Wait(ctx context.Context, exp Exporter, id JobID, opts PollOptions) error {
	ticker := time.NewTicker(opts.interval())
	defer ticker.Stop()

	var last Status
	for {
		status, err := exp.Status(ctx, id)
		if err != nil {
			return fmt.Errorf("poll %s: %w", id, err)
		}
		if !CanTransition(last, status) {
			return fmt.Errorf("%w: %s -> %s", ErrBadTransition, last, status)
		}
		last = status
		if opts.OnStatus != nil {
			opts.OnStatus(status)
		}

		switch status {
		case StatusDone:
			return nil
		case StatusFailed:
			if fr, ok := exp.(FailureReporter); ok {
				if cause := fr.Failure(id); cause != nil {
					return fmt.Errorf("%w: %s: %w", ErrExportFailed, id, cause)
				}
			}
			return fmt.Errorf("%w: %s", ErrExportFailed, id)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
