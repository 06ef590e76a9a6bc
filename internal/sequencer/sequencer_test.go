package sequencer

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{0, nil},
		{1, []float64{1.0}},
		{2, []float64{0, 1}},
		{5, []float64{0, 0.25, 0.5, 0.75, 1}},
	}

	for _, tt := range tests {
		got := Times(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("n=%d: expected %d samples, got %d", tt.n, len(tt.want), len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("n=%d: t[%d] = %f, expected %f", tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

// recorder stores the index encoded in each frame's first pixel.
type recorder struct {
	mu      sync.Mutex
	order   []int
	failAt  int
	written int
}

func (r *recorder) WriteFrame(frame *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt >= 0 && r.written == r.failAt {
		return errors.New("disk full")
	}
	r.order = append(r.order, int(frame.Pix[0])|int(frame.Pix[1])<<8)
	r.written++
	return nil
}

func indexFrame(i int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0] = uint8(i)
	img.Pix[1] = uint8(i >> 8)
	return img
}

func TestRunWritesInOrder(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		rec := &recorder{failAt: -1}
		var released int32
		seq := &Sequencer{
			Workers: workers,
			Release: func(*image.RGBA) { atomic.AddInt32(&released, 1) },
		}

		render := func(i int) (*image.RGBA, error) {
			time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)
			return indexFrame(i), nil
		}

		const n = 120
		if err := seq.Run(context.Background(), n, render, rec); err != nil {
			t.Fatalf("workers=%d: Run failed: %v", workers, err)
		}
		if len(rec.order) != n {
			t.Fatalf("workers=%d: expected %d frames, got %d", workers, n, len(rec.order))
		}
		for i, idx := range rec.order {
			if idx != i {
				t.Fatalf("workers=%d: position %d holds frame %d", workers, i, idx)
			}
		}
		if released != n {
			t.Errorf("workers=%d: expected %d releases, got %d", workers, n, released)
		}
	}
}

func TestRunProgress(t *testing.T) {
	var calls []int
	seq := &Sequencer{
		Workers:  3,
		Progress: func(written, total int) { calls = append(calls, written) },
	}
	err := seq.Run(context.Background(), 10, func(i int) (*image.RGBA, error) {
		return indexFrame(i), nil
	}, &recorder{failAt: -1})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 10 || calls[9] != 10 {
		t.Errorf("Unexpected progress calls: %v", calls)
	}
}

func TestRunRenderError(t *testing.T) {
	boom := errors.New("resample failed")
	for _, workers := range []int{1, 4} {
		rec := &recorder{failAt: -1}
		seq := &Sequencer{Workers: workers}
		err := seq.Run(context.Background(), 50, func(i int) (*image.RGBA, error) {
			if i == 20 {
				return nil, boom
			}
			return indexFrame(i), nil
		}, rec)

		if !errors.Is(err, boom) {
			t.Errorf("workers=%d: expected render error, got %v", workers, err)
		}
		if len(rec.order) > 20 {
			t.Errorf("workers=%d: frames after the failed one were written: %d", workers, len(rec.order))
		}
	}
}

func TestRunWriteError(t *testing.T) {
	for _, workers := range []int{1, 4} {
		rec := &recorder{failAt: 7}
		var rendered int32
		seq := &Sequencer{Workers: workers, Window: 4}
		err := seq.Run(context.Background(), 200, func(i int) (*image.RGBA, error) {
			atomic.AddInt32(&rendered, 1)
			return indexFrame(i), nil
		}, rec)

		if err == nil || err.Error() != "disk full" {
			t.Errorf("workers=%d: expected write error, got %v", workers, err)
		}
		if len(rec.order) != 7 {
			t.Errorf("workers=%d: expected 7 frames before failure, got %d", workers, len(rec.order))
		}
		if rendered > 7+1+4 {
			t.Errorf("workers=%d: rendering ran ahead of the window: %d frames", workers, rendered)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq := &Sequencer{Workers: 2}
	err := seq.Run(ctx, 10, func(i int) (*image.RGBA, error) {
		return indexFrame(i), nil
	}, &recorder{failAt: -1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
