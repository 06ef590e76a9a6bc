// Package sequencer enumerates the animation's time samples and streams the
// rendered frames to a sink in strictly increasing order.
package sequencer

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"
)

// Times returns t_i = i/(n-1) for i = 0..n-1, or [1.0] when n == 1.
func Times(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1.0}
	}
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / float64(n-1)
	}
	return ts
}

// RenderFunc produces frame i. It must depend only on i and immutable state.
type RenderFunc func(i int) (*image.RGBA, error)

type FrameWriter interface {
	WriteFrame(frame *image.RGBA) error
}

type Sequencer struct {
	// Workers computing frames in parallel. One or less renders inline.
	Workers int
	// Window bounds frames rendered but not yet written. Defaults to
	// 2*Workers.
	Window int
	// Release, if set, receives each frame after it has been written or
	// discarded.
	Release func(frame *image.RGBA)
	// Progress, if set, is called after each write from the writing
	// goroutine.
	Progress func(written, total int)
}

// Run renders n frames and writes them to w in index order. The first error,
// from rendering or writing, stops the run and is returned.
func (s *Sequencer) Run(ctx context.Context, n int, render RenderFunc, w FrameWriter) error {
	if s.Workers <= 1 {
		return s.runInline(ctx, n, render, w)
	}
	return s.runParallel(ctx, n, render, w)
}

func (s *Sequencer) runInline(ctx context.Context, n int, render RenderFunc, w FrameWriter) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := render(i)
		if err != nil {
			return err
		}
		err = w.WriteFrame(frame)
		s.release(frame)
		if err != nil {
			return err
		}
		s.progress(i+1, n)
	}
	return nil
}

func (s *Sequencer) runParallel(ctx context.Context, n int, render RenderFunc, w FrameWriter) error {
	window := s.Window
	if window <= 0 {
		window = s.Workers * 2
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// tokens are taken in index order, so frame i is always dispatched
	// before the writer waits for it
	tokens := make(chan struct{}, window)
	jobs := make(chan int)
	slots := make([]chan *image.RGBA, n)
	for i := range slots {
		slots[i] = make(chan *image.RGBA, 1)
	}

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case tokens <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for k := 0; k < s.Workers; k++ {
		g.Go(func() error {
			for i := range jobs {
				frame, err := render(i)
				if err != nil {
					return err
				}
				slots[i] <- frame
			}
			return nil
		})
	}

	writeErr := s.writeInOrder(gctx, n, slots, tokens, w)
	if writeErr != nil {
		cancel()
	}
	renderErr := g.Wait()

	// frames finished after an abort are never written
	for _, slot := range slots {
		select {
		case frame := <-slot:
			s.release(frame)
		default:
		}
	}

	if writeErr != nil && writeErr != gctx.Err() {
		return writeErr
	}
	if renderErr != nil {
		return renderErr
	}
	if writeErr != nil {
		return writeErr
	}
	return ctx.Err()
}

func (s *Sequencer) writeInOrder(ctx context.Context, n int, slots []chan *image.RGBA, tokens chan struct{}, w FrameWriter) error {
	for i := 0; i < n; i++ {
		var frame *image.RGBA
		select {
		case frame = <-slots[i]:
		case <-ctx.Done():
			return ctx.Err()
		}

		err := w.WriteFrame(frame)
		s.release(frame)
		<-tokens
		if err != nil {
			return err
		}
		s.progress(i+1, n)
	}
	return nil
}

func (s *Sequencer) release(frame *image.RGBA) {
	if s.Release != nil && frame != nil {
		s.Release(frame)
	}
}

func (s *Sequencer) progress(written, total int) {
	if s.Progress != nil {
		s.Progress(written, total)
	}
}
