package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/rianperez08/Magic-resize/internal/compositor"
	"github.com/rianperez08/Magic-resize/internal/config"
	"github.com/rianperez08/Magic-resize/internal/geometry"
	"github.com/rianperez08/Magic-resize/internal/sequencer"
	"github.com/rianperez08/Magic-resize/internal/source"
	"github.com/rianperez08/Magic-resize/internal/system"
	"github.com/rianperez08/Magic-resize/internal/video"
)

// SinkOpener matches video.Open; tests substitute their own sinks.
type SinkOpener func(ctx context.Context, kind, path string, width, height, fps int, opts video.Options) (video.Sink, error)

type VideoProject struct {
	Config   *config.Config
	OpenSink SinkOpener
	Logf     func(format string, args ...interface{})

	// Filled by Run.
	Canvas      config.Canvas
	TargetWidth int
	Stats       Stats
}

type Stats struct {
	Frames   int
	Workers  int
	Load     time.Duration
	Render   time.Duration
	Finalize time.Duration
	Total    time.Duration
}

func NewVideoProject(cfg *config.Config) *VideoProject {
	p := &VideoProject{
		Config:   cfg,
		OpenSink: video.Open,
	}
	p.Logf = func(format string, args ...interface{}) {
		if !p.Config.Quiet {
			fmt.Printf(format, args...)
		}
	}
	return p
}

// Run loads both images, renders every frame and finalizes the output. The
// sink is closed exactly once; on any failure the partial output is removed.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	pair, err := source.Load(cfg.ImageA, cfg.ImageB, source.Options{
		Height: cfg.Height,
		DPI:    cfg.DPI,
		PageA:  cfg.PageA,
		PageB:  cfg.PageB,
	})
	if err != nil {
		return err
	}
	loadTime := time.Since(startTime)

	width, height := pair.CanvasSize()
	p.Canvas = cfg.Canvas(width, height)
	p.TargetWidth, err = geometry.TargetWidth(width, height)
	if err != nil {
		return err
	}
	ease, err := geometry.NewEasing(cfg.Easing)
	if err != nil {
		return err
	}
	times := sequencer.Times(p.Canvas.FrameCount())

	res := system.Probe()
	workers := cfg.Workers
	if workers <= 0 {
		workers = res.LogicalCPUs
	}
	window := res.FrameWindow(workers, width*height*4)

	p.Logf("--- [PROJECT: MAGIC RESIZE] ---\n")
	p.Logf("[*] A: %s (%dx%d) | B: %s (%dx%d)\n",
		cfg.ImageA, width, height, cfg.ImageB, pair.B.Bounds().Dx(), pair.B.Bounds().Dy())
	p.Logf("[*] Разрешение: %dx%d @ %d FPS | Кадров: %d | Ширина 4:3: %d\n",
		width, height, p.Canvas.FPS, len(times), p.TargetWidth)
	p.Logf("-----------------------------\n")

	opts := video.Options{Encoder: cfg.VideoEncoder, Quality: cfg.Quality}
	if cfg.Sink == config.SinkFFmpeg && (opts.Encoder == "" || opts.Encoder == "auto") {
		opts.Encoder, err = system.GetBestH264Encoder()
		if err != nil {
			p.Logf("[!] Не удалось определить энкодер: %v\n", err)
		}
		if opts.Encoder != "libx264" {
			p.Logf("[*] Обнаружено аппаратное ускорение: %s\n", opts.Encoder)
		}
	}

	if ew, eh := video.EncodedSize(cfg.Sink, width, height); ew != width || eh != height {
		p.Logf("[!] Нечетный размер %dx%d: видео будет дополнено черным до %dx%d\n", width, height, ew, eh)
	}

	sink, err := p.OpenSink(ctx, cfg.Sink, cfg.OutputVideo, width, height, p.Canvas.FPS, opts)
	if err != nil {
		return err
	}
	finalized := false
	defer func() {
		if finalized {
			return
		}
		if abortErr := sink.Abort(); abortErr != nil {
			p.Logf("[!] Не удалось удалить неполный файл %s: %v\n", sink.Path(), abortErr)
		}
	}()

	comp := compositor.New(pair.A, pair.B, cfg.Border)
	render := func(i int) (*image.RGBA, error) {
		t := ease(times[i])
		rect, err := geometry.Sample(t, width, height, p.TargetWidth)
		if err != nil {
			return nil, err
		}
		return comp.Compose(rect, t)
	}

	step := len(times) / 10
	if step < 1 {
		step = 1
	}
	seq := &sequencer.Sequencer{
		Workers: workers,
		Window:  window,
		Release: comp.Release,
		Progress: func(written, total int) {
			if written%step == 0 || written == total {
				p.Logf("[>] Ready: %d/%d\n", written, total)
			}
		},
	}

	renderStart := time.Now()
	if err = seq.Run(ctx, len(times), render, sink); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	finalizeStart := time.Now()
	finalized = true
	if err = sink.Close(); err != nil {
		// handle is released, the container is unusable
		if rmErr := os.Remove(sink.Path()); rmErr != nil && !os.IsNotExist(rmErr) {
			p.Logf("[!] Не удалось удалить неполный файл %s: %v\n", sink.Path(), rmErr)
		}
		return fmt.Errorf("finalize %s: %w", sink.Path(), err)
	}

	p.Stats = Stats{
		Frames:   len(times),
		Workers:  workers,
		Load:     loadTime,
		Render:   renderTime,
		Finalize: time.Since(finalizeStart),
		Total:    time.Since(startTime),
	}
	if cfg.ShowStats {
		p.report()
	}
	return nil
}
