package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rianperez08/Magic-resize/internal/config"
	"github.com/rianperez08/Magic-resize/internal/engine"
	"github.com/rianperez08/Magic-resize/internal/export"
)

// runOptions are the flags that steer the CLI itself rather than a render.
type runOptions struct {
	async bool
	poll  time.Duration
}

func main() {
	cfg, opts, err := parseArgs(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.async {
		err = runAsync(ctx, cfg, opts.poll)
	} else {
		err = engine.NewVideoProject(cfg).Run(ctx)
	}
	if err != nil {
		stop()
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// parseArgs builds the run configuration: defaults, then the -config file,
// then explicit flags. The result is validated.
func parseArgs(name string, args []string) (*config.Config, runOptions, error) {
	cfg := config.Default()
	var opts runOptions

	// Файл задания читается до флагов: явно указанные флаги важнее
	if path := configPath(args); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, opts, err
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("config", "", "YAML-файл задания (значения флагов имеют приоритет)")
	fs.StringVar(&cfg.ImageA, "a", cfg.ImageA, "Первое изображение (16:9), PNG/JPEG/BMP/TIFF/WebP или PDF")
	fs.StringVar(&cfg.ImageB, "b", cfg.ImageB, "Второе изображение (4:3)")
	fs.StringVar(&cfg.OutputVideo, "out", cfg.OutputVideo, "Путь к видео (для -sink png: папка с кадрами)")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS")
	fs.Float64Var(&cfg.Seconds, "seconds", cfg.Seconds, "Длительность анимации (сек)")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Высота кадра (0 - высота изображения A)")
	fs.StringVar(&cfg.Sink, "sink", cfg.Sink, "Вывод: ffmpeg (H.264), mjpeg (AVI без ffmpeg), png (последовательность кадров)")
	fs.StringVar(&cfg.VideoEncoder, "encoder", cfg.VideoEncoder, "Энкодер ffmpeg (пусто или auto - автоопределение)")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "Качество (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с, mjpeg: 1-100)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Потоки рендера (0 - по числу CPU)")
	fs.StringVar(&cfg.Easing, "easing", cfg.Easing, "Сглаживание: linear, cosine, cubic")
	fs.IntVar(&cfg.Border, "border", cfg.Border, "Толщина белой рамки (px)")
	fs.IntVar(&cfg.DPI, "dpi", cfg.DPI, "DPI для PDF")
	fs.IntVar(&cfg.PageA, "page-a", cfg.PageA, "Страница PDF для A (с 0)")
	fs.IntVar(&cfg.PageB, "page-b", cfg.PageB, "Страница PDF для B (с 0)")
	fs.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "Показать отчет о производительности")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Не выводить прогресс")
	fs.BoolVar(&opts.async, "async", false, "Запустить как задание экспорта и опрашивать статус")
	fs.DurationVar(&opts.poll, "poll", export.DefaultPollOptions.Interval, "Интервал опроса статуса для -async")
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	if err := cfg.Validate(); err != nil {
		fs.Usage()
		return nil, opts, err
	}
	return cfg, opts, nil
}

func runAsync(ctx context.Context, cfg *config.Config, interval time.Duration) error {
	exp := export.NewLocalExporter(*cfg)
	defer exp.Close()

	id, err := exp.Submit(ctx, export.Job{
		ImageA:  cfg.ImageA,
		ImageB:  cfg.ImageB,
		Output:  cfg.OutputVideo,
		FPS:     cfg.FPS,
		Seconds: cfg.Seconds,
	})
	if err != nil {
		return err
	}
	fmt.Printf("[*] Задание экспорта: %s\n", id)

	opts := export.DefaultPollOptions
	opts.Interval = interval
	opts.OnStatus = func(s export.Status) {
		fmt.Printf("[*] Статус %s: %s\n", id, s)
	}
	return export.Wait(ctx, exp, id, opts)
}

// configPath finds -config/--config among args without parsing the rest.
func configPath(args []string) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(name, "config=") {
			return strings.TrimPrefix(name, "config=")
		}
	}
	return ""
}
