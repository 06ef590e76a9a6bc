package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BenchmarkLog is appended to after every run with stats enabled.
var BenchmarkLog = "benchmark.log"

func (p *VideoProject) report() {
	s := p.Stats
	fps := float64(s.Frames) / s.Total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Loading: %.2fs\n"+
			"Rendering (%d workers): %.2fs\n"+
			"Finalize: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		s.Total.Seconds(), s.Load.Seconds(), s.Workers, s.Render.Seconds(), s.Finalize.Seconds(), fps,
	)
	p.Logf("%s", report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] A: %s | B: %s | Frames: %d | Size: %dx%d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		filepath.Base(p.Config.ImageA),
		filepath.Base(p.Config.ImageB),
		s.Frames,
		p.Canvas.Width, p.Canvas.Height,
		s.Total.Seconds(),
		s.Render.Seconds(),
		fps,
	)

	f, err := os.OpenFile(BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Logf("[!] Не удалось записать %s: %v\n", BenchmarkLog, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		p.Logf("[!] Не удалось записать %s: %v\n", BenchmarkLog, err)
	}
}
