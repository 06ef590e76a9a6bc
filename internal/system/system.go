package system

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Resources describes what the host can give to frame computation.
type Resources struct {
	LogicalCPUs    int
	AvailableBytes uint64
}

// Probe reads CPU and memory availability. Values that cannot be read fall
// back to runtime.NumCPU and zero (unknown) memory.
func Probe() Resources {
	res := Resources{LogicalCPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		res.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		res.AvailableBytes = vm.Available
	}
	return res
}

// FrameWindow returns how many frames may be in flight at once: at most twice
// the worker count, and no more than a quarter of available memory allows.
func (r Resources) FrameWindow(workers int, frameBytes int) int {
	window := workers * 2
	if r.AvailableBytes > 0 && frameBytes > 0 {
		// each in-flight frame holds the output plus two resampled sources
		budget := int(r.AvailableBytes / 4 / uint64(frameBytes*3))
		if budget < window {
			window = budget
		}
	}
	if window < 1 {
		window = 1
	}
	return window
}

// FFmpegAvailable reports whether the ffmpeg binary is on PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func GetBestH264Encoder() (string, error) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264", fmt.Errorf("ffmpeg -encoders: %w", err)
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name, nil
		}
	}
	return "libx264", nil
}

// DefaultQuality picks a quality value matching the encoder's scale.
func DefaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}
