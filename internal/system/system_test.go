package system

import (
	"testing"
)

func TestFramePoolReuse(t *testing.T) {
	pool := NewFramePool()

	img := pool.Get(64, 32)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("Expected 64x32 buffer, got %v", img.Bounds())
	}
	pool.Put(img)

	again := pool.Get(64, 32)
	if again.Bounds() != img.Bounds() {
		t.Errorf("Expected same bounds, got %v", again.Bounds())
	}

	other := pool.Get(10, 10)
	if other.Bounds().Dx() != 10 {
		t.Errorf("Expected 10x10 buffer, got %v", other.Bounds())
	}

	// unknown sizes and nil are ignored
	pool.Put(nil)
}

func TestFrameWindow(t *testing.T) {
	tests := []struct {
		name       string
		res        Resources
		workers    int
		frameBytes int
		want       int
	}{
		{"unknown memory", Resources{LogicalCPUs: 8}, 4, 1 << 20, 8},
		{"plenty of memory", Resources{AvailableBytes: 1 << 40}, 4, 1 << 20, 8},
		{"tight memory", Resources{AvailableBytes: 48 << 20}, 8, 1 << 20, 4},
		{"no memory", Resources{AvailableBytes: 1}, 8, 1 << 20, 1},
		{"zero workers", Resources{}, 0, 1 << 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.FrameWindow(tt.workers, tt.frameBytes); got != tt.want {
				t.Errorf("Expected window %d, got %d", tt.want, got)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	res := Probe()
	if res.LogicalCPUs < 1 {
		t.Errorf("Expected at least one CPU, got %d", res.LogicalCPUs)
	}
	t.Logf("CPUs: %d, available memory: %d bytes", res.LogicalCPUs, res.AvailableBytes)
}

func TestDefaultQuality(t *testing.T) {
	if q := DefaultQuality("libx264"); q != 23 {
		t.Errorf("Expected CRF 23 for libx264, got %d", q)
	}
	if q := DefaultQuality("h264_videotoolbox"); q != 75 {
		t.Errorf("Expected 75 for videotoolbox, got %d", q)
	}
}
