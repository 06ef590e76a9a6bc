package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SinkFFmpeg = "ffmpeg"
	SinkMJPEG  = "mjpeg"
	SinkPNG    = "png"
)

type Config struct {
	ImageA       string  `yaml:"a"`
	ImageB       string  `yaml:"b"`
	OutputVideo  string  `yaml:"out"`
	FPS          int     `yaml:"fps"`
	Seconds      float64 `yaml:"seconds"`
	Height       int     `yaml:"height"`
	Sink         string  `yaml:"sink"`
	VideoEncoder string  `yaml:"encoder"`
	Quality      int     `yaml:"quality"`
	Workers      int     `yaml:"workers"`
	Easing       string  `yaml:"easing"`
	Border       int     `yaml:"border"`
	DPI          int     `yaml:"dpi"`
	PageA        int     `yaml:"page_a"`
	PageB        int     `yaml:"page_b"`
	ShowStats    bool    `yaml:"stats"`
	Quiet        bool    `yaml:"quiet"`
}

// Default returns the configuration used when neither a file nor a flag
// overrides a value.
func Default() *Config {
	return &Config{
		FPS:     30,
		Seconds: 2.0,
		Sink:    SinkFFmpeg,
		Easing:  "linear",
		Border:  2,
		DPI:     150,
	}
}

// LoadFile overlays the YAML job file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.ImageA == "" {
		missing = append(missing, "--a")
	}
	if c.ImageB == "" {
		missing = append(missing, "--b")
	}
	if c.OutputVideo == "" {
		missing = append(missing, "--out")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required arguments: %s", strings.Join(missing, ", "))
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Seconds <= 0 || math.IsNaN(c.Seconds) || math.IsInf(c.Seconds, 0) {
		return fmt.Errorf("seconds must be a positive number, got %v", c.Seconds)
	}
	switch c.Sink {
	case SinkFFmpeg, SinkMJPEG, SinkPNG:
	default:
		return fmt.Errorf("unknown sink %q (ffmpeg, mjpeg, png)", c.Sink)
	}
	switch c.Easing {
	case "linear", "cosine", "cubic":
	default:
		return fmt.Errorf("unknown easing %q (linear, cosine, cubic)", c.Easing)
	}
	if c.Height < 0 {
		return fmt.Errorf("height must not be negative, got %d", c.Height)
	}
	if c.Border < 0 {
		return fmt.Errorf("border must not be negative, got %d", c.Border)
	}
	if c.PageA < 0 || c.PageB < 0 {
		return fmt.Errorf("page index must not be negative")
	}
	return nil
}

// Canvas is the output video geometry. It is fixed for a whole run.
type Canvas struct {
	Width, Height int
	FPS           int
	Seconds       float64
}

func (c *Config) Canvas(width, height int) Canvas {
	return Canvas{Width: width, Height: height, FPS: c.FPS, Seconds: c.Seconds}
}

// FrameCount is max(2, round(fps*seconds)).
func (c Canvas) FrameCount() int {
	n := int(math.Round(float64(c.FPS) * c.Seconds))
	if n < 2 {
		n = 2
	}
	return n
}

// Duration is the exact length of the encoded stream in seconds.
func (c Canvas) Duration() float64 {
	return float64(c.FrameCount()) / float64(c.FPS)
}
