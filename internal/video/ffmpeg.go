package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rianperez08/Magic-resize/internal/system"
)

// FFmpegSink pipes raw RGBA frames into an ffmpeg process that encodes H.264.
type FFmpegSink struct {
	path          string
	width, height int
	frames        int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *syncBuffer
	closed bool
}

func OpenFFmpeg(ctx context.Context, path string, width, height, fps int, opts Options) (*FFmpegSink, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, &WriterOpenError{Path: path, Err: err}
	}

	args := buildFFmpegArgs(path, width, height, fps, opts)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	// exec copies the process output from its own goroutine
	stderr := &syncBuffer{}
	cmd.Stdout = stderr
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &WriterOpenError{Path: path, Err: fmt.Errorf("stdin pipe error: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		return nil, &WriterOpenError{Path: path, Err: fmt.Errorf("ffmpeg start error: %w", err)}
	}

	return &FFmpegSink{
		path:   path,
		width:  width,
		height: height,
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
	}, nil
}

func buildFFmpegArgs(path string, width, height, fps int, opts Options) []string {
	encoderName := opts.Encoder
	if encoderName == "" {
		encoderName = "libx264"
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = system.DefaultQuality(encoderName)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
	}

	// yuv420p не допускает нечетных размеров: дополняем на один пиксель
	if ew, eh := EncodedSize("ffmpeg", width, height); ew != width || eh != height {
		args = append(args, "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2:0:0:black")
	}

	args = append(args,
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	)

	// Качество в зависимости от энкодера
	switch encoderName {
	case "h264_videotoolbox":
		bitrate := quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args, path)
	return args
}

func (s *FFmpegSink) Path() string { return s.path }

func (s *FFmpegSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	checkFrame(frame, s.width, s.height)

	if _, err := s.stdin.Write(packedRGBA(frame)); err != nil {
		return &FrameWriteError{Index: s.frames, Err: s.withLog(err)}
	}
	s.frames++
	return nil
}

func (s *FFmpegSink) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", s.withLog(err))
	}
	return nil
}

func (s *FFmpegSink) Abort() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FFmpegSink) withLog(err error) error {
	if out := strings.TrimSpace(s.stderr.String()); out != "" {
		return fmt.Errorf("%w, output: %s", err, out)
	}
	return err
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
