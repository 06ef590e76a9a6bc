package video

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Sink is a sequential frame stream. Frames must be written in presentation
// order and have exactly the size the sink was opened with. Exactly one of
// Close or Abort finalizes the sink; later calls return ErrClosed.
type Sink interface {
	WriteFrame(frame *image.RGBA) error
	// Close finalizes the container.
	Close() error
	// Abort releases the handle and removes the partial output.
	Abort() error
	// Path is the artifact the sink produces.
	Path() string
}

var ErrClosed = errors.New("video sink already closed")

// WriterOpenError reports an output that could not be initialized.
type WriterOpenError struct {
	Path string
	Err  error
}

func (e *WriterOpenError) Error() string {
	return fmt.Sprintf("cannot open video writer %s: %v", e.Path, e.Err)
}

func (e *WriterOpenError) Unwrap() error { return e.Err }

// FrameWriteError reports a failed append after the writer was opened.
type FrameWriteError struct {
	Index int
	Err   error
}

func (e *FrameWriteError) Error() string {
	return fmt.Sprintf("cannot write frame %d: %v", e.Index, e.Err)
}

func (e *FrameWriteError) Unwrap() error { return e.Err }

type Options struct {
	// Encoder and Quality apply to the ffmpeg sink, Quality also to mjpeg
	// (JPEG quality 1-100).
	Encoder string
	Quality int
}

// Open creates the sink named by kind: "ffmpeg", "mjpeg" or "png".
func Open(ctx context.Context, kind, path string, width, height, fps int, opts Options) (Sink, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, &WriterOpenError{Path: path, Err: fmt.Errorf("invalid stream %dx%d @ %d fps", width, height, fps)}
	}
	switch kind {
	case "ffmpeg", "":
		return OpenFFmpeg(ctx, path, width, height, fps, opts)
	case "mjpeg":
		return OpenMJPEG(path, width, height, fps, opts)
	case "png":
		return OpenPNG(path, width, height)
	default:
		return nil, &WriterOpenError{Path: path, Err: fmt.Errorf("unknown sink %q", kind)}
	}
}

// EncodedSize is the resolution the sink of kind stores for width×height
// frames. yuv420p needs even sizes, so ffmpeg pads odd ones by one pixel.
func EncodedSize(kind string, width, height int) (int, int) {
	switch kind {
	case "ffmpeg", "":
		return width + width%2, height + height%2
	default:
		return width, height
	}
}

// checkFrame panics on a size mismatch: the caller built the frame wrong.
func checkFrame(frame *image.RGBA, width, height int) {
	if b := frame.Bounds(); b.Dx() != width || b.Dy() != height {
		panic(fmt.Sprintf("video: frame %dx%d written to %dx%d stream", b.Dx(), b.Dy(), width, height))
	}
}

// packedRGBA returns the frame's pixels as a tightly packed buffer.
func packedRGBA(frame *image.RGBA) []byte {
	b := frame.Bounds()
	if frame.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return frame.Pix[:b.Dx()*b.Dy()*4]
	}
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		out = append(out, frame.Pix[frame.PixOffset(b.Min.X, y):frame.PixOffset(b.Max.X, y)]...)
	}
	return out
}
