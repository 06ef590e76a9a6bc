package video

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/icza/mjpeg"
)

// MJPEGSink writes an AVI container with one Motion JPEG stream without any
// external tools.
type MJPEGSink struct {
	path          string
	width, height int
	quality       int
	frames        int

	aw     mjpeg.AviWriter
	buf    bytes.Buffer
	closed bool
}

func OpenMJPEG(path string, width, height, fps int, opts Options) (*MJPEGSink, error) {
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, &WriterOpenError{Path: path, Err: err}
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &MJPEGSink{path: path, width: width, height: height, quality: quality, aw: aw}, nil
}

func (s *MJPEGSink) Path() string { return s.path }

func (s *MJPEGSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	checkFrame(frame, s.width, s.height)

	s.buf.Reset()
	if err := jpeg.Encode(&s.buf, frame, &jpeg.Options{Quality: s.quality}); err != nil {
		return &FrameWriteError{Index: s.frames, Err: fmt.Errorf("encode JPEG: %w", err)}
	}
	if err := s.aw.AddFrame(s.buf.Bytes()); err != nil {
		return &FrameWriteError{Index: s.frames, Err: err}
	}
	s.frames++
	return nil
}

func (s *MJPEGSink) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return s.aw.Close()
}

func (s *MJPEGSink) Abort() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.aw.Close()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
