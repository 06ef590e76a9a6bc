package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes every frame as frame_00000.png, frame_00001.png, ... into a
// directory. Useful for inspecting single frames or feeding other tools.
type PNGSink struct {
	dir           string
	width, height int
	written       []string
	encoder       png.Encoder
	closed        bool
}

func OpenPNG(dir string, width, height int) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &WriterOpenError{Path: dir, Err: err}
	}
	return &PNGSink{
		dir:     dir,
		width:   width,
		height:  height,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

func (s *PNGSink) Path() string { return s.dir }

func (s *PNGSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	checkFrame(frame, s.width, s.height)

	index := len(s.written)
	name := filepath.Join(s.dir, fmt.Sprintf("frame_%05d.png", index))
	f, err := os.Create(name)
	if err != nil {
		return &FrameWriteError{Index: index, Err: err}
	}
	s.written = append(s.written, name)

	if err := s.encoder.Encode(f, frame); err != nil {
		f.Close()
		return &FrameWriteError{Index: index, Err: err}
	}
	if err := f.Close(); err != nil {
		return &FrameWriteError{Index: index, Err: err}
	}
	return nil
}

func (s *PNGSink) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

// Abort removes the frames written so far; the directory itself stays.
func (s *PNGSink) Abort() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	var firstErr error
	for _, name := range s.written {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
