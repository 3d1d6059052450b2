package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// FrameWriter is a colonize.Observer that writes a numbered PNG frame,
// frame_00001.png onwards, into Dir for every snapshot of a run.
//
// Write errors do not interrupt the simulation. The first one is kept and
// reported by Err; later snapshots are skipped.
type FrameWriter struct {
	colonize.NopObserver

	Dir     string
	Options Options

	mu    sync.Mutex
	count int
	paths []string
	err   error
}

// NewFrameWriter creates dir if needed and validates the drawing options.
func NewFrameWriter(dir string, opts Options) (*FrameWriter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &FrameWriter{Dir: dir, Options: opts}, nil
}

// OnSnapshot renders and writes the next frame.
func (f *FrameWriter) OnSnapshot(_ int, segs []tree.Segment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return
	}
	path := filepath.Join(f.Dir, fmt.Sprintf("frame_%05d.png", f.count+1))
	if err := f.write(path, segs); err != nil {
		f.err = err
		return
	}
	f.count++
	f.paths = append(f.paths, path)
}

func (f *FrameWriter) write(path string, segs []tree.Segment) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := WritePNG(out, segs, f.Options); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Frames returns the paths written so far, in order.
func (f *FrameWriter) Frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// Err returns the first write error, if any.
func (f *FrameWriter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
