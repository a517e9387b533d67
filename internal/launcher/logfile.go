package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"acestepd/internal/common/fsutil"
)

const (
	// defaultMaxLogSize triggers rotation once a log file grows past it.
	defaultMaxLogSize = 10 << 20
	// rotatedCopies is how many rotated files are kept per log.
	rotatedCopies = 5
)

// RotatingFile is an append-only log file with size-based rotation:
// name -> name.1 -> name.2 ... up to rotatedCopies, oldest dropped.
type RotatingFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	f       *os.File
	size    int64
}

// OpenRotating opens (creating if needed) a rotating log file.
// maxSize <= 0 selects the default.
func OpenRotating(path string, maxSize int64) (*RotatingFile, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxLogSize
	}
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("logs dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &RotatingFile{path: path, maxSize: maxSize, f: f, size: fi.Size()}, nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the underlying file.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

// rotate shifts name.(n-1) -> name.n and reopens a fresh file.
// Callers hold r.mu.
func (r *RotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	for i := rotatedCopies - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", r.path, i)
		to := fmt.Sprintf("%s.%d", r.path, i+1)
		if fsutil.PathExists(from) {
			_ = os.Rename(from, to)
		}
	}
	if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	r.f = f
	r.size = 0
	return nil
}
