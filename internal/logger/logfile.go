// =============================================================================
// whalewatch - Log File Rotation
// =============================================================================
//
// The optional JSON log file grows across runs. LogFile caps it by size:
// before a write would push the file past the limit, the current file is
// renamed to <name>.1, older copies move up one number and the oldest beyond
// the retention count is overwritten.
//
// FILE LAYOUT (keep = 2):
//   whalewatch.log     current
//   whalewatch.log.1   previous
//   whalewatch.log.2   oldest kept
//
// =============================================================================

package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// defaultMaxSizeMB applies when the configured limit is not positive.
const defaultMaxSizeMB = 100

// LogFile is an io.WriteCloser over a size-limited, rotated log file.
// It is safe for concurrent use.
type LogFile struct {
	path  string
	limit int64
	keep  int

	mu      sync.Mutex
	file    *os.File
	written int64
}

// OpenLogFile opens (or creates) the log file at path for appending.
//
// PARAMETERS:
//   - path: Log file location; missing parent directories are created
//   - maxSizeMB: Size in megabytes that triggers a rotation
//   - keep: Number of rotated copies to retain, 0 for none
func OpenLogFile(path string, maxSizeMB, keep int) (*LogFile, error) {
	if path == "" {
		return nil, errors.New("log file path is required")
	}
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}

	lf := &LogFile{
		path:  path,
		limit: int64(maxSizeMB) << 20,
		keep:  max(keep, 0),
	}
	if err := lf.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return lf, nil
}

// Write appends p, rotating first when p would not fit. A single write larger
// than the limit still goes to a fresh file whole.
func (lf *LogFile) Write(p []byte) (int, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.file == nil {
		if err := lf.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if lf.written > 0 && lf.written+int64(len(p)) > lf.limit {
		if err := lf.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := lf.file.Write(p)
	lf.written += int64(n)
	return n, err
}

// Close closes the current file. A later Write reopens it.
func (lf *LogFile) Close() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.file == nil {
		return nil
	}
	err := lf.file.Close()
	lf.file, lf.written = nil, 0
	return err
}

// open opens the current file with O_CREATE|O_WRONLY plus mode and records
// its size.
func (lf *LogFile) open(mode int) error {
	if err := os.MkdirAll(filepath.Dir(lf.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(lf.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	lf.file, lf.written = file, info.Size()
	return nil
}

func (lf *LogFile) rotate() error {
	if lf.file != nil {
		lf.file.Close()
		lf.file = nil
	}

	if lf.keep == 0 {
		if err := os.Remove(lf.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to discard log file: %w", err)
		}
	} else if err := lf.shiftBackups(); err != nil {
		return err
	}

	return lf.open(os.O_TRUNC)
}

// shiftBackups renames name.(k-1) to name.k down to name to name.1.
// Gaps in the sequence are skipped.
func (lf *LogFile) shiftBackups() error {
	for i := lf.keep; i >= 1; i-- {
		from := lf.backupName(i - 1)
		if err := os.Rename(from, lf.backupName(i)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to rotate %s: %w", filepath.Base(from), err)
		}
	}
	return nil
}

// backupName returns the path of the i-th rotated copy; 0 is the live file.
func (lf *LogFile) backupName(i int) string {
	if i == 0 {
		return lf.path
	}
	return fmt.Sprintf("%s.%d", lf.path, i)
}
