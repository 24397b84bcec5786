package journal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore persists journal lines in a local plain-text file, one clue per
// line. Thread-safe for concurrent use. A missing file reads as an empty
// journal.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path.
// The file is created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append implements [Store.Append].
func (fs *FileStore) Append(ctx context.Context, e Entry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(e.Line() + "\n"); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	return nil
}

// ReadAll implements [Store.ReadAll]. A missing file is an empty journal,
// not an error.
func (fs *FileStore) ReadAll(ctx context.Context) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("journal: read file: %w", err)
	}

	raw := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// Clear implements [Store.Clear]. Clearing a journal that never existed is
// not an error.
func (fs *FileStore) Clear(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("journal: clear: %w", err)
	}
	return nil
}
