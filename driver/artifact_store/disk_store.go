package artifact_store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DiskStore keeps artifacts as flat files named by their key under a root directory.
// Writes go to a temp file in the same directory and are renamed into place, so a reader
// either sees nothing or the complete payload. It is safe for concurrent use.
type DiskStore struct {
	dir            string
	shardPrefixLen int
	bytes          atomic.Int64
	writes         atomic.Int64
}

// Option configures a DiskStore.
type Option func(*DiskStore)

// WithShardPrefixLen nests files under a directory named after the first n characters of
// the file name. Defaults to 0 (flat layout).
func WithShardPrefixLen(n int) Option {
	return func(s *DiskStore) {
		s.shardPrefixLen = n
	}
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(dir string, opts ...Option) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("artifact store dir is empty")
	}
	s := &DiskStore{
		dir: dir,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create artifact store dir: %w", err)
	}
	size, err := dirSize(dir)
	if err != nil {
		return nil, fmt.Errorf("scan artifact store dir: %w", err)
	}
	s.bytes.Store(size)
	return s, nil
}

// Dir returns the root directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Path returns the absolute location for name, or an error when name could escape the root.
func (s *DiskStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if s.shardPrefixLen > 0 && len(name) > s.shardPrefixLen {
		return filepath.Join(s.dir, name[:s.shardPrefixLen], name), nil
	}
	return filepath.Join(s.dir, name), nil
}

// Read returns the stored payload for name. A missing file is reported as found=false
// with a nil error.
func (s *DiskStore) Read(name string) ([]byte, bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a digest, not user input
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Write stores data under name atomically. When another writer already placed the same
// name, the existing file wins and Write returns nil.
func (s *DiskStore) Write(name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(tmpPath)
			return nil
		}
		_ = os.Remove(tmpPath)
		return err
	}
	s.bytes.Add(int64(len(data)))
	s.writes.Add(1)
	return nil
}

// SizeBytes returns the total size of artifacts written or found at startup.
func (s *DiskStore) SizeBytes() int64 {
	return s.bytes.Load()
}

// Writes returns how many artifacts this process has persisted.
func (s *DiskStore) Writes() int64 {
	return s.writes.Load()
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".artifact-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
