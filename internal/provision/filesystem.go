package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystemSource reads archives from a local mirror of the NCBI FTP
// layout:
//
//	<root>/
//	  blast/executables/blast+/<version>/ncbi-blast-<version>+-<platform>.tar.gz
//	  blast/db/taxdb.tar.gz
//	  blast/db/<database>.tar.gz
type FileSystemSource struct {
	root string
}

// NewFileSystemSource creates a source for the mirror at root.
func NewFileSystemSource(root string) (*FileSystemSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("mirror root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mirror root is not a directory: %s", root)
	}
	return &FileSystemSource{root: root}, nil
}

func (s *FileSystemSource) Name() string {
	return s.root
}

func (s *FileSystemSource) Fetch(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	if !fs.ValidPath(key) {
		return 0, fmt.Errorf("invalid archive key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	srcPath := filepath.Join(s.root, filepath.FromSlash(key))
	f, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, srcPath)
		}
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(io.NewOffsetWriter(w, 0), f)
	if err != nil {
		return n, fmt.Errorf("failed to read archive: %w", err)
	}
	return n, nil
}

var _ Source = (*FileSystemSource)(nil)
