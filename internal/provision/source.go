// Package provision downloads BLAST+ releases and NCBI database archives
// and unpacks them locally.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
)

// ErrNotFound is returned when a source has no object for a key.
var ErrNotFound = errors.New("archive not found")

// Source fetches archives by key. Keys are slash separated paths laid out
// like the NCBI FTP site, e.g. "blast/db/taxdb.tar.gz".
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch writes the object stored under key to w and returns its size.
	Fetch(ctx context.Context, key string, w io.WriterAt) (int64, error)
}

// Well-known keys.
const (
	executablesPrefix = "blast/executables/blast+"
	databasesPrefix   = "blast/db"
)

// TaxDBKey is the key of the taxonomy database archive.
var TaxDBKey = path.Join(databasesPrefix, "taxdb.tar.gz")

// BlastArchiveKey returns the key of the BLAST+ release archive for version
// on goos/goarch.
func BlastArchiveKey(version, goos, goarch string) (string, error) {
	name, err := ArchiveName(version, goos, goarch)
	if err != nil {
		return "", err
	}
	return path.Join(executablesPrefix, version, name), nil
}

// DatabaseKey returns the key of a preformatted database archive.
func DatabaseKey(name string) (string, error) {
	if name == "" || path.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("invalid database name %q", name)
	}
	return path.Join(databasesPrefix, name+".tar.gz"), nil
}
