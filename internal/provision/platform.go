package provision

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned for an OS/architecture NCBI does not
// publish a BLAST+ build for.
var ErrUnsupportedPlatform = errors.New("unsupported OS or architecture")

// ArchiveName returns the release archive file name for version on
// goos/goarch, using Go's GOOS and GOARCH spellings.
func ArchiveName(version, goos, goarch string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("empty BLAST+ version")
	}

	var suffix string
	switch {
	case goos == "windows" && goarch == "amd64":
		suffix = "x64-win64"
	case goos == "linux" && goarch == "amd64":
		suffix = "x64-linux"
	case goos == "linux" && goarch == "arm64":
		suffix = "aarch64-linux"
	case goos == "darwin":
		// a single x64 build covers Apple silicon through Rosetta
		suffix = "x64-macosx"
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return fmt.Sprintf("ncbi-blast-%s+-%s.tar.gz", version, suffix), nil
}

// ReleaseDir is the top-level directory a release archive unpacks to.
func ReleaseDir(version string) string {
	return fmt.Sprintf("ncbi-blast-%s+", version)
}
