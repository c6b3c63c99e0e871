package blast

// FilesystemManager is the slice of the filesystem the service touches:
// resolving input files and creating the managed database directory.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and checks that it names an existing
	// regular file.
	Resolve(rawPath string) (*Path, error)

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}

// Path is an input file that has been resolved by a FilesystemManager.
type Path struct {
	absPath string
	size    int64
}

// NewPath creates a Path. Intended for FilesystemManager implementations.
func NewPath(absPath string, size int64) *Path {
	return &Path{absPath: absPath, size: size}
}

// String returns the absolute path.
func (p *Path) String() string { return p.absPath }

// Size returns the file size observed at resolution time.
func (p *Path) Size() int64 { return p.size }
