package provision

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeArchive is returned for archive entries that would land outside
// the extraction directory.
var ErrUnsafeArchive = errors.New("archive entry escapes destination")

// ExtractTarGz unpacks a gzip compressed tar stream into dest and returns
// the extracted paths relative to dest. Regular files keep their permission
// bits. Symbolic links must resolve inside dest; other entry types are
// skipped.
//
// Every write goes through an os.Root opened on dest, so links planted by
// earlier entries cannot redirect later ones outside it.
func ExtractTarGz(r io.Reader, dest string) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}
	realDest, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dest, err)
	}
	root, err := os.OpenRoot(realDest)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dest, err)
	}
	defer root.Close()

	var extracted []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return extracted, fmt.Errorf("%w: %q", ErrUnsafeArchive, hdr.Name)
		}
		if err != nil {
			return extracted, fmt.Errorf("reading archive: %w", err)
		}

		name, err := localName(hdr.Name)
		if err != nil {
			return extracted, err
		}
		if escapes(realDest, name) {
			return extracted, fmt.Errorf("%w: %q", ErrUnsafeArchive, hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := root.MkdirAll(name, 0755); err != nil {
				return extracted, fmt.Errorf("creating %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(root, name, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return extracted, err
			}
		case tar.TypeSymlink:
			if err := linkEntry(root, realDest, name, hdr.Linkname); err != nil {
				return extracted, err
			}
		default:
			continue
		}

		extracted = append(extracted, name)
	}
	return extracted, nil
}

// localName cleans an archive entry name into a path relative to the
// extraction directory and rejects names that leave it.
func localName(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeArchive, name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeArchive, name)
	}
	return clean, nil
}

// escapes reports whether name, followed through the links already on disk
// under realDest, resolves outside it. The deepest existing ancestor decides.
func escapes(realDest, name string) bool {
	p := filepath.Join(realDest, name)
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			rel, err := filepath.Rel(realDest, resolved)
			return err != nil || !(rel == "." || filepath.IsLocal(rel))
		}
		parent := filepath.Dir(p)
		if parent == p || len(parent) < len(realDest) {
			return false
		}
		p = parent
	}
}

func linkEntry(root *os.Root, realDest, name, linkname string) error {
	if linkname == "" || filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchive, name, linkname)
	}
	if _, err := localName(filepath.Join(filepath.Dir(name), linkname)); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchive, name, linkname)
	}

	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	root.Remove(name)
	if err := root.Symlink(linkname, name); err != nil {
		return fmt.Errorf("linking %s: %w", name, err)
	}

	if escapes(realDest, name) {
		root.Remove(name)
		return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchive, name, linkname)
	}
	return nil
}

func writeEntry(root *os.Root, name string, r io.Reader, perm os.FileMode) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if perm == 0 {
		perm = 0644
	}

	f, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}
