package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFilesystemManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	fasta := filepath.Join(dir, "seqs.fa")
	if err := os.WriteFile(fasta, []byte(">s1\nACGT\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := NewOSFilesystemManager()

	t.Run("resolves regular file", func(t *testing.T) {
		p, err := m.Resolve(fasta)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.String() != fasta {
			t.Errorf("String() = %q, want %q", p.String(), fasta)
		}
		if p.Size() != 9 {
			t.Errorf("Size() = %d, want 9", p.Size())
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		t.Chdir(dir)

		p, err := m.Resolve("seqs.fa")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !filepath.IsAbs(p.String()) {
			t.Errorf("String() = %q, want absolute path", p.String())
		}
	})

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.fa")},
		{name: "directory", path: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Resolve(tt.path); err == nil {
				t.Errorf("Resolve(%q) expected error", tt.path)
			}
		})
	}
}

func TestOSFilesystemManager_MkdirAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blastdb", "nested")

	m := NewOSFilesystemManager()
	if err := m.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}

	// existing directory is fine
	if err := m.MkdirAll(dir); err != nil {
		t.Errorf("second MkdirAll() error = %v", err)
	}
}
