package provision

import (
	"errors"
	"testing"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
		want   string
	}{
		{"windows", "amd64", "ncbi-blast-2.15.0+-x64-win64.tar.gz"},
		{"linux", "amd64", "ncbi-blast-2.15.0+-x64-linux.tar.gz"},
		{"linux", "arm64", "ncbi-blast-2.15.0+-aarch64-linux.tar.gz"},
		{"darwin", "amd64", "ncbi-blast-2.15.0+-x64-macosx.tar.gz"},
		{"darwin", "arm64", "ncbi-blast-2.15.0+-x64-macosx.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := ArchiveName("2.15.0", tt.goos, tt.goarch)
			if err != nil {
				t.Fatalf("ArchiveName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ArchiveName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArchiveName_Unsupported(t *testing.T) {
	for _, p := range [][2]string{{"windows", "386"}, {"windows", "arm64"}, {"linux", "riscv64"}, {"freebsd", "amd64"}} {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			_, err := ArchiveName("2.15.0", p[0], p[1])
			if !errors.Is(err, ErrUnsupportedPlatform) {
				t.Errorf("ArchiveName() error = %v, want ErrUnsupportedPlatform", err)
			}
		})
	}

	if _, err := ArchiveName("", "linux", "amd64"); err == nil {
		t.Error("ArchiveName() expected error for empty version")
	}
}

func TestKeys(t *testing.T) {
	key, err := BlastArchiveKey("2.15.0", "linux", "amd64")
	if err != nil {
		t.Fatalf("BlastArchiveKey() error = %v", err)
	}
	if want := "blast/executables/blast+/2.15.0/ncbi-blast-2.15.0+-x64-linux.tar.gz"; key != want {
		t.Errorf("BlastArchiveKey() = %q, want %q", key, want)
	}

	if TaxDBKey != "blast/db/taxdb.tar.gz" {
		t.Errorf("TaxDBKey = %q", TaxDBKey)
	}

	key, err = DatabaseKey("16S_ribosomal_RNA")
	if err != nil {
		t.Fatalf("DatabaseKey() error = %v", err)
	}
	if want := "blast/db/16S_ribosomal_RNA.tar.gz"; key != want {
		t.Errorf("DatabaseKey() = %q, want %q", key, want)
	}

	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b"} {
		if _, err := DatabaseKey(bad); err == nil {
			t.Errorf("DatabaseKey(%q) expected error", bad)
		}
	}
}
