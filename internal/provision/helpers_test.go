package provision

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
)

type tarEntry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

// makeTarGz builds a gzip compressed tar archive from entries.
func makeTarGz(t *testing.T, entries ...tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := e.mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     mode,
			Size:     int64(len(e.body)),
			Typeflag: typeflag,
			Linkname: e.linkname,
		}
		if typeflag != tar.TypeReg {
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s) error = %v", e.name, err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("Write(%s) error = %v", e.name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close() error = %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip Close() error = %v", err)
	}
	return buf.Bytes()
}

// blastRelease builds a minimal release archive for version.
func blastRelease(t *testing.T, version string) []byte {
	t.Helper()
	dir := ReleaseDir(version)
	return makeTarGz(t,
		tarEntry{name: dir + "/", typeflag: tar.TypeDir, mode: 0755},
		tarEntry{name: dir + "/bin/", typeflag: tar.TypeDir, mode: 0755},
		tarEntry{name: dir + "/bin/blastn", body: "#!/bin/sh\necho blastn: " + version + "+\n", mode: 0755},
		tarEntry{name: dir + "/bin/makeblastdb", body: "#!/bin/sh\n", mode: 0755},
		tarEntry{name: dir + "/ChangeLog", body: "changes\n"},
	)
}
