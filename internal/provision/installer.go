package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"blastkit/internal/blast"
)

// Installer downloads archives from a Source and unpacks them: BLAST+
// releases into InstallDir, databases into DBDir.
type Installer struct {
	source     Source
	installDir string
	dbDir      string
	logger     blast.Logger

	// goos and goarch select the release build; they default to the
	// running platform.
	goos   string
	goarch string
}

// NewInstaller creates an installer for the running platform.
func NewInstaller(source Source, installDir, dbDir string, logger blast.Logger) *Installer {
	if logger == nil {
		logger = blast.NewNopLogger()
	}
	return &Installer{
		source:     source,
		installDir: installDir,
		dbDir:      dbDir,
		logger:     logger,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// ForPlatform returns a copy of the installer that picks release builds for
// goos/goarch instead of the running platform.
func (i *Installer) ForPlatform(goos, goarch string) *Installer {
	c := *i
	c.goos = goos
	c.goarch = goarch
	return &c
}

// InstallBLAST downloads and unpacks the BLAST+ release for version and
// returns the directory holding its executables.
func (i *Installer) InstallBLAST(ctx context.Context, version string) (string, error) {
	key, err := BlastArchiveKey(version, i.goos, i.goarch)
	if err != nil {
		return "", err
	}

	if _, err := i.fetchAndExtract(ctx, key, i.installDir); err != nil {
		return "", fmt.Errorf("installing BLAST+ %s: %w", version, err)
	}

	binDir := filepath.Join(i.installDir, ReleaseDir(version), "bin")
	if info, err := os.Stat(binDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("installing BLAST+ %s: archive has no %s directory", version, filepath.Join(ReleaseDir(version), "bin"))
	}

	i.logger.Info("BLAST+ installed", "version", version, "bin_dir", binDir)
	return binDir, nil
}

// FetchTaxDB downloads the taxonomy database into the database directory,
// which lets searches report scientific names.
func (i *Installer) FetchTaxDB(ctx context.Context) ([]string, error) {
	files, err := i.fetchAndExtract(ctx, TaxDBKey, i.dbDir)
	if err != nil {
		return nil, fmt.Errorf("fetching taxonomy database: %w", err)
	}
	i.logger.Info("taxonomy database fetched", "db_dir", i.dbDir, "files", len(files))
	return files, nil
}

// FetchDatabase downloads the preformatted database name into the database
// directory and returns its path for use as a search -db.
func (i *Installer) FetchDatabase(ctx context.Context, name string) (string, error) {
	key, err := DatabaseKey(name)
	if err != nil {
		return "", err
	}

	files, err := i.fetchAndExtract(ctx, key, i.dbDir)
	if err != nil {
		return "", fmt.Errorf("fetching database %s: %w", name, err)
	}

	dbPath := filepath.Join(i.dbDir, name)
	i.logger.Info("database fetched", "name", name, "path", dbPath, "files", len(files))
	return dbPath, nil
}

// fetchAndExtract downloads key to a temp file beside dest, then unpacks it.
func (i *Installer) fetchAndExtract(ctx context.Context, key, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	tmp, err := os.CreateTemp(dest, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	i.logger.Debug("fetching archive", "source", i.source.Name(), "key", key)
	n, err := i.source.Fetch(ctx, key, tmp)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("archive fetched", "key", key, "bytes", n)

	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding download: %w", err)
	}
	return ExtractTarGz(tmp, dest)
}
