package blast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// LocalDB owns one locally built BLAST database. ID and Path are assigned
// once, by Create or OpenLocalDB; Info is replaced on every LoadInfo.
type LocalDB struct {
	ID        string
	Path      string
	TaxID     int
	CreatedAt time.Time
	Info      *DatabaseInfo

	svc *Service
}

// NewLocalDB returns an empty database handle that Create will build.
func (s *Service) NewLocalDB() *LocalDB {
	return &LocalDB{TaxID: s.cfg.TaxID, svc: s}
}

// OpenLocalDB returns a handle for a database that already exists at path.
// Its ID is the last path element.
func (s *Service) OpenLocalDB(path string) *LocalDB {
	return &LocalDB{
		ID:    filepath.Base(path),
		Path:  path,
		TaxID: s.cfg.TaxID,
		svc:   s,
	}
}

// Create builds the database from fastaPath with makeblastdb and loads its
// info. An empty name is replaced by a generated unique ID. The database is
// written to <db dir>/<id> and that path is returned.
//
// makeblastdb cannot parse an -in path containing a space, so such paths
// are rejected with ErrInvalidFastaPath before anything runs.
func (l *LocalDB) Create(ctx context.Context, fastaPath, name string) (string, error) {
	if l.Path != "" {
		return "", fmt.Errorf("%w: %s", ErrAlreadyCreated, l.Path)
	}

	fasta, err := l.svc.fsmgr.Resolve(fastaPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFastaPath, err)
	}
	if strings.ContainsRune(fasta.String(), ' ') {
		return "", fmt.Errorf("%w: %q contains a space", ErrInvalidFastaPath, fasta.String())
	}

	id := name
	if id == "" {
		id = l.svc.idgen.New()
	}

	dir := l.svc.cfg.DBDir
	if err := l.svc.fsmgr.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	out := filepath.Join(dir, id)

	opts := MakeDBOptions{
		DBType:      l.svc.cfg.DBType,
		Input:       fasta.String(),
		TaxID:       l.TaxID,
		Out:         out,
		ParseSeqIDs: l.svc.cfg.ParseSeqIDs,
	}
	if err := l.svc.run(ctx, ToolMakeBlastDB, opts.Args(), nil); err != nil {
		return "", fmt.Errorf("running makeblastdb: %w", err)
	}

	l.ID = id
	l.Path = out
	l.CreatedAt = l.svc.clock.Now()
	l.svc.logger.Info("database created", "id", id, "path", out, "fasta", fasta.String())

	if _, err := l.LoadInfo(ctx, out); err != nil {
		return out, err
	}
	return out, nil
}

// LoadInfo runs blastdbcmd -info against path (the handle's own path when
// empty), parses the summary and caches it in Info.
func (l *LocalDB) LoadInfo(ctx context.Context, path string) (*DatabaseInfo, error) {
	if path == "" {
		path = l.Path
	}
	if path == "" {
		return nil, ErrNotCreated
	}

	var out bytes.Buffer
	if err := l.svc.run(ctx, ToolBlastDBCmd, infoArgs(path), &out); err != nil {
		// only a non-zero exit means blastdbcmd rejected the path
		var toolErr *ToolError
		if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDatabasePath, path, err)
		}
		return nil, fmt.Errorf("querying info for %s: %w", path, err)
	}

	info, err := ParseDatabaseInfo(out.String())
	if err != nil {
		return nil, fmt.Errorf("reading info for %s: %w", path, err)
	}

	l.Info = info
	return info, nil
}

// FetchSequences writes the FASTA records of ids to outputPath.
func (l *LocalDB) FetchSequences(ctx context.Context, ids []string, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("fetching sequences: no output path")
	}
	_, err := l.fetch(ctx, ids, outputPath)
	return err
}

// FetchSequencesBuffer returns the FASTA records of ids instead of writing
// them to disk.
func (l *LocalDB) FetchSequencesBuffer(ctx context.Context, ids []string) (string, error) {
	return l.fetch(ctx, ids, "")
}

func (l *LocalDB) fetch(ctx context.Context, ids []string, outputPath string) (string, error) {
	if l.Path == "" {
		return "", ErrNotCreated
	}

	var entries []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			entries = append(entries, id)
		}
	}
	if len(entries) == 0 {
		return "", ErrNoEntries
	}

	var out bytes.Buffer
	if err := l.svc.run(ctx, ToolBlastDBCmd, fetchArgs(l.Path, entries, outputPath), &out); err != nil {
		return "", fmt.Errorf("running blastdbcmd: %w", err)
	}

	l.svc.logger.Info("sequences fetched", "db", l.Path, "count", len(entries))
	return out.String(), nil
}
