package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"blastkit/internal/blast"
	"blastkit/internal/config"
	"blastkit/internal/database"
	"blastkit/internal/fs"
	"blastkit/internal/model"
	"blastkit/internal/provision"
)

// BlastApp is the application layer between the CLI and blast.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and records the operation on Close.
type BlastApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	fsmgr   blast.FilesystemManager
	logger  blast.Logger
	service *blast.Service
	op      *Operation
	logFile *os.File
}

// NewBlastApp creates a fully wired BlastApp from the given config.
// operation identifies the CLI command being run (e.g. "MakeDatabase", "Search")
// and parameters its arguments as typed. The caller must call Close when done.
func NewBlastApp(cfg *config.Config, operation, parameters string) (*BlastApp, error) {
	timeout, err := cfg.Blast.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return newBlastApp(cfg, operation, parameters, blast.NewExecRunner(cfg.Blast.BinDir, timeout))
}

func newBlastApp(cfg *config.Config, operation, parameters string, runner blast.Runner) (*BlastApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, blast.RealClock{})
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, level)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	fsmgr := fs.NewOSFilesystemManager()
	svc := blast.NewService(runner, fsmgr, db, logger, blast.RealClock{}, blast.UUIDGenerator{}, blast.ServiceConfig{
		DBDir:       cfg.Blast.DBDir,
		DBType:      cfg.Blast.DBType,
		TaxID:       cfg.Blast.TaxID,
		ParseSeqIDs: cfg.Blast.ParseSeqIDs,
		Search:      searchOptions(cfg.Search),
	})

	return &BlastApp{
		cfg:     cfg,
		db:      db,
		fsmgr:   fsmgr,
		logger:  logger,
		service: svc,
		op:      NewOperation(operation, parameters),
		logFile: logFile,
	}, nil
}

// searchOptions maps the [search] config section onto blast options.
func searchOptions(sc config.SearchConfig) blast.SearchOptions {
	return blast.SearchOptions{
		Task:          sc.Task,
		Threads:       sc.Threads,
		Evalue:        sc.Evalue,
		PercIdentity:  sc.PercIdentity,
		QcovHSPPerc:   sc.QcovHSPPerc,
		MaxTargetSeqs: sc.MaxTargetSeqs,
		WordSize:      sc.WordSize,
		Outfmt:        sc.Outfmt,
		Dust:          sc.Dust,
	}
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for commands that run a tool or write files.
func (a *BlastApp) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// track marks the operation failed when err is non-nil and returns err.
func (a *BlastApp) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// recordDatabase links a database built or fetched by this operation to it.
func (a *BlastApp) recordDatabase(path string) {
	if err := a.db.AddOperationDatabase(a.op.ID, path); err != nil {
		a.logger.Warn("recording database failed", "path", path, "error", err)
	}
}

// MakeDatabase builds a local database from fastaPath. An empty name gets a
// generated ID.
func (a *BlastApp) MakeDatabase(ctx context.Context, fastaPath, name string) (*blast.LocalDB, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	db := a.service.NewLocalDB()
	path, err := db.Create(ctx, fastaPath, name)
	if path != "" {
		a.recordDatabase(path)
	}
	if err != nil {
		return db, a.track(err)
	}
	return db, nil
}

// DatabaseInfo returns the summary of the database at dbPath.
func (a *BlastApp) DatabaseInfo(ctx context.Context, dbPath string) (*blast.DatabaseInfo, error) {
	return a.service.OpenLocalDB(dbPath).LoadInfo(ctx, "")
}

// FetchSequences extracts the FASTA records of ids from the database at
// dbPath. With an empty outputPath the records are returned instead of
// written.
func (a *BlastApp) FetchSequences(ctx context.Context, dbPath string, ids []string, outputPath string) (string, error) {
	db := a.service.OpenLocalDB(dbPath)
	if outputPath == "" {
		return db.FetchSequencesBuffer(ctx, ids)
	}
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	return "", a.track(db.FetchSequences(ctx, ids, outputPath))
}

// Search runs the query FASTA against the database at dbPath.
func (a *BlastApp) Search(ctx context.Context, query, dbPath, out string, opts blast.SearchOptions) (*blast.HitTable, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	table, err := a.service.SearchDB(ctx, query, dbPath, out, opts)
	return table, a.track(err)
}

// SearchFasta runs the query FASTA against a database built from subjectFasta.
func (a *BlastApp) SearchFasta(ctx context.Context, query, subjectFasta, out string, opts blast.SearchOptions) (*blast.HitTable, *blast.LocalDB, error) {
	if err := a.persistOperation(); err != nil {
		return nil, nil, err
	}
	table, db, err := a.service.SearchFasta(ctx, query, subjectFasta, out, opts)
	if db != nil && db.Path != "" {
		a.recordDatabase(db.Path)
	}
	return table, db, a.track(err)
}

// ParseHits reads a saved tabular report. An empty outfmt means the format
// searches are configured with.
func (a *BlastApp) ParseHits(rawPath, outfmt string) (*blast.HitTable, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if outfmt == "" {
		outfmt = a.service.SearchDefaults().OutputFormat()
	}
	return blast.ReadHitTableFile(p.String(), outfmt)
}

// installer creates the provisioner for the configured archive source.
func (a *BlastApp) installer(ctx context.Context) (*provision.Installer, error) {
	src, err := provision.NewSourceFromConfig(ctx, a.cfg.Provision)
	if err != nil {
		return nil, fmt.Errorf("creating provision source: %w", err)
	}
	return provision.NewInstaller(src, a.cfg.Provision.InstallDir, a.service.DBDir(), a.logger), nil
}

// InstallBLAST downloads and unpacks a BLAST+ release and returns its bin
// directory. An empty version means the configured one.
func (a *BlastApp) InstallBLAST(ctx context.Context, version string) (string, error) {
	if version == "" {
		version = a.cfg.Provision.BlastVersion
	}
	if version == "" {
		version = config.DefaultBlastVersion
	}
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	inst, err := a.installer(ctx)
	if err != nil {
		return "", a.track(err)
	}
	binDir, err := inst.InstallBLAST(ctx, version)
	return binDir, a.track(err)
}

// FetchTaxDB downloads the taxonomy database into the database directory.
func (a *BlastApp) FetchTaxDB(ctx context.Context) ([]string, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	inst, err := a.installer(ctx)
	if err != nil {
		return nil, a.track(err)
	}
	files, err := inst.FetchTaxDB(ctx)
	return files, a.track(err)
}

// FetchDatabase downloads a preformatted NCBI database by name and returns
// its path.
func (a *BlastApp) FetchDatabase(ctx context.Context, name string) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	inst, err := a.installer(ctx)
	if err != nil {
		return "", a.track(err)
	}
	path, err := inst.FetchDatabase(ctx, name)
	if err != nil {
		return "", a.track(err)
	}
	a.recordDatabase(path)
	return path, nil
}

// CheckInstallation reports the blastn version banner and whether it works.
func (a *BlastApp) CheckInstallation(ctx context.Context) (string, bool) {
	return a.service.CheckInstallation(ctx)
}

// JournalPersistent reports whether history is kept between runs.
func (a *BlastApp) JournalPersistent() bool {
	return a.cfg.Database.Persistent()
}

// GetHistory returns the most recent operations.
func (a *BlastApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(limit)
}

// ListDatabases returns the databases recorded by earlier operations.
func (a *BlastApp) ListDatabases() ([]blast.DatabaseRecord, error) {
	return a.service.ListDatabases()
}

// Close finalizes the operation and closes all resources.
func (a *BlastApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
