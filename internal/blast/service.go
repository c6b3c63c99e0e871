// Package blast drives the BLAST+ executables: it builds local databases,
// runs blastn searches and parses what the tools print.
package blast

import (
	"bytes"
	"context"
	"io"
	"strings"
)

// DefaultDBDir is where local databases are built when none is configured.
const DefaultDBDir = "blastdb"

// DefaultOutFile is the report path used by file-mode searches without one.
const DefaultOutFile = "out.tab"

// ServiceConfig carries the settings the service applies to every call.
type ServiceConfig struct {
	// DBDir holds locally built databases. Empty means DefaultDBDir.
	DBDir string

	// DBType is passed to makeblastdb. Empty means "nucl".
	DBType string

	// TaxID tags every sequence of a locally built database.
	TaxID int

	// ParseSeqIDs makes built databases searchable by sequence id.
	ParseSeqIDs bool

	// Search overrides DefaultSearchOptions for every search.
	Search SearchOptions
}

// Service is the orchestration layer between the CLI and the BLAST+ tools.
type Service struct {
	runner   Runner
	fsmgr    FilesystemManager
	store    OperationStore
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	cfg      ServiceConfig
	defaults SearchOptions
}

// NewService creates a Service with the provided dependencies.
// store may be nil when no history is kept.
func NewService(runner Runner, fsmgr FilesystemManager, store OperationStore, logger Logger, clock Clock, idgen IDGenerator, cfg ServiceConfig) *Service {
	if cfg.DBDir == "" {
		cfg.DBDir = DefaultDBDir
	}
	if cfg.DBType == "" {
		cfg.DBType = "nucl"
	}

	return &Service{
		runner:   runner,
		fsmgr:    fsmgr,
		store:    store,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		cfg:      cfg,
		defaults: DefaultSearchOptions().Merge(cfg.Search),
	}
}

// SearchDefaults returns the options every search starts from.
func (s *Service) SearchDefaults() SearchOptions {
	return s.defaults
}

// DBDir returns the directory local databases are built in.
func (s *Service) DBDir() string {
	return s.cfg.DBDir
}

// run invokes tool and logs the call.
func (s *Service) run(ctx context.Context, tool string, args []string, stdout io.Writer) error {
	s.logger.Debug("running tool", "tool", tool, "args", strings.Join(args, " "))
	if err := s.runner.Run(ctx, tool, args, stdout); err != nil {
		s.logger.Error("tool failed", "tool", tool, "error", err)
		return err
	}
	return nil
}

// CheckInstallation runs blastn -version. It reports the version banner and
// whether it looks like a working blastn.
func (s *Service) CheckInstallation(ctx context.Context) (string, bool) {
	var out bytes.Buffer
	if err := s.run(ctx, ToolBlastn, []string{"-version"}, &out); err != nil {
		return "", false
	}

	banner := strings.TrimSpace(out.String())
	return banner, strings.Contains(banner, "blastn:")
}
