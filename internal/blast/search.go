package blast

import (
	"bytes"
	"context"
	"fmt"
)

// Blastn runs a search with opts applied over the service defaults.
// In buffer mode the report is returned and out is ignored; otherwise it is
// written to out (DefaultOutFile when empty) and the returned buffer is nil.
func (s *Service) Blastn(ctx context.Context, opts SearchOptions, out string) (*bytes.Buffer, error) {
	effective := s.defaults.Merge(opts)
	args := effective.Args()

	if effective.BufferMode() {
		var buf bytes.Buffer
		if err := s.run(ctx, ToolBlastn, args, &buf); err != nil {
			return nil, fmt.Errorf("running blastn: %w", err)
		}
		return &buf, nil
	}

	if out == "" {
		out = DefaultOutFile
	}
	args = append(args, "-out", out)
	if err := s.run(ctx, ToolBlastn, args, nil); err != nil {
		return nil, fmt.Errorf("running blastn: %w", err)
	}
	return nil, nil
}

// SearchDB searches the query FASTA against the database at dbPath and
// returns the parsed report.
func (s *Service) SearchDB(ctx context.Context, query, dbPath, out string, opts SearchOptions) (*HitTable, error) {
	q, err := s.fsmgr.Resolve(query)
	if err != nil {
		return nil, fmt.Errorf("resolving query: %w", err)
	}

	opts.Query = String(q.String())
	opts.DB = String(dbPath)
	effective := s.defaults.Merge(opts)

	// fail before blastn runs if the report could not be parsed
	format := effective.OutputFormat()
	if _, _, err := Columns(format); err != nil {
		return nil, fmt.Errorf("checking output format: %w", err)
	}

	if out == "" {
		out = DefaultOutFile
	}
	buf, err := s.Blastn(ctx, opts, out)
	if err != nil {
		return nil, err
	}

	var table *HitTable
	if buf != nil {
		table, err = ReadHitTable(buf, format)
	} else {
		table, err = ReadHitTableFile(out, format)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("search complete", "query", q.String(), "db", dbPath, "hits", table.Len())
	return table, nil
}

// SearchFasta builds a throwaway local database from subjectFasta and
// searches the query against it. The database handle is returned so the
// caller can fetch subject sequences from it.
func (s *Service) SearchFasta(ctx context.Context, query, subjectFasta, out string, opts SearchOptions) (*HitTable, *LocalDB, error) {
	db := s.NewLocalDB()
	path, err := db.Create(ctx, subjectFasta, "")
	if err != nil {
		return nil, nil, fmt.Errorf("building subject database: %w", err)
	}

	table, err := s.SearchDB(ctx, query, path, out, opts)
	if err != nil {
		return nil, db, err
	}
	return table, db, nil
}
