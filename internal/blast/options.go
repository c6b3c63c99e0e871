package blast

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultOutfmt is the tabular report format used when a search does not
// choose one. The leading 6 is the blastn format code; the rest name the
// columns of the report.
const DefaultOutfmt = "6 qseqid sseqid pident qcovhsp length qlen mismatch gapopen qstart qend sstart send evalue bitscore qseq sseq staxids sscinames"

// scientificNameColumns trail DefaultOutfmt and need the taxonomy database.
var scientificNameColumns = []string{"staxids", "sscinames"}

// SearchOptions are the blastn settings for a search. A nil field is unset:
// it is never emitted, and in an override it leaves the default in place.
type SearchOptions struct {
	Query         *string
	DB            *string
	Task          *string
	PercIdentity  *float64
	QcovHSPPerc   *float64
	MaxTargetSeqs *int
	Threads       *int
	WordSize      *int
	GapOpen       *int
	GapExtend     *int
	Reward        *int
	Penalty       *int
	MaxHSPs       *int
	Evalue        *float64
	Outfmt        *string
	Dust          *string

	// Remote runs the search on NCBI servers. Emitted as a bare -remote.
	Remote *bool

	// NoScientificNames drops the staxids and sscinames columns from the
	// end of the output format.
	NoScientificNames *bool

	// NegativeTaxIDList is a file of taxids to exclude from the search.
	NegativeTaxIDList *string

	// Buffer captures the report from stdout instead of writing -out.
	// It selects the invocation mode and is never emitted as a flag.
	Buffer *bool
}

// DefaultSearchOptions returns the documented search defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		DB:            String("nt"),
		Task:          String("blastn"),
		PercIdentity:  Float(92),
		QcovHSPPerc:   Float(92),
		MaxTargetSeqs: Int(5000),
		Threads:       Int(30),
		WordSize:      Int(7),
		GapOpen:       Int(8),
		GapExtend:     Int(6),
		Reward:        Int(5),
		Penalty:       Int(-4),
		MaxHSPs:       Int(1),
		Evalue:        Float(10000000000000),
		Outfmt:        String(DefaultOutfmt),
		Dust:          String("no"),
		Buffer:        Bool(false),
	}
}

// Merge returns o with every non-nil field of override applied on top.
func (o SearchOptions) Merge(override SearchOptions) SearchOptions {
	mergeField(&o.Query, override.Query)
	mergeField(&o.DB, override.DB)
	mergeField(&o.Task, override.Task)
	mergeField(&o.PercIdentity, override.PercIdentity)
	mergeField(&o.QcovHSPPerc, override.QcovHSPPerc)
	mergeField(&o.MaxTargetSeqs, override.MaxTargetSeqs)
	mergeField(&o.Threads, override.Threads)
	mergeField(&o.WordSize, override.WordSize)
	mergeField(&o.GapOpen, override.GapOpen)
	mergeField(&o.GapExtend, override.GapExtend)
	mergeField(&o.Reward, override.Reward)
	mergeField(&o.Penalty, override.Penalty)
	mergeField(&o.MaxHSPs, override.MaxHSPs)
	mergeField(&o.Evalue, override.Evalue)
	mergeField(&o.Outfmt, override.Outfmt)
	mergeField(&o.Dust, override.Dust)
	mergeField(&o.Remote, override.Remote)
	mergeField(&o.NoScientificNames, override.NoScientificNames)
	mergeField(&o.NegativeTaxIDList, override.NegativeTaxIDList)
	mergeField(&o.Buffer, override.Buffer)
	return o
}

func mergeField[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// OutputFormat returns the -outfmt value the search will run with,
// or "" if the format is unset.
func (o SearchOptions) OutputFormat() string {
	if o.Outfmt == nil {
		return ""
	}
	format := *o.Outfmt
	if !isTrue(o.NoScientificNames) {
		return format
	}

	tokens := strings.Fields(format)
	n := len(scientificNameColumns)
	if len(tokens) > n && slices.Equal(tokens[len(tokens)-n:], scientificNameColumns) {
		tokens = tokens[:len(tokens)-n]
	}
	return strings.Join(tokens, " ")
}

// BufferMode reports whether the report should be captured from stdout.
func (o SearchOptions) BufferMode() bool {
	return isTrue(o.Buffer)
}

// Args renders the options as blastn arguments in documented order.
// The -out flag is not included; the caller adds it in file mode.
func (o SearchOptions) Args() []string {
	var args []string
	args = appendString(args, "query", o.Query)
	args = appendString(args, "db", o.DB)
	args = appendString(args, "task", o.Task)
	args = appendFloat(args, "perc_identity", o.PercIdentity)
	args = appendFloat(args, "qcov_hsp_perc", o.QcovHSPPerc)
	args = appendInt(args, "max_target_seqs", o.MaxTargetSeqs)
	if !isTrue(o.Remote) {
		// blastn refuses -num_threads together with -remote
		args = appendInt(args, "num_threads", o.Threads)
	}
	args = appendInt(args, "word_size", o.WordSize)
	args = appendInt(args, "gapopen", o.GapOpen)
	args = appendInt(args, "gapextend", o.GapExtend)
	args = appendInt(args, "reward", o.Reward)
	args = appendInt(args, "penalty", o.Penalty)
	args = appendInt(args, "max_hsps", o.MaxHSPs)
	args = appendFloat(args, "evalue", o.Evalue)
	if o.Outfmt != nil {
		args = append(args, "-outfmt", o.OutputFormat())
	}
	args = appendString(args, "dust", o.Dust)
	if isTrue(o.Remote) {
		args = append(args, "-remote")
	}
	if o.NegativeTaxIDList != nil && *o.NegativeTaxIDList != "" {
		args = append(args, "-negative_taxidlist", *o.NegativeTaxIDList)
	}
	return args
}

// MakeDBOptions are the makeblastdb settings for building a local database.
type MakeDBOptions struct {
	// DBType is "nucl" or "prot". Empty means "nucl".
	DBType string
	Input  string
	TaxID  int
	Out    string

	// Title is optional; makeblastdb uses the input name when empty.
	Title string

	// ParseSeqIDs indexes sequence ids so blastdbcmd -entry can find them.
	ParseSeqIDs bool
}

// Args renders the options as makeblastdb arguments.
func (o MakeDBOptions) Args() []string {
	dbType := o.DBType
	if dbType == "" {
		dbType = "nucl"
	}

	args := []string{
		"-dbtype", dbType,
		"-in", o.Input,
		"-taxid", strconv.Itoa(o.TaxID),
		"-out", o.Out,
	}
	if o.Title != "" {
		args = append(args, "-title", o.Title)
	}
	if o.ParseSeqIDs {
		args = append(args, "-parse_seqids")
	}
	return args
}

// fetchArgs renders blastdbcmd arguments for extracting entries.
// out may be empty, in which case blastdbcmd writes to stdout.
func fetchArgs(db string, ids []string, out string) []string {
	args := []string{"-db", db, "-entry", strings.Join(ids, ",")}
	if out != "" {
		args = append(args, "-out", out)
	}
	return args
}

// infoArgs renders blastdbcmd arguments for a database summary.
func infoArgs(db string) []string {
	return []string{"-db", db, "-info"}
}

// String returns a pointer to v, for building SearchOptions.
func String(v string) *string { return &v }

// Int returns a pointer to v, for building SearchOptions.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building SearchOptions.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building SearchOptions.
func Bool(v bool) *bool { return &v }

func appendString(args []string, name string, v *string) []string {
	if v == nil {
		return args
	}
	return append(args, "-"+name, *v)
}

func appendInt(args []string, name string, v *int) []string {
	if v == nil {
		return args
	}
	return append(args, "-"+name, strconv.Itoa(*v))
}

func appendFloat(args []string, name string, v *float64) []string {
	if v == nil {
		return args
	}
	return append(args, "-"+name, strconv.FormatFloat(*v, 'f', -1, 64))
}

func isTrue(v *bool) bool {
	return v != nil && *v
}
