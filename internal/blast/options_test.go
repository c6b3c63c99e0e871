package blast_test

import (
	"slices"
	"strings"
	"testing"

	"blastkit/internal/blast"
)

// flagValue returns the value after flag in args and whether flag occurs.
func flagValue(args []string, flag string) (string, bool) {
	i := slices.Index(args, flag)
	if i < 0 {
		return "", false
	}
	if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
		return args[i+1], true
	}
	return "", true
}

func TestDefaultSearchOptions_Args(t *testing.T) {
	args := blast.DefaultSearchOptions().Args()

	want := []string{
		"-db", "nt",
		"-task", "blastn",
		"-perc_identity", "92",
		"-qcov_hsp_perc", "92",
		"-max_target_seqs", "5000",
		"-num_threads", "30",
		"-word_size", "7",
		"-gapopen", "8",
		"-gapextend", "6",
		"-reward", "5",
		"-penalty", "-4",
		"-max_hsps", "1",
		"-evalue", "10000000000000",
		"-outfmt", blast.DefaultOutfmt,
		"-dust", "no",
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() =\n%q\nwant\n%q", args, want)
	}
}

func TestSearchOptions_Merge(t *testing.T) {
	defaults := blast.DefaultSearchOptions()

	t.Run("override replaces key for key", func(t *testing.T) {
		merged := defaults.Merge(blast.SearchOptions{
			Query:        blast.String("query.fa"),
			PercIdentity: blast.Float(97.5),
			Threads:      blast.Int(4),
		})
		args := merged.Args()

		tests := []struct {
			flag string
			want string
		}{
			{"-query", "query.fa"},
			{"-perc_identity", "97.5"},
			{"-num_threads", "4"},
			{"-db", "nt"},
			{"-word_size", "7"},
			{"-dust", "no"},
		}
		for _, tt := range tests {
			got, ok := flagValue(args, tt.flag)
			if !ok {
				t.Errorf("%s missing from %q", tt.flag, args)
				continue
			}
			if got != tt.want {
				t.Errorf("%s = %q, want %q", tt.flag, got, tt.want)
			}
		}
	})

	t.Run("empty override keeps defaults", func(t *testing.T) {
		got := defaults.Merge(blast.SearchOptions{}).Args()
		if !slices.Equal(got, defaults.Args()) {
			t.Errorf("Merge(empty).Args() = %q, want %q", got, defaults.Args())
		}
	})

	t.Run("merge does not modify receiver", func(t *testing.T) {
		_ = defaults.Merge(blast.SearchOptions{DB: blast.String("refseq")})
		if *defaults.DB != "nt" {
			t.Errorf("defaults.DB = %q after Merge, want %q", *defaults.DB, "nt")
		}
	})
}

func TestSearchOptions_Args_Unset(t *testing.T) {
	opts := blast.SearchOptions{
		Query: blast.String("q.fa"),
		DB:    blast.String("nt"),
	}
	got := opts.Args()
	want := []string{"-query", "q.fa", "-db", "nt"}
	if !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestSearchOptions_Args_BoolFlags(t *testing.T) {
	tests := []struct {
		name       string
		remote     *bool
		wantRemote int
		wantThread bool
	}{
		{name: "absent", remote: nil, wantRemote: 0, wantThread: true},
		{name: "false", remote: blast.Bool(false), wantRemote: 0, wantThread: true},
		{name: "true", remote: blast.Bool(true), wantRemote: 1, wantThread: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := blast.DefaultSearchOptions().Merge(blast.SearchOptions{Remote: tt.remote})
			args := opts.Args()

			count := 0
			for i, a := range args {
				if a == "-remote" {
					count++
					if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
						t.Errorf("-remote followed by value %q", args[i+1])
					}
				}
			}
			if count != tt.wantRemote {
				t.Errorf("-remote appears %d times, want %d", count, tt.wantRemote)
			}

			if _, ok := flagValue(args, "-num_threads"); ok != tt.wantThread {
				t.Errorf("-num_threads present = %v, want %v", ok, tt.wantThread)
			}
		})
	}
}

func TestSearchOptions_Args_NegativeTaxIDList(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  bool
	}{
		{name: "unset", value: nil, want: false},
		{name: "empty", value: blast.String(""), want: false},
		{name: "set", value: blast.String("exclude.txids"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := blast.DefaultSearchOptions().Merge(blast.SearchOptions{NegativeTaxIDList: tt.value}).Args()

			_, ok := flagValue(args, "-negative_taxidlist")
			if ok != tt.want {
				t.Fatalf("-negative_taxidlist present = %v, want %v", ok, tt.want)
			}
			if tt.want {
				n := len(args)
				if args[n-2] != "-negative_taxidlist" || args[n-1] != "exclude.txids" {
					t.Errorf("trailing args = %q, want -negative_taxidlist exclude.txids", args[n-2:])
				}
			}
		})
	}
}

func TestSearchOptions_Args_BufferNeverEmitted(t *testing.T) {
	opts := blast.DefaultSearchOptions().Merge(blast.SearchOptions{Buffer: blast.Bool(true)})
	if !opts.BufferMode() {
		t.Error("BufferMode() = false, want true")
	}
	for _, a := range opts.Args() {
		if strings.Contains(a, "buffer") {
			t.Errorf("Args() contains %q", a)
		}
	}
}

func TestSearchOptions_OutputFormat(t *testing.T) {
	tests := []struct {
		name string
		opts blast.SearchOptions
		want string
	}{
		{
			name: "default",
			opts: blast.DefaultSearchOptions(),
			want: blast.DefaultOutfmt,
		},
		{
			name: "scientific names suppressed",
			opts: blast.DefaultSearchOptions().Merge(blast.SearchOptions{NoScientificNames: blast.Bool(true)}),
			want: "6 qseqid sseqid pident qcovhsp length qlen mismatch gapopen qstart qend sstart send evalue bitscore qseq sseq",
		},
		{
			name: "custom format without taxonomy columns is kept",
			opts: blast.SearchOptions{
				Outfmt:            blast.String("6 qseqid sseqid evalue"),
				NoScientificNames: blast.Bool(true),
			},
			want: "6 qseqid sseqid evalue",
		},
		{
			name: "unset",
			opts: blast.SearchOptions{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.OutputFormat(); got != tt.want {
				t.Errorf("OutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchOptions_Args_SuppressedNamesReachOutfmt(t *testing.T) {
	opts := blast.DefaultSearchOptions().Merge(blast.SearchOptions{NoScientificNames: blast.Bool(true)})

	got, _ := flagValue(opts.Args(), "-outfmt")
	if strings.Contains(got, "sscinames") || strings.Contains(got, "staxids") {
		t.Errorf("-outfmt = %q, want taxonomy columns dropped", got)
	}
}

func TestMakeDBOptions_Args(t *testing.T) {
	tests := []struct {
		name string
		opts blast.MakeDBOptions
		want []string
	}{
		{
			name: "defaults to nucleotide",
			opts: blast.MakeDBOptions{Input: "/data/seqs.fa", Out: "blastdb/db-1"},
			want: []string{"-dbtype", "nucl", "-in", "/data/seqs.fa", "-taxid", "0", "-out", "blastdb/db-1"},
		},
		{
			name: "all options",
			opts: blast.MakeDBOptions{
				DBType:      "prot",
				Input:       "/data/prot.fa",
				TaxID:       9606,
				Out:         "blastdb/human",
				Title:       "human proteins",
				ParseSeqIDs: true,
			},
			want: []string{
				"-dbtype", "prot", "-in", "/data/prot.fa", "-taxid", "9606", "-out", "blastdb/human",
				"-title", "human proteins", "-parse_seqids",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Args(); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}
