package blast_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"blastkit/internal/blast"
)

const threeHits = "q1\ts1\t99.5\t1e-50\n" +
	"q1\ts2\t97.0\t3e-20\n" +
	"q2\ts3\t92.1\t0.001\n"

func TestColumns(t *testing.T) {
	std := []string{
		"qaccver", "saccver", "pident", "length", "mismatch", "gapopen",
		"qstart", "qend", "sstart", "send", "evalue", "bitscore",
	}

	tests := []struct {
		name      string
		outfmt    string
		want      []string
		wantDelim string
	}{
		{
			name:      "default format drops the code",
			outfmt:    blast.DefaultOutfmt,
			want:      strings.Fields(blast.DefaultOutfmt)[1:],
			wantDelim: "\t",
		},
		{
			name:      "commented tabular",
			outfmt:    "7 qseqid sseqid",
			want:      []string{"qseqid", "sseqid"},
			wantDelim: "\t",
		},
		{
			name:      "comma separated",
			outfmt:    "10 qseqid evalue",
			want:      []string{"qseqid", "evalue"},
			wantDelim: ",",
		},
		{
			name:      "bare code",
			outfmt:    "6",
			want:      std,
			wantDelim: "\t",
		},
		{
			name:      "std keyword with extras",
			outfmt:    "6 std staxids",
			want:      append(slices.Clone(std), "staxids"),
			wantDelim: "\t",
		},
		{
			name:      "extra whitespace",
			outfmt:    "  6   qseqid\tsseqid  ",
			want:      []string{"qseqid", "sseqid"},
			wantDelim: "\t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, delim, err := blast.Columns(tt.outfmt)
			if err != nil {
				t.Fatalf("Columns() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Columns() = %q, want %q", got, tt.want)
			}
			if delim != tt.wantDelim {
				t.Errorf("delimiter = %q, want %q", delim, tt.wantDelim)
			}
		})
	}
}

func TestColumns_NotTabular(t *testing.T) {
	for _, outfmt := range []string{"", "   ", "0", "5 qseqid", "qseqid sseqid"} {
		t.Run(outfmt, func(t *testing.T) {
			if _, _, err := blast.Columns(outfmt); !errors.Is(err, blast.ErrMalformedOutput) {
				t.Errorf("Columns(%q) error = %v, want ErrMalformedOutput", outfmt, err)
			}
		})
	}
}

func TestReadHitTable(t *testing.T) {
	outfmt := "6 qseqid sseqid pident evalue"

	table, err := blast.ReadHitTable(strings.NewReader(threeHits), outfmt)
	if err != nil {
		t.Fatalf("ReadHitTable() error = %v", err)
	}

	if len(table.Header) != len(strings.Fields(outfmt))-1 {
		t.Errorf("len(Header) = %d, want %d", len(table.Header), len(strings.Fields(outfmt))-1)
	}
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}

	rec := table.Record(1)
	if rec["sseqid"] != "s2" || rec["pident"] != "97.0" {
		t.Errorf("Record(1) = %v", rec)
	}

	evalues, err := table.Column("evalue")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if want := []string{"1e-50", "3e-20", "0.001"}; !slices.Equal(evalues, want) {
		t.Errorf("Column(evalue) = %q, want %q", evalues, want)
	}

	if _, err := table.Column("bitscore"); err == nil {
		t.Error("Column(bitscore) expected error for missing column")
	}

	recs := table.Records()
	if len(recs) != 3 || recs[2]["qseqid"] != "q2" {
		t.Errorf("Records() = %v", recs)
	}
}

func TestReadHitTable_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		outfmt string
		input  string
	}{
		{name: "tab separated", outfmt: "6 qseqid sseqid pident evalue", input: threeHits},
		{name: "comma separated", outfmt: "10 qseqid sseqid pident evalue", input: strings.ReplaceAll(threeHits, "\t", ",")},
		{name: "empty report", outfmt: "6 qseqid sseqid", input: ""},
		{name: "empty trailing field", outfmt: "6 qseqid sseqid sscinames", input: "q1\ts1\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := blast.ReadHitTable(strings.NewReader(tt.input), tt.outfmt)
			if err != nil {
				t.Fatalf("ReadHitTable() error = %v", err)
			}

			var buf bytes.Buffer
			if _, err := table.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
			if buf.String() != tt.input {
				t.Errorf("WriteTo() = %q, want %q", buf.String(), tt.input)
			}
		})
	}
}

func TestReadHitTable_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# BLASTN 2.15.0+\n" +
		"# Query: q1\n" +
		"# Fields: query acc.ver, subject acc.ver, % identity, evalue\n" +
		"# 3 hits found\n" +
		threeHits +
		"\n" +
		"# BLAST processed 2 queries\n"

	table, err := blast.ReadHitTable(strings.NewReader(input), "7 qseqid sseqid pident evalue")
	if err != nil {
		t.Fatalf("ReadHitTable() error = %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
}

func TestReadHitTable_CRLF(t *testing.T) {
	input := strings.ReplaceAll(threeHits, "\n", "\r\n")

	table, err := blast.ReadHitTable(strings.NewReader(input), "6 qseqid sseqid pident evalue")
	if err != nil {
		t.Fatalf("ReadHitTable() error = %v", err)
	}
	if got := table.Record(2)["evalue"]; got != "0.001" {
		t.Errorf("last field = %q, want %q", got, "0.001")
	}
}

func TestReadHitTable_ColumnMismatch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "too few columns", input: "q1\ts1\t99.5\t1e-50\nq2\ts2\t98\n", wantLine: 1},
		{name: "too many columns", input: "q1\ts1\t99.5\t1e-50\textra\n", wantLine: 0},
		{name: "after comment", input: "# header\nq1\ts1\n", wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := blast.ReadHitTable(strings.NewReader(tt.input), "6 qseqid sseqid pident evalue")
			if table != nil {
				t.Error("ReadHitTable() returned a partial table")
			}
			if !errors.Is(err, blast.ErrMalformedOutput) {
				t.Fatalf("ReadHitTable() error = %v, want ErrMalformedOutput", err)
			}
			var perr *blast.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", perr.Line, tt.wantLine)
			}
		})
	}
}

func TestReadHitTableFile(t *testing.T) {
	t.Run("reads report file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.tab")
		if err := os.WriteFile(path, []byte(threeHits), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		table, err := blast.ReadHitTableFile(path, "6 qseqid sseqid pident evalue")
		if err != nil {
			t.Fatalf("ReadHitTableFile() error = %v", err)
		}
		if table.Len() != 3 {
			t.Errorf("Len() = %d, want 3", table.Len())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := blast.ReadHitTableFile(filepath.Join(t.TempDir(), "missing.tab"), "6 qseqid")
		if err == nil {
			t.Error("ReadHitTableFile() expected error for missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.tab")
		if err := os.WriteFile(path, []byte("q1\n"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := blast.ReadHitTableFile(path, "6 qseqid sseqid")
		if !errors.Is(err, blast.ErrMalformedOutput) {
			t.Errorf("ReadHitTableFile() error = %v, want ErrMalformedOutput", err)
		}
	})
}
