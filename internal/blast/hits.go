package blast

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdColumns are the columns blastn writes for the "std" keyword or a bare
// tabular format code.
var stdColumns = []string{
	"qaccver", "saccver", "pident", "length", "mismatch", "gapopen",
	"qstart", "qend", "sstart", "send", "evalue", "bitscore",
}

// maxLineSize bounds one report line; qseq/sseq columns can be long.
const maxLineSize = 64 * 1024 * 1024

// Columns derives the header of a tabular report from its -outfmt value:
// the whitespace separated tokens after the leading format code. The code
// must be 6 or 7 (tab separated) or 10 (comma separated). It returns the
// header and the field delimiter.
func Columns(outfmt string) ([]string, string, error) {
	tokens := strings.Fields(outfmt)
	if len(tokens) == 0 {
		return nil, "", &ParseError{Line: -1, Reason: "empty output format"}
	}

	var delim string
	switch tokens[0] {
	case "6", "7":
		delim = "\t"
	case "10":
		delim = ","
	default:
		return nil, "", &ParseError{Line: -1, Reason: fmt.Sprintf("output format %q is not tabular", tokens[0])}
	}

	if len(tokens) == 1 {
		return append([]string(nil), stdColumns...), delim, nil
	}

	var header []string
	for _, tok := range tokens[1:] {
		if tok == "std" {
			header = append(header, stdColumns...)
			continue
		}
		header = append(header, tok)
	}
	return header, delim, nil
}

// HitRecord is one row of a hit table keyed by column name.
type HitRecord map[string]string

// HitTable is a parsed blastn tabular report.
type HitTable struct {
	Header []string
	Rows   [][]string

	delim string
}

// ReadHitTable parses a tabular report from r using the header derived from
// outfmt. Any header row in the input is replaced; lines starting with '#'
// and blank lines are skipped. A data line whose field count differs from
// the header fails with ErrMalformedOutput.
func ReadHitTable(r io.Reader, outfmt string) (*HitTable, error) {
	header, delim, err := Columns(outfmt)
	if err != nil {
		return nil, err
	}

	table := &HitTable{Header: header, delim: delim}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := -1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		// comment lines start with a #
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, delim)
		if len(fields) != len(header) {
			return nil, &ParseError{
				Line:   lineNo,
				Text:   line,
				Reason: fmt.Sprintf("got %d columns, want %d", len(fields), len(header)),
			}
		}
		table.Rows = append(table.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hit table: %w", err)
	}

	return table, nil
}

// ReadHitTableFile parses the report written to path.
func ReadHitTableFile(path, outfmt string) (*HitTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hit table: %w", err)
	}
	defer f.Close()

	table, err := ReadHitTable(f, outfmt)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// Len returns the number of hits.
func (t *HitTable) Len() int {
	return len(t.Rows)
}

// Record returns row i keyed by column name.
func (t *HitTable) Record(i int) HitRecord {
	rec := make(HitRecord, len(t.Header))
	for j, name := range t.Header {
		rec[name] = t.Rows[i][j]
	}
	return rec
}

// Records returns every row keyed by column name.
func (t *HitTable) Records() []HitRecord {
	recs := make([]HitRecord, len(t.Rows))
	for i := range t.Rows {
		recs[i] = t.Record(i)
	}
	return recs
}

// Column returns all values of the named column.
func (t *HitTable) Column(name string) ([]string, error) {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no column %q in hit table", name)
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// WriteTo writes the rows back out, one line per hit, with the delimiter of
// the format they were read with. The header itself is not written.
func (t *HitTable) WriteTo(w io.Writer) (int64, error) {
	delim := t.delim
	if delim == "" {
		delim = "\t"
	}

	bw := bufio.NewWriter(w)
	var written int64
	for _, row := range t.Rows {
		n, err := bw.WriteString(strings.Join(row, delim) + "\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
