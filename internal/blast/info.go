package blast

import (
	"fmt"
	"strconv"
	"strings"
)

// DatabaseInfo is the summary blastdbcmd -info prints for a database.
type DatabaseInfo struct {
	Database        string `json:"Database" yaml:"Database" toml:"Database"`
	SequenceCount   int64  `json:"Sequence Count" yaml:"Sequence Count" toml:"Sequence Count"`
	TotalBases      int64  `json:"Total Bases" yaml:"Total Bases" toml:"Total Bases"`
	Date            string `json:"Date" yaml:"Date" toml:"Date"`
	LongestSequence int64  `json:"Longest Sequence" yaml:"Longest Sequence" toml:"Longest Sequence"`
	Version         int    `json:"BLASTDB Version" yaml:"BLASTDB Version" toml:"BLASTDB Version"`
	Volumes         string `json:"Volumes" yaml:"Volumes" toml:"Volumes"`
}

// Line positions in blastdbcmd -info output:
//
//	0  Database: <name>
//	1  <n> sequences; <m> total bases
//	3  Date: <date>\tLongest sequence: <k> bases
//	5  BLASTDB Version: <v>
//	8  <volume paths>
const (
	infoNameLine    = 0
	infoCountsLine  = 1
	infoDateLine    = 3
	infoVersionLine = 5
	infoVolumesLine = 8
	infoMinLines    = 9
)

// ParseDatabaseInfo decodes blastdbcmd -info output. Text containing
// "Error" anywhere fails with ErrInvalidDatabasePath before any field is
// read. Every field must parse or the whole call fails with
// ErrMalformedOutput; a partial record is never returned.
func ParseDatabaseInfo(text string) (*DatabaseInfo, error) {
	if strings.Contains(text, "Error") {
		return nil, fmt.Errorf("%w: %s\ncheck that the BLAST database path is valid", ErrInvalidDatabasePath, strings.TrimSpace(text))
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < infoMinLines {
		return nil, &ParseError{Line: -1, Reason: fmt.Sprintf("expected at least %d lines, got %d", infoMinLines, len(lines))}
	}

	var info DatabaseInfo
	var err error

	if info.Database, err = afterLabel(lines, infoNameLine); err != nil {
		return nil, err
	}

	counts := strings.SplitN(lines[infoCountsLine], "; ", 2)
	if len(counts) != 2 {
		return nil, &ParseError{Line: infoCountsLine, Text: lines[infoCountsLine], Reason: `missing "; " between sequence and base counts`}
	}
	if info.SequenceCount, err = countField(counts[0], 0, infoCountsLine, lines); err != nil {
		return nil, err
	}
	if info.TotalBases, err = countField(counts[1], 0, infoCountsLine, lines); err != nil {
		return nil, err
	}

	dateLine := strings.Split(lines[infoDateLine], "\t")
	if len(dateLine) < 2 {
		return nil, &ParseError{Line: infoDateLine, Text: lines[infoDateLine], Reason: "missing tab before longest sequence"}
	}
	if info.Date, err = afterLabel(dateLine, 0); err != nil {
		return nil, &ParseError{Line: infoDateLine, Text: lines[infoDateLine], Reason: "missing date"}
	}
	if info.LongestSequence, err = countField(dateLine[1], 2, infoDateLine, lines); err != nil {
		return nil, err
	}

	version, err := afterLabel(lines, infoVersionLine)
	if err != nil {
		return nil, err
	}
	if info.Version, err = strconv.Atoi(version); err != nil || info.Version < 0 {
		return nil, &ParseError{Line: infoVersionLine, Text: lines[infoVersionLine], Reason: "version is not a non-negative integer"}
	}

	info.Volumes = strings.TrimSpace(lines[infoVolumesLine])
	if info.Volumes == "" {
		return nil, &ParseError{Line: infoVolumesLine, Text: lines[infoVolumesLine], Reason: "missing volume paths"}
	}

	return &info, nil
}

// afterLabel returns the trimmed text after the first ": " in lines[i].
func afterLabel(lines []string, i int) (string, error) {
	_, value, ok := strings.Cut(lines[i], ": ")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", &ParseError{Line: i, Text: lines[i], Reason: `missing ": " label separator`}
	}
	return value, nil
}

// countField reads the token-th whitespace separated token of segment as a
// non-negative integer, ignoring thousands separators.
func countField(segment string, token, line int, lines []string) (int64, error) {
	tokens := strings.Fields(segment)
	if len(tokens) <= token {
		return 0, &ParseError{Line: line, Text: lines[line], Reason: "missing count"}
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(tokens[token], ",", ""), 10, 64)
	if err != nil || n < 0 {
		return 0, &ParseError{Line: line, Text: lines[line], Reason: fmt.Sprintf("%q is not a non-negative integer", tokens[token])}
	}
	return n, nil
}
