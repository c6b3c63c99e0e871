package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"blastkit/internal/blast"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newTableWriter aligns tab-separated columns for a terminal.
func newTableWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// writeHitTable prints a hit table. aligned adds a header row and pads the
// columns; otherwise the rows are written as the report delimiter separates
// them, so the output can be piped into other tools.
func writeHitTable(w io.Writer, t *blast.HitTable, aligned bool) error {
	if !aligned {
		_, err := t.WriteTo(w)
		return err
	}

	tw := newTableWriter(w)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Database info output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// writeDatabaseInfo prints info in the given format, keyed by the labels
// blastdbcmd uses.
func writeDatabaseInfo(w io.Writer, info *blast.DatabaseInfo, format string) error {
	switch format {
	case "", formatText:
		tw := newTableWriter(w)
		fmt.Fprintf(tw, "Database:\t%s\n", info.Database)
		fmt.Fprintf(tw, "Sequence Count:\t%d\n", info.SequenceCount)
		fmt.Fprintf(tw, "Total Bases:\t%d\n", info.TotalBases)
		fmt.Fprintf(tw, "Date:\t%s\n", info.Date)
		fmt.Fprintf(tw, "Longest Sequence:\t%d\n", info.LongestSequence)
		fmt.Fprintf(tw, "BLASTDB Version:\t%d\n", info.Version)
		fmt.Fprintf(tw, "Volumes:\t%s\n", info.Volumes)
		return tw.Flush()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(info)
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
	}
}
