package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"blastkit/internal/app"
	"blastkit/internal/blast"
	"blastkit/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a BlastApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "MakeDatabase", "Search").
func newApp(operation string, args []string) (*app.BlastApp, error) {
	paths, err := app.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}

	cfg, err := config.ReadFromFile(paths.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewBlastApp(cfg, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "blastkit",
	Short:        "Build BLAST databases, run blastn and parse the results",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.ResolvePaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg := paths.NewConfig()
		if err := config.Init(paths.ConfigFile, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigFile)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		fmt.Printf("Database dir: %s\n", cfg.Blast.DBDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.ResolvePaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg, err := config.ReadFromFile(paths.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		binDir := cfg.Blast.BinDir
		if binDir == "" {
			binDir = "(PATH)"
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigFile)
		tw := newTableWriter(os.Stdout)
		fmt.Fprintf(tw, "Base Dir:\t%s\n", cfg.BaseDir)
		fmt.Fprintf(tw, "Log Dir:\t%s\n", cfg.LogDir)
		fmt.Fprintf(tw, "BLAST bin dir:\t%s\n", binDir)
		fmt.Fprintf(tw, "Database dir:\t%s\n", cfg.Blast.DBDir)
		fmt.Fprintf(tw, "Journal:\t%s\n", cfg.Database.Type)
		fmt.Fprintf(tw, "Provision source:\t%s\n", cfg.Provision.Type)
		fmt.Fprintf(tw, "BLAST+ version:\t%s\n", cfg.Provision.BlastVersion)
		return tw.Flush()
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage local BLAST databases",
}

var dbMakeCmd = &cobra.Command{
	Use:   "make FASTA",
	Short: "Build a local database from a FASTA file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp("MakeDatabase", commandLine(cmd, args))
		if err != nil {
			return err
		}
		defer a.Close()

		db, err := a.MakeDatabase(cmd.Context(), args[0], name)
		if err != nil {
			return fmt.Errorf("building database: %w", err)
		}

		fmt.Printf("Built database %s at %s\n", db.ID, db.Path)
		if db.Info != nil {
			fmt.Printf("%d sequences, %d total bases\n", db.Info.SequenceCount, db.Info.TotalBases)
		}
		return nil
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info DB",
	Short: "Show the summary of a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp("DatabaseInfo", args)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.DatabaseInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeDatabaseInfo(os.Stdout, info, format)
	},
}

var dbFetchCmd = &cobra.Command{
	Use:   "fetch DB ID...",
	Short: "Extract sequences from a database as FASTA",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("FetchSequences", commandLine(cmd, args))
		if err != nil {
			return err
		}
		defer a.Close()

		fasta, err := a.FetchSequences(cmd.Context(), args[0], args[1:], out)
		if err != nil {
			return fmt.Errorf("fetching sequences: %w", err)
		}
		if out == "" {
			fmt.Print(fasta)
			return nil
		}
		fmt.Printf("Wrote %d sequence(s) to %s\n", len(args)-1, out)
		return nil
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List databases built or fetched by earlier commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListDatabases", args)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.ListDatabases()
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println(emptyJournalMessage(a.JournalPersistent(), "No databases recorded."))
			return nil
		}

		tw := newTableWriter(os.Stdout)
		for _, r := range recs {
			fmt.Fprintf(tw, "#%d\t%s\t%s\n", r.OperationID, r.BuiltAt.Local().Format("2006-01-02 15:04:05"), r.Path)
		}
		return tw.Flush()
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Run blastn against a database or a subject FASTA",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		subject, _ := cmd.Flags().GetString("subject")
		out, _ := cmd.Flags().GetString("out")

		if (dbPath == "") == (subject == "") {
			return fmt.Errorf("exactly one of --db or --subject is required")
		}

		opts, err := searchOptionsFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		a, err := newApp("Search", commandLine(cmd, args))
		if err != nil {
			return err
		}
		defer a.Close()

		var table *blast.HitTable
		if subject != "" {
			table, _, err = a.SearchFasta(cmd.Context(), args[0], subject, out, opts)
		} else {
			table, err = a.Search(cmd.Context(), args[0], dbPath, out, opts)
		}
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		return writeHitTable(os.Stdout, table, isTerminal(os.Stdout))
	},
}

// emptyJournalMessage returns msg, or a hint when the journal only lives for
// the current process.
func emptyJournalMessage(persistent bool, msg string) string {
	if persistent {
		return msg
	}
	return "Journal is in memory; set [database] type = \"sqlite\" to keep history between runs."
}

// addSearchFlags registers the search command's flags on sf.
func addSearchFlags(sf *pflag.FlagSet) {
	sf.String("db", "", "Database path to search")
	sf.String("subject", "", "Subject FASTA to build a throwaway database from")
	sf.StringP("out", "o", "", "Report path (default: "+blast.DefaultOutFile+")")
	sf.String("task", "", "blastn task")
	sf.Float64("evalue", 0, "Expectation value threshold")
	sf.Float64("perc-identity", 0, "Minimum percent identity")
	sf.Float64("qcov-hsp-perc", 0, "Minimum query coverage per HSP")
	sf.Int("max-target-seqs", 0, "Maximum aligned sequences to keep")
	sf.Int("threads", 0, "Number of threads")
	sf.Int("word-size", 0, "Word size for the initial match")
	sf.String("outfmt", "", "Tabular output format (6, 7 or 10 followed by column names)")
	sf.String("dust", "", "DUST filtering: yes, no or level window linker")
	sf.String("negative-taxidlist", "", "File of taxids to exclude")
	sf.Bool("remote", false, "Search on NCBI servers")
	sf.Bool("no-sci-names", false, "Drop the staxids and sscinames columns")
	sf.Bool("buffer", false, "Capture the report from stdout instead of writing it")
}

// commandLine renders args and the flags the user set, for the journal.
func commandLine(cmd *cobra.Command, args []string) []string {
	line := append([]string(nil), args...)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		line = append(line, "--"+f.Name+"="+f.Value.String())
	})
	return line
}

// searchOptionsFromFlags collects the search flags the user set. Flags left
// alone stay nil so the configured defaults apply.
func searchOptionsFromFlags(flags *pflag.FlagSet) (blast.SearchOptions, error) {
	var opts blast.SearchOptions
	var err error

	str := func(name string) *string {
		if err != nil || !flags.Changed(name) {
			return nil
		}
		var v string
		v, err = flags.GetString(name)
		return &v
	}
	num := func(name string) *int {
		if err != nil || !flags.Changed(name) {
			return nil
		}
		var v int
		v, err = flags.GetInt(name)
		return &v
	}
	float := func(name string) *float64 {
		if err != nil || !flags.Changed(name) {
			return nil
		}
		var v float64
		v, err = flags.GetFloat64(name)
		return &v
	}
	boolean := func(name string) *bool {
		if err != nil || !flags.Changed(name) {
			return nil
		}
		var v bool
		v, err = flags.GetBool(name)
		return &v
	}

	opts.Task = str("task")
	opts.Evalue = float("evalue")
	opts.PercIdentity = float("perc-identity")
	opts.QcovHSPPerc = float("qcov-hsp-perc")
	opts.MaxTargetSeqs = num("max-target-seqs")
	opts.Threads = num("threads")
	opts.WordSize = num("word-size")
	opts.Outfmt = str("outfmt")
	opts.Dust = str("dust")
	opts.NegativeTaxIDList = str("negative-taxidlist")
	opts.Remote = boolean("remote")
	opts.NoScientificNames = boolean("no-sci-names")
	opts.Buffer = boolean("buffer")

	if err != nil {
		return blast.SearchOptions{}, fmt.Errorf("reading search flags: %w", err)
	}
	return opts, nil
}

// hits command
var hitsCmd = &cobra.Command{
	Use:   "hits REPORT",
	Short: "Parse a saved tabular blastn report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outfmt, _ := cmd.Flags().GetString("outfmt")
		column, _ := cmd.Flags().GetString("column")

		a, err := newApp("ParseHits", args)
		if err != nil {
			return err
		}
		defer a.Close()

		table, err := a.ParseHits(args[0], outfmt)
		if err != nil {
			return err
		}

		if column != "" {
			values, err := table.Column(column)
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		}
		return writeHitTable(os.Stdout, table, isTerminal(os.Stdout))
	},
}

// install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download BLAST+ and NCBI data",
}

var installBlastCmd = &cobra.Command{
	Use:   "blast",
	Short: "Download and unpack the BLAST+ executables for this platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetString("version")

		a, err := newApp("InstallBLAST", commandLine(cmd, args))
		if err != nil {
			return err
		}
		defer a.Close()

		binDir, err := a.InstallBLAST(cmd.Context(), version)
		if err != nil {
			return fmt.Errorf("install failed: %w", err)
		}

		fmt.Printf("BLAST+ installed in %s\n", binDir)
		fmt.Println("Set bin_dir under [blast] in your config to use it.")
		return nil
	},
}

var installTaxDBCmd = &cobra.Command{
	Use:   "taxdb",
	Short: "Download the NCBI taxonomy database into the database directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FetchTaxDB", args)
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.FetchTaxDB(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching taxdb: %w", err)
		}

		fmt.Printf("Extracted %d file(s)\n", len(files))
		return nil
	},
}

var installDBCmd = &cobra.Command{
	Use:   "db NAME",
	Short: "Download a preformatted NCBI database, e.g. 16S_ribosomal_RNA",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FetchDatabase", args)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.FetchDatabase(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching database: %w", err)
		}

		fmt.Printf("Database available at %s\n", path)
		return nil
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that blastn can be run",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CheckInstallation", args)
		if err != nil {
			return err
		}
		defer a.Close()

		banner, ok := a.CheckInstallation(cmd.Context())
		if !ok {
			return fmt.Errorf("blastn not found or not working; run 'blastkit install blast' or set bin_dir")
		}

		fmt.Println(banner)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory", args)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println(emptyJournalMessage(a.JournalPersistent(), "No operations recorded."))
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-17s  %s  %-7s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// db subcommands
	dbCmd.AddCommand(dbMakeCmd)
	dbMakeCmd.Flags().String("name", "", "Database name (default: generated UUID)")
	dbCmd.AddCommand(dbInfoCmd)
	dbInfoCmd.Flags().StringP("format", "f", formatText, "Output format: text, json, yaml or toml")
	dbCmd.AddCommand(dbFetchCmd)
	dbFetchCmd.Flags().StringP("out", "o", "", "Write FASTA to this file instead of stdout")
	dbCmd.AddCommand(dbListCmd)

	// search flags
	addSearchFlags(searchCmd.Flags())

	// hits flags
	hitsCmd.Flags().String("outfmt", "", "Format the report was written with (default: configured search format)")
	hitsCmd.Flags().StringP("column", "c", "", "Print only this column")

	// install subcommands
	installCmd.AddCommand(installBlastCmd)
	installBlastCmd.Flags().String("version", "", "BLAST+ release (default: configured blast_version)")
	installCmd.AddCommand(installTaxDBCmd)
	installCmd.AddCommand(installDBCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(hitsCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(docsCmd)
}
