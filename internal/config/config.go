package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultBlastVersion is the BLAST+ release installed when none is configured.
const DefaultBlastVersion = "2.15.0"

// Config represents the main configuration for blastkit.
type Config struct {
	BaseDir   string          `toml:"base_dir"`
	LogDir    string          `toml:"log_dir"`
	LogLevel  string          `toml:"log_level,omitempty"` // debug, info, warn or error
	Blast     BlastConfig     `toml:"blast"`
	Search    SearchConfig    `toml:"search"`
	Database  DatabaseConfig  `toml:"database"`
	Provision ProvisionConfig `toml:"provision"`
}

// Level parses LogLevel. An empty value means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// BlastConfig controls how the BLAST+ executables are found and how local
// databases are built.
type BlastConfig struct {
	BinDir      string `toml:"bin_dir"` // empty means look the tools up on PATH
	DBDir       string `toml:"db_dir"`
	DBType      string `toml:"db_type"` // "nucl" or "prot"
	TaxID       int    `toml:"taxid"`
	ParseSeqIDs bool   `toml:"parse_seqids"`
	Timeout     string `toml:"timeout,omitempty"` // duration string, e.g. "30m"
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (b BlastConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid blast timeout %q: %w", b.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid blast timeout %q: must not be negative", b.Timeout)
	}
	return d, nil
}

// SearchConfig overrides the built-in search defaults. Unset fields keep the
// built-in value.
type SearchConfig struct {
	Task          *string  `toml:"task,omitempty"`
	Threads       *int     `toml:"threads,omitempty"`
	Evalue        *float64 `toml:"evalue,omitempty"`
	PercIdentity  *float64 `toml:"perc_identity,omitempty"`
	QcovHSPPerc   *float64 `toml:"qcov_hsp_perc,omitempty"`
	MaxTargetSeqs *int     `toml:"max_target_seqs,omitempty"`
	WordSize      *int     `toml:"word_size,omitempty"`
	Outfmt        *string  `toml:"outfmt,omitempty"`
	Dust          *string  `toml:"dust,omitempty"`
}

// DatabaseConfig represents configuration for the operation journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// Persistent reports whether the journal outlives the process.
func (d DatabaseConfig) Persistent() bool {
	return d.Type == "sqlite"
}

// ProvisionConfig represents where BLAST+ release archives and the taxonomy
// database are downloaded from.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ProvisionConfig struct {
	Type         string `toml:"type"` // "https", "s3" or "filesystem"
	BlastVersion string `toml:"blast_version"`
	InstallDir   string `toml:"install_dir"`

	// HTTPS-specific fields (only used when Type == "https")
	BaseURL string `toml:"base_url,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	MirrorRoot string `toml:"mirror_root,omitempty"`
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Blast: BlastConfig{
			DBDir:  "blastdb",
			DBType: "nucl",
		},
		Database: DatabaseConfig{Type: "memory"},
		Provision: ProvisionConfig{
			Type:         "https",
			BlastVersion: DefaultBlastVersion,
			InstallDir:   filepath.Join(baseDir, "blast"),
		},
	}
}

// Validate checks the tagged unions and value ranges.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.Blast.DBType {
	case "", "nucl", "prot":
	default:
		return fmt.Errorf("unknown blast db_type: %s", c.Blast.DBType)
	}
	if _, err := c.Blast.TimeoutDuration(); err != nil {
		return err
	}

	switch c.Database.Type {
	case "", "memory":
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("data_dir required for sqlite database")
		}
	default:
		return fmt.Errorf("unknown database type: %s", c.Database.Type)
	}

	switch c.Provision.Type {
	case "", "https":
	case "s3":
		if c.Provision.S3Region == "" {
			return fmt.Errorf("s3_region required for s3 provision source")
		}
		if (c.Provision.S3AccessKeyID == "") != (c.Provision.S3SecretAccessKey == "") {
			return fmt.Errorf("s3_access_key_id and s3_secret_access_key must be set together")
		}
	case "filesystem":
		if c.Provision.MirrorRoot == "" {
			return fmt.Errorf("mirror_root required for filesystem provision source")
		}
	default:
		return fmt.Errorf("unknown provision type: %s", c.Provision.Type)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
