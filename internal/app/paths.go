package app

import (
	"fmt"
	"os"
	"path/filepath"

	"blastkit/internal/config"
)

// Paths are the locations blastkit needs before a config file exists.
//
// Lookup order:
//   - ConfigFile: BLASTKIT_CONFIG_PATH, $XDG_CONFIG_HOME/blastkit.toml, ~/.config/blastkit.toml
//   - BaseDir: BLASTKIT_HOME, $XDG_DATA_HOME/blastkit, ~/.local/share/blastkit
//   - DBDir: first entry of BLASTDB, the variable the BLAST+ tools read themselves
type Paths struct {
	ConfigFile string
	BaseDir    string
	LogDir     string
	DBDir      string // empty keeps the config default
}

// ResolvePaths reads the environment and returns the resolved Paths.
func ResolvePaths() (Paths, error) {
	var p Paths
	var err error

	p.ConfigFile, err = userPath("BLASTKIT_CONFIG_PATH", "XDG_CONFIG_HOME", ".config", "blastkit.toml")
	if err != nil {
		return Paths{}, err
	}
	p.BaseDir, err = userPath("BLASTKIT_HOME", "XDG_DATA_HOME", filepath.Join(".local", "share"), "blastkit")
	if err != nil {
		return Paths{}, err
	}
	p.LogDir = filepath.Join(p.BaseDir, "log")

	if dirs := filepath.SplitList(os.Getenv("BLASTDB")); len(dirs) > 0 {
		p.DBDir = dirs[0]
	}
	return p, nil
}

// NewConfig returns a default config rooted at BaseDir.
func (p Paths) NewConfig() *config.Config {
	cfg := config.NewConfig(p.BaseDir)
	if p.DBDir != "" {
		cfg.Blast.DBDir = p.DBDir
	}
	return cfg
}

// userPath resolves name from the override variable, then the XDG base
// directory, then fallback under the home directory. Relative XDG values are
// ignored.
func userPath(override, xdg, fallback, name string) (string, error) {
	if path := os.Getenv(override); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdg); filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving %s: cannot determine home directory: %w", override, err)
	}
	return filepath.Join(home, fallback, name), nil
}
