package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Tagging contains the filename transformation and index settings.
type Tagging struct {
	// UntaggedSearchPattern is a regular expression matched against each
	// resource's relative path. Its groups are available to the replacement.
	UntaggedSearchPattern string `toml:"untagged_search_pattern"`
	// TaggedReplacementPattern builds the tagged name. "@{unique.id}" is the
	// fingerprint, "$n" and "${name}" reference groups of the search pattern.
	TaggedReplacementPattern string `toml:"tagged_replacement_pattern"`
	IndexFilename            string `toml:"index_filename"`
	IndexEncoding            string `toml:"index_encoding"`
	Checksum                 string `toml:"checksum"`
	IncludeHidden            bool   `toml:"include_hidden"`
}

// Resource is one resource group: a base directory plus include/exclude globs.
type Resource struct {
	Directory string   `toml:"directory"`
	Includes  []string `toml:"includes"`
	Excludes  []string `toml:"excludes"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Watch contains configuration for the watch command.
type Watch struct {
	DebounceMillis int `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for tagres.
//
// Configuration sections:
//   - Paths: generated output directory and local state directory
//   - Tagging: pattern pair, index file, checksum algorithm
//   - Resources: resource groups to fingerprint
//   - History: SQLite run ledger
//   - Watch: debounce for the watch command
//   - Logging: log format, level, and optional file
type Config struct {
	Paths     Paths      `toml:"paths"`
	Tagging   Tagging    `toml:"tagging"`
	Resources []Resource `toml:"resources"`
	History   History    `toml:"history"`
	Watch     Watch      `toml:"watch"`
	Logging   Logging    `toml:"logging"`

	// BaseDir anchors relative paths: the directory holding the loaded config
	// file, or the working directory when no file was found.
	BaseDir string `toml:"-"`
}

// ProjectConfigName is the per-project configuration file looked up in the
// working directory.
const ProjectConfigName = "tagres.toml"

// DefaultConfigPath returns the absolute path to the user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tagres/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
		cfg.BaseDir = filepath.Dir(resolvedPath)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", false, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.BaseDir = wd
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(ProjectConfigName)
	if err != nil {
		return "", false, err
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return projectPath, false, nil
}

// EnsureDirectories creates the local state directory used for the history
// database and output locks.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// HistoryPath returns the SQLite database location for the run ledger.
func (c *Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// IndexPath returns the absolute location of the index file.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Tagging.IndexFilename)
}

// AddResource appends a resource group, resolving dir against BaseDir. It is
// used by CLI flags that extend the configured groups.
func (c *Config) AddResource(dir string, includes, excludes []string) error {
	resolved, err := c.resolve(dir)
	if err != nil {
		return fmt.Errorf("resource directory: %w", err)
	}
	c.Resources = append(c.Resources, normalizeResource(Resource{
		Directory: resolved,
		Includes:  includes,
		Excludes:  excludes,
	}))
	return nil
}

// SetOutputDir overrides the output directory, resolving it against BaseDir.
func (c *Config) SetOutputDir(dir string) error {
	resolved, err := c.resolve(dir)
	if err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	c.Paths.OutputDir = resolved
	return nil
}

func (c *Config) resolve(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", errors.New("path must not be empty")
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) && c.BaseDir != "" {
		pathValue = filepath.Join(c.BaseDir, pathValue)
	}
	return expandPath(pathValue)
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
