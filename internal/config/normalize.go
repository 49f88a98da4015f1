package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTagging()
	if err := c.normalizeResources(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = defaultWatchDebounceMillis
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = c.resolve(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		if value, ok := os.LookupEnv("TAGRES_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.StateDir = value
		} else {
			c.Paths.StateDir = defaultStateDir
		}
	}
	if c.Paths.StateDir, err = c.resolve(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

// normalizeTagging fills blanks with defaults. Patterns are not trimmed:
// leading or trailing spaces may be intentional.
func (c *Config) normalizeTagging() {
	if c.Tagging.UntaggedSearchPattern == "" {
		c.Tagging.UntaggedSearchPattern = defaultUntaggedSearchPattern
	}
	if c.Tagging.TaggedReplacementPattern == "" {
		c.Tagging.TaggedReplacementPattern = defaultTaggedReplacementPattern
	}
	c.Tagging.IndexFilename = strings.TrimSpace(c.Tagging.IndexFilename)
	if c.Tagging.IndexFilename == "" {
		c.Tagging.IndexFilename = defaultIndexFilename
	}
	c.Tagging.IndexEncoding = strings.TrimSpace(c.Tagging.IndexEncoding)
	if c.Tagging.IndexEncoding == "" {
		c.Tagging.IndexEncoding = defaultIndexEncoding
	}
	c.Tagging.Checksum = strings.ToLower(strings.TrimSpace(c.Tagging.Checksum))
	if c.Tagging.Checksum == "" {
		c.Tagging.Checksum = defaultChecksum
	}
}

func (c *Config) normalizeResources() error {
	for i := range c.Resources {
		res := c.Resources[i]
		if strings.TrimSpace(res.Directory) == "" {
			return fmt.Errorf("resources[%d].directory must be set", i)
		}
		resolved, err := c.resolve(res.Directory)
		if err != nil {
			return fmt.Errorf("resources[%d].directory: %w", i, err)
		}
		res.Directory = resolved
		c.Resources[i] = normalizeResource(res)
	}
	return nil
}

func normalizeResource(res Resource) Resource {
	res.Includes = cleanPatterns(res.Includes)
	if len(res.Includes) == 0 {
		res.Includes = []string{defaultInclude}
	}
	res.Excludes = cleanPatterns(res.Excludes)
	return res
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	seen := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		normalized := strings.ReplaceAll(strings.TrimSpace(pattern), "\\", "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	var err error
	if c.History.Path, err = c.resolve(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = c.resolve(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
