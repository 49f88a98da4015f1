package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const uniqueIDPlaceholder = "@{unique.id}"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTagging(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateForRun additionally requires at least one resource group. Commands
// that only inspect state skip this so they work without a project config.
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Resources) == 0 {
		return fmt.Errorf("no resource groups configured: add [[resources]] to %s or pass --resource", ProjectConfigName)
	}
	for i, res := range c.Resources {
		if filepath.Clean(res.Directory) == filepath.Clean(c.Paths.OutputDir) {
			return fmt.Errorf("resources[%d].directory must differ from paths.output_dir", i)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateTagging() error {
	if _, err := regexp.Compile(c.Tagging.UntaggedSearchPattern); err != nil {
		return fmt.Errorf("tagging.untagged_search_pattern: %w", err)
	}
	if !strings.Contains(c.Tagging.TaggedReplacementPattern, uniqueIDPlaceholder) {
		return fmt.Errorf("tagging.tagged_replacement_pattern must contain %s", uniqueIDPlaceholder)
	}
	name := c.Tagging.IndexFilename
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("tagging.index_filename %q must be a plain file name", name)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
