package config

const (
	defaultOutputDir                = "target/generated-resources"
	defaultStateDir                 = "~/.local/share/tagres"
	defaultUntaggedSearchPattern    = `^(.*?)(\.[^./]+)?$`
	defaultTaggedReplacementPattern = "$1_@{unique.id}$2"
	defaultIndexFilename            = "tagged-index.properties"
	defaultIndexEncoding            = "ISO-8859-1"
	defaultChecksum                 = "crc32"
	defaultInclude                  = "**/*"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultWatchDebounceMillis      = 200
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Tagging: Tagging{
			UntaggedSearchPattern:    defaultUntaggedSearchPattern,
			TaggedReplacementPattern: defaultTaggedReplacementPattern,
			IndexFilename:            defaultIndexFilename,
			IndexEncoding:            defaultIndexEncoding,
			Checksum:                 defaultChecksum,
		},
		History: History{
			Enabled: true,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
