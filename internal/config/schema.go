// Package config provides configuration management for versionit.
package config

// Config is the root configuration for versionit.
type Config struct {
	// Versioning configures how versions are written and tagged.
	Versioning VersioningConfig `mapstructure:"versioning" json:"versioning" yaml:"versioning"`
	// Discovery configures which files are considered.
	Discovery DiscoveryConfig `mapstructure:"discovery" json:"discovery" yaml:"discovery"`
	// Output configures output settings.
	Output OutputConfig `mapstructure:"output" json:"output" yaml:"output"`
}

// VersioningConfig configures version writing and tagging.
type VersioningConfig struct {
	// TagPrefix is the prefix for version tags (default: "v").
	TagPrefix string `mapstructure:"tag_prefix" json:"tag_prefix" yaml:"tag_prefix"`
	// TagMessage is the annotated tag message. %s and {{version}} expand
	// to the version. Empty means "Bump version to <version>".
	TagMessage string `mapstructure:"tag_message" json:"tag_message,omitempty" yaml:"tag_message,omitempty"`
	// Commit commits the modified files before tagging.
	Commit bool `mapstructure:"commit" json:"commit" yaml:"commit"`
	// CommitMessage is the commit message. Empty means "<version>".
	CommitMessage string `mapstructure:"commit_message" json:"commit_message,omitempty" yaml:"commit_message,omitempty"`
	// NoSCM disables source-control detection and tagging.
	NoSCM bool `mapstructure:"no_scm" json:"no_scm" yaml:"no_scm"`
	// Scripts enables patching of version literals in script files.
	Scripts bool `mapstructure:"scripts" json:"scripts" yaml:"scripts"`
}

// DiscoveryConfig configures candidate file discovery.
type DiscoveryConfig struct {
	// DataExtensions are the extensions of structured data files.
	DataExtensions []string `mapstructure:"data_extensions" json:"data_extensions" yaml:"data_extensions"`
	// ScriptExtensions are the extensions of script files.
	ScriptExtensions []string `mapstructure:"script_extensions" json:"script_extensions" yaml:"script_extensions"`
}

// OutputConfig configures output settings.
type OutputConfig struct {
	// Format is the output format (text, json, yaml).
	Format string `mapstructure:"format" json:"format" yaml:"format"`
	// Color enables colored output.
	Color bool `mapstructure:"color" json:"color" yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose" json:"verbose" yaml:"verbose"`
	// Quiet suppresses non-essential output.
	Quiet bool `mapstructure:"quiet" json:"quiet" yaml:"quiet"`
	// LogFile is the path to a log file.
	LogFile string `mapstructure:"log_file" json:"log_file,omitempty" yaml:"log_file,omitempty"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// ValidLogLevels lists the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Versioning: VersioningConfig{
			TagPrefix: "v",
			Scripts:   true,
		},
		Discovery: DiscoveryConfig{
			DataExtensions:   []string{".json"},
			ScriptExtensions: []string{".js"},
		},
		Output: OutputConfig{
			Format:   FormatText,
			Color:    true,
			LogLevel: "warn",
		},
	}
}

// ConfigFileNames to search for.
var ConfigFileNames = []string{
	".versionit",
}

// ConfigFileExtensions supported by Viper.
var ConfigFileExtensions = []string{
	"yaml",
	"yml",
	"json",
	"toml",
}
