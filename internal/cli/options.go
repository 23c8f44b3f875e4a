// Package cli provides the command-line interface for versionit.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/relicta-tech/versionit/internal/config"
)

// Options holds the CLI runtime options and dependencies.
type Options struct {
	Version VersionInfo

	// Global flags
	ConfigFile string
	Cwd        string
	DryRun     bool
	NoScripts  bool
	NoColor    bool

	// Runtime state
	Config  *config.Config
	Logger  *log.Logger
	LogFile io.Closer
	Styles  Styles

	// Fs is used for project files, the config file and the log file.
	Fs afero.Fs

	// I/O streams (for testing)
	Stdout io.Writer
	Stderr io.Writer
}

// VersionInfo holds version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// Styles holds the CLI styling configuration.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Subtle  lipgloss.Style
	Bold    lipgloss.Style
}

// DefaultStyles returns the default CLI styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// NewOptions creates a new Options instance with default values.
func NewOptions() *Options {
	return &Options{
		Styles: DefaultStyles(),
		Fs:     afero.NewOsFs(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			ReportCaller:    false,
		}),
	}
}

// SetVersion sets the version information.
func (o *Options) SetVersion(version, commit, date string) {
	o.Version.Version = version
	o.Version.Commit = commit
	o.Version.Date = date
}

// IsQuiet reports whether human-readable detail output is suppressed.
func (o *Options) IsQuiet() bool {
	return o.Config != nil && o.Config.Output.Quiet
}

// Format returns the configured output format.
func (o *Options) Format() string {
	if o.Config == nil || o.Config.Output.Format == "" {
		return config.FormatText
	}
	return o.Config.Output.Format
}

// Cleanup closes any open resources.
func (o *Options) Cleanup() {
	if o.LogFile != nil {
		o.LogFile.Close()
		o.LogFile = nil
	}
}
