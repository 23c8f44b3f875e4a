package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/relicta-tech/versionit/internal/config"
	"github.com/relicta-tech/versionit/internal/container"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
	buildversion "github.com/relicta-tech/versionit/internal/version"
)

// defaultOptions backs the package-level entry points used by main.
var defaultOptions = NewOptions()

// flagBindings maps persistent flags onto configuration keys. A flag only
// overrides the config file and environment when it is set explicitly.
var flagBindings = map[string]string{
	"tag-prefix":     "versioning.tag_prefix",
	"message":        "versioning.tag_message",
	"commit":         "versioning.commit",
	"commit-message": "versioning.commit_message",
	"no-scm":         "versioning.no_scm",
	"output":         "output.format",
	"log-level":      "output.log_level",
	"log-file":       "output.log_file",
	"verbose":        "output.verbose",
	"quiet":          "output.quiet",
}

// SetVersionInfo sets the version information from main.
func SetVersionInfo(version, commit, date string) {
	defaultOptions.SetVersion(version, commit, date)
}

// ExecuteContext runs the root command with a context for graceful shutdown.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand(defaultOptions).ExecuteContext(ctx)
}

// Cleanup closes any open resources. Should be called before program exit.
func Cleanup() {
	defaultOptions.Cleanup()
}

// NewRootCommand builds the versionit command tree around opts.
func NewRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versionit [command]",
		Short: "Bump, set and tag the version of a project",
		Long: `versionit reads the version from every JSON data file in a directory,
computes the next version and writes it back to the data files and to the
version literal in each script. When the directory is a git repository the
new version is tagged.

Commands:
  (none)        print the current version
  bump          bump the patch version
  bump-patch    bump the patch version
  bump-minor    bump the minor version
  bump-major    bump the major version
  sync          write the current version to every file
  <version>     set an explicit version, e.g. 2.1 or 3.0.0`,
		Example: `  versionit
  versionit bump-minor --commit
  versionit 2.0.0 --no-scm
  versionit bump --cwd ./packages/api -o json`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return opts.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := ""
			if len(args) == 1 {
				command = args[0]
			}
			return opts.run(cmd.Context(), command)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: .versionit.yaml in the project directory)")
	flags.StringVar(&opts.Cwd, "cwd", "", "project directory (default: current directory)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "resolve and report without writing files or tags")
	flags.BoolVar(&opts.NoScripts, "no-scripts", false, "do not patch version literals in scripts")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.Bool("no-scm", false, "skip source control detection and tagging")
	flags.StringP("message", "m", "", "tag message; %s and {{version}} expand to the version")
	flags.Bool("commit", false, "commit the updated files before tagging")
	flags.String("commit-message", "", "commit message; expanded like --message")
	flags.String("tag-prefix", "", "tag name prefix (default: v)")
	flags.StringP("output", "o", config.FormatText, "output format (text, json, yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "append logs to this file")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "print only the version")

	cmd.AddCommand(newVersionCommand(opts))
	return cmd
}

func newVersionCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := opts.Version.Version
			if v == "" || v == "dev" {
				v = buildversion.Get()
			}
			fmt.Fprintf(opts.Stdout, "versionit %s\n", v)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(opts.Stdout, "  commit: %s\n", opts.Version.Commit)
				fmt.Fprintf(opts.Stdout, "  built:  %s\n", opts.Version.Date)
			}
		},
	}
}

// projectDir returns the directory given with --cwd or the process directory.
func (o *Options) projectDir() (string, error) {
	if o.Cwd != "" {
		dir, err := filepath.Abs(o.Cwd)
		if err != nil {
			return "", rperrors.IOWrap(err, "cli.projectDir", "failed to resolve directory").WithPath(o.Cwd)
		}
		return dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", rperrors.IOWrap(err, "cli.projectDir", "failed to determine working directory")
	}
	return dir, nil
}

// loadAndValidateConfig loads the configuration from the project directory,
// the environment and explicitly set flags, then validates it.
func (o *Options) loadAndValidateConfig(cmd *cobra.Command, dir string) error {
	loader := config.NewLoader().WithFs(o.Fs).WithSearchPaths(dir)
	if o.ConfigFile != "" {
		loader.WithConfigPath(o.ConfigFile)
	}

	v := loader.Viper()
	for name, key := range flagBindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return rperrors.ConfigWrap(err, "cli.loadConfig", "failed to bind flag "+name)
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	o.applyFlags(cfg)

	warnings, err := config.Validate(cfg)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		o.Logger.Warn("configuration", "warning", w)
	}

	o.Config = cfg
	if path := loader.GetConfigPath(); path != "" {
		o.Logger.Debug("loaded configuration", "file", path)
	}
	return nil
}

// applyFlags applies the negated flags that have no direct config key.
func (o *Options) applyFlags(cfg *config.Config) {
	if o.NoScripts {
		cfg.Versioning.Scripts = false
	}
	if o.NoColor {
		cfg.Output.Color = false
	}
}

// configureLogger applies level, format, color and file settings.
func (o *Options) configureLogger() error {
	cfg := o.Config

	level, err := log.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.Output.Verbose {
		level = log.DebugLevel
	}
	o.Logger.SetLevel(level)

	if cfg.Output.Format == config.FormatJSON {
		o.Logger.SetFormatter(log.JSONFormatter)
		o.Logger.SetReportTimestamp(true)
	}

	if !cfg.Output.Color {
		o.Logger.SetColorProfile(termenv.Ascii)
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if cfg.Output.LogFile == "" {
		return nil
	}
	f, err := o.Fs.OpenFile(cfg.Output.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return rperrors.IOWrap(err, "cli.configureLogger", "failed to open log file").WithPath(cfg.Output.LogFile)
	}
	o.Logger.SetOutput(f)
	o.LogFile = f
	return nil
}

// initConfig reads the config file, environment and flags and sets up logging.
func (o *Options) initConfig(cmd *cobra.Command) error {
	dir, err := o.projectDir()
	if err != nil {
		return err
	}
	o.Cwd = dir

	if err := o.loadAndValidateConfig(cmd, dir); err != nil {
		return err
	}
	return o.configureLogger()
}

// run executes one version command against the project directory.
func (o *Options) run(ctx context.Context, command string) error {
	c, err := container.New(o.Config, o.Logger, container.WithFs(o.Fs))
	if err != nil {
		return err
	}

	result, err := c.Service().Run(ctx, command, c.RunOptions(o.Cwd, o.DryRun))
	if err != nil {
		if result != nil && !o.IsQuiet() {
			o.printSummary(result)
			o.printError("stopped after updating the files above")
		}
		return err
	}
	return o.printResult(result)
}
