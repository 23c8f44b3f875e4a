package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relicta-tech/versionit/internal/application/versioning"
	"github.com/relicta-tech/versionit/internal/config"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

// printResult writes the result to stdout in the configured format. Text
// output is the bare version on stdout, with a summary on stderr.
func (o *Options) printResult(res *versioning.Result) error {
	const op = "cli.printResult"

	switch o.Format() {
	case config.FormatJSON:
		enc := json.NewEncoder(o.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return rperrors.IOWrap(err, op, "failed to write JSON output")
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(o.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return rperrors.IOWrap(err, op, "failed to write YAML output")
		}
		if err := enc.Close(); err != nil {
			return rperrors.IOWrap(err, op, "failed to write YAML output")
		}
	default:
		fmt.Fprintln(o.Stdout, res.Version)
		if !o.IsQuiet() {
			o.printSummary(res)
		}
	}
	return nil
}

// printSummary describes what a run changed on stderr.
func (o *Options) printSummary(res *versioning.Result) {
	if res.IsQuery {
		return
	}

	verb := "Updated"
	if res.DryRun {
		o.printTitle("Dry run: no files or tags were written")
		verb = "Would update"
	}
	o.printSuccess(fmt.Sprintf("%s %s → %s (%s)", verb, displayVersion(res.Previous), o.Styles.Bold.Render(res.Version), res.Command))

	for _, f := range res.DataFiles {
		o.printSubtle("  " + o.relPath(f))
	}
	for _, f := range res.ScriptFiles {
		o.printSubtle("  " + o.relPath(f))
	}
	if len(res.DataFiles)+len(res.ScriptFiles) == 0 {
		o.printWarning("no files carry a version")
	}

	for _, w := range res.Warnings {
		o.printWarning(w)
	}

	switch {
	case res.Tag == nil:
		if res.SCM == "" {
			o.printSubtle("no source control tag created")
		}
	case res.DryRun:
		o.printInfo("Would tag " + res.Tag.Name)
	default:
		msg := "Tagged " + res.Tag.Name
		if res.Tag.Committed {
			msg += " on new commit " + shortHash(res.Tag.Commit)
		} else if res.Tag.Commit != "" {
			msg += " at " + shortHash(res.Tag.Commit)
		}
		o.printSuccess(msg)
	}
}

func (o *Options) relPath(path string) string {
	if o.Cwd == "" {
		return path
	}
	rel, err := filepath.Rel(o.Cwd, path)
	if err != nil {
		return path
	}
	return rel
}

func displayVersion(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// Helper functions for output

func (o *Options) printTitle(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Title.Render(msg))
}

func (o *Options) printSuccess(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Success.Render("✓ "+msg))
}

func (o *Options) printError(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Error.Render("✗ "+msg))
}

func (o *Options) printWarning(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Warning.Render("⚠ "+msg))
}

func (o *Options) printInfo(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Info.Render("ℹ "+msg))
}

func (o *Options) printSubtle(msg string) {
	fmt.Fprintln(o.Stderr, o.Styles.Subtle.Render(msg))
}
