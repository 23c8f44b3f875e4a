package config

import (
	"fmt"
	"slices"
	"strings"

	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

// invalidRefChars may not appear in a git tag name.
const invalidRefChars = " ~^:?*[\\"

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validator validates configuration.
type Validator struct {
	errors *ValidationError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: &ValidationError{},
	}
}

// Validate validates the configuration. Warnings never fail validation;
// read them with Warnings.
func (v *Validator) Validate(cfg *Config) error {
	v.validateVersioning(cfg.Versioning)
	v.validateDiscovery(cfg.Discovery)
	v.validateOutput(cfg.Output)

	if v.errors.HasErrors() {
		return rperrors.ConfigWrap(v.errors, "config.Validate", "invalid configuration")
	}
	return nil
}

// Warnings returns the warnings collected by Validate.
func (v *Validator) Warnings() []string {
	return v.errors.Warnings
}

// Validate validates cfg and returns its warnings.
func Validate(cfg *Config) ([]string, error) {
	v := NewValidator()
	err := v.Validate(cfg)
	return v.Warnings(), err
}

func (v *Validator) validateVersioning(cfg VersioningConfig) {
	if strings.ContainsAny(cfg.TagPrefix, invalidRefChars) {
		v.errors.Addf("versioning.tag_prefix: %q contains characters not allowed in a tag name", cfg.TagPrefix)
	}
	if strings.HasPrefix(cfg.TagPrefix, "-") || strings.HasPrefix(cfg.TagPrefix, "/") {
		v.errors.Addf("versioning.tag_prefix: %q must not start with %q", cfg.TagPrefix, cfg.TagPrefix[:1])
	}
	if strings.Contains(cfg.TagPrefix, "..") {
		v.errors.Addf("versioning.tag_prefix: %q must not contain \"..\"", cfg.TagPrefix)
	}

	if cfg.NoSCM {
		if cfg.Commit {
			v.errors.Warnf("versioning.commit has no effect when versioning.no_scm is set")
		}
		if cfg.TagMessage != "" {
			v.errors.Warnf("versioning.tag_message has no effect when versioning.no_scm is set")
		}
	}
	if cfg.CommitMessage != "" && !cfg.Commit {
		v.errors.Warnf("versioning.commit_message is set but versioning.commit is false")
	}
}

func (v *Validator) validateDiscovery(cfg DiscoveryConfig) {
	if len(cfg.DataExtensions) == 0 {
		v.errors.Addf("discovery.data_extensions: at least one extension is required")
	}

	data := make(map[string]bool, len(cfg.DataExtensions))
	for _, ext := range cfg.DataExtensions {
		norm, ok := v.normalizeExtension("discovery.data_extensions", ext)
		if ok {
			data[norm] = true
		}
	}
	for _, ext := range cfg.ScriptExtensions {
		norm, ok := v.normalizeExtension("discovery.script_extensions", ext)
		if ok && data[norm] {
			v.errors.Addf("discovery: %q is listed as both a data and a script extension", norm)
		}
	}
}

func (v *Validator) normalizeExtension(field, ext string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(ext))
	if norm == "" || norm == "." {
		v.errors.Addf("%s: empty extension", field)
		return "", false
	}
	if strings.ContainsAny(norm, `/\`) {
		v.errors.Addf("%s: %q is not a file extension", field, ext)
		return "", false
	}
	if !strings.HasPrefix(norm, ".") {
		norm = "." + norm
	}
	return norm, true
}

func (v *Validator) validateOutput(cfg OutputConfig) {
	if !slices.Contains(ValidFormats, cfg.Format) {
		v.errors.Addf("output.format: must be one of %v, got %q", ValidFormats, cfg.Format)
	}
	if !slices.Contains(ValidLogLevels, cfg.LogLevel) {
		v.errors.Addf("output.log_level: must be one of %v, got %q", ValidLogLevels, cfg.LogLevel)
	}
	if cfg.Quiet && cfg.Verbose {
		v.errors.Warnf("output.quiet and output.verbose are both set; verbose wins for logging")
	}
}
