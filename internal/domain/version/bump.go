package version

import (
	"fmt"
	"strings"
)

// BumpType represents the component of a version to increment.
type BumpType string

const (
	// BumpMajor increments major and resets minor and patch.
	BumpMajor BumpType = "major"
	// BumpMinor increments minor and resets patch.
	BumpMinor BumpType = "minor"
	// BumpPatch increments patch.
	BumpPatch BumpType = "patch"
)

// IsValid returns true if the bump type is valid.
func (b BumpType) IsValid() bool {
	switch b {
	case BumpMajor, BumpMinor, BumpPatch:
		return true
	default:
		return false
	}
}

// String returns the string representation of the bump type.
func (b BumpType) String() string {
	return string(b)
}

// Apply applies the bump to v and returns the new version.
func (b BumpType) Apply(v SemanticVersion) SemanticVersion {
	switch b {
	case BumpMajor:
		return SemanticVersion{major: v.major + 1}
	case BumpMinor:
		return SemanticVersion{major: v.major, minor: v.minor + 1}
	case BumpPatch:
		return SemanticVersion{major: v.major, minor: v.minor, patch: v.patch + 1}
	default:
		return v
	}
}

// CommandKind identifies what a command asks for.
type CommandKind uint8

const (
	// CommandQuery reports the current version without mutating anything.
	CommandQuery CommandKind = iota
	// CommandSet writes an explicit version.
	CommandSet
	// CommandBump increments the current version.
	CommandBump
	// CommandSync rewrites every file with the current version.
	CommandSync
)

// String returns the name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandQuery:
		return "query"
	case CommandSet:
		return "set"
	case CommandBump:
		return "bump"
	case CommandSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Command verbs accepted on the command line.
const (
	VerbBump      = "bump"
	VerbBumpPatch = "bump-patch"
	VerbBumpMinor = "bump-minor"
	VerbBumpMajor = "bump-major"
	VerbSync      = "sync"
)

// Command is a parsed user command.
type Command struct {
	kind   CommandKind
	raw    string
	target SemanticVersion
	bump   BumpType
}

// ParseCommand classifies s. An explicit version takes precedence over the
// verbs; the empty string is a query. Anything else wraps ErrUnknownCommand.
func ParseCommand(s string) (Command, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Command{kind: CommandQuery}, nil
	}
	if v, ok := Parse(raw); ok {
		return Command{kind: CommandSet, raw: raw, target: v}, nil
	}

	switch raw {
	case VerbBump, VerbBumpPatch:
		return Command{kind: CommandBump, raw: raw, bump: BumpPatch}, nil
	case VerbBumpMinor:
		return Command{kind: CommandBump, raw: raw, bump: BumpMinor}, nil
	case VerbBumpMajor:
		return Command{kind: CommandBump, raw: raw, bump: BumpMajor}, nil
	case VerbSync:
		return Command{kind: CommandSync, raw: raw}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
	}
}

// Kind returns the command kind.
func (c Command) Kind() CommandKind {
	return c.kind
}

// Raw returns the command as given, trimmed.
func (c Command) Raw() string {
	return c.raw
}

// Target returns the explicit version of a CommandSet.
func (c Command) Target() SemanticVersion {
	return c.target
}

// Bump returns the bump type of a CommandBump.
func (c Command) Bump() BumpType {
	return c.bump
}

// IsQuery reports whether the command performs no mutation.
func (c Command) IsQuery() bool {
	return c.kind == CommandQuery
}

// Next computes the version the command produces from current.
func (c Command) Next(current SemanticVersion) SemanticVersion {
	switch c.kind {
	case CommandSet:
		return c.target
	case CommandBump:
		return c.bump.Apply(current)
	default:
		return current
	}
}
