// Package versioning provides the version resolution use case and the
// orchestrator that applies it to a project directory.
package versioning

import (
	"github.com/Masterminds/semver/v3"

	"github.com/relicta-tech/versionit/internal/domain/version"
	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

// Resolution is the outcome of resolving a command against the versions
// found on disk.
type Resolution struct {
	Command version.Command
	// Current is the highest discovered version, or 0.0.0.
	Current version.SemanticVersion
	// Next is the version to write. It equals Current for a query.
	Next version.SemanticVersion
	// Source is the index of the discovered version Current came from, or -1.
	Source int
}

// IsQuery reports whether nothing should be written.
func (r *Resolution) IsQuery() bool {
	return r.Command.IsQuery()
}

// ParseCommand parses a user command, reporting unknown verbs as
// validation errors.
func ParseCommand(s string) (version.Command, error) {
	cmd, err := version.ParseCommand(s)
	if err != nil {
		return version.Command{}, rperrors.ValidationWrap(err, "versioning.ParseCommand", "invalid command")
	}
	return cmd, nil
}

// Resolve computes the current and next versions for command. Current is
// the maximum of discovered by semantic-version precedence; nil entries are
// ignored and ties keep the earliest entry.
func Resolve(command string, discovered []*semver.Version) (*Resolution, error) {
	cmd, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}
	return ResolveCommand(cmd, discovered), nil
}

// ResolveCommand is Resolve for an already parsed command.
func ResolveCommand(cmd version.Command, discovered []*semver.Version) *Resolution {
	var highest *semver.Version
	source := -1
	for i, v := range discovered {
		if v == nil {
			continue
		}
		if highest == nil || v.GreaterThan(highest) {
			highest, source = v, i
		}
	}

	current := version.FromSemver(highest)
	return &Resolution{
		Command: cmd,
		Current: current,
		Next:    cmd.Next(current),
		Source:  source,
	}
}
