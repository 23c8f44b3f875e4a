// Package version provides domain types for semantic versioning.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SemanticVersion is a value object representing a three-part version.
// Immutable: all operations return new instances.
type SemanticVersion struct {
	major uint64
	minor uint64
	patch uint64
}

var (
	// explicitRegex matches versions given on the command line. Minor and
	// patch may be omitted.
	explicitRegex = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

	// Zero is the zero version (0.0.0).
	Zero = SemanticVersion{}
)

// NewSemanticVersion creates a new SemanticVersion value object.
func NewSemanticVersion(major, minor, patch uint64) SemanticVersion {
	return SemanticVersion{
		major: major,
		minor: minor,
		patch: patch,
	}
}

// Parse parses an explicit version such as "1.2.3", "1.2" or "1".
// Missing components default to 0. The boolean is false when s is not a
// version, which callers treat as "not an explicit version command".
func Parse(s string) (SemanticVersion, bool) {
	matches := explicitRegex.FindStringSubmatch(s)
	if matches == nil {
		return Zero, false
	}

	var parts [3]uint64
	for i, m := range matches[1:] {
		if m == "" {
			continue
		}
		n, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return Zero, false
		}
		parts[i] = n
	}

	return SemanticVersion{major: parts[0], minor: parts[1], patch: parts[2]}, true
}

// MustParse parses an explicit version string and panics if invalid.
// Use only for known-good version strings.
func MustParse(s string) SemanticVersion {
	v, ok := Parse(s)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrInvalidVersion, s))
	}
	return v
}

// ParseLoose parses a version string read from a data file. It accepts
// anything Masterminds/semver accepts, including a "v" prefix and
// prerelease or build suffixes.
func ParseLoose(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}
	return v, nil
}

// FromSemver drops prerelease and metadata from v.
func FromSemver(v *semver.Version) SemanticVersion {
	if v == nil {
		return Zero
	}
	return SemanticVersion{major: v.Major(), minor: v.Minor(), patch: v.Patch()}
}

// Semver converts the version to a Masterminds version for precedence checks.
func (v SemanticVersion) Semver() *semver.Version {
	return semver.New(v.major, v.minor, v.patch, "", "")
}

// Major returns the major version component.
func (v SemanticVersion) Major() uint64 {
	return v.major
}

// Minor returns the minor version component.
func (v SemanticVersion) Minor() uint64 {
	return v.minor
}

// Patch returns the patch version component.
func (v SemanticVersion) Patch() uint64 {
	return v.patch
}

// IsZero returns true if this is the zero version.
func (v SemanticVersion) IsZero() bool {
	return v == Zero
}

// String returns the "major.minor.patch" form.
func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// TagString returns the version prefixed for use as a tag name.
func (v SemanticVersion) TagString(prefix string) string {
	return prefix + v.String()
}

// Compare returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v SemanticVersion) Compare(other SemanticVersion) int {
	switch {
	case v.major != other.major:
		return cmpUint(v.major, other.major)
	case v.minor != other.minor:
		return cmpUint(v.minor, other.minor)
	default:
		return cmpUint(v.patch, other.patch)
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// LessThan returns true if v < other.
func (v SemanticVersion) LessThan(other SemanticVersion) bool {
	return v.Compare(other) < 0
}

// GreaterThan returns true if v > other.
func (v SemanticVersion) GreaterThan(other SemanticVersion) bool {
	return v.Compare(other) > 0
}

// Equal returns true if both versions have the same components.
func (v SemanticVersion) Equal(other SemanticVersion) bool {
	return v == other
}
