package sourcecontrol

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// TaggerFactory opens the backend for a repository rooted at dir.
type TaggerFactory func(dir string) (Tagger, error)

// Registry maps marker directory names (".git") to tagger factories.
// Markers are checked in registration order.
type Registry struct {
	markers   []string
	factories map[string]TaggerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]TaggerFactory)}
}

// Register associates marker with factory. A nil factory records a known
// marker for which no backend is available. Registering a marker twice
// replaces its factory but keeps its original position.
func (r *Registry) Register(marker string, factory TaggerFactory) {
	if _, ok := r.factories[marker]; !ok {
		r.markers = append(r.markers, marker)
	}
	r.factories[marker] = factory
}

// Markers returns the registered marker names in detection order.
func (r *Registry) Markers() []string {
	out := make([]string, len(r.markers))
	copy(out, r.markers)
	return out
}

// Detection is the outcome of probing a directory.
type Detection struct {
	// Marker is the first marker directory found, or empty.
	Marker string
	// Tagger is the opened backend. Nil means none was found or it could
	// not be loaded.
	Tagger Tagger
	// Err explains why a found marker produced no tagger.
	Err error
}

// Selected reports whether a tagger is available.
func (d Detection) Selected() bool {
	return d.Tagger != nil
}

// Detect checks dir for each registered marker directory. The first marker
// present decides the outcome. A marker without a factory, or a factory that
// fails, yields a Detection with no tagger and a non-nil Err.
func (r *Registry) Detect(fsys afero.Fs, dir string) Detection {
	for _, marker := range r.markers {
		ok, err := afero.DirExists(fsys, filepath.Join(dir, marker))
		if err != nil || !ok {
			continue
		}

		factory := r.factories[marker]
		if factory == nil {
			return Detection{Marker: marker, Err: fmt.Errorf("no tagger available for %s", marker)}
		}

		tagger, err := factory(dir)
		if err != nil {
			return Detection{Marker: marker, Err: err}
		}
		if tagger == nil {
			return Detection{Marker: marker, Err: fmt.Errorf("tagger factory for %s returned nil", marker)}
		}
		return Detection{Marker: marker, Tagger: tagger}
	}
	return Detection{}
}
