package sourcecontrol

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/statekit"
	"github.com/spf13/afero"

	"github.com/relicta-tech/versionit/internal/domain/version"
)

// State is a step of the tagging lifecycle.
type State string

// Lifecycle states.
const (
	StateUnselected     State = "unselected"
	StateDetecting      State = "detecting"
	StateNoneFound      State = "none_found"
	StateSelected       State = "selected"
	StatePrecheckPassed State = "precheck_passed"
	StatePrecheckFailed State = "precheck_failed"
	StateTagged         State = "tagged"
	StateTagFailed      State = "tag_failed"
)

// String returns the state name.
func (s State) String() string {
	return string(s)
}

// Events driving the lifecycle.
const (
	EventDetect       statekit.EventType = "DETECT"
	EventNoneFound    statekit.EventType = "NONE_FOUND"
	EventSelect       statekit.EventType = "SELECT"
	EventPrecheckOK   statekit.EventType = "PRECHECK_OK"
	EventPrecheckFail statekit.EventType = "PRECHECK_FAIL"
	EventTagOK        statekit.EventType = "TAG_OK"
	EventTagFail      statekit.EventType = "TAG_FAIL"
)

var (
	stateIDUnselected     = statekit.StateID(StateUnselected)
	stateIDDetecting      = statekit.StateID(StateDetecting)
	stateIDNoneFound      = statekit.StateID(StateNoneFound)
	stateIDSelected       = statekit.StateID(StateSelected)
	stateIDPrecheckPassed = statekit.StateID(StatePrecheckPassed)
	stateIDPrecheckFailed = statekit.StateID(StatePrecheckFailed)
	stateIDTagged         = statekit.StateID(StateTagged)
	stateIDTagFailed      = statekit.StateID(StateTagFailed)
)

// sessionContext is the machine context; the session keeps the tagger itself.
type sessionContext struct {
	Dir string
}

func newLifecycleMachine() (*statekit.Interpreter[sessionContext], error) {
	machine, err := statekit.NewMachine[sessionContext]("scm-tagging").
		WithInitial(stateIDUnselected).
		State(stateIDUnselected).
		On(EventDetect).Target(stateIDDetecting).
		Done().
		State(stateIDDetecting).
		On(EventNoneFound).Target(stateIDNoneFound).
		On(EventSelect).Target(stateIDSelected).
		Done().
		State(stateIDNoneFound).
		Final().
		Done().
		State(stateIDSelected).
		On(EventPrecheckOK).Target(stateIDPrecheckPassed).
		On(EventPrecheckFail).Target(stateIDPrecheckFailed).
		Done().
		State(stateIDPrecheckFailed).
		Final().
		Done().
		State(stateIDPrecheckPassed).
		On(EventTagOK).Target(stateIDTagged).
		On(EventTagFail).Target(stateIDTagFailed).
		Done().
		State(stateIDTagged).
		Final().
		Done().
		State(stateIDTagFailed).
		Final().
		Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build tagging state machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

// Session selects at most one tagger for a directory and walks it through
// detect, precheck and tag. A Session is used for a single invocation.
type Session struct {
	registry  *Registry
	fs        afero.Fs
	dir       string
	interp    *statekit.Interpreter[sessionContext]
	detection Detection
}

// NewSession creates a session in the unselected state.
func NewSession(registry *Registry, fsys afero.Fs, dir string) (*Session, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	interp, err := newLifecycleMachine()
	if err != nil {
		return nil, err
	}
	return &Session{
		registry: registry,
		fs:       fsys,
		dir:      dir,
		interp:   interp,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.interp.State().Value)
}

// Done reports whether the lifecycle reached a terminal state.
func (s *Session) Done() bool {
	return s.interp.Done()
}

// Backend returns the selected tagger's name, or empty.
func (s *Session) Backend() string {
	if s.detection.Tagger == nil {
		return ""
	}
	return s.detection.Tagger.Name()
}

// Detect inspects the directory. It may be called once; later calls return
// the first result.
func (s *Session) Detect() Detection {
	if s.State() != StateUnselected {
		return s.detection
	}

	s.send(EventDetect)
	s.detection = s.registry.Detect(s.fs, s.dir)
	if s.detection.Selected() {
		s.send(EventSelect)
	} else {
		s.send(EventNoneFound)
	}
	return s.detection
}

// Precheck runs the selected tagger's precheck.
func (s *Session) Precheck(ctx context.Context) error {
	if s.State() != StateSelected {
		return fmt.Errorf("precheck in state %s: %w", s.State(), ErrNoTaggerSelected)
	}
	if err := s.detection.Tagger.Precheck(ctx); err != nil {
		s.send(EventPrecheckFail)
		return err
	}
	s.send(EventPrecheckOK)
	return nil
}

// Tag records v with the selected tagger. Precheck must have passed.
func (s *Session) Tag(ctx context.Context, v version.SemanticVersion, opts TagOptions) (*TagResult, error) {
	if s.State() != StatePrecheckPassed {
		return nil, fmt.Errorf("tag in state %s: %w", s.State(), ErrNoTaggerSelected)
	}
	res, err := s.detection.Tagger.Tag(ctx, v, opts.WithDefaults(v))
	if err != nil {
		s.send(EventTagFail)
		return nil, err
	}
	s.send(EventTagOK)
	return res, nil
}

func (s *Session) send(event statekit.EventType) {
	s.interp.Send(statekit.Event{Type: event})
}
