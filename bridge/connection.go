package bridge

import (
	"errors"

	"github.com/xhd2015/dte-mcp/host/common"
)

// State is the liveness of a Session
type State int

const (
	// Live sessions accept reads
	Live State = iota
	// Dead sessions were released or found detached; nothing leaves Dead
	Dead
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Session is one attachment to a running host instance
type Session struct {
	programID string
	instance  common.Instance
	state     State

	// collections handed out by Enumerate and not yet released
	collections map[*Collection]struct{}
}

// Attach finds an already-running host registered under programID and
// binds a new Session to it. It never launches a host.
func Attach(automation common.Automation, programID string) (*Session, error) {
	if programID == "" {
		return nil, &AttachError{Kind: NotFound, Err: errors.New("empty program id")}
	}
	if automation == nil {
		return nil, &AttachError{Kind: HostUnavailable, ProgramID: programID, Err: errors.New("no automation backend")}
	}

	instance, err := automation.FindRunningInstance(programID)
	if err != nil {
		return nil, attachError(programID, err)
	}
	if instance == nil {
		return nil, &AttachError{Kind: NotFound, ProgramID: programID}
	}

	return &Session{
		programID: programID,
		instance:  instance,
		state:     Live,
	}, nil
}

// ProgramID returns the identifier the session was attached with
func (s *Session) ProgramID() string {
	return s.programID
}

// State returns the last known state. A Live session may still turn out
// to be dead on its next read.
func (s *Session) State() State {
	return s.state
}

// Release detaches from the host. Collections still held from the session
// are released first. Later reads fail with ErrSessionDead.
func (s *Session) Release() error {
	if s == nil {
		return nil
	}
	s.state = Dead
	for c := range s.collections {
		c.Release()
	}
	if s.instance == nil {
		return nil
	}
	instance := s.instance
	s.instance = nil
	return instance.Close()
}

func (s *Session) live() error {
	if s == nil || s.state != Live || s.instance == nil {
		return &ReadError{Kind: SessionDead, Index: -1}
	}
	return nil
}

// observe marks the session dead when err says the host went away
func (s *Session) observe(err *ReadError) *ReadError {
	if err.Kind == SessionDead {
		s.state = Dead
	}
	return err
}
