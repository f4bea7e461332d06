package dte

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/xhd2015/dte-mcp/bridge"
	"github.com/xhd2015/dte-mcp/host/common"
)

// SessionInfo holds information about an attached host session
type SessionInfo struct {
	ID        string
	ProgramID string
	State     string
}

// SessionManager keeps the sessions opened through the tools.
// Calls on one session are serialized; bridge sessions are not safe for
// concurrent use.
type SessionManager struct {
	automation common.Automation
	sessions   map[string]*sessionEntry
	mu         sync.Mutex
}

type sessionEntry struct {
	mu      sync.Mutex
	id      string
	session *bridge.Session
}

// NewSessionManager creates a session manager attaching through automation
func NewSessionManager(automation common.Automation) *SessionManager {
	return &SessionManager{
		automation: automation,
		sessions:   make(map[string]*sessionEntry),
	}
}

// Attach attaches to the host registered under programID and registers the session
func (sm *SessionManager) Attach(programID string) (*SessionInfo, error) {
	session, err := bridge.Attach(sm.automation, programID)
	if err != nil {
		return nil, err
	}

	sessionID := fmt.Sprintf("session-%d", uuid.New().ID())
	entry := &sessionEntry{
		id:      sessionID,
		session: session,
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = entry
	sm.mu.Unlock()

	return entry.info(), nil
}

// Release releases a session and forgets it
func (sm *SessionManager) Release(sessionID string) error {
	sm.mu.Lock()
	entry, ok := sm.sessions[sessionID]
	if ok {
		delete(sm.sessions, sessionID)
	}
	sm.mu.Unlock()

	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Release()
}

// ReleaseAll releases every session
func (sm *SessionManager) ReleaseAll() {
	sm.mu.Lock()
	entries := sm.sessions
	sm.sessions = make(map[string]*sessionEntry)
	sm.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
		entry.session.Release()
		entry.mu.Unlock()
	}
}

// ListSessions returns the registered sessions ordered by ID
func (sm *SessionManager) ListSessions() []*SessionInfo {
	sm.mu.Lock()
	entries := make([]*sessionEntry, 0, len(sm.sessions))
	for _, entry := range sm.sessions {
		entries = append(entries, entry)
	}
	sm.mu.Unlock()

	result := make([]*SessionInfo, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		result = append(result, entry.info())
		entry.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// WithSession runs fn with exclusive use of the session
func (sm *SessionManager) WithSession(sessionID string, fn func(s *bridge.Session) error) error {
	sm.mu.Lock()
	entry, ok := sm.sessions[sessionID]
	sm.mu.Unlock()
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

func (e *sessionEntry) info() *SessionInfo {
	return &SessionInfo{
		ID:        e.id,
		ProgramID: e.session.ProgramID(),
		State:     e.session.State().String(),
	}
}
