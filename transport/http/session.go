package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionManager manages MCP sessions for Streamable HTTP
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// Session represents an MCP session
type Session struct {
	ID              string
	Created         time.Time
	LastSeen        time.Time
	ProtocolVersion string
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// CreateSession starts a session with a fresh random ID.
func (sm *SessionManager) CreateSession(protocolVersion string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	session := &Session{
		ID:              uuid.NewString(),
		Created:         now,
		LastSeen:        now,
		ProtocolVersion: protocolVersion,
	}
	sm.sessions[session.ID] = session
	return session
}

// TouchSession refreshes the session and returns a copy of it.
func (sm *SessionManager) TouchSession(sessionID string) (Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return Session{}, false
	}
	session.LastSeen = time.Now()
	return *session, true
}

// RemoveSession removes a session and returns what it held.
func (sm *SessionManager) RemoveSession(sessionID string) (Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return Session{}, false
	}
	delete(sm.sessions, sessionID)
	return *session, true
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupSessions removes sessions idle for longer than timeout.
func (sm *SessionManager) CleanupSessions(timeout time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	now := time.Now()
	for sessionID, session := range sm.sessions {
		if now.Sub(session.LastSeen) > timeout {
			delete(sm.sessions, sessionID)
			removed++
		}
	}
	return removed
}

// CloseAll drops every session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	clear(sm.sessions)
}
