package session

import (
	"path/filepath"
	"sync"
)

// Session holds the virtual current directory and the display name.
// One Session exists per shell; handlers receive it by reference.
type Session struct {
	mu          sync.RWMutex
	cursor      string
	displayName string
}

// New creates a session positioned at cursor. A relative cursor is made
// absolute against the process working directory.
func New(cursor, displayName string) *Session {
	cursor = filepath.Clean(cursor)
	if !filepath.IsAbs(cursor) {
		if abs, err := filepath.Abs(cursor); err == nil {
			cursor = abs
		}
	}
	return &Session{cursor: cursor, displayName: displayName}
}

// Cursor returns the current directory.
func (s *Session) Cursor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// DisplayName returns the name used in the welcome and farewell banners.
func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// SetCursor moves the cursor. The caller is responsible for checking that
// path exists; SetCursor only normalises it.
func (s *Session) SetCursor(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = Resolve(s.cursor, path)
}

// Resolve resolves input against the current cursor.
func (s *Session) Resolve(input string) string {
	return Resolve(s.Cursor(), input)
}

// Up moves the cursor to its lexical parent and returns the new cursor.
// At the root the cursor is left unchanged.
func (s *Session) Up() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parent := Parent(s.cursor); parent != s.cursor {
		s.cursor = parent
	}
	return s.cursor
}
