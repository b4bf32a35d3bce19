package models

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Seat is one side's connection to a running match.
type Seat struct {
	mu        sync.Mutex
	Side      string          `json:"side"`
	UserID    uuid.UUID       `json:"userId"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}

// Attach records a new connection, returning the one it replaces.
func (s *Seat) Attach(c *websocket.Conn) *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Conn
	s.Conn = c
	s.Connected = true
	return prev
}

// Detach clears the connection if it is still c.
func (s *Seat) Detach(c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Conn == c {
		s.Conn = nil
		s.Connected = false
	}
}

// Current returns the live connection, or nil.
func (s *Seat) Current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn
}
