// Package notify pushes collection events to connected UI sessions over
// WebSocket, so every open view re-queries when the data changes.
package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/boardvault/logger"
)

type Session struct {
	ID        string
	CreatedAt time.Time
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
	}
}

func (s *Session) Send(event Event) error {
	s.sendMutex.Lock()
	defer s.sendMutex.Unlock()
	return s.conn.WriteJSON(event)
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Hub 会话管理器
type Hub struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
	}
}

func (h *Hub) Add(session *Session) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.sessions[session.ID] = session
}

func (h *Hub) Remove(sessionID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.sessions, sessionID)
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.sessions)
}

// Broadcast sends the event to every connected session. A failed send only
// logs; the read loop owns the session lifecycle.
func (h *Hub) Broadcast(event Event) {
	h.mutex.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mutex.RUnlock()

	for _, s := range sessions {
		if err := s.Send(event); err != nil {
			logger.Log.Warnf("Failed to push event to session %s: %v", s.ID, err)
		}
	}
}
