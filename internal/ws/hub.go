// Package ws implements the team chat fan-out: a room hub keyed by
// team, and a gateway that authenticates sessions, checks membership
// and persists messages before broadcasting them. Sessions are an
// interface so the hub and gateway run the same against a real
// websocket connection or an in-memory fake.
package ws

import (
	"fmt"
	"sync"
)

// Event is one frame on the wire, in either direction.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Session is one connected client. Send must be safe for concurrent
// use; the hub may call it from any goroutine.
type Session interface {
	Send(evt Event) error
}

// TeamRoom names the broadcast room for a team.
func TeamRoom(teamID int64) string {
	return fmt.Sprintf("team_%d", teamID)
}

// Hub tracks which sessions are subscribed to which rooms. A session
// may sit in several rooms at once.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[Session]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: map[string]map[Session]struct{}{}}
}

func (h *Hub) Subscribe(room string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = map[Session]struct{}{}
		h.rooms[room] = members
	}
	members[s] = struct{}{}
}

func (h *Hub) Unsubscribe(room string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// DropSession removes the session from every room, the disconnect
// path.
func (h *Hub) DropSession(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends evt to every session currently in the room,
// including the sender. The member set is copied under the lock and
// sends happen outside it, so a slow session never blocks
// subscription changes. Send errors drop the session from all rooms.
func (h *Hub) Broadcast(room string, evt Event) {
	h.mu.Lock()
	members := make([]Session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		members = append(members, s)
	}
	h.mu.Unlock()

	var dead []Session
	for _, s := range members {
		if err := s.Send(evt); err != nil {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		h.DropSession(s)
	}
}

// RoomSize reports the current subscriber count for a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
