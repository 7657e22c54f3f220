package ws

import (
	"errors"
	"sync"
	"testing"
)

// fakeSession records everything sent to it.
type fakeSession struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *fakeSession) Send(evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send failed")
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *fakeSession) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func TestBroadcastReachesRoomOnce(t *testing.T) {
	h := NewHub()
	room := TeamRoom(7)
	s1, s2 := &fakeSession{}, &fakeSession{}
	h.Subscribe(room, s1)
	h.Subscribe(room, s2)

	h.Broadcast(room, Event{Name: "team:message"})

	if s1.count("team:message") != 1 || s2.count("team:message") != 1 {
		t.Fatalf("counts = %d, %d, want 1 each", s1.count("team:message"), s2.count("team:message"))
	}

	// a late joiner sees nothing from before
	s3 := &fakeSession{}
	h.Subscribe(room, s3)
	if s3.count("team:message") != 0 {
		t.Fatalf("late joiner received past broadcast")
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	h := NewHub()
	s1, s2 := &fakeSession{}, &fakeSession{}
	h.Subscribe(TeamRoom(1), s1)
	h.Subscribe(TeamRoom(2), s2)

	h.Broadcast(TeamRoom(1), Event{Name: "team:message"})

	if s2.count("team:message") != 0 {
		t.Fatalf("broadcast leaked across rooms")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	room := TeamRoom(3)
	s := &fakeSession{}
	h.Subscribe(room, s)
	h.Unsubscribe(room, s)

	h.Broadcast(room, Event{Name: "team:message"})
	if s.count("team:message") != 0 {
		t.Fatalf("delivered after unsubscribe")
	}
}

func TestDropSessionRemovesFromAllRooms(t *testing.T) {
	h := NewHub()
	s := &fakeSession{}
	h.Subscribe(TeamRoom(1), s)
	h.Subscribe(TeamRoom(2), s)
	h.DropSession(s)

	if h.RoomSize(TeamRoom(1)) != 0 || h.RoomSize(TeamRoom(2)) != 0 {
		t.Fatalf("session still subscribed after drop")
	}
}

func TestFailedSendDropsSession(t *testing.T) {
	h := NewHub()
	room := TeamRoom(4)
	good, bad := &fakeSession{}, &fakeSession{fail: true}
	h.Subscribe(room, good)
	h.Subscribe(room, bad)

	h.Broadcast(room, Event{Name: "team:message"})

	if h.RoomSize(room) != 1 {
		t.Fatalf("room size = %d, want 1 after dead session dropped", h.RoomSize(room))
	}
	if good.count("team:message") != 1 {
		t.Fatalf("healthy session missed broadcast")
	}
}
