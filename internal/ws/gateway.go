package ws

import (
	"context"
	"log"

	"teamboard/internal/engine"
)

// Gateway applies the chat protocol to hub sessions. The transport
// decodes frames and calls one method per inbound event; the gateway
// owns authorization, persistence and broadcast.
type Gateway struct {
	Hub    *Hub
	Engine engine.Engine
	Log    *log.Logger
}

func NewGateway(e engine.Engine, logger *log.Logger) *Gateway {
	return &Gateway{Hub: NewHub(), Engine: e, Log: logger}
}

func errorEvent(message string) Event {
	return Event{Name: "error", Data: map[string]string{"message": message}}
}

func (g *Gateway) denied(s Session) {
	if err := s.Send(errorEvent("Access denied")); err != nil {
		g.Hub.DropSession(s)
	}
}

// Join subscribes the session to the team room after a membership
// check. Non-members get the error event and no subscription.
func (g *Gateway) Join(ctx context.Context, s Session, userID, teamID int64) {
	ok, err := g.Engine.Repo.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		g.logf("ws join team %d: %v", teamID, err)
		g.denied(s)
		return
	}
	if !ok {
		g.denied(s)
		return
	}
	g.Hub.Subscribe(TeamRoom(teamID), s)
}

func (g *Gateway) Leave(s Session, teamID int64) {
	g.Hub.Unsubscribe(TeamRoom(teamID), s)
}

// Message persists the message and broadcasts it, hydrated with the
// sender's display fields, to the whole room (sender included). An
// empty content is dropped without a reply.
func (g *Gateway) Message(ctx context.Context, s Session, userID, teamID int64, content string) {
	if content == "" {
		return
	}
	ok, err := g.Engine.Repo.IsTeamMember(ctx, teamID, userID)
	if err != nil || !ok {
		if err != nil {
			g.logf("ws message team %d: %v", teamID, err)
		}
		g.denied(s)
		return
	}
	m, u, err := g.Engine.PostTeamMessage(ctx, teamID, userID, content)
	if err != nil {
		g.logf("ws message team %d: %v", teamID, err)
		g.denied(s)
		return
	}
	g.Hub.Broadcast(TeamRoom(teamID), Event{Name: "team:message", Data: map[string]any{
		"id":         m.ID,
		"team_id":    m.TeamID,
		"content":    m.Content,
		"created_at": m.CreatedAt,
		"user": map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"nickname": u.Nickname,
			"avatar":   u.Avatar,
		},
	}})
}

// Disconnect drops the session from every room.
func (g *Gateway) Disconnect(s Session) {
	g.Hub.DropSession(s)
}

func (g *Gateway) logf(format string, args ...any) {
	if g.Log != nil {
		g.Log.Printf(format, args...)
	}
}
