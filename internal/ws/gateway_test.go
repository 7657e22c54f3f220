package ws

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"teamboard/internal/db"
	"teamboard/internal/domain"
	"teamboard/internal/engine"
	"teamboard/internal/migrate"
)

type gatewayEnv struct {
	Gateway *Gateway
	Ctx     context.Context
	Team    domain.Team
	Alice   int64
	Bob     int64
	Mallory int64
}

func newGatewayEnv(t *testing.T) gatewayEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, log.New(os.Stderr, "test ", 0))
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339)

	newUser := func(name string) int64 {
		id, err := eng.Repo.InsertUser(ctx, domain.User{Username: name, Email: name + "@example.com", CreatedAt: now, UpdatedAt: now}, "x")
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
		return id
	}
	alice := newUser("alice")
	bob := newUser("bob")
	mallory := newUser("mallory")

	team, err := eng.CreateTeam(ctx, "chat", "", "", alice)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := eng.JoinTeam(ctx, team.InviteCode, bob); err != nil {
		t.Fatalf("join team: %v", err)
	}
	return gatewayEnv{
		Gateway: NewGateway(eng, log.New(os.Stderr, "test ", 0)),
		Ctx:     ctx,
		Team:    team,
		Alice:   alice,
		Bob:     bob,
		Mallory: mallory,
	}
}

func TestGatewayJoinMember(t *testing.T) {
	env := newGatewayEnv(t)
	s := &fakeSession{}
	env.Gateway.Join(env.Ctx, s, env.Alice, env.Team.ID)
	if env.Gateway.Hub.RoomSize(TeamRoom(env.Team.ID)) != 1 {
		t.Fatalf("member not subscribed")
	}
	if s.count("error") != 0 {
		t.Fatalf("unexpected error event")
	}
}

func TestGatewayJoinDenied(t *testing.T) {
	env := newGatewayEnv(t)
	s := &fakeSession{}
	env.Gateway.Join(env.Ctx, s, env.Mallory, env.Team.ID)
	if env.Gateway.Hub.RoomSize(TeamRoom(env.Team.ID)) != 0 {
		t.Fatalf("non-member subscribed")
	}
	if s.count("error") != 1 {
		t.Fatalf("error events = %d, want 1", s.count("error"))
	}
	data, ok := s.events[0].Data.(map[string]string)
	if !ok || data["message"] != "Access denied" {
		t.Fatalf("error payload = %v", s.events[0].Data)
	}
}

func TestGatewayMessageBroadcastAndPersist(t *testing.T) {
	env := newGatewayEnv(t)
	s1, s2 := &fakeSession{}, &fakeSession{}
	env.Gateway.Join(env.Ctx, s1, env.Alice, env.Team.ID)
	env.Gateway.Join(env.Ctx, s2, env.Bob, env.Team.ID)

	env.Gateway.Message(env.Ctx, s1, env.Alice, env.Team.ID, "hello team")

	if s1.count("team:message") != 1 || s2.count("team:message") != 1 {
		t.Fatalf("message counts = %d, %d, want 1 each", s1.count("team:message"), s2.count("team:message"))
	}
	payload, ok := s2.events[0].Data.(map[string]any)
	if !ok {
		t.Fatalf("payload type %T", s2.events[0].Data)
	}
	if payload["content"] != "hello team" {
		t.Fatalf("content = %v", payload["content"])
	}
	user, ok := payload["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("user payload = %v", payload["user"])
	}

	msgs, err := env.Gateway.Engine.Repo.ListTeamMessages(env.Ctx, env.Team.ID, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello team" {
		t.Fatalf("persisted messages = %+v", msgs)
	}

	// joining after the broadcast yields nothing
	s3 := &fakeSession{}
	env.Gateway.Join(env.Ctx, s3, env.Bob, env.Team.ID)
	if s3.count("team:message") != 0 {
		t.Fatalf("late joiner received past message")
	}
}

func TestGatewayEmptyMessageDropped(t *testing.T) {
	env := newGatewayEnv(t)
	s := &fakeSession{}
	env.Gateway.Join(env.Ctx, s, env.Alice, env.Team.ID)

	env.Gateway.Message(env.Ctx, s, env.Alice, env.Team.ID, "")

	if len(s.events) != 0 {
		t.Fatalf("events after empty message: %v", s.events)
	}
	msgs, err := env.Gateway.Engine.Repo.ListTeamMessages(env.Ctx, env.Team.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("empty message persisted")
	}
}

func TestGatewayMessageDeniedForNonMember(t *testing.T) {
	env := newGatewayEnv(t)
	member, outsider := &fakeSession{}, &fakeSession{}
	env.Gateway.Join(env.Ctx, member, env.Alice, env.Team.ID)

	env.Gateway.Message(env.Ctx, outsider, env.Mallory, env.Team.ID, "let me in")

	if outsider.count("error") != 1 {
		t.Fatalf("expected Access denied for non-member")
	}
	if member.count("team:message") != 0 {
		t.Fatalf("non-member message broadcast")
	}
}
