package repo_test

import (
	"context"
	"fmt"
	"testing"

	"teamboard/internal/db"
	"teamboard/internal/domain"
	"teamboard/internal/migrate"
	"teamboard/internal/repo"
)

func TestListTeamMessagesPagesNewestWindowOldestFirst(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := repo.Repo{DB: conn}
	ctx := context.Background()
	now := "2024-01-01T00:00:00Z"

	userID, err := r.InsertUser(ctx, domain.User{
		Username:  "alice",
		Email:     "alice@example.com",
		Nickname:  "Al",
		CreatedAt: now,
		UpdatedAt: now,
	}, "x")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	tx, err := conn.Begin()
	if err != nil {
		t.Fatal(err)
	}
	teamID, err := r.InsertTeam(ctx, tx, domain.Team{Name: "chat", InviteCode: "abc12345", CreatorID: userID, CreatedAt: now})
	if err != nil {
		t.Fatalf("insert team: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		_, err := r.InsertTeamMessage(ctx, domain.TeamMessage{
			TeamID:    teamID,
			UserID:    userID,
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: fmt.Sprintf("2024-01-01T00:00:0%dZ", i),
		})
		if err != nil {
			t.Fatalf("insert message %d: %v", i, err)
		}
	}

	page, err := r.ListTeamMessages(ctx, teamID, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	// the newest three, oldest of those first
	for i, want := range []string{"msg 3", "msg 4", "msg 5"} {
		if page[i].Content != want {
			t.Fatalf("page[%d] = %q, want %q", i, page[i].Content, want)
		}
	}
	if page[0].User.Username != "alice" || page[0].User.Nickname != "Al" {
		t.Fatalf("sender not hydrated: %+v", page[0].User)
	}
}
