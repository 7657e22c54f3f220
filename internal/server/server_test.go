package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"teamboard/internal/db"
	"teamboard/internal/domain"
	"teamboard/internal/engine"
	"teamboard/internal/migrate"
	"teamboard/internal/ws"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := log.New(os.Stderr, "test ", 0)
	e := engine.New(conn, logger)
	handler, err := New(Config{
		Engine:   e,
		Gateway:  ws.NewGateway(e, logger),
		BasePath: "/api",
		Auth:     AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Logger: logger},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(testSrv.Close)
	return testSrv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

// register creates an account and returns its token and user id.
func register(t *testing.T, srv *testServer, username string) (string, int64) {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-pw",
	}, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("register %s: %d %s", username, res.StatusCode, string(data))
	}
	var out struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal register: %v", err)
	}
	return out.Token, out.User.ID
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/teams", nil, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/register", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret-pw",
	}, "")
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", res.StatusCode, string(data))
	}
}

func TestLoginBadPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")
	res, _ := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

// setupTeamProject registers alice and bob in one team with one
// project, and returns their tokens plus the project id.
func setupTeamProject(t *testing.T, srv *testServer) (aliceToken, bobToken string, projectID int64) {
	t.Helper()
	aliceToken, _ = register(t, srv, "alice")
	bobToken, _ = register(t, srv, "bob")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/teams", map[string]any{"name": "core"}, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create team: %d %s", res.StatusCode, string(data))
	}
	var team domain.Team
	if err := json.Unmarshal(data, &team); err != nil {
		t.Fatalf("unmarshal team: %v", err)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/teams/join", map[string]any{"invite_code": team.InviteCode}, bobToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("join team: %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/api/teams/%d/projects", srv.URL, team.ID), map[string]any{"name": "launch"}, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create project: %d %s", res.StatusCode, string(data))
	}
	var project domain.Project
	if err := json.Unmarshal(data, &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	return aliceToken, bobToken, project.ID
}

func createTask(t *testing.T, srv *testServer, token string, projectID int64, body map[string]any) domain.Task {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/api/projects/%d/tasks", srv.URL, projectID), body, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create task: %d %s", res.StatusCode, string(data))
	}
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	return task
}

func TestProjectAccessDeniedForOutsider(t *testing.T) {
	srv := newTestServer(t)
	_, _, projectID := setupTeamProject(t, srv)
	malloryToken, _ := register(t, srv, "mallory")

	res, data := doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/projects/%d", srv.URL, projectID), nil, malloryToken)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if envelope.Error.Message != "Access denied" {
		t.Fatalf("message = %q", envelope.Error.Message)
	}
}

func TestTaskTreeListing(t *testing.T) {
	srv := newTestServer(t)
	aliceToken, _, projectID := setupTeamProject(t, srv)

	root := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "root"})
	child := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "child", "parent_id": root.ID})
	if child.Level != 1 {
		t.Fatalf("child level = %d, want 1", child.Level)
	}

	res, data := doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/projects/%d/tasks", srv.URL, projectID), nil, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list roots: %d %s", res.StatusCode, string(data))
	}
	var roots []struct {
		domain.Task
		HasChildren bool `json:"has_children"`
	}
	if err := json.Unmarshal(data, &roots); err != nil {
		t.Fatalf("unmarshal roots: %v", err)
	}
	if len(roots) != 1 || !roots[0].HasChildren {
		t.Fatalf("roots = %+v", roots)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/projects/%d/tasks?fetch_all=true", srv.URL, projectID), nil, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list all: %d %s", res.StatusCode, string(data))
	}
	var all []domain.Task
	if err := json.Unmarshal(data, &all); err != nil {
		t.Fatalf("unmarshal all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("fetch_all = %d tasks, want 2", len(all))
	}
}

func TestTaskJoinConflictAndNotifications(t *testing.T) {
	srv := newTestServer(t)
	aliceToken, bobToken, projectID := setupTeamProject(t, srv)
	task := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "shared"})

	res, data := doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/join", srv.URL, task.ID), nil, bobToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("join: %d %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/join", srv.URL, task.ID), nil, bobToken)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("second join = %d, want 409", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPut, fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID), map[string]any{"status": "in_progress"}, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/notifications", nil, bobToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("notifications: %d %s", res.StatusCode, string(data))
	}
	var notes struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		t.Fatalf("unmarshal notifications: %v", err)
	}
	if notes.UnreadCount == 0 || len(notes.Notifications) == 0 {
		t.Fatalf("expected notifications for bob, got %+v", notes)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPut,
		fmt.Sprintf("%s/api/notifications/%d/read", srv.URL, notes.Notifications[0].ID), nil, bobToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("mark read: %d", res.StatusCode)
	}
	// alice cannot read bob's notification
	res, _ = doJSON(t, srv.Client(), http.MethodPut,
		fmt.Sprintf("%s/api/notifications/%d/read", srv.URL, notes.Notifications[0].ID), nil, aliceToken)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign mark read = %d, want 403", res.StatusCode)
	}
}

func TestTaskDeleteCascade(t *testing.T) {
	srv := newTestServer(t)
	aliceToken, _, projectID := setupTeamProject(t, srv)
	root := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "root"})
	child := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "child", "parent_id": root.ID})

	res, data := doJSON(t, srv.Client(), http.MethodDelete, fmt.Sprintf("%s/api/tasks/%d", srv.URL, root.ID), nil, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete: %d %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/tasks/%d", srv.URL, child.ID), nil, aliceToken)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("child after cascade = %d, want 404", res.StatusCode)
	}
}

func TestGanttData(t *testing.T) {
	srv := newTestServer(t)
	aliceToken, _, projectID := setupTeamProject(t, srv)
	dated := createTask(t, srv, aliceToken, projectID, map[string]any{
		"title":      "dated",
		"start_date": "2024-02-01",
		"end_date":   "2024-02-05",
		"progress":   50,
	})
	createTask(t, srv, aliceToken, projectID, map[string]any{"title": "undated", "parent_id": dated.ID})

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/links", map[string]any{
		"source": dated.ID,
		"target": dated.ID + 1,
		"type":   "0",
	}, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create link: %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/projects/%d/gantt-data", srv.URL, projectID), nil, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("gantt: %d %s", res.StatusCode, string(data))
	}
	var gantt engine.GanttData
	if err := json.Unmarshal(data, &gantt); err != nil {
		t.Fatalf("unmarshal gantt: %v", err)
	}
	if len(gantt.Data) != 2 || len(gantt.Links) != 1 {
		t.Fatalf("gantt = %d bars, %d links", len(gantt.Data), len(gantt.Links))
	}
	for _, bar := range gantt.Data {
		if bar.ID == dated.ID {
			if bar.Duration != 5 || bar.Progress != 0.5 {
				t.Fatalf("dated bar = %+v", bar)
			}
		} else if bar.Duration != 1 || bar.Parent != dated.ID {
			t.Fatalf("undated bar = %+v", bar)
		}
	}
}

func TestCommentFlow(t *testing.T) {
	srv := newTestServer(t)
	aliceToken, bobToken, projectID := setupTeamProject(t, srv)
	task := createTask(t, srv, aliceToken, projectID, map[string]any{"title": "discussed"})

	res, data := doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/api/tasks/%d/comments", srv.URL, task.ID), map[string]any{
		"content": "first",
	}, bobToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("comment: %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, fmt.Sprintf("%s/api/tasks/%d/comments", srv.URL, task.ID), nil, aliceToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list comments: %d %s", res.StatusCode, string(data))
	}
	var comments []struct {
		domain.TaskComment
		User domain.UserSummary `json:"user"`
	}
	if err := json.Unmarshal(data, &comments); err != nil {
		t.Fatalf("unmarshal comments: %v", err)
	}
	if len(comments) != 1 || comments[0].User.Username != "bob" {
		t.Fatalf("comments = %+v", comments)
	}
}
