package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"teamboard/internal/domain"
	"teamboard/internal/notify"
	"teamboard/internal/repo"
)

var (
	// ErrForbidden marks an authorization failure; the API layer
	// renders it as 403 with the fixed "Access denied" message.
	ErrForbidden = errors.New("access denied")
	// ErrInvalid marks a request the store could accept but the
	// domain rules reject.
	ErrInvalid = errors.New("invalid")
)

type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Notifier notify.Notifier
	Log      *log.Logger
	Now      func() time.Time
}

func New(db *sql.DB, logger *log.Logger) Engine {
	r := repo.Repo{DB: db}
	return Engine{
		DB:       db,
		Repo:     r,
		Notifier: notify.Store{Repo: r, Log: logger},
		Log:      logger,
		Now:      time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) logf(format string, args ...any) {
	if e.Log != nil {
		e.Log.Printf(format, args...)
	}
}

// logActivity appends an audit row after a mutation has committed.
// Failures are logged, never propagated: the mutation already
// happened and stays happened.
func (e Engine) logActivity(ctx context.Context, taskID, userID int64, action string, detail map[string]any) {
	err := e.Repo.InsertActivity(ctx, domain.TaskActivity{
		TaskID:     taskID,
		UserID:     userID,
		Action:     action,
		DetailJSON: detailJSON(detail),
		CreatedAt:  e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		e.logf("activity %s task %d: %v", action, taskID, err)
	}
}

// fanOut notifies every participant of the task except the actor.
func (e Engine) fanOut(ctx context.Context, taskID, actorID int64, typ, content string) {
	if e.Notifier == nil {
		return
	}
	ids, err := e.Repo.ListParticipantUserIDs(ctx, taskID)
	if err != nil {
		e.logf("fan-out %s task %d: %v", typ, taskID, err)
		return
	}
	audience := ids[:0]
	for _, id := range ids {
		if id != actorID {
			audience = append(audience, id)
		}
	}
	if len(audience) == 0 {
		return
	}
	related := taskID
	e.Notifier.Notify(ctx, audience, typ, content, &related)
}

func detailJSON(detail map[string]any) string {
	if len(detail) == 0 {
		return ""
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return ""
	}
	return string(b)
}

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	ProjectID   int64
	ParentID    *int64
	Title       string
	Description string
	Status      string
	Priority    string
	Progress    int
	StartDate   *string
	EndDate     *string
	SortOrder   int
	ActorID     int64
}

// CreateTask inserts a task at parent.Level+1 (0 for roots) and joins
// the creator as its first participant in the same transaction.
func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if opts.Status == "" {
		opts.Status = "pending"
	}
	if opts.Priority == "" {
		opts.Priority = "medium"
	}
	if err := validateStatus(opts.Status); err != nil {
		return domain.Task{}, err
	}
	if err := validatePriority(opts.Priority); err != nil {
		return domain.Task{}, err
	}
	if err := validateProgress(opts.Progress); err != nil {
		return domain.Task{}, err
	}
	if err := validateDate(opts.StartDate); err != nil {
		return domain.Task{}, err
	}
	if err := validateDate(opts.EndDate); err != nil {
		return domain.Task{}, err
	}

	level := 0
	if opts.ParentID != nil {
		parent, err := e.Repo.GetTask(ctx, *opts.ParentID)
		if err != nil {
			return domain.Task{}, err
		}
		if parent.ProjectID != opts.ProjectID {
			return domain.Task{}, fmt.Errorf("%w: parent task in different project", ErrInvalid)
		}
		level = parent.Level + 1
	}

	now := e.now().UTC().Format(time.RFC3339)
	t := domain.Task{
		ParentID:    opts.ParentID,
		ProjectID:   opts.ProjectID,
		Title:       opts.Title,
		Description: opts.Description,
		Status:      opts.Status,
		Priority:    opts.Priority,
		Progress:    opts.Progress,
		StartDate:   opts.StartDate,
		EndDate:     opts.EndDate,
		Level:       level,
		SortOrder:   opts.SortOrder,
		CreatedBy:   opts.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	id, err := e.Repo.InsertTask(ctx, tx, t)
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = id
	if err := e.Repo.InsertParticipant(ctx, tx, domain.TaskParticipant{
		TaskID:   id,
		UserID:   opts.ActorID,
		JoinedAt: now,
	}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}

	e.logActivity(ctx, t.ID, opts.ActorID, "created_task", map[string]any{"title": t.Title})
	return t, nil
}

// TaskUpdateOptions carries a partial update; nil fields are left
// untouched. The date Set flags let callers clear a date explicitly.
type TaskUpdateOptions struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Progress     *int
	StartDateSet bool
	StartDate    *string
	EndDateSet   bool
	EndDate      *string
	SortOrder    *int
	ActorID      int64
}

func (e Engine) UpdateTask(ctx context.Context, id int64, opts TaskUpdateOptions) (domain.Task, error) {
	if _, err := e.Repo.GetTask(ctx, id); err != nil {
		return domain.Task{}, err
	}
	if opts.Title != nil && *opts.Title == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if opts.Status != nil {
		if err := validateStatus(*opts.Status); err != nil {
			return domain.Task{}, err
		}
	}
	if opts.Priority != nil {
		if err := validatePriority(*opts.Priority); err != nil {
			return domain.Task{}, err
		}
	}
	if opts.Progress != nil {
		if err := validateProgress(*opts.Progress); err != nil {
			return domain.Task{}, err
		}
	}
	if opts.StartDateSet {
		if err := validateDate(opts.StartDate); err != nil {
			return domain.Task{}, err
		}
	}
	if opts.EndDateSet {
		if err := validateDate(opts.EndDate); err != nil {
			return domain.Task{}, err
		}
	}

	u := repo.TaskUpdate{
		Title:        opts.Title,
		Description:  opts.Description,
		Status:       opts.Status,
		Priority:     opts.Priority,
		Progress:     opts.Progress,
		StartDateSet: opts.StartDateSet,
		StartDate:    opts.StartDate,
		EndDateSet:   opts.EndDateSet,
		EndDate:      opts.EndDate,
		SortOrder:    opts.SortOrder,
		UpdatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.UpdateTask(ctx, id, u); err != nil {
		return domain.Task{}, err
	}
	t, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	fields := changedFields(opts)
	e.logActivity(ctx, t.ID, opts.ActorID, "updated_task", map[string]any{"fields": fields})
	e.fanOut(ctx, t.ID, opts.ActorID, "task_update", fmt.Sprintf("Task %q was updated", t.Title))
	return t, nil
}

func changedFields(opts TaskUpdateOptions) []string {
	var fields []string
	if opts.Title != nil {
		fields = append(fields, "title")
	}
	if opts.Description != nil {
		fields = append(fields, "description")
	}
	if opts.Status != nil {
		fields = append(fields, "status")
	}
	if opts.Priority != nil {
		fields = append(fields, "priority")
	}
	if opts.Progress != nil {
		fields = append(fields, "progress")
	}
	if opts.StartDateSet {
		fields = append(fields, "start_date")
	}
	if opts.EndDateSet {
		fields = append(fields, "end_date")
	}
	if opts.SortOrder != nil {
		fields = append(fields, "sort_order")
	}
	return fields
}

// DeleteTask removes a task and its entire subtree in one
// transaction. The closure is collected breadth-first, dependent rows
// (links from either end, participants, comments, messages,
// activities) are purged for the whole set, then task rows are
// deleted deepest-first so the parent foreign key holds at every
// step. Afterwards a deleted_task audit row is written at project
// scope, since the task rows are gone.
func (e Engine) DeleteTask(ctx context.Context, id, actorID int64) error {
	t, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return err
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ids := []int64{id}
	for i := 0; i < len(ids); i++ {
		children, err := e.Repo.ListChildIDs(ctx, tx, ids[i])
		if err != nil {
			return err
		}
		ids = append(ids, children...)
	}
	if err := e.Repo.DeleteTaskDependents(ctx, tx, ids); err != nil {
		return err
	}
	reversed := make([]int64, len(ids))
	for i, taskID := range ids {
		reversed[len(ids)-1-i] = taskID
	}
	if err := e.Repo.DeleteTaskRows(ctx, tx, reversed); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	e.logActivity(ctx, t.ProjectID, actorID, "deleted_task", map[string]any{
		"title": t.Title,
		"count": len(ids),
	})
	return nil
}

// JoinTask adds the user as a participant. A duplicate join surfaces
// as repo.ErrConflict straight from the unique index, so concurrent
// joins resolve to one success without a check-then-insert race.
func (e Engine) JoinTask(ctx context.Context, taskID, userID int64) error {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	err = e.Repo.InsertParticipant(ctx, nil, domain.TaskParticipant{
		TaskID:   taskID,
		UserID:   userID,
		JoinedAt: e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	e.logActivity(ctx, taskID, userID, "joined_task", nil)
	e.fanOut(ctx, taskID, userID, "member_join", fmt.Sprintf("A new member joined task %q", t.Title))
	return nil
}

func (e Engine) LeaveTask(ctx context.Context, taskID, userID int64) error {
	if _, err := e.Repo.GetTask(ctx, taskID); err != nil {
		return err
	}
	return e.Repo.DeleteParticipant(ctx, taskID, userID)
}

// AddComment appends a comment and notifies the other participants.
func (e Engine) AddComment(ctx context.Context, taskID, userID int64, content string, replyTo *int64) (domain.TaskComment, error) {
	if content == "" {
		return domain.TaskComment{}, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.TaskComment{}, err
	}
	c := domain.TaskComment{
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		ReplyTo:   replyTo,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	id, err := e.Repo.InsertComment(ctx, c)
	if err != nil {
		return domain.TaskComment{}, err
	}
	c.ID = id

	e.logActivity(ctx, taskID, userID, "added_comment", map[string]any{"comment_id": id})
	e.fanOut(ctx, taskID, userID, "new_comment", fmt.Sprintf("New comment on task %q", t.Title))
	return c, nil
}

// CreateLink records a typed scheduling edge. Only the source task is
// required to exist; targets are not validated and cycles are not
// checked, matching what the Gantt client tolerates.
func (e Engine) CreateLink(ctx context.Context, l domain.TaskLink) (domain.TaskLink, error) {
	switch l.Type {
	case "0", "1", "2", "3":
	default:
		return domain.TaskLink{}, fmt.Errorf("%w: link type must be 0..3", ErrInvalid)
	}
	if _, err := e.Repo.GetTask(ctx, l.Source); err != nil {
		return domain.TaskLink{}, err
	}
	id, err := e.Repo.InsertLink(ctx, l)
	if err != nil {
		return domain.TaskLink{}, err
	}
	l.ID = id
	return l, nil
}

func (e Engine) DeleteLink(ctx context.Context, id int64) error {
	return e.Repo.DeleteLink(ctx, id)
}

func validateStatus(s string) error {
	switch s {
	case "pending", "in_progress", "completed":
		return nil
	}
	return fmt.Errorf("%w: status must be pending, in_progress or completed", ErrInvalid)
}

func validatePriority(p string) error {
	switch p {
	case "high", "medium", "low":
		return nil
	}
	return fmt.Errorf("%w: priority must be high, medium or low", ErrInvalid)
}

func validateProgress(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalid)
	}
	return nil
}

func validateDate(d *string) error {
	if d == nil || *d == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *d); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
	}
	return nil
}
