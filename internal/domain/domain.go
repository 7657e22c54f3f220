package domain

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

// UserSummary is the display subset hydrated into participant,
// comment, message and activity listings.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type Team struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	InviteCode  string `json:"invite_code,omitempty"`
	CreatorID   int64  `json:"creator_id"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type TeamMember struct {
	ID       int64  `json:"id"`
	TeamID   int64  `json:"team_id"`
	UserID   int64  `json:"user_id"`
	Role     string `json:"role" enum:"creator,member"`
	JoinedAt string `json:"joined_at" format:"date-time"`
}

type Project struct {
	ID          int64   `json:"id"`
	TeamID      int64   `json:"team_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date,omitempty" format:"date"`
	EndDate     *string `json:"end_date,omitempty" format:"date"`
	CreatedBy   int64   `json:"created_by"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
}

// Task is a node in the per-project task forest. Level is fixed at
// creation time as parent.Level+1 (0 for roots); parent reassignment
// is not supported, so it is never recomputed.
type Task struct {
	ID          int64   `json:"id"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	ProjectID   int64   `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status" enum:"pending,in_progress,completed"`
	Priority    string  `json:"priority" enum:"high,medium,low"`
	Progress    int     `json:"progress" minimum:"0" maximum:"100"`
	StartDate   *string `json:"start_date,omitempty" format:"date"`
	EndDate     *string `json:"end_date,omitempty" format:"date"`
	Level       int     `json:"level"`
	SortOrder   int     `json:"sort_order"`
	CreatedBy   int64   `json:"created_by"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   string  `json:"updated_at" format:"date-time"`
}

// TaskLink is a typed directed scheduling edge between two tasks,
// consumed by the Gantt projection. Types follow the Gantt convention:
// "0" finish-to-start, "1" start-to-start, "2" finish-to-finish,
// "3" start-to-finish. Links are not checked for cycles or
// same-project scoping.
type TaskLink struct {
	ID     int64  `json:"id"`
	Source int64  `json:"source"`
	Target int64  `json:"target"`
	Type   string `json:"type" enum:"0,1,2,3"`
}

type TaskParticipant struct {
	ID       int64  `json:"id"`
	TaskID   int64  `json:"task_id"`
	UserID   int64  `json:"user_id"`
	JoinedAt string `json:"joined_at" format:"date-time"`
}

type TaskComment struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	ReplyTo   *int64 `json:"reply_to,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type TaskMessage struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type TeamMessage struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// TaskActivity is an append-only audit record; rows are never mutated
// and only removed when their task's subtree is deleted.
type TaskActivity struct {
	ID         int64  `json:"id"`
	TaskID     int64  `json:"task_id"`
	UserID     int64  `json:"user_id"`
	Action     string `json:"action"`
	DetailJSON string `json:"detail_json,omitempty"`
	CreatedAt  string `json:"created_at" format:"date-time"`
}

type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	RelatedID *int64 `json:"related_id,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
