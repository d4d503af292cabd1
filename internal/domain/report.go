package domain

import "time"

// Report lifecycle statuses
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// ValidStatus reports whether status is one of the three lifecycle values.
func ValidStatus(status string) bool {
	return status == StatusWaiting || status == StatusInProgress || status == StatusDone
}

// Reaction types
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// ValidReaction reports whether typ names a reaction type.
func ValidReaction(typ string) bool {
	return typ == ReactionLike || typ == ReactionDislike
}

// Report is a resident-filed issue record. LikesCount and DislikesCount are
// denormalized counters kept equal to the number of reaction rows; reaction
// writes update both sides in one transaction.
type Report struct {
	ID            int64      `json:"id"`
	ReportID      int64      `json:"reportId"` // unique, human-facing
	Category      string     `json:"category"`
	Detail        string     `json:"detail"`
	Owner         string     `json:"owner"` // username, soft reference
	Status        string     `json:"status"`
	Feedback      *string    `json:"feedback"`
	LikesCount    int        `json:"likesCount"`
	DislikesCount int        `json:"dislikesCount"`
	Comments      []Comment  `json:"comments"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Comment is an append-only note on a report
type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Statistics aggregates report counts by status
type Statistics struct {
	Total      int `json:"totalReports"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Waiting    int `json:"waiting"`
}

// ReportRepository defines data access for reports, their comments and
// reactions. Read methods return reports with the full comment list
// attached; mutation methods return ErrNotFound when no row matched.
type ReportRepository interface {
	Insert(report *Report) error
	FindAll() ([]*Report, error)
	FindByOwner(username string) ([]*Report, error)
	FindByID(id int64) (*Report, error)
	SetStatus(id int64, status string) (*Report, error)
	SetFeedback(id int64, feedback string) (*Report, error)
	AppendComment(id int64, author, text string) (*Report, error)
	AddReaction(id int64, username, typ string) (*Report, error)
	RemoveReaction(id int64, username, typ string) (*Report, error)
	Delete(id int64) error
	Statistics() (*Statistics, error)
}

// CounterReconciler recomputes denormalized reaction counters from reaction
// rows, returning the number of corrected rows.
type CounterReconciler interface {
	ReconcileCounters() (int64, error)
}
