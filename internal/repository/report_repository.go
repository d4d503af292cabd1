package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/condo-care/backend/internal/domain"
)

// PostgresReportRepository implements domain.ReportRepository using
// PostgreSQL. Reads return each report with its full comment list packed
// into a json_agg column, so listing N reports stays a single statement
// and comment text cannot collide with any packing delimiter.
type PostgresReportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresReportRepository creates a new report repository
func NewPostgresReportRepository(db *sql.DB, logger *slog.Logger) *PostgresReportRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `
	r.id, r.report_id, r.category, r.detail, r.owner, r.status, r.feedback,
	r.likes_count, r.dislikes_count, r.created_at, r.updated_at, r.completed_at,
	COALESCE(
		json_agg(
			json_build_object(
				'id', c.id,
				'author', c.author,
				'text', c.text,
				'createdAt', c.created_at
			) ORDER BY c.id
		) FILTER (WHERE c.id IS NOT NULL),
		'[]'
	) AS comments`

const reportJoin = `
	FROM reports r
	LEFT JOIN comments c ON c.report_id = r.id`

// Insert creates a new report. Status always starts at "waiting".
func (r *PostgresReportRepository) Insert(report *domain.Report) error {
	query := `
		INSERT INTO reports (report_id, category, detail, owner, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, likes_count, dislikes_count, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		report.ReportID,
		report.Category,
		report.Detail,
		report.Owner,
		domain.StatusWaiting,
	).Scan(
		&report.ID,
		&report.Status,
		&report.LikesCount,
		&report.DislikesCount,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("report %d: %w", report.ReportID, domain.ErrDuplicateReport)
		}
		r.logger.Error("failed to insert report",
			slog.Int64("report_id", report.ReportID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert report: %w", err)
	}

	report.Comments = []domain.Comment{}
	return nil
}

// FindAll returns every report, newest first, with comments attached
func (r *PostgresReportRepository) FindAll() ([]*domain.Report, error) {
	query := `SELECT` + reportColumns + reportJoin + `
		GROUP BY r.id
		ORDER BY r.created_at DESC`

	return r.queryReports(query)
}

// FindByOwner returns the reports filed by one username, newest first
func (r *PostgresReportRepository) FindByOwner(username string) ([]*domain.Report, error) {
	query := `SELECT` + reportColumns + reportJoin + `
		WHERE r.owner = $1
		GROUP BY r.id
		ORDER BY r.created_at DESC`

	return r.queryReports(query, username)
}

// FindByID returns one report with comments, or ErrNotFound
func (r *PostgresReportRepository) FindByID(id int64) (*domain.Report, error) {
	query := `SELECT` + reportColumns + reportJoin + `
		WHERE r.id = $1
		GROUP BY r.id`

	reports, err := r.queryReports(query, id)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, domain.ErrNotFound
	}
	return reports[0], nil
}

func (r *PostgresReportRepository) queryReports(query string, args ...interface{}) ([]*domain.Report, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to query reports", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []*domain.Report{}
	for rows.Next() {
		report := &domain.Report{}
		var feedback sql.NullString
		var completedAt sql.NullTime
		var commentsJSON []byte

		err := rows.Scan(
			&report.ID,
			&report.ReportID,
			&report.Category,
			&report.Detail,
			&report.Owner,
			&report.Status,
			&feedback,
			&report.LikesCount,
			&report.DislikesCount,
			&report.CreatedAt,
			&report.UpdatedAt,
			&completedAt,
			&commentsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		if feedback.Valid {
			report.Feedback = &feedback.String
		}
		if completedAt.Valid {
			t := completedAt.Time
			report.CompletedAt = &t
		}
		if err := json.Unmarshal(commentsJSON, &report.Comments); err != nil {
			return nil, fmt.Errorf("failed to decode comments for report %d: %w", report.ID, err)
		}

		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// SetStatus transitions the report lifecycle state. Moving to "done"
// stamps completed_at once.
func (r *PostgresReportRepository) SetStatus(id int64, status string) (*domain.Report, error) {
	query := `
		UPDATE reports
		SET status = $1,
		    updated_at = now(),
		    completed_at = CASE WHEN $1 = $2 AND completed_at IS NULL THEN now() ELSE completed_at END
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, domain.StatusDone, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// SetFeedback attaches staff feedback to a report
func (r *PostgresReportRepository) SetFeedback(id int64, feedback string) (*domain.Report, error) {
	result, err := r.db.Exec(
		`UPDATE reports SET feedback = $1, updated_at = now() WHERE id = $2`,
		feedback, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// AppendComment adds a comment and returns the refreshed report
func (r *PostgresReportRepository) AppendComment(id int64, author, text string) (*domain.Report, error) {
	_, err := r.db.Exec(
		`INSERT INTO comments (report_id, author, text) VALUES ($1, $2, $3)`,
		id, author, text,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return r.FindByID(id)
}

const pqForeignKeyViolation = "23503"

// reactionSQL holds the statements for one reaction type. Table and
// counter names are fixed at compile time, never interpolated from input.
type reactionSQL struct {
	insert        string
	remove        string
	increment     string
	decrement     string
	oppositeCheck string
}

var reactionStatements = map[string]reactionSQL{
	domain.ReactionLike: {
		insert:        `INSERT INTO likes (report_id, username) VALUES ($1, $2)`,
		remove:        `DELETE FROM likes WHERE report_id = $1 AND username = $2`,
		increment:     `UPDATE reports SET likes_count = likes_count + 1, updated_at = now() WHERE id = $1`,
		decrement:     `UPDATE reports SET likes_count = likes_count - 1, updated_at = now() WHERE id = $1 AND likes_count > 0`,
		oppositeCheck: `SELECT EXISTS (SELECT 1 FROM dislikes WHERE report_id = $1 AND username = $2)`,
	},
	domain.ReactionDislike: {
		insert:        `INSERT INTO dislikes (report_id, username) VALUES ($1, $2)`,
		remove:        `DELETE FROM dislikes WHERE report_id = $1 AND username = $2`,
		increment:     `UPDATE reports SET dislikes_count = dislikes_count + 1, updated_at = now() WHERE id = $1`,
		decrement:     `UPDATE reports SET dislikes_count = dislikes_count - 1, updated_at = now() WHERE id = $1 AND dislikes_count > 0`,
		oppositeCheck: `SELECT EXISTS (SELECT 1 FROM likes WHERE report_id = $1 AND username = $2)`,
	},
}

// AddReaction records a like or dislike. The reaction row insert and the
// counter increment run in one transaction so the denormalized counter
// cannot drift on partial failure. A repeated reaction of the same type
// returns ErrAlreadyReacted; holding a like and a dislike on the same
// report simultaneously is rejected with ErrConflictingReaction.
func (r *PostgresReportRepository) AddReaction(id int64, username, typ string) (*domain.Report, error) {
	stmts, ok := reactionStatements[typ]
	if !ok {
		return nil, fmt.Errorf("%w: unknown reaction type %q", domain.ErrValidation, typ)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var opposite bool
	if err := tx.QueryRow(stmts.oppositeCheck, id, username).Scan(&opposite); err != nil {
		return nil, fmt.Errorf("failed to check existing reaction: %w", err)
	}
	if opposite {
		return nil, domain.ErrConflictingReaction
	}

	if _, err := tx.Exec(stmts.insert, id, username); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return nil, domain.ErrAlreadyReacted
			case pqForeignKeyViolation:
				return nil, domain.ErrNotFound
			}
		}
		return nil, fmt.Errorf("failed to insert reaction: %w", err)
	}

	result, err := tx.Exec(stmts.increment, id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reaction: %w", err)
	}

	return r.FindByID(id)
}

// RemoveReaction undoes a like or dislike. The counter is decremented
// only when a reaction row was actually deleted, so repeated removals
// stay bounded at the true reaction count.
func (r *PostgresReportRepository) RemoveReaction(id int64, username, typ string) (*domain.Report, error) {
	stmts, ok := reactionStatements[typ]
	if !ok {
		return nil, fmt.Errorf("%w: unknown reaction type %q", domain.ErrValidation, typ)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(stmts.remove, id, username)
	if err != nil {
		return nil, fmt.Errorf("failed to delete reaction: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}

	if deleted > 0 {
		if _, err := tx.Exec(stmts.decrement, id); err != nil {
			return nil, fmt.Errorf("failed to decrement counter: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reaction removal: %w", err)
	}

	return r.FindByID(id)
}

// Delete removes a report; comments and reactions cascade
func (r *PostgresReportRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return requireRow(result)
}

// Statistics aggregates report counts by status in one statement
func (r *PostgresReportRepository) Statistics() (*domain.Statistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM reports
	`

	stats := &domain.Statistics{}
	err := r.db.QueryRow(query, domain.StatusDone, domain.StatusInProgress, domain.StatusWaiting).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.InProgress,
		&stats.Waiting,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	return stats, nil
}

// ReconcileCounters recomputes likes_count and dislikes_count from the
// reaction tables, correcting any drift left by historical writers that
// did not update both sides transactionally.
func (r *PostgresReportRepository) ReconcileCounters() (int64, error) {
	var corrected int64

	for _, q := range []string{
		`UPDATE reports r
		 SET likes_count = sub.cnt
		 FROM (
			SELECT r2.id, COUNT(l.username) AS cnt
			FROM reports r2
			LEFT JOIN likes l ON l.report_id = r2.id
			GROUP BY r2.id
		 ) sub
		 WHERE sub.id = r.id AND r.likes_count <> sub.cnt`,
		`UPDATE reports r
		 SET dislikes_count = sub.cnt
		 FROM (
			SELECT r2.id, COUNT(d.username) AS cnt
			FROM reports r2
			LEFT JOIN dislikes d ON d.report_id = r2.id
			GROUP BY r2.id
		 ) sub
		 WHERE sub.id = r.id AND r.dislikes_count <> sub.cnt`,
	} {
		result, err := r.db.Exec(q)
		if err != nil {
			return corrected, fmt.Errorf("failed to reconcile counters: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return corrected, fmt.Errorf("failed to check rows affected: %w", err)
		}
		corrected += rows
	}

	return corrected, nil
}

// requireRow converts a zero-row mutation into ErrNotFound
func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
