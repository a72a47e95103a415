package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"admission-portal/internal/common/database"
	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/models"
)

const pqUniqueViolation = "23505"

// PostgresDraftStore keeps one row per user in application_drafts; saving
// upserts on user_key.
type PostgresDraftStore struct {
	db *sql.DB
}

func NewPostgresDraftStore(db *sql.DB) *PostgresDraftStore {
	return &PostgresDraftStore{db: db}
}

const upsertDraftSQL = `INSERT INTO application_drafts
	(id, user_key, application_type, record, completion_percentage, program_title, program_slug, faculty, last_saved_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_key) DO UPDATE SET
	id = EXCLUDED.id,
	application_type = EXCLUDED.application_type,
	record = EXCLUDED.record,
	completion_percentage = EXCLUDED.completion_percentage,
	program_title = EXCLUDED.program_title,
	program_slug = EXCLUDED.program_slug,
	faculty = EXCLUDED.faculty,
	last_saved_at = EXCLUDED.last_saved_at`

const selectDraftSQL = `SELECT id, user_key, application_type, record, completion_percentage,
	program_title, program_slug, faculty, last_saved_at
FROM application_drafts`

func (s *PostgresDraftStore) Save(ctx context.Context, d *models.Draft) error {
	rec, err := encodeRecord(d.Record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertDraftSQL,
		d.ID, d.UserKey, string(d.ApplicationType), rec, d.CompletionPercentage,
		d.ProgramTitle, d.ProgramSlug, d.Faculty, d.LastSavedAt,
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("save_draft", err)
	}
	return nil
}

func (s *PostgresDraftStore) Load(ctx context.Context, userKey string) (*models.Draft, error) {
	return s.loadOne(ctx, selectDraftSQL+` WHERE user_key = $1`, userKey)
}

func (s *PostgresDraftStore) LoadByID(ctx context.Context, draftID string) (*models.Draft, error) {
	return s.loadOne(ctx, selectDraftSQL+` WHERE id = $1`, draftID)
}

func (s *PostgresDraftStore) loadOne(ctx context.Context, query string, arg string) (*models.Draft, error) {
	var (
		env     draftEnvelope
		appType string
		record  []byte
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&env.ID, &env.UserKey, &appType, &record, &env.CompletionPercentage,
		&env.ProgramTitle, &env.ProgramSlug, &env.Faculty, &env.LastSavedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load_draft", err)
	}
	env.ApplicationType = models.ApplicationType(appType)
	env.Record = record
	return env.draft()
}

func (s *PostgresDraftStore) Delete(ctx context.Context, userKey string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM application_drafts WHERE user_key = $1`, userKey); err != nil {
		return errors.NewQueryExecutionFailedError("delete_draft", err)
	}
	return nil
}

// PostgresSubmissionStore implements SubmissionRepository. Referees and work
// history are also written to child tables in entry order for reporting.
type PostgresSubmissionStore struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func NewPostgresSubmissionStore(db *sql.DB, log logger.Logger) *PostgresSubmissionStore {
	return &PostgresSubmissionStore{db: db, log: log, now: time.Now}
}

const insertSubmissionSQL = `INSERT INTO application_submissions
	(application_id, user_key, application_type, record, status, program_title, program_slug, faculty,
	 first_name, surname, email, submitted_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`

const insertRefereeSQL = `INSERT INTO submission_referees
	(submission_id, order_index, name, position, institution, address, email)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertWorkExperienceSQL = `INSERT INTO submission_work_experience
	(submission_id, order_index, organization, position, from_date, to_date)
VALUES ($1, $2, $3, $4, $5, $6)`

const insertAuditSQL = `INSERT INTO application_audit_log (application_id, action, status, actor, details)
VALUES ($1, $2, $3, $4, $5)`

const selectSubmissionSQL = `SELECT id, application_id, user_key, application_type, record, status,
	program_title, program_slug, faculty, submitted_at, updated_at, review_comments, reviewed_by, decision_date
FROM application_submissions`

func (s *PostgresSubmissionStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	rec, err := encodeRecord(sub.Record)
	if err != nil {
		return "", err
	}

	var id int64
	err = database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		p := sub.Record.Personal
		if err := tx.QueryRowContext(ctx, insertSubmissionSQL,
			sub.ApplicationID, sub.UserKey, string(sub.ApplicationType), rec, string(sub.Status),
			sub.ProgramTitle, sub.ProgramSlug, sub.Faculty,
			p.FirstName, p.Surname, p.EmailAddress, sub.SubmittedAt, sub.UpdatedAt,
		).Scan(&id); err != nil {
			return err
		}

		order := 0
		for _, r := range sub.Record.Referees {
			if r == (models.Referee{}) {
				continue
			}
			if _, err := tx.ExecContext(ctx, insertRefereeSQL,
				id, order, r.Name, r.Position, r.Institution, r.Address, r.Email); err != nil {
				return fmt.Errorf("insert referee %d: %w", order, err)
			}
			order++
		}

		order = 0
		for _, w := range sub.Record.WorkAndMotivation.WorkExperience {
			if w.IsEmpty() {
				continue
			}
			if _, err := tx.ExecContext(ctx, insertWorkExperienceSQL,
				id, order, w.Organization, w.Position, w.FromDate, w.ToDate); err != nil {
				return fmt.Errorf("insert work experience %d: %w", order, err)
			}
			order++
		}
		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return "", errors.NewDuplicateApplicationError(sub.ApplicationID)
		}
		return "", errors.NewDatabaseInsertFailedError(err)
	}

	s.audit(ctx, sub.ApplicationID, "submitted", string(sub.Status), sub.UserKey, "")
	return strconv.FormatInt(id, 10), nil
}

// audit records a lifecycle event. The log is informational, so failures are
// only logged.
func (s *PostgresSubmissionStore) audit(ctx context.Context, applicationID, action, status, actor, details string) {
	if _, err := s.db.ExecContext(ctx, insertAuditSQL, applicationID, action, status, actor, details); err != nil {
		s.log.Warn("Failed to write audit log", map[string]interface{}{
			"application_id": applicationID,
			"action":         action,
			"error":          err,
		})
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub          models.Submission
		id           int64
		appType      string
		status       string
		record       []byte
		decisionDate sql.NullTime
	)
	if err := row.Scan(
		&id, &sub.ApplicationID, &sub.UserKey, &appType, &record, &status,
		&sub.ProgramTitle, &sub.ProgramSlug, &sub.Faculty, &sub.SubmittedAt, &sub.UpdatedAt,
		&sub.ReviewComments, &sub.ReviewedBy, &decisionDate,
	); err != nil {
		return nil, err
	}
	rec, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}
	sub.ID = strconv.FormatInt(id, 10)
	sub.ApplicationType = models.ApplicationType(appType)
	sub.Status = models.SubmissionStatus(status)
	sub.Record = rec
	if decisionDate.Valid {
		t := decisionDate.Time
		sub.DecisionDate = &t
	}
	return &sub, nil
}

func (s *PostgresSubmissionStore) getOne(ctx context.Context, where string, arg string) (*models.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, selectSubmissionSQL+" WHERE "+where, arg))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewSubmissionNotFoundError(arg)
	}
	if err != nil {
		if _, ok := errors.AsStandard(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("get_submission", err)
	}
	return sub, nil
}

func (s *PostgresSubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, errors.NewSubmissionNotFoundError(id)
	}
	return s.getOne(ctx, "id = $1", id)
}

func (s *PostgresSubmissionStore) GetByApplicationID(ctx context.Context, applicationID string) (*models.Submission, error) {
	return s.getOne(ctx, "application_id = $1", applicationID)
}

func (s *PostgresSubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	filter = applyDefaultLimit(filter)

	var (
		where []string
		args  []interface{}
	)
	if filter.UserKey != "" {
		args = append(args, filter.UserKey)
		where = append(where, fmt.Sprintf("user_key = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := selectSubmissionSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY submitted_at DESC, application_id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_submissions", err)
	}
	defer rows.Close()

	out := []*models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			if _, ok := errors.AsStandard(err); ok {
				return nil, err
			}
			return nil, errors.NewQueryExecutionFailedError("list_submissions", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_submissions", err)
	}
	return out, nil
}

// UpdateStatus applies a review decision. The current status is locked and
// checked against the allowed transitions inside the same transaction.
func (s *PostgresSubmissionStore) UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Submission, error) {
	at := change.At
	if at.IsZero() {
		at = s.now().UTC()
	}
	var decisionDate sql.NullTime
	if change.Status.IsDecision() {
		decisionDate = sql.NullTime{Time: at, Valid: true}
	}

	err := database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM application_submissions WHERE application_id = $1 FOR UPDATE`,
			change.ApplicationID).Scan(&current)
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewSubmissionNotFoundError(change.ApplicationID)
		}
		if err != nil {
			return err
		}
		if !models.SubmissionStatus(current).CanTransition(change.Status) {
			return errors.NewInvalidStatusTransitionError(current, string(change.Status))
		}

		_, err = tx.ExecContext(ctx, `UPDATE application_submissions
SET status = $1, review_comments = $2, reviewed_by = $3, updated_at = $4, decision_date = COALESCE($5, decision_date)
WHERE application_id = $6`,
			string(change.Status), change.Comments, change.ReviewedBy, at, decisionDate, change.ApplicationID)
		return err
	})
	if err != nil {
		if _, ok := errors.AsStandard(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("update_status", err)
	}

	s.audit(ctx, change.ApplicationID, "status_changed", string(change.Status), change.ReviewedBy, change.Comments)
	return s.GetByApplicationID(ctx, change.ApplicationID)
}

func (s *PostgresSubmissionStore) Stats(ctx context.Context) (models.SubmissionStats, error) {
	var st models.SubmissionStats
	err := s.db.QueryRowContext(ctx, `SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status IN ('submitted', 'review')),
	COUNT(*) FILTER (WHERE status = 'accepted'),
	COUNT(*) FILTER (WHERE status = 'rejected')
FROM application_submissions`).Scan(&st.Total, &st.Pending, &st.Accepted, &st.Rejected)
	if err != nil {
		return st, errors.NewQueryExecutionFailedError("submission_stats", err)
	}
	return st, nil
}
