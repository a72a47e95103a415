package store

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/models"
)

var draftColumns = []string{
	"id", "user_key", "application_type", "record", "completion_percentage",
	"program_title", "program_slug", "faculty", "last_saved_at",
}

var submissionColumns = []string{
	"id", "application_id", "user_key", "application_type", "record", "status",
	"program_title", "program_slug", "faculty", "submitted_at", "updated_at",
	"review_comments", "reviewed_by", "decision_date",
}

func newMockDB(t *testing.T) (sqlmock.Sqlmock, func() (*PostgresDraftStore, *PostgresSubmissionStore)) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, func() (*PostgresDraftStore, *PostgresSubmissionStore) {
		subs := NewPostgresSubmissionStore(db, logger.NewTestLogger(t))
		subs.now = func() time.Time { return testNow }
		return NewPostgresDraftStore(db), subs
	}
}

func submissionRow(t *testing.T, id int64, sub *models.Submission) *sqlmock.Rows {
	var decision interface{}
	if sub.DecisionDate != nil {
		decision = *sub.DecisionDate
	}
	return sqlmock.NewRows(submissionColumns).AddRow(
		id, sub.ApplicationID, sub.UserKey, string(sub.ApplicationType), recordJSON(t, sub.Record), string(sub.Status),
		sub.ProgramTitle, sub.ProgramSlug, sub.Faculty, sub.SubmittedAt, sub.UpdatedAt,
		sub.ReviewComments, sub.ReviewedBy, decision,
	)
}

func TestPostgresDraftStoreSave(t *testing.T) {
	mock, stores := newMockDB(t)
	drafts, _ := stores()
	d := testDraft("user-1", "draft_a")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_drafts")).
		WithArgs("draft_a", "user-1", "postgraduate", sqlmock.AnyArg(), 80,
			d.ProgramTitle, d.ProgramSlug, d.Faculty, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, drafts.Save(context.Background(), d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDraftStoreLoad(t *testing.T) {
	mock, stores := newMockDB(t)
	drafts, _ := stores()
	d := testDraft("user-1", "draft_a")

	mock.ExpectQuery(regexp.QuoteMeta("FROM application_drafts WHERE user_key = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(draftColumns).AddRow(
			d.ID, d.UserKey, "postgraduate", recordJSON(t, d.Record), 80,
			d.ProgramTitle, d.ProgramSlug, d.Faculty, testNow))

	got, err := drafts.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, d, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDraftStoreLoadMissing(t *testing.T) {
	mock, stores := newMockDB(t)
	drafts, _ := stores()

	mock.ExpectQuery(regexp.QuoteMeta("FROM application_drafts WHERE id = $1")).
		WithArgs("draft_missing").
		WillReturnRows(sqlmock.NewRows(draftColumns))

	got, err := drafts.LoadByID(context.Background(), "draft_missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDraftStoreDeleteError(t *testing.T) {
	mock, stores := newMockDB(t)
	drafts, _ := stores()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_drafts")).
		WithArgs("user-1").
		WillReturnError(stderrors.New("connection reset"))

	err := drafts.Delete(context.Background(), "user-1")
	assert.True(t, errors.Is(err, errors.ErrCodeQueryExecutionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionCreate(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()
	sub := testSubmission("MUST-APP-2026-000001", "user-1", testNow)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO application_submissions")).
		WithArgs("MUST-APP-2026-000001", "user-1", "postgraduate", sqlmock.AnyArg(), "submitted",
			sub.ProgramTitle, sub.ProgramSlug, sub.Faculty, "Amina", "Banda", "amina@example.com", testNow, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_referees")).
		WithArgs(int64(7), 0, "Dr Phiri", "Lecturer", "UNIMA", "Zomba", "phiri@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_referees")).
		WithArgs(int64(7), 1, "Mrs Mwale", "Manager", "NBS", "Blantyre", "mwale@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_work_experience")).
		WithArgs(int64(7), 0, "NBS Bank", "Teller", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_audit_log")).
		WithArgs("MUST-APP-2026-000001", "submitted", "submitted", "user-1", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := subs.Create(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "7", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionCreateDuplicate(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO application_submissions")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	_, err := subs.Create(context.Background(), testSubmission("MUST-APP-2026-000001", "user-1", testNow))
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateApplication))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionCreateRollsBackOnChildFailure(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO application_submissions")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_referees")).
		WillReturnError(stderrors.New("disk full"))
	mock.ExpectRollback()

	_, err := subs.Create(context.Background(), testSubmission("MUST-APP-2026-000001", "user-1", testNow))
	assert.True(t, errors.Is(err, errors.ErrCodeDatabaseInsertFailed))
	assert.True(t, errors.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionGetNotFound(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()

	mock.ExpectQuery(regexp.QuoteMeta("FROM application_submissions WHERE application_id = $1")).
		WithArgs("MUST-APP-2026-000404").
		WillReturnRows(sqlmock.NewRows(submissionColumns))

	_, err := subs.GetByApplicationID(context.Background(), "MUST-APP-2026-000404")
	assert.True(t, errors.Is(err, errors.ErrCodeSubmissionNotFound))

	_, err = subs.Get(context.Background(), "not-a-number")
	assert.True(t, errors.Is(err, errors.ErrCodeSubmissionNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionList(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()
	sub := testSubmission("MUST-APP-2026-000001", "user-1", testNow)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_key = $1 AND status = $2 ORDER BY submitted_at DESC, application_id DESC LIMIT $3 OFFSET $4")).
		WithArgs("user-1", "submitted", 50, 0).
		WillReturnRows(submissionRow(t, 1, sub))

	got, err := subs.List(context.Background(), models.SubmissionFilter{UserKey: "user-1", Status: models.StatusSubmitted})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, sub.Record, got[0].Record)
	assert.Nil(t, got[0].DecisionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionUpdateStatus(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()
	appID := "MUST-APP-2026-000001"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM application_submissions WHERE application_id = $1 FOR UPDATE")).
		WithArgs(appID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("review"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE application_submissions")).
		WithArgs("accepted", "Welcome aboard", "registrar", testNow, sqlmock.AnyArg(), appID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_audit_log")).
		WithArgs(appID, "status_changed", "accepted", "registrar", "Welcome aboard").
		WillReturnResult(sqlmock.NewResult(1, 1))

	updated := testSubmission(appID, "user-1", testNow)
	updated.Status = models.StatusAccepted
	updated.ReviewComments = "Welcome aboard"
	updated.ReviewedBy = "registrar"
	decided := testNow
	updated.DecisionDate = &decided
	mock.ExpectQuery(regexp.QuoteMeta("FROM application_submissions WHERE application_id = $1")).
		WithArgs(appID).
		WillReturnRows(submissionRow(t, 1, updated))

	got, err := subs.UpdateStatus(context.Background(), models.StatusChange{
		ApplicationID: appID,
		Status:        models.StatusAccepted,
		Comments:      "Welcome aboard",
		ReviewedBy:    "registrar",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.DecisionDate)
	assert.Equal(t, testNow, *got.DecisionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionUpdateStatusRejectsFinalState(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM application_submissions")).
		WithArgs("MUST-APP-2026-000001").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rejected"))
	mock.ExpectRollback()

	_, err := subs.UpdateStatus(context.Background(), models.StatusChange{
		ApplicationID: "MUST-APP-2026-000001",
		Status:        models.StatusAccepted,
	})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStatusTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubmissionStats(t *testing.T) {
	mock, stores := newMockDB(t)
	_, subs := stores()

	mock.ExpectQuery(regexp.QuoteMeta("FROM application_submissions")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "accepted", "rejected"}).AddRow(10, 6, 3, 1))

	st, err := subs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStats{Total: 10, Pending: 6, Accepted: 3, Rejected: 1}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
