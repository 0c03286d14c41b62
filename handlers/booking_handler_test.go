package handlers

import (
	"bytes"
	"log"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/azmhq/mentor_platform/database"
	"github.com/azmhq/mentor_platform/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB swaps database.DB for a sqlmock-backed GORM instance for the
// duration of one test.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = gormDB
	t.Cleanup(func() { database.DB = prev })
	return mock
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestApplyStudentRatingIssuesAtomicUpdate(t *testing.T) {
	mock := setupMockDB(t)
	mentorID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`round((rating_average * rating_count + $1) / (rating_count + 1.0), 1)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applyStudentRating(mentorID, 5)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStudentRatingLogsMissingProfile(t *testing.T) {
	mock := setupMockDB(t)
	buf := captureLog(t)

	mock.ExpectExec(`UPDATE "mentor_profiles"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applyStudentRating(uuid.New(), 4)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), "Failed to update rating for mentor")
}

func TestCreditMentorForSessionIssuesAtomicUpdate(t *testing.T) {
	mock := setupMockDB(t)
	booking := models.Booking{
		ID:          uuid.New(),
		MentorID:    uuid.New(),
		TotalAmount: 150,
	}

	mock.ExpectExec(regexp.QuoteMeta(`total_earnings + $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	creditMentorForSession(booking)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditMentorForSessionLogsMissingProfile(t *testing.T) {
	mock := setupMockDB(t)
	buf := captureLog(t)

	mock.ExpectExec(`UPDATE "mentor_profiles"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	creditMentorForSession(models.Booking{ID: uuid.New(), MentorID: uuid.New(), TotalAmount: 80})

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), "Failed to credit mentor")
}
