package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/volunteer-credits/internal/model"
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, driver), mock
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestCreateUserMapsMySQLDuplicate(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'username'"})

	_, err := NewUserRepo(db).Create(context.Background(), NewUser{
		Username: "bob", Password: "pw", Name: "Bob", Email: "bob@example.com", UserType: model.UserTypeCitizen,
	}, 4)
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationMapsPostgresDuplicate(t *testing.T) {
	db, mock := newMock(t, "postgres")
	// Postgres handles get $n placeholders.
	mock.ExpectExec(`INSERT INTO applications \(id, opportunity_id, user_id, status, applied_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\)`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := NewApplicationRepo(db).Create(context.Background(), "u1", "o1")
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitWrapsDriverErrors(t *testing.T) {
	db, mock := newMock(t, "mysql")
	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET credits = credits - ").
		WithArgs(40, "u1", 40).
		WillReturnError(boom)
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	err = NewLedgerRepo(db).DebitTx(ctx, tx, "u1", 40)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInsufficientCredits)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteTxReportsInvalidTransition(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET status").
		WithArgs(model.StatusCompleted, sqlmock.AnyArg(), "a1", model.StatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	err = NewApplicationRepo(db).CompleteTx(ctx, tx, "a1", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitGuardRejectsWhenBalanceChanged(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectBegin()
	// the balance check lives in the UPDATE itself
	mock.ExpectExec(`UPDATE users SET credits = credits - \? WHERE id = \? AND credits >= \?`).
		WithArgs(40, "u1", 40).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE id = \?`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	err = NewLedgerRepo(db).DebitTx(ctx, tx, "u1", 40)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitUnknownUser(t *testing.T) {
	db, mock := newMock(t, "postgres")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET credits = credits - \$1 WHERE id = \$2 AND credits >= \$3`).
		WithArgs(10, "ghost", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	err = NewLedgerRepo(db).DebitTx(ctx, tx, "ghost", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
