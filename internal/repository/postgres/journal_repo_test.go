package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/thermal-policy-host/internal/audit"
)

func TestJournalRepoWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalRepoFromDB(db)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO policy_journal (" + journalColumns + ") VALUES " +
			"($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)," +
			"($12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)")).
		WithArgs(
			"a", "", "passive", int64(1), audit.CategoryTransition, "enable", []byte("null"), audit.StatusSuccess, "", int64(0), ts,
			"b", "trace", "critical", int64(2), audit.CategoryDispatch, "Suspend", []byte(`{"outcome":"handled"}`), audit.StatusFailed, "boom", int64(3), ts,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err = repo.WriteBatch(context.Background(), []audit.Entry{
		{ID: "a", Policy: "passive", PolicyIndex: 1, Category: audit.CategoryTransition, Action: "enable", Status: audit.StatusSuccess, Timestamp: ts},
		{ID: "b", TraceID: "trace", Policy: "critical", PolicyIndex: 2, Category: audit.CategoryDispatch, Action: "Suspend",
			Detail: map[string]interface{}{"outcome": "handled"}, Status: audit.StatusFailed, Error: "boom", DurationMs: 3, Timestamp: ts},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepoWriteBatchError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO policy_journal")).WillReturnError(errors.New("relation does not exist"))

	err = NewJournalRepoFromDB(db).WriteBatch(context.Background(), []audit.Entry{{ID: "a"}})
	assert.ErrorContains(t, err, "write journal batch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepoEmptyBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, NewJournalRepoFromDB(db).WriteBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepoFetchEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "trace_id", "policy", "policy_index", "category", "action", "detail", "status", "error", "duration_ms", "timestamp"}).
		AddRow("b", "", "passive", int64(1), audit.CategoryDispatch, "Suspend", []byte(`{"outcome":"handled"}`), audit.StatusSuccess, "", int64(2), ts).
		AddRow("a", "", "passive", int64(1), audit.CategoryTransition, "enable", []byte("null"), audit.StatusSuccess, "", int64(0), ts)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + journalColumns + " FROM policy_journal")).
		WithArgs("passive", "", defaultFetchLimit).
		WillReturnRows(rows)

	entries, err := NewJournalRepoFromDB(db).FetchEntries(context.Background(), EntryFilter{Policy: "passive", Limit: 5000})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, uint(1), entries[0].PolicyIndex)
	assert.Equal(t, "handled", entries[0].Detail["outcome"])
	assert.Nil(t, entries[1].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepoSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM policy_journal").
		WillReturnRows(sqlmock.NewRows([]string{"d", "fd", "fh", "fn", "p95"}).AddRow(int64(40), int64(3), int64(1), int64(0), 12.5))

	s, err := NewJournalRepoFromDB(db).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, JournalSummary{Dispatches: 40, FailedDispatches: 3, FailedHooks: 1, P95DurationMs: 12.5}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}
