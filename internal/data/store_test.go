package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnbattle/internal/arena"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func sampleResult() arena.Result {
	return arena.Result{
		ID:         "r_1",
		Battle:     "Arena",
		Outcome:    arena.OutcomeWinner,
		Winner:     "A",
		Turns:      3,
		Dead:       []string{"B", "C"},
		Report:     "Remaining Characters:\nA: 90.00 hp\n\nDead Players: B\nC\n",
		FinishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)

	mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, s.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS battle_results")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveResult(t *testing.T) {
	s, mock := newMockStore(t)
	r := sampleResult()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO battle_results")).
		WithArgs(r.ID, r.Battle, r.Outcome, r.Winner, r.Turns, r.Report, r.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO battle_deaths")).
		WithArgs(r.ID, 0, "B").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO battle_deaths")).
		WithArgs(r.ID, 1, "C").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveResult(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveResultRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	r := sampleResult()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO battle_results")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO battle_deaths")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SaveResult(context.Background(), r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert death B")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListResults(t *testing.T) {
	s, mock := newMockStore(t)
	finished := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "battle", "outcome", "winner", "turns", "report", "finished_at", "dead"}).
		AddRow("r_2", "Arena", arena.OutcomeDraw, "", 1000, "report-2", finished.Add(time.Hour), "{}").
		AddRow("r_1", "Arena", arena.OutcomeWinner, "A", 3, "report-1", finished, "{B,C}")
	mock.ExpectQuery(regexp.QuoteMeta("FROM battle_results r")).
		WithArgs(5).
		WillReturnRows(rows)

	got, err := s.ListResults(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r_2", got[0].ID)
	assert.Equal(t, arena.OutcomeDraw, got[0].Outcome)
	assert.Empty(t, got[0].Dead)
	assert.Equal(t, "A", got[1].Winner)
	assert.Equal(t, []string{"B", "C"}, got[1].Dead)
	assert.Equal(t, finished, got[1].FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListResultsRejectsBadLimit(t *testing.T) {
	s, mock := newMockStore(t)

	for _, limit := range []int{0, -1, MaxListLimit + 1, 1 << 50} {
		_, err := s.ListResults(context.Background(), limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListResultsAcceptsMaxLimit(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM battle_results r")).
		WithArgs(MaxListLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "battle", "outcome", "winner", "turns", "report", "finished_at", "dead"}))

	got, err := s.ListResults(context.Background(), MaxListLimit)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
