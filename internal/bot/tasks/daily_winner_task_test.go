package tasks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
)

func testDeps(t *testing.T) TaskDeps {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return TaskDeps{
		Logger:  log,
		Config:  &config.Config{},
		Ledger:  contest.NewLedger(time.Minute, 10, nil, log),
		Archive: contest.NewArchive(nil, 365, log),
	}
}

func TestDailyWinnerTaskArchivesAndResets(t *testing.T) {
	t.Parallel()

	deps := testDeps(t)
	deps.Ledger.RecordPush(1, "Alice")

	task := newDailyWinnerTask(deps)
	require.NoError(t, task(context.Background()))

	history := deps.Archive.History(context.Background(), 10)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].UserID)
	assert.Equal(t, "Alice", history[0].DisplayName)

	_, ok := deps.Ledger.CurrentPeriodLeader()
	assert.False(t, ok, "period counts should be zeroed after rollover")
}

func TestDailyWinnerTaskNoPushes(t *testing.T) {
	t.Parallel()

	deps := testDeps(t)
	task := newDailyWinnerTask(deps)
	require.NoError(t, task(context.Background()))

	assert.Empty(t, deps.Archive.History(context.Background(), 10))
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	tasks := RegisterAllTasks(testDeps(t))
	assert.Contains(t, tasks, "daily_winner")
	assert.Contains(t, tasks, "sql_maintenance")
}
