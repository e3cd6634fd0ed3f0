package contest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock drives the ledger's notion of now from test code.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingMirror captures mirror attempts for assertion.
type recordingMirror struct {
	calls chan mirrorCall
}

type mirrorCall struct {
	userID int64
	name   string
	points int64
}

func newRecordingMirror() *recordingMirror {
	return &recordingMirror{calls: make(chan mirrorCall, 16)}
}

func (m *recordingMirror) TrackButtonPush(_ context.Context, userID int64, name string, points int64) error {
	m.calls <- mirrorCall{userID: userID, name: name, points: points}
	return nil
}

func newTestLedger(cooldown time.Duration, points int64, clock *fakeClock) *Ledger {
	l := NewLedger(cooldown, points, nil, testLogger())
	l.now = clock.Now
	return l
}

func TestRecordPushCooldown(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLedger(30*time.Minute, 10, clock)

	first := l.RecordPush(1, "Alice")
	require.True(t, first.Success)
	assert.Equal(t, int64(1), first.TotalPushes)
	assert.Equal(t, int64(10), first.PointsAwarded)

	clock.Advance(10 * time.Minute)
	second := l.RecordPush(1, "Alice")
	require.False(t, second.Success)
	assert.Equal(t, 20, second.CooldownMinutes)
	assert.Zero(t, second.PointsAwarded)

	// Exactly at the window boundary the push is eligible again.
	clock.Advance(20 * time.Minute)
	third := l.RecordPush(1, "Alice")
	require.True(t, third.Success)
	assert.Equal(t, int64(2), third.TotalPushes)
}

func TestRecordPushRejectionHasNoSideEffects(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLedger(30*time.Minute, 10, clock)

	l.RecordPush(1, "Alice")
	clock.Advance(time.Minute)
	l.RecordPush(1, "Alice renamed")

	board := l.Leaderboard(1)
	require.Len(t, board, 1)
	assert.Equal(t, int64(1), board[0].TotalPushes)
	assert.Equal(t, int64(1), board[0].PeriodPushes)
	assert.Equal(t, int64(10), board[0].PointsEarned)
	// A rejected push must not update the display name either.
	assert.Equal(t, "Alice", board[0].DisplayName)
}

func TestCounterInvariant(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(30*time.Minute, 10, clock)

	const successes = 7
	for i := 0; i < successes; i++ {
		res := l.RecordPush(42, "Bob")
		require.True(t, res.Success)

		// Interleave rejected attempts; they must not count.
		clock.Advance(5 * time.Minute)
		rejected := l.RecordPush(42, "Bob")
		require.False(t, rejected.Success)

		clock.Advance(25 * time.Minute)
	}

	board := l.Leaderboard(1)
	require.Len(t, board, 1)
	assert.Equal(t, int64(successes), board[0].TotalPushes)
	assert.Equal(t, int64(successes*10), board[0].PointsEarned)
}

func TestEmptyDisplayNameGetsPlaceholder(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Now())
	l := newTestLedger(30*time.Minute, 10, clock)

	l.RecordPush(777, "")
	board := l.Leaderboard(1)
	require.Len(t, board, 1)
	assert.Equal(t, "User 777", board[0].DisplayName)
}

func TestLeaderboardOrdering(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(time.Minute, 10, clock)

	// User i ends with i total pushes.
	for i := int64(1); i <= 5; i++ {
		for n := int64(0); n < i; n++ {
			res := l.RecordPush(i, fmt.Sprintf("user-%d", i))
			require.True(t, res.Success)
			clock.Advance(time.Minute)
		}
	}

	board := l.Leaderboard(3)
	require.Len(t, board, 3)
	assert.Equal(t, int64(5), board[0].UserID)
	assert.Equal(t, int64(4), board[1].UserID)
	assert.Equal(t, int64(3), board[2].UserID)
	assert.True(t, board[0].TotalPushes > board[1].TotalPushes)
	assert.True(t, board[1].TotalPushes > board[2].TotalPushes)

	// Stable under repeated calls with no intervening pushes.
	assert.Equal(t, board, l.Leaderboard(3))
}

func TestLeaderboardTieBreak(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(time.Minute, 10, clock)

	l.RecordPush(2, "second")
	clock.Advance(time.Minute)
	l.RecordPush(1, "first")

	// Equal totals: the earlier last push ranks higher.
	board := l.Leaderboard(2)
	require.Len(t, board, 2)
	assert.Equal(t, int64(2), board[0].UserID)
	assert.Equal(t, int64(1), board[1].UserID)
}

func TestUserRank(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(time.Minute, 10, clock)

	for i := int64(1); i <= 3; i++ {
		for n := int64(0); n < i; n++ {
			l.RecordPush(i, "")
			clock.Advance(time.Minute)
		}
	}

	info, ok := l.UserRank(1)
	require.True(t, ok)
	assert.Equal(t, 3, info.Rank)
	assert.Equal(t, int64(1), info.TotalPushes)

	info, ok = l.UserRank(3)
	require.True(t, ok)
	assert.Equal(t, 1, info.Rank)

	_, ok = l.UserRank(999)
	assert.False(t, ok)
}

func TestCooldownStatus(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(30*time.Minute, 10, clock)

	status := l.CooldownStatus(1)
	assert.True(t, status.CanPush)
	assert.Zero(t, status.MinutesLeft)

	l.RecordPush(1, "Alice")
	status = l.CooldownStatus(1)
	assert.False(t, status.CanPush)
	assert.Equal(t, 30, status.MinutesLeft)

	clock.Advance(30 * time.Minute)
	status = l.CooldownStatus(1)
	assert.True(t, status.CanPush)
	assert.Zero(t, status.MinutesLeft)
}

func TestResetPeriodIsolation(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(time.Minute, 10, clock)

	for i := 0; i < 5; i++ {
		require.True(t, l.RecordPush(1, "Alice").Success)
		clock.Advance(time.Minute)
	}

	before := l.Leaderboard(1)[0]
	require.Equal(t, int64(5), before.TotalPushes)
	require.Equal(t, int64(5), before.PeriodPushes)

	l.ResetPeriod()
	l.ResetPeriod() // idempotent

	after := l.Leaderboard(1)[0]
	assert.Equal(t, int64(5), after.TotalPushes)
	assert.Equal(t, int64(50), after.PointsEarned)
	assert.Zero(t, after.PeriodPushes)
	assert.Equal(t, before.LastPush, after.LastPush)
}

func TestCurrentPeriodLeader(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	l := newTestLedger(time.Minute, 10, clock)

	_, ok := l.CurrentPeriodLeader()
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		l.RecordPush(1, "Alice")
		clock.Advance(time.Minute)
	}
	l.RecordPush(2, "Bob")
	clock.Advance(time.Minute)

	leader, ok := l.CurrentPeriodLeader()
	require.True(t, ok)
	assert.Equal(t, int64(1), leader.UserID)
	assert.Equal(t, "Alice", leader.DisplayName)
	assert.Equal(t, int64(3), leader.PeriodPushes)
	assert.Equal(t, int64(3), leader.TotalPushes)
	assert.Equal(t, 1, leader.Rank)

	l.ResetPeriod()
	_, ok = l.CurrentPeriodLeader()
	assert.False(t, ok)
}

func TestMirrorWorkerDeliversPushes(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	mirror := newRecordingMirror()
	l := NewLedger(30*time.Minute, 10, mirror, testLogger())
	l.now = clock.Now

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.RunMirrorWorker(ctx)

	res := l.RecordPush(1, "Alice")
	require.True(t, res.Success)

	select {
	case call := <-mirror.calls:
		assert.Equal(t, int64(1), call.userID)
		assert.Equal(t, "Alice", call.name)
		assert.Equal(t, int64(10), call.points)
	case <-time.After(2 * time.Second):
		t.Fatal("mirror attempt was never made")
	}

	// A rejected push must not be mirrored.
	require.False(t, l.RecordPush(1, "Alice").Success)
	select {
	case <-mirror.calls:
		t.Fatal("rejected push was mirrored")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	l := newTestLedger(30*time.Minute, 10, clock)

	res := l.RecordPush(1, "Alice")
	require.True(t, res.Success)
	assert.Equal(t, int64(1), res.TotalPushes)

	clock.Advance(10 * time.Minute)
	res = l.RecordPush(1, "Alice")
	require.False(t, res.Success)
	assert.Equal(t, 20, res.CooldownMinutes)

	clock.Advance(21 * time.Minute)
	res = l.RecordPush(1, "Alice")
	require.True(t, res.Success)
	assert.Equal(t, int64(2), res.TotalPushes)

	info, ok := l.UserRank(1)
	require.True(t, ok)
	assert.Equal(t, 1, info.Rank)
	assert.Equal(t, int64(2), info.TotalPushes)

	leader, ok := l.CurrentPeriodLeader()
	require.True(t, ok)
	assert.Equal(t, int64(1), leader.UserID)
	assert.Equal(t, int64(2), leader.PeriodPushes)

	l.ResetPeriod()
	_, ok = l.CurrentPeriodLeader()
	assert.False(t, ok)
}
