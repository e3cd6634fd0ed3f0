package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingmyco/mycobot/internal/contest"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func winner(userID int64, name, date string) *contest.DailyWinner {
	return &contest.DailyWinner{
		UserID:       userID,
		DisplayName:  name,
		PeriodPushes: 5,
		TotalPushes:  12,
		Rank:         1,
		WinDate:      date,
	}
}

func TestTrackButtonPushAccumulates(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.TrackButtonPush(ctx, 1, "Alice", 10))
	require.NoError(t, s.TrackButtonPush(ctx, 1, "Alice", 10))

	spores, err := s.UserSpores(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), spores)

	profile, err := s.UserProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.UserName)
}

func TestTrackButtonPushKeepsNameOnEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.TrackButtonPush(ctx, 1, "Alice", 10))
	require.NoError(t, s.AddSpores(ctx, 1, "", 5, "bonus"))

	profile, err := s.UserProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.UserName)
	assert.Equal(t, int64(15), profile.TotalSpores)
}

func TestSaveDailyWinnerIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDailyWinner(ctx, winner(1, "Alice", "2025-06-01")))
	require.NoError(t, s.SaveDailyWinner(ctx, winner(2, "Bob", "2025-06-01")))

	history, err := s.DailyWinnerHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].UserID)
}

func TestSaveDailyWinnerRejectsBadDate(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.SaveDailyWinner(context.Background(), winner(1, "Alice", "2025-6-1"))
	assert.Error(t, err)
}

func TestDailyWinnerHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDailyWinner(ctx, winner(1, "Alice", "2025-06-01")))
	require.NoError(t, s.SaveDailyWinner(ctx, winner(2, "Bob", "2025-06-03")))
	require.NoError(t, s.SaveDailyWinner(ctx, winner(3, "Carol", "2025-06-02")))

	history, err := s.DailyWinnerHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-06-03", history[0].WinDate)
	assert.Equal(t, "2025-06-02", history[1].WinDate)
}

func TestDailyWinsLeaderboardAggregation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDailyWinner(ctx, winner(1, "Alice", "2025-06-01")))
	require.NoError(t, s.SaveDailyWinner(ctx, winner(2, "Bob", "2025-06-02")))
	require.NoError(t, s.SaveDailyWinner(ctx, winner(1, "Alicia", "2025-06-03")))

	board, err := s.DailyWinsLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, int64(1), board[0].UserID)
	assert.Equal(t, int64(2), board[0].Wins)
	assert.Equal(t, "2025-06-03", board[0].LastWinDate)
	// The name travels with the most recent win.
	assert.Equal(t, "Alicia", board[0].DisplayName)

	assert.Equal(t, int64(2), board[1].UserID)
	assert.Equal(t, int64(1), board[1].Wins)
}

func TestUserSporeRank(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddSpores(ctx, 1, "Alice", 100, "test"))
	require.NoError(t, s.AddSpores(ctx, 2, "Bob", 50, "test"))
	require.NoError(t, s.AddSpores(ctx, 3, "Carol", 200, "test"))

	rank, spores, err := s.UserSporeRank(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.Equal(t, int64(100), spores)

	_, _, err = s.UserSporeRank(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuestLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	questID, err := s.CreateQuest(ctx, 1, "Spread spores", "Tell a friend about the grove", 50)
	require.NoError(t, err)
	require.NotEmpty(t, questID)

	quest, err := s.CompleteQuest(ctx, questID, 1)
	require.NoError(t, err)
	assert.True(t, quest.Completed)
	assert.True(t, quest.CompletedAt.Valid)

	// Completing twice is an error, and pays out only once.
	_, err = s.CompleteQuest(ctx, questID, 1)
	assert.Error(t, err)

	spores, err := s.UserSpores(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), spores)

	profile, err := s.UserProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.QuestsCompleted)

	done := true
	quests, err := s.UserQuests(ctx, 1, &done)
	require.NoError(t, err)
	require.Len(t, quests, 1)

	pending := false
	quests, err = s.UserQuests(ctx, 1, &pending)
	require.NoError(t, err)
	assert.Empty(t, quests)
}

func TestCompleteQuestWrongUser(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	questID, err := s.CreateQuest(ctx, 1, "Spread spores", "", 50)
	require.NoError(t, err)

	_, err = s.CompleteQuest(ctx, questID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWalletNonceRoundtrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	nonce, err := s.GenerateWalletNonce(ctx, "So1anaWallet")
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	ok, err := s.VerifyWalletNonce(ctx, "So1anaWallet", nonce)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyWalletNonce(ctx, "So1anaWallet", "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.VerifyWalletNonce(ctx, "UnknownWallet", nonce)
	require.NoError(t, err)
	assert.False(t, ok)

	// Regenerating replaces the old nonce.
	fresh, err := s.GenerateWalletNonce(ctx, "So1anaWallet")
	require.NoError(t, err)
	ok, err = s.VerifyWalletNonce(ctx, "So1anaWallet", nonce)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.VerifyWalletNonce(ctx, "So1anaWallet", fresh)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCommunityStats(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddSpores(ctx, 1, "Alice", 100, "test"))
	require.NoError(t, s.AddSpores(ctx, 2, "Bob", 50, "test"))
	_, err := s.CreateQuest(ctx, 1, "Quest", "", 10)
	require.NoError(t, err)
	require.NoError(t, s.SaveDailyWinner(ctx, winner(1, "Alice", "2025-06-01")))

	stats, err := s.CommunityStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(150), stats.TotalSpores)
	assert.Equal(t, int64(1), stats.TotalQuests)
	assert.Equal(t, int64(1), stats.DaysWithWins)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.NoError(t, s.RunSQLMaintenance(context.Background()))
}
