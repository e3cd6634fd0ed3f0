package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kingmyco/mycobot/internal/contest"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the data access interface. Methods accept context.Context
// for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// TrackButtonPush mirrors a successful button push: it upserts the
	// user's profile, adds the awarded spores, and records an audit row.
	TrackButtonPush(ctx context.Context, userID int64, displayName string, points int64) error

	// SaveDailyWinner inserts a daily winner entry. Inserting a second
	// entry for the same win date is a successful no-op.
	SaveDailyWinner(ctx context.Context, w *contest.DailyWinner) error

	// DailyWinnerHistory returns winner entries ordered by win date
	// descending, capped at limit.
	DailyWinnerHistory(ctx context.Context, limit int) ([]contest.DailyWinner, error)

	// DailyWinsLeaderboard aggregates winner entries per user, ordered by
	// win count descending then most recent win.
	DailyWinsLeaderboard(ctx context.Context, limit int) ([]contest.WinsEntry, error)

	// AddSpores credits spores to a user, creating the profile if needed,
	// and records the transaction.
	AddSpores(ctx context.Context, userID int64, displayName string, amount int64, reason string) error

	// UserProfile fetches a profile. Returns ErrNotFound when absent.
	UserProfile(ctx context.Context, userID int64) (*UserProfile, error)

	// UserSpores returns a user's spore balance, zero when absent.
	UserSpores(ctx context.Context, userID int64) (int64, error)

	// UserSporeRank returns the user's 1-based rank by total spores.
	// Returns ErrNotFound when the user has no profile.
	UserSporeRank(ctx context.Context, userID int64) (int, int64, error)

	// SporeLeaderboard returns profiles ordered by total spores descending.
	SporeLeaderboard(ctx context.Context, limit int) ([]UserProfile, error)

	// CreateQuest stores a new quest and returns its generated ID.
	CreateQuest(ctx context.Context, userID int64, title, description string, reward int64) (string, error)

	// CompleteQuest marks a quest completed, pays out its reward, and
	// increments the user's completed-quest count.
	CompleteQuest(ctx context.Context, questID string, userID int64) (*Quest, error)

	// UserQuests lists a user's quests, optionally filtered by completion.
	UserQuests(ctx context.Context, userID int64, completed *bool) ([]Quest, error)

	// CommunityStats summarizes overall activity.
	CommunityStats(ctx context.Context) (*Stats, error)

	// GenerateWalletNonce creates and stores a fresh nonce for a wallet.
	GenerateWalletNonce(ctx context.Context, wallet string) (string, error)

	// VerifyWalletNonce checks a replayed nonce. This is an equality check
	// against the stored nonce, not signature verification.
	VerifyWalletNonce(ctx context.Context, wallet, nonce string) (bool, error)

	// RunSQLMaintenance performs database maintenance (VACUUM, ANALYZE).
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx over SQLite.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) TrackButtonPush(ctx context.Context, userID int64, displayName string, points int64) error {
	return s.AddSpores(ctx, userID, displayName, points, "button push")
}

func (s *sqlxStore) AddSpores(ctx context.Context, userID int64, displayName string, amount int64, reason string) error {
	if amount < 0 {
		return fmt.Errorf("spore amount must not be negative, got %d", amount)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, s.logger)

	_, err = tx.ExecContext(ctx, `
        INSERT INTO user_profiles (user_id, user_name, total_spores, quests_completed, created_at, updated_at)
        VALUES (?, ?, ?, 0, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            total_spores = total_spores + excluded.total_spores,
            user_name = CASE WHEN excluded.user_name != '' THEN excluded.user_name ELSE user_name END,
            updated_at = excluded.updated_at`,
		userID, displayName, amount, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %d: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO spore_transactions (user_id, amount, reason, created_at)
        VALUES (?, ?, ?, ?)`,
		userID, amount, reason, now)
	if err != nil {
		return fmt.Errorf("failed to record spore transaction for user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit spore award: %w", err)
	}
	return nil
}

func (s *sqlxStore) SaveDailyWinner(ctx context.Context, w *contest.DailyWinner) error {
	if w == nil {
		return errors.New("cannot save nil daily winner")
	}
	if err := contest.ValidateWinDate(w.WinDate); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
        INSERT INTO daily_winners (user_id, user_name, daily_pushes, total_pushes, overall_rank, win_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(win_date) DO NOTHING`,
		w.UserID, w.DisplayName, w.PeriodPushes, w.TotalPushes, w.Rank, w.WinDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save daily winner for %s: %w", w.WinDate, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.InfoContext(ctx, "Daily winner already recorded for date", "win_date", w.WinDate)
	}
	return nil
}

func (s *sqlxStore) DailyWinnerHistory(ctx context.Context, limit int) ([]contest.DailyWinner, error) {
	var history []contest.DailyWinner
	err := s.db.SelectContext(ctx, &history, `
        SELECT user_id, user_name, daily_pushes, total_pushes, overall_rank, win_date
        FROM daily_winners
        ORDER BY win_date DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily winner history: %w", err)
	}
	return history, nil
}

func (s *sqlxStore) DailyWinsLeaderboard(ctx context.Context, limit int) ([]contest.WinsEntry, error) {
	// SQLite's bare-column semantics with MAX() yield the user_name from
	// the row holding the most recent win date.
	var board []contest.WinsEntry
	err := s.db.SelectContext(ctx, &board, `
        SELECT user_id, user_name, COUNT(*) AS wins, MAX(win_date) AS last_win_date
        FROM daily_winners
        GROUP BY user_id
        ORDER BY wins DESC, last_win_date DESC, user_id ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate wins leaderboard: %w", err)
	}
	return board, nil
}

func (s *sqlxStore) UserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	var profile UserProfile
	err := s.db.GetContext(ctx, &profile, `SELECT * FROM user_profiles WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

func (s *sqlxStore) UserSpores(ctx context.Context, userID int64) (int64, error) {
	profile, err := s.UserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return profile.TotalSpores, nil
}

func (s *sqlxStore) UserSporeRank(ctx context.Context, userID int64) (int, int64, error) {
	profile, err := s.UserProfile(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	var rank int
	err = s.db.GetContext(ctx, &rank, `
        SELECT COUNT(*) + 1 FROM user_profiles
        WHERE total_spores > (SELECT total_spores FROM user_profiles WHERE user_id = ?)`,
		userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute spore rank for user %d: %w", userID, err)
	}
	return rank, profile.TotalSpores, nil
}

func (s *sqlxStore) SporeLeaderboard(ctx context.Context, limit int) ([]UserProfile, error) {
	var board []UserProfile
	err := s.db.SelectContext(ctx, &board, `
        SELECT * FROM user_profiles
        ORDER BY total_spores DESC, user_id ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spore leaderboard: %w", err)
	}
	return board, nil
}

func (s *sqlxStore) CreateQuest(ctx context.Context, userID int64, title, description string, reward int64) (string, error) {
	if title == "" {
		return "", errors.New("quest title is required")
	}
	if reward <= 0 {
		return "", fmt.Errorf("quest reward must be positive, got %d", reward)
	}

	questID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO quests (id, user_id, title, description, reward, completed, created_at)
        VALUES (?, ?, ?, ?, ?, 0, ?)`,
		questID, userID, title, description, reward, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create quest for user %d: %w", userID, err)
	}
	return questID, nil
}

func (s *sqlxStore) CompleteQuest(ctx context.Context, questID string, userID int64) (*Quest, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, s.logger)

	var quest Quest
	err = tx.GetContext(ctx, &quest, `SELECT * FROM quests WHERE id = ? AND user_id = ?`, questID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch quest %s: %w", questID, err)
	}
	if quest.Completed {
		return nil, fmt.Errorf("quest %s is already completed", questID)
	}

	_, err = tx.ExecContext(ctx, `UPDATE quests SET completed = 1, completed_at = ? WHERE id = ?`, now, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark quest %s completed: %w", questID, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO user_profiles (user_id, user_name, total_spores, quests_completed, created_at, updated_at)
        VALUES (?, '', ?, 1, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            total_spores = total_spores + excluded.total_spores,
            quests_completed = quests_completed + 1,
            updated_at = excluded.updated_at`,
		userID, quest.Reward, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to credit quest reward to user %d: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO spore_transactions (user_id, amount, reason, created_at)
        VALUES (?, ?, ?, ?)`,
		userID, quest.Reward, "quest completed: "+quest.Title, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record quest reward transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quest completion: %w", err)
	}

	quest.Completed = true
	quest.CompletedAt = sql.NullTime{Time: now, Valid: true}
	return &quest, nil
}

func (s *sqlxStore) UserQuests(ctx context.Context, userID int64, completed *bool) ([]Quest, error) {
	query := `SELECT * FROM quests WHERE user_id = ?`
	args := []any{userID}
	if completed != nil {
		query += ` AND completed = ?`
		args = append(args, *completed)
	}
	query += ` ORDER BY created_at DESC`

	var quests []Quest
	if err := s.db.SelectContext(ctx, &quests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quests for user %d: %w", userID, err)
	}
	return quests, nil
}

func (s *sqlxStore) CommunityStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
        SELECT
            (SELECT COUNT(*) FROM user_profiles) AS total_users,
            (SELECT COALESCE(SUM(total_spores), 0) FROM user_profiles) AS total_spores,
            (SELECT COUNT(*) FROM quests) AS total_quests,
            (SELECT COUNT(*) FROM daily_winners) AS days_with_wins`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute community stats: %w", err)
	}
	return &stats, nil
}

func (s *sqlxStore) GenerateWalletNonce(ctx context.Context, wallet string) (string, error) {
	if wallet == "" {
		return "", errors.New("wallet address is required")
	}

	nonce := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO wallet_nonces (wallet, nonce, created_at)
        VALUES (?, ?, ?)
        ON CONFLICT(wallet) DO UPDATE SET nonce = excluded.nonce, created_at = excluded.created_at`,
		wallet, nonce, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to store nonce for wallet %s: %w", wallet, err)
	}
	return nonce, nil
}

func (s *sqlxStore) VerifyWalletNonce(ctx context.Context, wallet, nonce string) (bool, error) {
	var stored string
	err := s.db.GetContext(ctx, &stored, `SELECT nonce FROM wallet_nonces WHERE wallet = ?`, wallet)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch nonce for wallet %s: %w", wallet, err)
	}
	return stored == nonce && nonce != "", nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, logger *slog.Logger) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("Error rolling back transaction", "error", err)
	}
}
