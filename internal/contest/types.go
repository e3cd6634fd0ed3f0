// Package contest implements the button push contest engine: the
// cooldown-gated click ledger with its leaderboard, and the daily winner
// archive with its durable-store-backed history and wins standings.
package contest

import (
	"fmt"
	"time"
)

// WinDateFormat is the period key layout for daily winner entries. The
// fixed-width zero-padded form makes lexicographic order equal
// chronological order, which the wins aggregation relies on.
const WinDateFormat = "2006-01-02"

// Pusher is the live record for one contest participant. The ledger is the
// only writer; records are created on first push and never deleted.
type Pusher struct {
	UserID       int64
	DisplayName  string
	TotalPushes  int64
	PointsEarned int64
	PeriodPushes int64
	LastPush     time.Time
}

// PushResult is the outcome of a push attempt. A cooldown rejection is a
// normal result, not an error: Success is false and CooldownMinutes carries
// the whole minutes remaining until the user is eligible again.
type PushResult struct {
	Success         bool
	TotalPushes     int64
	PointsAwarded   int64
	CooldownMinutes int
}

// CooldownStatus reports push eligibility without mutating anything.
type CooldownStatus struct {
	CanPush     bool
	MinutesLeft int
}

// RankInfo is a user's 1-based position in the full all-time ordering.
type RankInfo struct {
	Rank        int
	TotalPushes int64
}

// PeriodLeader identifies the participant with the most pushes in the
// current period, annotated with their overall rank.
type PeriodLeader struct {
	UserID       int64
	DisplayName  string
	PeriodPushes int64
	TotalPushes  int64
	Rank         int
}

// DailyWinner is an archived period winner. Name, push counts, and rank are
// snapshots taken at archive time, not live references.
type DailyWinner struct {
	UserID       int64  `db:"user_id"`
	DisplayName  string `db:"user_name"`
	PeriodPushes int64  `db:"daily_pushes"`
	TotalPushes  int64  `db:"total_pushes"`
	Rank         int    `db:"overall_rank"`
	WinDate      string `db:"win_date"`
}

// WinsEntry is one row of the "most daily wins" standings.
type WinsEntry struct {
	UserID      int64  `db:"user_id"`
	DisplayName string `db:"user_name"`
	Wins        int64  `db:"wins"`
	LastWinDate string `db:"last_win_date"`
}

// ValidateWinDate checks that date is a canonical fixed-width ISO date.
func ValidateWinDate(date string) error {
	t, err := time.Parse(WinDateFormat, date)
	if err != nil {
		return fmt.Errorf("invalid win date %q: %w", date, err)
	}
	if t.Format(WinDateFormat) != date {
		return fmt.Errorf("invalid win date %q: not in canonical %s form", date, WinDateFormat)
	}
	return nil
}
