package database

import (
	"database/sql"
	"time"
)

// UserProfile holds a user's accumulated spore balance and quest progress.
// The button contest mirrors spore awards into this table; the in-memory
// ledger stays authoritative for live gameplay.
type UserProfile struct {
	UserID          int64     `db:"user_id" json:"userId"`
	UserName        string    `db:"user_name" json:"userName"`
	TotalSpores     int64     `db:"total_spores" json:"totalSpores"`
	QuestsCompleted int64     `db:"quests_completed" json:"questsCompleted"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
	UpdatedAt       time.Time `db:"updated_at" json:"-"`
}

// SporeTransaction is one audit-log row for a spore award.
type SporeTransaction struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Amount    int64     `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Quest is a community quest that pays out spores on completion.
type Quest struct {
	ID          string       `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"userId"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Reward      int64        `db:"reward" json:"reward"`
	Completed   bool         `db:"completed" json:"completed"`
	CompletedAt sql.NullTime `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}

// Stats summarizes overall community activity for the admin API.
type Stats struct {
	TotalUsers    int64 `db:"total_users" json:"totalUsers"`
	TotalSpores   int64 `db:"total_spores" json:"totalSpores"`
	TotalQuests   int64 `db:"total_quests" json:"totalQuests"`
	DaysWithWins  int64 `db:"days_with_wins" json:"daysWithWins"`
}
