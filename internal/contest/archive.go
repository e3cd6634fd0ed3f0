package contest

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/kingmyco/mycobot/internal/metrics"
)

// WinnerStore is the durable-store collaborator for daily winner entries.
// SaveDailyWinner must treat a duplicate win date as a successful no-op.
type WinnerStore interface {
	SaveDailyWinner(ctx context.Context, w *DailyWinner) error
	DailyWinnerHistory(ctx context.Context, limit int) ([]DailyWinner, error)
	DailyWinsLeaderboard(ctx context.Context, limit int) ([]WinsEntry, error)
}

// Archive records one winner per period and serves historical and
// aggregate views. Reads prefer the durable store and degrade to the
// in-memory cache when the store is unreachable. The cache is append-ordered
// oldest-first.
type Archive struct {
	store        WinnerStore
	hydrateLimit int

	mu    sync.Mutex
	cache []DailyWinner

	log *slog.Logger
	now func() time.Time
}

// NewArchive creates a winner archive. store may be nil for a purely
// in-memory archive. When a store is configured the cache is hydrated from
// it asynchronously, exactly once, so later store outages degrade to the
// hydrated snapshot rather than an empty cache.
func NewArchive(store WinnerStore, hydrateLimit int, log *slog.Logger) *Archive {
	a := &Archive{
		store:        store,
		hydrateLimit: hydrateLimit,
		log:          log.With("component", "winner_archive"),
		now:          time.Now,
	}
	if store != nil {
		go a.hydrate(context.Background())
	}
	return a
}

func (a *Archive) hydrate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	history, err := a.store.DailyWinnerHistory(ctx, a.hydrateLimit)
	if err != nil {
		a.log.Error("Failed to hydrate winner cache from store", "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Store order is most-recent first; the cache is oldest first. Entries
	// archived before hydration finished win over their stored copies.
	existing := make(map[string]bool, len(a.cache))
	for _, w := range a.cache {
		existing[w.WinDate] = true
	}
	hydrated := make([]DailyWinner, 0, len(history)+len(a.cache))
	for i := len(history) - 1; i >= 0; i-- {
		if !existing[history[i].WinDate] {
			hydrated = append(hydrated, history[i])
		}
	}
	a.cache = append(hydrated, a.cache...)
	sort.SliceStable(a.cache, func(i, j int) bool { return a.cache[i].WinDate < a.cache[j].WinDate })

	a.log.Info("Winner cache hydrated from store", "entries", len(a.cache))
}

// ArchiveCurrentWinner records the given period leader under today's date.
// A nil leader is a no-op. Archiving the same date twice is idempotent: the
// cache append is skipped and the store insert is a conflict no-op. The
// store write is fire-and-forget; the cache append stands regardless.
func (a *Archive) ArchiveCurrentWinner(ctx context.Context, leader *PeriodLeader) error {
	if leader == nil {
		return nil
	}

	entry := DailyWinner{
		UserID:       leader.UserID,
		DisplayName:  leader.DisplayName,
		PeriodPushes: leader.PeriodPushes,
		TotalPushes:  leader.TotalPushes,
		Rank:         leader.Rank,
		WinDate:      a.now().UTC().Format(WinDateFormat),
	}
	if err := ValidateWinDate(entry.WinDate); err != nil {
		return err
	}

	a.mu.Lock()
	if a.hasDateLocked(entry.WinDate) {
		a.mu.Unlock()
		a.log.Info("Winner already archived for date, skipping", "win_date", entry.WinDate)
		return nil
	}
	a.cache = append(a.cache, entry)
	a.mu.Unlock()

	a.log.Info("Daily winner archived",
		"user_id", entry.UserID, "name", entry.DisplayName,
		"daily_pushes", entry.PeriodPushes, "win_date", entry.WinDate)
	metrics.WinnersArchivedTotal.Inc()

	if a.store != nil {
		go func() {
			persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := a.store.SaveDailyWinner(persistCtx, &entry); err != nil {
				a.log.Error("Failed to persist daily winner", "win_date", entry.WinDate, "error", err)
			}
		}()
	}

	return nil
}

// History returns up to limit winner entries, most recent first. The store
// is preferred; on failure the in-memory cache is served instead.
func (a *Archive) History(ctx context.Context, limit int) []DailyWinner {
	if a.store != nil {
		history, err := a.store.DailyWinnerHistory(ctx, limit)
		if err == nil {
			return history
		}
		a.log.Warn("Store history fetch failed, serving cache", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.cache)
	if limit >= 0 && limit < n {
		n = limit
	}
	// The cache is oldest first; serve the newest n entries reversed.
	out := make([]DailyWinner, 0, n)
	for i := len(a.cache) - 1; i >= len(a.cache)-n; i-- {
		out = append(out, a.cache[i])
	}
	return out
}

// WinsLeaderboard returns up to limit users ordered by number of daily wins.
// The store-side aggregation is preferred; on failure wins are counted from
// the cache, carrying each user's most recent name and win date. Ties order
// by most recent win first, then by user ID.
func (a *Archive) WinsLeaderboard(ctx context.Context, limit int) []WinsEntry {
	if a.store != nil {
		board, err := a.store.DailyWinsLeaderboard(ctx, limit)
		if err == nil {
			return board
		}
		a.log.Warn("Store wins aggregation failed, aggregating cache", "error", err)
	}

	a.mu.Lock()
	byUser := make(map[int64]*WinsEntry)
	for _, w := range a.cache {
		e, ok := byUser[w.UserID]
		if !ok {
			byUser[w.UserID] = &WinsEntry{
				UserID:      w.UserID,
				DisplayName: w.DisplayName,
				Wins:        1,
				LastWinDate: w.WinDate,
			}
			continue
		}
		e.Wins++
		// Safe string comparison: win dates are fixed-width ISO dates.
		if w.WinDate > e.LastWinDate {
			e.LastWinDate = w.WinDate
			e.DisplayName = w.DisplayName
		}
	}
	a.mu.Unlock()

	board := make([]WinsEntry, 0, len(byUser))
	for _, e := range byUser {
		board = append(board, *e)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Wins != board[j].Wins {
			return board[i].Wins > board[j].Wins
		}
		if board[i].LastWinDate != board[j].LastWinDate {
			return board[i].LastWinDate > board[j].LastWinDate
		}
		return board[i].UserID < board[j].UserID
	})

	if limit >= 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

// HasEntryForDate reports whether the cache already holds a winner for the
// given date. This is a cheap caller-side pre-check; the store's UNIQUE
// constraint remains the authoritative de-duplication.
func (a *Archive) HasEntryForDate(date string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasDateLocked(date)
}

func (a *Archive) hasDateLocked(date string) bool {
	for _, w := range a.cache {
		if w.WinDate == date {
			return true
		}
	}
	return false
}
