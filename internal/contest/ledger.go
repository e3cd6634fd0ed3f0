package contest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/kingmyco/mycobot/internal/metrics"
)

// PushMirror is the durable-store collaborator for best-effort push
// mirroring. Duplicate mirrors are tolerated; the in-memory ledger stays
// authoritative for live gameplay.
type PushMirror interface {
	TrackButtonPush(ctx context.Context, userID int64, displayName string, points int64) error
}

const mirrorQueueSize = 256

type mirrorEvent struct {
	userID      int64
	displayName string
	points      int64
}

// Ledger owns the per-user push records: cooldown enforcement, point
// accrual, and ranking queries. All state is instance-owned; construct one
// ledger per contest.
type Ledger struct {
	mu      sync.Mutex
	pushers map[int64]*Pusher

	cooldown time.Duration
	points   int64

	mirror  PushMirror
	mirrors chan mirrorEvent

	log *slog.Logger
	now func() time.Time
}

// NewLedger creates a contest ledger. mirror may be nil, in which case
// pushes are not mirrored to a durable store.
func NewLedger(cooldown time.Duration, pointsPerPush int64, mirror PushMirror, log *slog.Logger) *Ledger {
	return &Ledger{
		pushers:  make(map[int64]*Pusher),
		cooldown: cooldown,
		points:   pointsPerPush,
		mirror:   mirror,
		mirrors:  make(chan mirrorEvent, mirrorQueueSize),
		log:      log.With("component", "contest_ledger"),
		now:      time.Now,
	}
}

// RecordPush attempts a push for the given user. The cooldown check and the
// record mutation happen under one lock so two near-simultaneous pushes
// cannot both observe "eligible". On success the push is queued for
// mirroring to the durable store; the caller's result never depends on
// store availability.
func (l *Ledger) RecordPush(userID int64, displayName string) PushResult {
	if displayName == "" {
		displayName = fmt.Sprintf("User %d", userID)
	}

	l.mu.Lock()
	now := l.now()

	p, exists := l.pushers[userID]
	if exists {
		if elapsed := now.Sub(p.LastPush); elapsed < l.cooldown {
			l.mu.Unlock()
			metrics.PushesRejectedTotal.Inc()
			return PushResult{
				Success:         false,
				CooldownMinutes: minutesCeil(l.cooldown - elapsed),
			}
		}
	} else {
		p = &Pusher{UserID: userID}
		l.pushers[userID] = p
	}

	p.DisplayName = displayName
	p.TotalPushes++
	p.PeriodPushes++
	p.PointsEarned += l.points
	p.LastPush = now
	total := p.TotalPushes
	l.mu.Unlock()

	metrics.PushesTotal.Inc()

	if l.mirror != nil {
		select {
		case l.mirrors <- mirrorEvent{userID: userID, displayName: displayName, points: l.points}:
		default:
			l.log.Warn("Mirror queue full, dropping push mirror", "user_id", userID)
			metrics.MirrorFailuresTotal.Inc()
		}
	}

	return PushResult{
		Success:       true,
		TotalPushes:   total,
		PointsAwarded: l.points,
	}
}

// RunMirrorWorker drains the outbound mirror queue into the durable store
// until ctx is cancelled. Mirror failures are logged and swallowed.
func (l *Ledger) RunMirrorWorker(ctx context.Context) error {
	if l.mirror == nil {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.mirrors:
			callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := l.mirror.TrackButtonPush(callCtx, ev.userID, ev.displayName, ev.points)
			cancel()
			if err != nil {
				l.log.Error("Failed to mirror push to store", "user_id", ev.userID, "error", err)
				metrics.MirrorFailuresTotal.Inc()
			}
		}
	}
}

// CooldownStatus reports whether the user may push right now. Users with no
// record are always eligible.
func (l *Ledger) CooldownStatus(userID int64) CooldownStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, exists := l.pushers[userID]
	if !exists {
		return CooldownStatus{CanPush: true}
	}

	elapsed := l.now().Sub(p.LastPush)
	if elapsed >= l.cooldown {
		return CooldownStatus{CanPush: true}
	}
	return CooldownStatus{CanPush: false, MinutesLeft: minutesCeil(l.cooldown - elapsed)}
}

// Leaderboard returns up to limit records ordered by total pushes
// descending. Ties order by earliest last push first, then by user ID, so
// repeated calls with no intervening pushes return the same sequence.
func (l *Ledger) Leaderboard(limit int) []Pusher {
	l.mu.Lock()
	board := l.sortedPushersLocked()
	l.mu.Unlock()

	if limit >= 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

// UserRank returns the user's 1-based position in the full ordering, or
// false if the user has never pushed.
func (l *Ledger) UserRank(userID int64) (RankInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.pushers[userID]; !exists {
		return RankInfo{}, false
	}

	for i, p := range l.sortedPushersLocked() {
		if p.UserID == userID {
			return RankInfo{Rank: i + 1, TotalPushes: p.TotalPushes}, true
		}
	}
	return RankInfo{}, false
}

// CurrentPeriodLeader returns the record with the most pushes this period,
// annotated with its overall rank. False when nobody has pushed this
// period. Ties break to the lowest user ID.
func (l *Ledger) CurrentPeriodLeader() (PeriodLeader, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var leader *Pusher
	for _, p := range l.pushers {
		if p.PeriodPushes == 0 {
			continue
		}
		if leader == nil || p.PeriodPushes > leader.PeriodPushes ||
			(p.PeriodPushes == leader.PeriodPushes && p.UserID < leader.UserID) {
			leader = p
		}
	}
	if leader == nil {
		return PeriodLeader{}, false
	}

	rank := 0
	for i, p := range l.sortedPushersLocked() {
		if p.UserID == leader.UserID {
			rank = i + 1
			break
		}
	}

	return PeriodLeader{
		UserID:       leader.UserID,
		DisplayName:  leader.DisplayName,
		PeriodPushes: leader.PeriodPushes,
		TotalPushes:  leader.TotalPushes,
		Rank:         rank,
	}, true
}

// ResetPeriod zeroes every record's period push count. Total pushes, points,
// and last push timestamps are untouched. Idempotent.
func (l *Ledger) ResetPeriod() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.pushers {
		p.PeriodPushes = 0
	}
	l.log.Info("Period push counts reset", "pushers", len(l.pushers))
}

// sortedPushersLocked snapshots all records in leaderboard order. Callers
// must hold l.mu.
func (l *Ledger) sortedPushersLocked() []Pusher {
	board := make([]Pusher, 0, len(l.pushers))
	for _, p := range l.pushers {
		board = append(board, *p)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].TotalPushes != board[j].TotalPushes {
			return board[i].TotalPushes > board[j].TotalPushes
		}
		if !board[i].LastPush.Equal(board[j].LastPush) {
			return board[i].LastPush.Before(board[j].LastPush)
		}
		return board[i].UserID < board[j].UserID
	})
	return board
}

func minutesCeil(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
