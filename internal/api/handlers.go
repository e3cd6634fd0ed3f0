package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kingmyco/mycobot/internal/contest"
	"github.com/kingmyco/mycobot/internal/database"
)

const defaultLimit = 10

type leaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"userId"`
	UserName     string `json:"userName"`
	TotalPushes  int64  `json:"totalPushes"`
	PeriodPushes int64  `json:"dailyPushes"`
	Points       int64  `json:"points"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultLimit)

	board := s.ledger.Leaderboard(limit)
	entries := make([]leaderboardEntry, 0, len(board))
	for i, p := range board {
		entries = append(entries, leaderboardEntry{
			Rank:         i + 1,
			UserID:       p.UserID,
			UserName:     p.DisplayName,
			TotalPushes:  p.TotalPushes,
			PeriodPushes: p.PeriodPushes,
			Points:       p.PointsEarned,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "leaderboard": entries})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CommunityStats(r.Context())
	if err != nil {
		s.log.Error("Failed to load community stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultLimit)
	winners := s.archive.History(r.Context(), limit)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "winners": winnersView(winners)})
}

func (s *Server) handleChampions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultLimit)
	board := s.archive.WinsLeaderboard(r.Context(), limit)

	type championView struct {
		UserID      int64  `json:"userId"`
		UserName    string `json:"userName"`
		Wins        int64  `json:"wins"`
		LastWinDate string `json:"lastWinDate"`
	}
	champions := make([]championView, 0, len(board))
	for _, e := range board {
		champions = append(champions, championView{
			UserID:      e.UserID,
			UserName:    e.DisplayName,
			Wins:        e.Wins,
			LastWinDate: e.LastWinDate,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "champions": champions})
}

// handleResetDailyStats archives the current period leader, then zeroes all
// period counts. Archiving first means a crash between the two steps loses
// the reset, not the winner.
func (s *Server) handleResetDailyStats(w http.ResponseWriter, r *http.Request) {
	var archived *contest.PeriodLeader
	if leader, ok := s.ledger.CurrentPeriodLeader(); ok {
		if err := s.archive.ArchiveCurrentWinner(r.Context(), &leader); err != nil {
			s.log.Error("Failed to archive winner during manual reset", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to archive current winner")
			return
		}
		archived = &leader
	}

	s.ledger.ResetPeriod()
	s.log.Info("Daily stats reset via API", "winner_archived", archived != nil)

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"winner":  archived,
	})
}

func (s *Server) handleUserSpores(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	spores, err := s.store.UserSpores(r.Context(), userID)
	if err != nil {
		s.log.Error("Failed to load user spores", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load spores")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "userId": userID, "spores": spores})
}

func (s *Server) handleUserRank(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	rank, spores, err := s.store.UserSporeRank(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user has no profile")
			return
		}
		s.log.Error("Failed to load user rank", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load rank")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "userId": userID, "rank": rank, "spores": spores})
}

func (s *Server) handleUserQuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var completed *bool
	if v := r.URL.Query().Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		completed = &b
	}

	quests, err := s.store.UserQuests(r.Context(), userID, completed)
	if err != nil {
		s.log.Error("Failed to list quests", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list quests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "quests": quests})
}

func (s *Server) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64  `json:"userId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Reward      int64  `json:"reward"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID <= 0 || req.Title == "" || req.Reward <= 0 {
		respondError(w, http.StatusBadRequest, "userId, title, and a positive reward are required")
		return
	}

	questID, err := s.store.CreateQuest(r.Context(), req.UserID, req.Title, req.Description, req.Reward)
	if err != nil {
		s.log.Error("Failed to create quest", "user_id", req.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create quest")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "questId": questID})
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questID")

	var req struct {
		UserID int64 `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	quest, err := s.store.CompleteQuest(r.Context(), questID, req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "quest not found")
			return
		}
		s.log.Error("Failed to complete quest", "quest_id", questID, "error", err)
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "quest": quest})
}

func (s *Server) handleAwardSpores(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   int64  `json:"userId"`
		UserName string `json:"userName"`
		Amount   int64  `json:"amount"`
		Reason   string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID <= 0 || req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "userId and a positive amount are required")
		return
	}
	if req.Reason == "" {
		req.Reason = "manual award"
	}

	if err := s.store.AddSpores(r.Context(), req.UserID, req.UserName, req.Amount, req.Reason); err != nil {
		s.log.Error("Failed to award spores", "user_id", req.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to award spores")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleWalletNonce(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet string `json:"wallet"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Wallet == "" {
		respondError(w, http.StatusBadRequest, "wallet is required")
		return
	}

	nonce, err := s.store.GenerateWalletNonce(r.Context(), req.Wallet)
	if err != nil {
		s.log.Error("Failed to generate wallet nonce", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to generate nonce")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "nonce": nonce})
}

func (s *Server) handleWalletVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet string `json:"wallet"`
		Nonce  string `json:"nonce"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	verified, err := s.store.VerifyWalletNonce(r.Context(), req.Wallet, req.Nonce)
	if err != nil {
		s.log.Error("Failed to verify wallet nonce", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to verify nonce")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "verified": verified})
}

type winnerView struct {
	UserID      int64  `json:"userId"`
	UserName    string `json:"userName"`
	DailyPushes int64  `json:"dailyPushes"`
	TotalPushes int64  `json:"totalPushes"`
	Rank        int    `json:"rank"`
	WinDate     string `json:"winDate"`
}

func winnersView(winners []contest.DailyWinner) []winnerView {
	out := make([]winnerView, 0, len(winners))
	for _, dw := range winners {
		out = append(out, winnerView{
			UserID:      dw.UserID,
			UserName:    dw.DisplayName,
			DailyPushes: dw.PeriodPushes,
			TotalPushes: dw.TotalPushes,
			Rank:        dw.Rank,
			WinDate:     dw.WinDate,
		})
	}
	return out
}

// queryLimit parses a ?limit= parameter, falling back to def and capping at
// a sane maximum.
func queryLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return 0, false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"success": false, "error": msg})
}
