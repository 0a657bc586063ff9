// Package server exposes the read-side query API and the nickname
// identity operations over JSON.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/repository"
	"bfmc-tracker/internal/service"
)

type StatsServer struct {
	leaderboard *service.LeaderboardService
	identity    *service.IdentityService
	logger      zerolog.Logger
}

func NewStatsServer(leaderboard *service.LeaderboardService, identity *service.IdentityService, logger zerolog.Logger) *StatsServer {
	return &StatsServer{leaderboard: leaderboard, identity: identity, logger: logger}
}

// Register mounts every route on the mux.
func (s *StatsServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/players", s.handleNicknames)
	mux.HandleFunc("GET /api/players/count", s.handlePlayerCount)
	mux.HandleFunc("GET /api/players/{nickname}", s.handleProfile)
	mux.HandleFunc("GET /api/leaderboard/{stat}", s.handleLeaderboard)
	mux.HandleFunc("GET /api/maps/most-played", s.handleMostPlayed)
	mux.HandleFunc("POST /api/nicknames/claim", s.handleClaim)
	mux.HandleFunc("POST /api/nicknames/color", s.handleColor)
	mux.HandleFunc("POST /api/nicknames/assign", s.handleAssign)
}

func (s *StatsServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	nickname := r.PathValue("nickname")

	profile, err := s.leaderboard.Profile(r.Context(), nickname)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "nickname has no recorded games")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *StatsServer) handleNicknames(w http.ResponseWriter, r *http.Request) {
	nicknames, err := s.leaderboard.Nicknames(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if nicknames == nil {
		nicknames = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"nicknames": nicknames})
}

func (s *StatsServer) handlePlayerCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.leaderboard.PlayerCount(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *StatsServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	stat := r.PathValue("stat")

	board, err := s.leaderboard.Leaderboard(r.Context(), stat)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownStat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, r, err)
		return
	}

	// page=N narrows the response to a single page; 0 or absent returns
	// the full board.
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		if page > len(board.Pages) {
			writeError(w, http.StatusNotFound, "page out of range")
			return
		}
		board.Pages = board.Pages[page-1 : page]
	}

	writeJSON(w, http.StatusOK, board)
}

func (s *StatsServer) handleMostPlayed(w http.ResponseWriter, r *http.Request) {
	gamemode := r.URL.Query().Get("gamemode")

	mapStats, err := s.leaderboard.MostPlayedMap(r.Context(), gamemode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGamemode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, r, err)
		return
	}
	if mapStats == nil {
		writeError(w, http.StatusNotFound, "no maps recorded for this gamemode yet")
		return
	}
	writeJSON(w, http.StatusOK, mapStats)
}

type claimRequest struct {
	Nickname   string `json:"nickname"`
	DiscordUID int64  `json:"discord_uid"`
}

func (s *StatsServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" || req.DiscordUID == 0 {
		writeError(w, http.StatusBadRequest, "nickname and discord_uid are required")
		return
	}

	if err := s.identity.Claim(r.Context(), req.Nickname, req.DiscordUID); err != nil {
		s.identityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "claimed"})
}

type colorRequest struct {
	Nickname   string `json:"nickname"`
	DiscordUID int64  `json:"discord_uid"`
	R          int    `json:"r"`
	G          int    `json:"g"`
	B          int    `json:"b"`
}

func (s *StatsServer) handleColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" || req.DiscordUID == 0 {
		writeError(w, http.StatusBadRequest, "nickname and discord_uid are required")
		return
	}

	err := s.identity.SetColor(r.Context(), req.Nickname, req.DiscordUID,
		domain.RGB{R: req.R, G: req.G, B: req.B})
	if err != nil {
		s.identityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type assignRequest struct {
	Nickname   string `json:"nickname"`
	DiscordUID int64  `json:"discord_uid"`
}

func (s *StatsServer) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	if err := s.identity.Assign(r.Context(), req.Nickname, req.DiscordUID); err != nil {
		s.identityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *StatsServer) identityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownNickname):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrHasClaim),
		errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func (s *StatsServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
