package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cardclash/cardclash/internal/events"
	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/rating"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := r.URL.Query().Get("lobbyID")
		if lobbyID != "" {
			log.Info("Received request to clear a specific lobby", "lobbyID", lobbyID)
			s.Store.ClearLobby(lobbyID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared lobby %s from store!", lobbyID)
			log.Info("Successfully cleared lobby from store", "lobbyID", lobbyID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

// LobbiesHandler lists lobbies on GET and creates one on POST. The host
// is upserted and seated in the same request so a fresh client needs a
// single round trip to get a playable lobby.
func (s *Server) LobbiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			lobbies, err := s.Store.GetAllLobbies()
			if err != nil {
				http.Error(w, "Failed to get lobbies", http.StatusInternalServerError)
				log.Error("Failed to get lobbies from store", "error", err)
				return
			}
			writeJSON(w, lobbies)
		case http.MethodPost:
			var req struct {
				HostID          string `json:"host_id"`
				HostName        string `json:"host_name"`
				TotalRounds     int    `json:"total_rounds"`
				CompetitionType string `json:"competition_type"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if req.HostID == "" {
				http.Error(w, "host_id is required", http.StatusBadRequest)
				return
			}
			if req.TotalRounds <= 0 {
				req.TotalRounds = 5
			}
			compType := game.Casual
			if req.CompetitionType == string(game.Competitive) {
				compType = game.Competitive
			}

			lob := &game.Lobby{
				ID:              uuid.NewString(),
				HostID:          req.HostID,
				TotalRounds:     req.TotalRounds,
				CompetitionType: compType,
				PromptCardID:    "prompt-1",
			}
			if err := s.Store.CreateLobby(lob); err != nil {
				http.Error(w, "Failed to create lobby", http.StatusInternalServerError)
				log.Error("Failed to create lobby", "error", err)
				return
			}
			if err := s.Store.UpsertPlayer(game.PlayerInfo{ID: req.HostID, Name: req.HostName, SkillRating: rating.DefaultRating}); err != nil {
				http.Error(w, "Failed to register host", http.StatusInternalServerError)
				log.Error("Failed to upsert host", "error", err)
				return
			}
			if err := s.Store.AddPlayerToLobby(lob.ID, req.HostID); err != nil {
				http.Error(w, "Failed to seat host", http.StatusInternalServerError)
				log.Error("Failed to seat host", "error", err)
				return
			}

			log.Info("Lobby created", "lobbyID", lob.ID, "hostID", req.HostID, "competitive", compType == game.Competitive)
			created, err := s.Store.GetLobby(lob.ID)
			if err != nil {
				http.Error(w, "Failed to load created lobby", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, created)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) JoinLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LobbyID    string `json:"lobby_id"`
			PlayerID   string `json:"player_id"`
			PlayerName string `json:"player_name"`
			IsAI       bool   `json:"is_ai"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.LobbyID == "" || req.PlayerID == "" {
			http.Error(w, "lobby_id and player_id are required", http.StatusBadRequest)
			return
		}

		lob, err := s.Store.GetLobby(req.LobbyID)
		if err != nil {
			http.Error(w, "Lobby not found", http.StatusNotFound)
			return
		}
		if lob.Phase != game.PhaseWaiting {
			http.Error(w, "Lobby already started", http.StatusConflict)
			return
		}

		if err := s.Store.UpsertPlayer(game.PlayerInfo{ID: req.PlayerID, Name: req.PlayerName, IsAI: req.IsAI, SkillRating: rating.DefaultRating}); err != nil {
			http.Error(w, "Failed to register player", http.StatusInternalServerError)
			log.Error("Failed to upsert player", "error", err)
			return
		}
		if err := s.Store.AddPlayerToLobby(req.LobbyID, req.PlayerID); err != nil {
			http.Error(w, "Failed to join lobby", http.StatusInternalServerError)
			log.Error("Failed to join lobby", "lobbyID", req.LobbyID, "playerID", req.PlayerID, "error", err)
			return
		}
		if err := s.Store.TouchActivity(req.LobbyID); err != nil {
			log.Error("Failed to touch lobby activity", "lobbyID", req.LobbyID, "error", err)
		}

		log.Info("Player joined lobby", "lobbyID", req.LobbyID, "playerID", req.PlayerID, "isAI", req.IsAI)
		w.Write([]byte("OK"))
	}
}

func (s *Server) GetLobbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := r.URL.Query().Get("lobbyID")
		if lobbyID == "" {
			http.Error(w, "lobbyID is required", http.StatusBadRequest)
			return
		}
		lob, err := s.Store.GetLobby(lobbyID)
		if err != nil {
			http.Error(w, "Lobby not found", http.StatusNotFound)
			return
		}
		roster, err := s.Store.GetRoster(lobbyID)
		if err != nil {
			http.Error(w, "Failed to get roster", http.StatusInternalServerError)
			log.Error("Failed to get roster", "lobbyID", lobbyID, "error", err)
			return
		}
		writeJSON(w, struct {
			Lobby  *game.Lobby       `json:"lobby"`
			Roster []game.PlayerInfo `json:"roster"`
		}{lob, roster})
	}
}

func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LobbyID  string `json:"lobby_id"`
			PlayerID string `json:"player_id"`
			CardID   string `json:"card_id"`
			CardName string `json:"card_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Engine.SubmitCard(req.LobbyID, req.PlayerID, req.CardID, req.CardName); err != nil {
			log.Warn("Submission rejected", "lobbyID", req.LobbyID, "playerID", req.PlayerID, "error", err)
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) VoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LobbyID  string `json:"lobby_id"`
			VoterID  string `json:"voter_id"`
			TargetID string `json:"target_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Engine.CastVote(req.LobbyID, req.VoterID, req.TargetID); err != nil {
			log.Warn("Vote rejected", "lobbyID", req.LobbyID, "voterID", req.VoterID, "error", err)
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) AbstainHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LobbyID  string `json:"lobby_id"`
			PlayerID string `json:"player_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Engine.Abstain(req.LobbyID, req.PlayerID); err != nil {
			log.Warn("Abstention rejected", "lobbyID", req.LobbyID, "playerID", req.PlayerID, "error", err)
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Write([]byte("OK"))
	}
}

// LeaderboardHandler returns a handler that serves the skill rating leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetRatingLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get rating leaderboard from store", "error", err)
			return
		}

		type entry struct {
			game.PlayerInfo
			Tier       string  `json:"tier"`
			Percentile float64 `json:"percentile"`
		}
		all, err := s.Store.GetAllRatings()
		if err != nil {
			http.Error(w, "Failed to get ratings", http.StatusInternalServerError)
			log.Error("Failed to get ratings from store", "error", err)
			return
		}
		entries := make([]entry, len(players))
		for i, p := range players {
			entries[i] = entry{
				PlayerInfo: p,
				Tier:       rating.TierFor(p.SkillRating).Name,
				Percentile: rating.Percentile(p.SkillRating, all),
			}
		}
		writeJSON(w, entries)
	}
}

// NotifyLeaderboardHandler posts the current rating leaderboard to the
// configured channel. Triggered on a schedule, not by clients.
func (s *Server) NotifyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetRatingLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get rating leaderboard from store", "error", err)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Notifier.SendRatingLeaderboard(players, isDryRun); err != nil {
			http.Error(w, "Failed to send leaderboard", http.StatusInternalServerError)
			log.Error("Failed to send rating leaderboard", "error", err)
			return
		}
		w.Write([]byte("OK"))
	}
}

// EstimateRatingHandler previews a player's possible rating outcomes for
// a lobby without committing anything. The optional position parameter
// sets the finish the expected case is computed for; it defaults to a
// mid-field finish.
func (s *Server) EstimateRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := r.URL.Query().Get("lobbyID")
		playerID := r.URL.Query().Get("playerID")
		if lobbyID == "" || playerID == "" {
			http.Error(w, "lobbyID and playerID are required", http.StatusBadRequest)
			return
		}

		roster, err := s.Store.GetRoster(lobbyID)
		if err != nil {
			http.Error(w, "Lobby not found", http.StatusNotFound)
			return
		}

		var player *game.PlayerInfo
		var opponents []int
		for i := range roster {
			if roster[i].ID == playerID {
				player = &roster[i]
			} else {
				opponents = append(opponents, roster[i].SkillRating)
			}
		}
		if player == nil {
			http.Error(w, "Player is not in lobby", http.StatusNotFound)
			return
		}

		position := (len(roster) + 1) / 2
		if raw := r.URL.Query().Get("position"); raw != "" {
			position, err = strconv.Atoi(raw)
			if err != nil || position < 1 || position > len(roster) {
				http.Error(w, fmt.Sprintf("position must be between 1 and %d", len(roster)), http.StatusBadRequest)
				return
			}
		}

		estimate, err := rating.EstimateRatingChange(player.SkillRating, player.GamesPlayed, position, len(roster), opponents)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, estimate)
	}
}

func (s *Server) OnSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evt, ok := s.decodePushEvent(w, r)
		if !ok {
			return
		}
		if err := s.Engine.HandleSubmissionRecorded(evt.LobbyID); err != nil {
			log.Error("Failed to handle submission event", "lobbyID", evt.LobbyID, "error", err)
			http.Error(w, "Failed to handle submission event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) OnVoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evt, ok := s.decodePushEvent(w, r)
		if !ok {
			return
		}
		if err := s.Engine.HandleVoteRecorded(evt.LobbyID); err != nil {
			log.Error("Failed to handle vote event", "lobbyID", evt.LobbyID, "error", err)
			http.Error(w, "Failed to handle vote event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) ScoreRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evt, ok := s.decodePushEvent(w, r)
		if !ok {
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Engine.ScoreRound(evt.LobbyID, isDryRun); err != nil {
			log.Error("Failed to score round", "lobbyID", evt.LobbyID, "error", err)
			http.Error(w, "Failed to score round", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// decodePushEvent unwraps a Pub/Sub push delivery: outer JSON envelope,
// base64 payload, MessagePack event. It writes the HTTP error itself and
// reports false when the body cannot be decoded.
func (s *Server) decodePushEvent(w http.ResponseWriter, r *http.Request) (*events.RoundEvent, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil, false
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}

	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil, false
	}

	evt := events.RoundEvent{}
	if err := s.Events.ProcessMessage(rawData, &evt); err != nil {
		log.Error("Failed to decode event payload", "error", err)
		http.Error(w, "Invalid event payload", http.StatusBadRequest)
		return nil, false
	}
	return &evt, true
}

func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		swept, err := s.Sweeper.Sweep(isDryRun)
		if err != nil {
			log.Error("Sweep failed", "error", err)
			http.Error(w, "Sweep failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Sweep completed. Deleted %d lobbies.\n", swept)
	}
}

func (s *Server) ForceAdvanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := r.URL.Query().Get("lobbyID")
		if lobbyID == "" {
			http.Error(w, "lobbyID is required", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Engine.ForceAdvance(lobbyID, isDryRun); err != nil {
			log.Error("Failed to force-advance lobby", "lobbyID", lobbyID, "error", err)
			http.Error(w, "Failed to force-advance lobby", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) AITurnHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID := r.URL.Query().Get("lobbyID")
		if lobbyID == "" {
			http.Error(w, "lobbyID is required", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Engine.PlayAITurns(lobbyID, isDryRun); err != nil {
			log.Error("Failed to play AI turns", "lobbyID", lobbyID, "error", err)
			http.Error(w, "Failed to play AI turns", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
