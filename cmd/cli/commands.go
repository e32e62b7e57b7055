package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	hostID      string
	playerID    string
	playerName  string
	lobbyID     string
	targetID    string
	cardID      string
	rounds      int
	competitive bool
	dryRun      bool
)

func init() {
	createCmd.Flags().StringVar(&hostID, "host-id", "", "The player ID of the lobby host")
	createCmd.Flags().StringVar(&playerName, "name", "", "The host's display name")
	createCmd.Flags().IntVar(&rounds, "rounds", 5, "Number of rounds to play")
	createCmd.Flags().BoolVar(&competitive, "competitive", false, "Whether the game affects skill ratings")

	joinCmd.Flags().StringVar(&lobbyID, "lobby", "", "The lobby to join")
	joinCmd.Flags().StringVar(&playerID, "player", "", "The joining player's ID")
	joinCmd.Flags().StringVar(&playerName, "name", "", "The joining player's display name")

	submitCmd.Flags().StringVar(&lobbyID, "lobby", "", "The lobby to submit to")
	submitCmd.Flags().StringVar(&playerID, "player", "", "The submitting player's ID")
	submitCmd.Flags().StringVar(&cardID, "card", "", "The card to play")

	voteCmd.Flags().StringVar(&lobbyID, "lobby", "", "The lobby to vote in")
	voteCmd.Flags().StringVar(&playerID, "player", "", "The voting player's ID")
	voteCmd.Flags().StringVar(&targetID, "target", "", "The player to vote for")

	forceAdvanceCmd.Flags().StringVar(&lobbyID, "lobby", "", "The lobby to advance")
	forceAdvanceCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the transition without applying it")

	sweepCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log deletions without applying them")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(lobbiesCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(forceAdvanceCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var lobbiesCmd = &cobra.Command{
	Use:   "lobbies",
	Short: "List all lobbies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/lobbies")
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a lobby with the given host",
	RunE: func(cmd *cobra.Command, args []string) error {
		compType := "CASUAL"
		if competitive {
			compType = "COMPETITIVE"
		}
		return performPostRequest("/lobbies", map[string]any{
			"host_id":          hostID,
			"host_name":        playerName,
			"total_rounds":     rounds,
			"competition_type": compType,
		})
	},
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join an existing lobby",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/lobbies/join", map[string]any{
			"lobby_id":    lobbyID,
			"player_id":   playerID,
			"player_name": playerName,
		})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a card for the current round",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/submit", map[string]any{
			"lobby_id":  lobbyID,
			"player_id": playerID,
			"card_id":   cardID,
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote for another player's submission",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/vote", map[string]any{
			"lobby_id":  lobbyID,
			"voter_id":  playerID,
			"target_id": targetID,
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the skill rating leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var forceAdvanceCmd = &cobra.Command{
	Use:   "force-advance",
	Short: "Force a stalled lobby to the next phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/force-advance?lobbyID=" + lobbyID
		if dryRun {
			endpoint += "&dry_run=true"
		}
		return performGetRequest(endpoint)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete empty and abandoned lobbies",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/sweep"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body map[string]any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
