package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/metrics"
	"github.com/cardclash/cardclash/internal/notifier"
)

// slackClient is an interface containing the methods from slack.Client
// that we use. This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending announcements to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific client
// instance. Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", s.channelID, "timestamp", timestamp)
	return nil
}

// SendGameSummary announces the final standings of a finished match.
func (s *Notifier) SendGameSummary(summary *notifier.GameSummary, dryRun bool) error {
	msg := s.formatGameSummary(summary)
	return s.sendMessage(msg, dryRun)
}

// SendRatingLeaderboard posts the global skill rating leaderboard.
func (s *Notifier) SendRatingLeaderboard(players []game.PlayerInfo, dryRun bool) error {
	msg := s.formatRatingLeaderboard(players)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) formatGameSummary(summary *notifier.GameSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🃏 Game over! 🃏", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var lines []string
	medals := []string{"🥇", "🥈", "🥉"}
	for i, p := range summary.Standings {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		lines = append(lines, fmt.Sprintf("%s %s — %d points", medal, p.Name, p.Score))
	}
	standingsText := fmt.Sprintf("Final standings after %d rounds:\n%s", summary.TotalRounds, strings.Join(lines, "\n"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", standingsText, true, false), nil, nil))

	if len(summary.RatingChanges) > 0 {
		var ratingLines []string
		for _, rc := range summary.RatingChanges {
			delta := rc.NewRating - rc.OldRating
			sign := "+"
			if delta < 0 {
				sign = ""
			}
			ratingLines = append(ratingLines, fmt.Sprintf("• %s: %d (%s%d) — %s", rc.PlayerID, rc.NewRating, sign, delta, rc.Tier))
		}
		ratingText := "Rating changes:\n" + strings.Join(ratingLines, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", ratingText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatRatingLeaderboard(players []game.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Skill rating leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var lines []string
	for i, p := range players {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %d (%d games)", i+1, p.Name, p.SkillRating, p.GamesPlayed))
	}
	if len(lines) == 0 {
		lines = append(lines, "No rated players yet.")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
