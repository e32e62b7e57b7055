package slack

import (
	"context"
	"errors"
	"testing"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/metrics"
	"github.com/cardclash/cardclash/internal/notifier"
)

type fakeSlackAPI struct {
	calls int
	err   error
}

func (f *fakeSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "ts-1", nil
}

func TestSendGameSummary(t *testing.T) {
	summary := &notifier.GameSummary{
		LobbyID:     "l1",
		TotalRounds: 5,
		Standings: []game.PlayerInfo{
			{ID: "p1", Name: "Alice", Score: 14},
			{ID: "p2", Name: "Bob", Score: 9},
		},
		RatingChanges: []notifier.RatingChange{
			{PlayerID: "p1", OldRating: 1000, NewRating: 1032, Tier: "Silver"},
		},
	}

	t.Run("posts to the channel", func(t *testing.T) {
		api := &fakeSlackAPI{}
		n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

		err := n.SendGameSummary(summary, false)
		require.NoError(t, err)
		assert.Equal(t, 1, api.calls)
	})

	t.Run("dry run skips the API", func(t *testing.T) {
		api := &fakeSlackAPI{}
		n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

		err := n.SendGameSummary(summary, true)
		require.NoError(t, err)
		assert.Equal(t, 0, api.calls)
	})

	t.Run("API errors are reported and counted", func(t *testing.T) {
		api := &fakeSlackAPI{err: errors.New("rate limited")}
		metr := metrics.NewMock()
		n := NewNotifierWithAPI(api, "C123", metr)

		err := n.SendGameSummary(summary, false)
		require.Error(t, err)
		assert.Equal(t, 1, metr.NotifFailedCount)
	})
}

func TestSendRatingLeaderboard(t *testing.T) {
	api := &fakeSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	err := n.SendRatingLeaderboard([]game.PlayerInfo{
		{ID: "p1", Name: "Alice", SkillRating: 1200, GamesPlayed: 20},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
}
