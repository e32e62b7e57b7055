package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFactor(t *testing.T) {
	assert.Equal(t, KFactorMax, KFactor(0))
	assert.Equal(t, KFactorMax, KFactor(9))
	assert.Equal(t, KFactorBase, KFactor(10))
	assert.Equal(t, KFactorBase, KFactor(49))
	assert.Equal(t, KFactorMin, KFactor(50))
	assert.Equal(t, KFactorMin, KFactor(500))
}

func TestPositionMultiplier(t *testing.T) {
	t.Run("first place earns the top of the range", func(t *testing.T) {
		// normalized = 1, so 0.5 + 1^0.7 = 1.5
		assert.InDelta(t, 1.5, PositionMultiplier(1, 4), 0.0001)
	})

	t.Run("last place bottoms out at the floor", func(t *testing.T) {
		// normalized = 0, so raw 0.5, above the 0.3 floor
		assert.InDelta(t, 0.5, PositionMultiplier(4, 4), 0.0001)
	})

	t.Run("stays within clamp bounds for any rank", func(t *testing.T) {
		for total := 2; total <= 12; total++ {
			for pos := 1; pos <= total; pos++ {
				m := PositionMultiplier(pos, total)
				assert.GreaterOrEqual(t, m, 0.3)
				assert.LessOrEqual(t, m, 1.8)
			}
		}
	})
}

func TestExpectedScore(t *testing.T) {
	t.Run("even matchup is a coin flip", func(t *testing.T) {
		assert.InDelta(t, 0.5, ExpectedScore(1000, 1000), 0.0001)
	})

	t.Run("higher rating expects more", func(t *testing.T) {
		assert.Greater(t, ExpectedScore(1400, 1000), ExpectedScore(1000, 1000))
	})

	t.Run("clamped away from certainty", func(t *testing.T) {
		assert.Equal(t, 0.99, ExpectedScore(3000, 100))
		assert.Equal(t, 0.01, ExpectedScore(100, 3000))
	})
}

func TestActualScore(t *testing.T) {
	assert.InDelta(t, 1.0, ActualScore(1, 4), 0.0001)
	assert.InDelta(t, 0.0, ActualScore(4, 4), 0.0001)
	// sqrt rewards top finishes more than linear: 2nd of 3 scores above 0.5
	assert.Greater(t, ActualScore(2, 3), 0.5)
}

func TestCalculateRatingChange(t *testing.T) {
	t.Run("rejects empty opponent list", func(t *testing.T) {
		_, err := CalculateRatingChange(1000, 5, 1, 4, nil)
		require.Error(t, err)
	})

	t.Run("rejects out of range position", func(t *testing.T) {
		_, err := CalculateRatingChange(1000, 5, 0, 4, []int{1000, 1000, 1000})
		require.Error(t, err)
		_, err = CalculateRatingChange(1000, 5, 5, 4, []int{1000, 1000, 1000})
		require.Error(t, err)
	})

	t.Run("winning an even match gains rating", func(t *testing.T) {
		calc, err := CalculateRatingChange(1000, 5, 1, 4, []int{1000, 1000, 1000})
		require.NoError(t, err)
		assert.Positive(t, calc.RatingChange)
		assert.Equal(t, KFactorMax, calc.KFactor)
		assert.Equal(t, 1000.0, calc.OpponentRatingAverage)
		assert.Equal(t, calc.BaseRating+calc.RatingChange, calc.NewRating)
	})

	t.Run("finishing last in an even match loses rating", func(t *testing.T) {
		calc, err := CalculateRatingChange(1000, 5, 4, 4, []int{1000, 1000, 1000})
		require.NoError(t, err)
		assert.Negative(t, calc.RatingChange)
	})

	t.Run("reported change is post-clamp at the floor", func(t *testing.T) {
		calc, err := CalculateRatingChange(MinRating, 5, 4, 4, []int{2000, 2000, 2000})
		require.NoError(t, err)
		assert.Equal(t, MinRating, calc.NewRating)
		assert.Equal(t, 0, calc.RatingChange)
	})

	t.Run("rating never leaves bounds over a long streak", func(t *testing.T) {
		current := 2900
		games := 0
		for i := 0; i < 100; i++ {
			calc, err := CalculateRatingChange(current, games, 1, 4, []int{2900, 2900, 2900})
			require.NoError(t, err)
			current = calc.NewRating
			games++
			assert.GreaterOrEqual(t, current, MinRating)
			assert.LessOrEqual(t, current, MaxRating)
		}
		assert.Equal(t, MaxRating, current)
	})
}

func TestEstimateRatingChange(t *testing.T) {
	t.Run("expected branch matches the committed calculation", func(t *testing.T) {
		opponents := []int{1100, 950, 1020}
		est, err := EstimateRatingChange(1000, 12, 2, 4, opponents)
		require.NoError(t, err)

		calc, err := CalculateRatingChange(1000, 12, 2, 4, opponents)
		require.NoError(t, err)
		assert.Equal(t, calc.RatingChange, est.ExpectedCase)
	})

	t.Run("best case beats worst case", func(t *testing.T) {
		est, err := EstimateRatingChange(1000, 12, 2, 4, []int{1000, 1000, 1000})
		require.NoError(t, err)
		assert.Greater(t, est.BestCase, est.WorstCase)
	})

	t.Run("propagates invalid input", func(t *testing.T) {
		_, err := EstimateRatingChange(1000, 12, 9, 4, []int{1000})
		require.Error(t, err)
	})
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, "Bronze", TierFor(100).Name)
	assert.Equal(t, "Silver", TierFor(800).Name)
	assert.Equal(t, "Gold", TierFor(1599).Name)
	assert.Equal(t, "Platinum", TierFor(1600).Name)
	assert.Equal(t, "Diamond", TierFor(2000).Name)
	assert.Equal(t, "Master", TierFor(3000).Name)

	t.Run("monotonic over the whole rating range", func(t *testing.T) {
		tierRank := func(name string) int {
			for i, tier := range Tiers() {
				if tier.Name == name {
					return len(tiers) - i
				}
			}
			return 0
		}
		prev := 0
		for r := MinRating; r <= MaxRating; r += 50 {
			rank := tierRank(TierFor(r).Name)
			assert.GreaterOrEqual(t, rank, prev, "tier dropped at rating %d", r)
			prev = rank
		}
	})
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 50.0, Percentile(1200, nil))
	assert.InDelta(t, 100.0*2/3, Percentile(1000, []int{999, 999, 1001}), 0.0001)
	assert.Equal(t, 0.0, Percentile(100, []int{100, 200, 300}))
	assert.Equal(t, 100.0, Percentile(400, []int{100, 200, 300}))
}
