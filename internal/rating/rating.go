// Package rating implements the Elo-derivative skill rating engine used for
// competitive lobbies. All functions are pure; callers persist the results.
package rating

import (
	"fmt"
	"math"
)

const (
	// DefaultRating is the rating assigned to players before their first
	// competitive match.
	DefaultRating = 1000

	// MinRating and MaxRating bound every committed rating.
	MinRating = 100
	MaxRating = 3000

	// K-factor schedule: new players converge quickly, veterans stay stable.
	KFactorMax  = 64
	KFactorBase = 32
	KFactorMin  = 16

	kFactorProvisionalGames = 10
	kFactorSettledGames     = 50

	positionExponent = 0.7

	minMultiplier = 0.3
	maxMultiplier = 1.8

	minExpectedScore = 0.01
	maxExpectedScore = 0.99
)

// Calculation is the full breakdown of a single rating update, exposed so
// callers can log or display every factor that went into the change.
type Calculation struct {
	BaseRating            int     `json:"base_rating"`
	NewRating             int     `json:"new_rating"`
	RatingChange          int     `json:"rating_change"`
	KFactor               int     `json:"k_factor"`
	PositionMultiplier    float64 `json:"position_multiplier"`
	OpponentRatingAverage float64 `json:"opponent_rating_average"`
	ExpectedScore         float64 `json:"expected_score"`
	ActualScore           float64 `json:"actual_score"`
}

// Estimate previews the rating deltas for a match before it is scored.
// The Expected branch uses the same calculation path as the committed
// result, so preview and commit can never drift apart.
type Estimate struct {
	BestCase     int `json:"best_case"`
	WorstCase    int `json:"worst_case"`
	ExpectedCase int `json:"expected_case"`
}

// KFactor returns the volatility constant for a player with the given
// number of completed competitive games.
func KFactor(gamesPlayed int) int {
	switch {
	case gamesPlayed < kFactorProvisionalGames:
		return KFactorMax
	case gamesPlayed < kFactorSettledGames:
		return KFactorBase
	default:
		return KFactorMin
	}
}

// PositionMultiplier scales the rating change by finishing rank. First
// place is rewarded more than proportionally; last place is penalized but
// bounded.
func PositionMultiplier(position, totalPlayers int) float64 {
	normalized := normalizedPosition(position, totalPlayers)
	multiplier := 0.5 + math.Pow(normalized, positionExponent)
	return clampFloat(multiplier, minMultiplier, maxMultiplier)
}

// ExpectedScore is the standard logistic Elo expectation, clamped away
// from the degenerate 0 and 1 probabilities.
func ExpectedScore(rating int, opponentAverage float64) float64 {
	expected := 1.0 / (1.0 + math.Pow(10, (opponentAverage-float64(rating))/400.0))
	return clampFloat(expected, minExpectedScore, maxExpectedScore)
}

// ActualScore maps a finishing position onto [0,1]. The square root
// rewards top finishes more than a linear scale would.
func ActualScore(position, totalPlayers int) float64 {
	return math.Sqrt(normalizedPosition(position, totalPlayers))
}

// CalculateRatingChange computes the committed rating update for one
// player's finish. The reported change is post-clamp, so a player pinned
// at a bound reports the delta they actually received.
func CalculateRatingChange(currentRating, gamesPlayed, position, totalPlayers int, opponentRatings []int) (*Calculation, error) {
	if len(opponentRatings) == 0 {
		return nil, fmt.Errorf("no opponent ratings provided")
	}
	if position < 1 || position > totalPlayers {
		return nil, fmt.Errorf("position %d out of range [1, %d]", position, totalPlayers)
	}

	var sum int
	for _, r := range opponentRatings {
		sum += r
	}
	opponentAverage := float64(sum) / float64(len(opponentRatings))

	k := KFactor(gamesPlayed)
	multiplier := PositionMultiplier(position, totalPlayers)
	expected := ExpectedScore(currentRating, opponentAverage)
	actual := ActualScore(position, totalPlayers)

	rawChange := int(math.Round(float64(k) * (actual - expected) * multiplier))
	newRating := clampInt(currentRating+rawChange, MinRating, MaxRating)

	return &Calculation{
		BaseRating:            currentRating,
		NewRating:             newRating,
		RatingChange:          newRating - currentRating,
		KFactor:               k,
		PositionMultiplier:    multiplier,
		OpponentRatingAverage: opponentAverage,
		ExpectedScore:         expected,
		ActualScore:           actual,
	}, nil
}

// EstimateRatingChange previews the best-case (1st place), worst-case
// (last place) and expected-case deltas for a player's upcoming or
// in-progress match, given their anticipated finishing position.
func EstimateRatingChange(currentRating, gamesPlayed, expectedPosition, totalPlayers int, opponentRatings []int) (*Estimate, error) {
	best, err := CalculateRatingChange(currentRating, gamesPlayed, 1, totalPlayers, opponentRatings)
	if err != nil {
		return nil, err
	}
	worst, err := CalculateRatingChange(currentRating, gamesPlayed, totalPlayers, totalPlayers, opponentRatings)
	if err != nil {
		return nil, err
	}
	expected, err := CalculateRatingChange(currentRating, gamesPlayed, expectedPosition, totalPlayers, opponentRatings)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		BestCase:     best.RatingChange,
		WorstCase:    worst.RatingChange,
		ExpectedCase: expected.RatingChange,
	}, nil
}

// normalizedPosition maps position 1..totalPlayers onto [0,1], 1.0 for
// first place. A two-player match maps to exactly {1, 0}.
func normalizedPosition(position, totalPlayers int) float64 {
	if totalPlayers <= 1 {
		return 1.0
	}
	return float64(totalPlayers-position) / float64(totalPlayers-1)
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
