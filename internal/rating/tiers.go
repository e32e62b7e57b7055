package rating

// Tier is a named rating band used for display and post-match summaries.
type Tier struct {
	Name       string `json:"name"`
	MinRating  int    `json:"min_rating"`
	MaxRating  int    `json:"max_rating"`
	Percentile int    `json:"percentile"`
}

// tiers is ordered highest first; TierFor iterates from the top and
// returns the first band whose floor the rating reaches.
var tiers = []Tier{
	{Name: "Master", MinRating: 2400, MaxRating: MaxRating, Percentile: 99},
	{Name: "Diamond", MinRating: 2000, MaxRating: 2399, Percentile: 95},
	{Name: "Platinum", MinRating: 1600, MaxRating: 1999, Percentile: 85},
	{Name: "Gold", MinRating: 1200, MaxRating: 1599, Percentile: 65},
	{Name: "Silver", MinRating: 800, MaxRating: 1199, Percentile: 40},
	{Name: "Bronze", MinRating: MinRating, MaxRating: 799, Percentile: 15},
}

// TierFor returns the tier a rating falls into. Ratings below the Bronze
// floor still report Bronze, since committed ratings are clamped anyway.
func TierFor(rating int) Tier {
	for _, t := range tiers {
		if rating >= t.MinRating {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Tiers returns the full tier table, highest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Percentile returns the share of the population strictly below the given
// rating, as a 0-100 value. An empty population reports the median.
func Percentile(rating int, allRatings []int) float64 {
	if len(allRatings) == 0 {
		return 50
	}
	below := 0
	for _, r := range allRatings {
		if r < rating {
			below++
		}
	}
	return 100 * float64(below) / float64(len(allRatings))
}
