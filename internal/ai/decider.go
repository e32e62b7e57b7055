package ai

import (
	"fmt"
	"hash/fnv"
)

// heuristicDecider is a deterministic stand-in for a real personality
// model: choices are derived from a hash of the inputs, so replays of the
// same round produce the same writes.
type heuristicDecider struct{}

// NewHeuristicDecider creates a Decider with no external dependencies.
func NewHeuristicDecider() Decider {
	return &heuristicDecider{}
}

func (d *heuristicDecider) ChooseCard(playerID, promptCardID string) (*CardChoice, error) {
	if playerID == "" {
		return nil, fmt.Errorf("missing player id")
	}
	n := hashOf(playerID + "|" + promptCardID)
	cardID := fmt.Sprintf("card-%s-%d", playerID, n%100)
	return &CardChoice{
		CardID:     cardID,
		CardName:   fmt.Sprintf("Card %d", n%100),
		Reasoning:  "best fit for the prompt from my hand",
		Confidence: 0.5 + float64(n%50)/100,
	}, nil
}

func (d *heuristicDecider) ChooseVoteTarget(playerID string, candidateIDs []string) (*VoteChoice, error) {
	var eligible []string
	for _, id := range candidateIDs {
		if id != playerID {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no eligible vote targets for player %s", playerID)
	}
	n := hashOf(playerID + "|" + fmt.Sprint(len(eligible)))
	return &VoteChoice{
		TargetID:   eligible[n%uint32(len(eligible))],
		Reasoning:  "funniest submission this round",
		Confidence: 0.5,
	}, nil
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
