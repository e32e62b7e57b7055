package ai

// CardChoice is an AI player's submission decision.
type CardChoice struct {
	CardID     string  `json:"card_id"`
	CardName   string  `json:"card_name"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// VoteChoice is an AI player's voting decision.
type VoteChoice struct {
	TargetID   string  `json:"target_id"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Decider produces decisions for AI-controlled players. The engine only
// consumes the resulting writes, which are identical in shape to a human
// player's; how a decision is reached is the decider's business.
type Decider interface {
	ChooseCard(playerID, promptCardID string) (*CardChoice, error)
	ChooseVoteTarget(playerID string, candidateIDs []string) (*VoteChoice, error)
}
