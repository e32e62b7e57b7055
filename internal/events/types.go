package events

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. Each
// type maps to a topic with a push subscription back into the server.
type EventType string

const (
	EventSubmissionRecorded EventType = "submission-recorded"
	EventVoteRecorded       EventType = "vote-recorded"
	EventScoreRound         EventType = "score-round"
	EventPhaseChanged       EventType = "phase-changed"
)

// RoundEvent is the payload carried by every round-progression message.
// Handlers treat it as a hint only: they re-read authoritative state from
// the store, so duplicated or reordered deliveries are harmless.
type RoundEvent struct {
	LobbyID     string `msgpack:"lobby_id"`
	RoundNumber int    `msgpack:"round_number"`
	PlayerID    string `msgpack:"player_id,omitempty"`
	Phase       string `msgpack:"phase,omitempty"`
}
