package events

// Publisher defines the interface for emitting and decoding round events.
type Publisher interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
