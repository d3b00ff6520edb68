package messaging

import "strings"

const (
	// StatePrefix roots every state change subject.
	StatePrefix = "companion.state"
	// AllStates matches every state change subject.
	AllStates = StatePrefix + ".>"
)

// StateSubject returns the subject carrying changes for a state key such as
// "world-map" or "chat.global".
func StateSubject(key string) string {
	return StatePrefix + "." + key
}

// StateKey is the inverse of StateSubject. It reports false for subjects
// outside StatePrefix.
func StateKey(subject string) (string, bool) {
	return strings.CutPrefix(subject, StatePrefix+".")
}

type bus interface {
	Publish(subject string, data []byte) error
}

// StatePublisher publishes state changes onto their per-key subjects.
type StatePublisher struct {
	server bus
}

// NewStatePublisher wraps a NatsServer for state change delivery.
func NewStatePublisher(server *NatsServer) *StatePublisher {
	return &StatePublisher{server: server}
}

func (p *StatePublisher) PublishState(key string, data []byte) error {
	return p.server.Publish(StateSubject(key), data)
}
