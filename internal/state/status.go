package state

import "fmt"

// Status is the lifecycle position of one tracked domain.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "loading":
		*s = StatusLoading
	case "ready":
		*s = StatusReady
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}
