package state

import "time"

type StoreOpt func(*Store)

// WithRequestTimeout bounds every gateway call the store makes.
func WithRequestTimeout(d time.Duration) StoreOpt {
	return func(s *Store) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithPublisher sends every change to p as well as to in-process subscribers.
func WithPublisher(p Publisher) StoreOpt {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithClock replaces time.Now for message timestamps and change times.
func WithClock(now func() time.Time) StoreOpt {
	return func(s *Store) {
		s.now = now
	}
}
