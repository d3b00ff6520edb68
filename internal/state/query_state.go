package state

import "sync"

// QueryState is the local view of one domain. A Failed state still carries a
// value: the substitute data shown in place of the live result.
type QueryState[T any] struct {
	Value        *T
	Status       Status
	ErrorMessage string
}

// HasValue reports whether there is anything to render.
func (q QueryState[T]) HasValue() bool {
	return q.Value != nil
}

// Get returns the value or the zero T.
func (q QueryState[T]) Get() T {
	if q.Value == nil {
		var zero T
		return zero
	}
	return *q.Value
}

// tracked guards one domain. Only the goroutine that moved it to Loading may
// settle it.
type tracked[T any] struct {
	key string

	mu    sync.Mutex
	state QueryState[T]
}

func newTracked[T any](key string) *tracked[T] {
	return &tracked[T]{key: key}
}

// begin moves the domain to Loading. It reports false when a load is already
// in flight.
func (t *tracked[T]) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Status == StatusLoading {
		return false
	}
	t.state.Status = StatusLoading
	t.state.ErrorMessage = ""
	return true
}

// settle replaces the state wholesale.
func (t *tracked[T]) settle(next QueryState[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = next
}

// update applies fn to the current value under the lock and returns the result.
func (t *tracked[T]) update(fn func(*QueryState[T])) QueryState[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.state)
	return t.state
}

func (t *tracked[T]) snapshot() QueryState[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}
