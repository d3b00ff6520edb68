package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
	"github.com/pixil98/bitcraft-companion/internal/session"
)

const DefaultRequestTimeout = 10 * time.Second

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoSession    = errors.New("not logged in")
)

// Substituter supplies the fallback payload for a failed query.
type Substituter interface {
	Substitute(q gateway.Query) json.RawMessage
}

// Publisher carries state changes off-process.
type Publisher interface {
	PublishState(key string, data []byte) error
}

// Change describes one state transition. Values are read through the store's
// accessors; the change only says which domain moved and where to.
type Change struct {
	Key          string    `json:"key"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// Store holds the client's view of every tracked domain. Stored values are
// never mutated in place, so snapshots handed to callers stay stable.
type Store struct {
	gateway    gateway.Requester
	substitute Substituter
	sessions   *session.Store
	publisher  Publisher

	requestTimeout time.Duration
	now            func() time.Time
	newId          func() string

	worldMap      *tracked[bitcraft.WorldMap]
	claims        *tracked[[]bitcraft.Claim]
	empires       *tracked[[]bitcraft.Empire]
	resources     *tracked[[]bitcraft.Resource]
	serverStatus  *tracked[bitcraft.ServerStatus]
	onlinePlayers *tracked[[]bitcraft.Player]
	playerSearch  *tracked[[]bitcraft.Player]
	chat          map[bitcraft.Channel]*tracked[[]bitcraft.ChatMessage]

	subMu       sync.RWMutex
	subscribers map[int]func(Change)
	nextSub     int
}

func New(gw gateway.Requester, sub Substituter, sessions *session.Store, opts ...StoreOpt) *Store {
	s := &Store{
		gateway:        gw,
		substitute:     sub,
		sessions:       sessions,
		requestTimeout: DefaultRequestTimeout,
		now:            time.Now,
		newId:          newMessageId,

		worldMap:      newTracked[bitcraft.WorldMap](KeyWorldMap),
		claims:        newTracked[[]bitcraft.Claim](KeyClaims),
		empires:       newTracked[[]bitcraft.Empire](KeyEmpires),
		resources:     newTracked[[]bitcraft.Resource](KeyResources),
		serverStatus:  newTracked[bitcraft.ServerStatus](KeyServerStatus),
		onlinePlayers: newTracked[[]bitcraft.Player](KeyOnlinePlayers),
		playerSearch:  newTracked[[]bitcraft.Player](KeyPlayerSearch),
		chat:          make(map[bitcraft.Channel]*tracked[[]bitcraft.ChatMessage], len(bitcraft.Channels)),

		subscribers: map[int]func(Change){},
	}

	for _, ch := range bitcraft.Channels {
		s.chat[ch] = newTracked[[]bitcraft.ChatMessage](ChatKey(ch))
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Subscribe registers fn for every change. fn runs on the goroutine that made
// the change and must not block.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(ctx context.Context, key string, status Status, errMsg string) {
	c := Change{Key: key, Status: status, ErrorMessage: errMsg, At: s.now()}

	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}

	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		slog.ErrorContext(ctx, "encoding state change", "key", key, "error", err)
		return
	}
	if err := s.publisher.PublishState(key, data); err != nil {
		slog.DebugContext(ctx, "publishing state change", "key", key, "error", err)
	}
}
