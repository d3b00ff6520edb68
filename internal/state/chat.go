package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
)

// FetchMessages replaces the whole collection for ch with what the gateway
// returns. Messages tagged with another channel are dropped. Anything sent
// locally but missing from the response is gone afterwards.
func (s *Store) FetchMessages(ctx context.Context, ch bitcraft.Channel) (bool, error) {
	t, ok := s.chat[ch]
	if !ok {
		return false, fmt.Errorf("unknown channel %q", ch)
	}

	q := gateway.Query{Domain: gateway.DomainChatRead, Params: gateway.Params{Channel: ch}}
	return refresh(ctx, s, t, q, func(ctx context.Context, msgs []bitcraft.ChatMessage) []bitcraft.ChatMessage {
		kept := make([]bitcraft.ChatMessage, 0, len(msgs))
		for _, m := range msgs {
			if m.Channel == ch {
				kept = append(kept, m)
			}
		}
		if dropped := len(msgs) - len(kept); dropped > 0 {
			slog.DebugContext(ctx, "dropped messages from other channels", "channel", ch, "count", dropped)
		}
		return kept
	}), nil
}

// SendMessage appends text to ch at once, attributed to the logged in user,
// then posts it. A failed post is logged; the local message stays.
func (s *Store) SendMessage(ctx context.Context, ch bitcraft.Channel, text string) (bitcraft.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return bitcraft.ChatMessage{}, ErrEmptyMessage
	}
	t, ok := s.chat[ch]
	if !ok {
		return bitcraft.ChatMessage{}, fmt.Errorf("unknown channel %q", ch)
	}
	sess, ok := s.sessions.Current()
	if !ok {
		return bitcraft.ChatMessage{}, ErrNoSession
	}

	msg := bitcraft.ChatMessage{
		Id:        s.newId(),
		Sender:    sess.Id,
		Message:   text,
		Timestamp: s.now(),
		Channel:   ch,
	}

	next := t.update(func(q *QueryState[[]bitcraft.ChatMessage]) {
		msgs := append(slices.Clone(q.Get()), msg)
		q.Value = &msgs
	})
	s.notify(ctx, t.key, next.Status, next.ErrorMessage)

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	q := gateway.Query{Domain: gateway.DomainChatWrite, Params: gateway.Params{Channel: ch, Message: text}}
	if _, err := s.gateway.Request(ctx, q); err != nil {
		slog.WarnContext(ctx, "posting chat message", "channel", ch, "id", msg.Id, "error", err)
	}

	return msg, nil
}

// Messages returns the state of ch. An unknown channel yields an Idle state.
func (s *Store) Messages(ch bitcraft.Channel) QueryState[[]bitcraft.ChatMessage] {
	t, ok := s.chat[ch]
	if !ok {
		return QueryState[[]bitcraft.ChatMessage]{}
	}
	return t.snapshot()
}

func newMessageId() string {
	return uuid.New().String()
}
