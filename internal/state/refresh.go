package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
)

// Refresh reloads the tracked domain q names. It reports false when that
// domain already had a load in flight. Chat writes and one-shot lookups are
// not tracked and return an error.
func (s *Store) Refresh(ctx context.Context, q gateway.Query) (bool, error) {
	p := q.Params
	switch q.Domain {
	case gateway.DomainWorldMap:
		return s.RefreshWorldMap(ctx, p.Bounds), nil
	case gateway.DomainClaims:
		return s.RefreshClaims(ctx), nil
	case gateway.DomainEmpires:
		return s.RefreshEmpires(ctx), nil
	case gateway.DomainResources:
		return s.RefreshResources(ctx, p.X, p.Y, p.Radius), nil
	case gateway.DomainServerStatus:
		return s.RefreshServerStatus(ctx), nil
	case gateway.DomainOnlinePlayers:
		return s.RefreshOnlinePlayers(ctx), nil
	case gateway.DomainPlayerSearch:
		return s.SearchPlayers(ctx, p.Query, p.Limit), nil
	case gateway.DomainChatRead:
		return s.FetchMessages(ctx, p.Channel)
	default:
		return false, fmt.Errorf("domain %q is not tracked", q.Domain)
	}
}

func (s *Store) RefreshWorldMap(ctx context.Context, bounds string) bool {
	q := gateway.Query{Domain: gateway.DomainWorldMap, Params: gateway.Params{Bounds: bounds}}
	return refresh(ctx, s, s.worldMap, q, nil)
}

// RefreshClaims loads the claims held by the logged in user and records their
// ids on the session, unless a different user has logged in meanwhile.
func (s *Store) RefreshClaims(ctx context.Context) bool {
	owner := s.userId()
	q := gateway.Query{Domain: gateway.DomainClaims, Params: gateway.Params{UserId: owner}}
	return refresh(ctx, s, s.claims, q, func(ctx context.Context, claims []bitcraft.Claim) []bitcraft.Claim {
		ids := make([]string, 0, len(claims))
		for _, c := range claims {
			ids = append(ids, c.Id)
		}
		s.sessions.SetHoldings(ctx, owner, ids, nil)
		return claims
	})
}

// RefreshEmpires loads the empires the logged in user belongs to.
func (s *Store) RefreshEmpires(ctx context.Context) bool {
	owner := s.userId()
	q := gateway.Query{Domain: gateway.DomainEmpires, Params: gateway.Params{UserId: owner}}
	return refresh(ctx, s, s.empires, q, func(ctx context.Context, empires []bitcraft.Empire) []bitcraft.Empire {
		ids := make([]string, 0, len(empires))
		for _, e := range empires {
			ids = append(ids, e.Id)
		}
		s.sessions.SetHoldings(ctx, owner, nil, ids)
		return empires
	})
}

// RefreshResources loads resources around x,y. Coordinates and radius are
// text as typed; a blank radius uses the gateway default.
func (s *Store) RefreshResources(ctx context.Context, x, y, radius string) bool {
	q := gateway.Query{Domain: gateway.DomainResources, Params: gateway.Params{X: x, Y: y, Radius: radius}}
	return refresh(ctx, s, s.resources, q, nil)
}

func (s *Store) RefreshServerStatus(ctx context.Context) bool {
	return refresh(ctx, s, s.serverStatus, gateway.Query{Domain: gateway.DomainServerStatus}, nil)
}

func (s *Store) RefreshOnlinePlayers(ctx context.Context) bool {
	return refresh(ctx, s, s.onlinePlayers, gateway.Query{Domain: gateway.DomainOnlinePlayers}, nil)
}

func (s *Store) SearchPlayers(ctx context.Context, text, limit string) bool {
	q := gateway.Query{Domain: gateway.DomainPlayerSearch, Params: gateway.Params{Query: text, Limit: limit}}
	return refresh(ctx, s, s.playerSearch, q, nil)
}

// LookupClaim reads a single claim. The result is not tracked.
func (s *Store) LookupClaim(ctx context.Context, id string) QueryState[bitcraft.Claim] {
	return resolve[bitcraft.Claim](ctx, s, gateway.Query{Domain: gateway.DomainClaim, Params: gateway.Params{Id: id}}, nil)
}

// LookupEmpire reads a single empire. The result is not tracked.
func (s *Store) LookupEmpire(ctx context.Context, id string) QueryState[bitcraft.Empire] {
	return resolve[bitcraft.Empire](ctx, s, gateway.Query{Domain: gateway.DomainEmpire, Params: gateway.Params{Id: id}}, nil)
}

func (s *Store) WorldMap() QueryState[bitcraft.WorldMap] {
	return s.worldMap.snapshot()
}

func (s *Store) Claims() QueryState[[]bitcraft.Claim] {
	return s.claims.snapshot()
}

func (s *Store) Empires() QueryState[[]bitcraft.Empire] {
	return s.empires.snapshot()
}

func (s *Store) Resources() QueryState[[]bitcraft.Resource] {
	return s.resources.snapshot()
}

func (s *Store) ServerStatus() QueryState[bitcraft.ServerStatus] {
	return s.serverStatus.snapshot()
}

func (s *Store) OnlinePlayers() QueryState[[]bitcraft.Player] {
	return s.onlinePlayers.snapshot()
}

func (s *Store) PlayerSearch() QueryState[[]bitcraft.Player] {
	return s.playerSearch.snapshot()
}

func (s *Store) userId() string {
	sess, ok := s.sessions.Current()
	if !ok {
		return ""
	}
	return sess.Id
}

// refresh runs one guarded load of t. accept, when set, sees live results
// only, never substitutes.
func refresh[T any](ctx context.Context, s *Store, t *tracked[T], q gateway.Query, accept func(context.Context, T) T) bool {
	if !t.begin() {
		slog.DebugContext(ctx, "load already in flight", "key", t.key)
		return false
	}
	s.notify(ctx, t.key, StatusLoading, "")

	next := resolve(ctx, s, q, accept)
	t.settle(next)

	s.notify(ctx, t.key, next.Status, next.ErrorMessage)
	return true
}

// resolve asks the gateway for q and falls back to substitute data on any
// failure, including payloads that do not decode.
func resolve[T any](ctx context.Context, s *Store, q gateway.Query, accept func(context.Context, T) T) QueryState[T] {
	v, err := load[T](ctx, s, q)
	if err == nil {
		if accept != nil {
			v = accept(ctx, v)
		}
		return QueryState[T]{Value: &v, Status: StatusReady}
	}

	slog.WarnContext(ctx, "using substitute data", "domain", q.Domain, "error", err)

	var sub T
	if derr := json.Unmarshal(s.substitute.Substitute(q), &sub); derr != nil {
		slog.ErrorContext(ctx, "decoding substitute data", "domain", q.Domain, "error", derr)
		return QueryState[T]{Status: StatusFailed, ErrorMessage: err.Error()}
	}
	return QueryState[T]{Value: &sub, Status: StatusFailed, ErrorMessage: err.Error()}
}

func load[T any](ctx context.Context, s *Store, q gateway.Query) (T, error) {
	var v T

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	raw, err := s.gateway.Request(ctx, q)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", q.Domain, err)
	}
	return v, nil
}
