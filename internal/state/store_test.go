package state

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
	"github.com/pixil98/bitcraft-companion/internal/session"
	"github.com/pixil98/bitcraft-companion/internal/storage"
	"github.com/pixil98/bitcraft-companion/internal/substitute"
	"github.com/pixil98/go-testutil"
)

// fakeGateway validates queries the way the real client does, then answers
// through respond. A nil respond serves the sample payloads as live data.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []gateway.Query
	respond func(ctx context.Context, q gateway.Query) (json.RawMessage, error)
}

func (g *fakeGateway) Request(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.calls = append(g.calls, q)
	g.mu.Unlock()

	if g.respond == nil {
		return substitute.Provider{}.Substitute(q), nil
	}
	return g.respond(ctx, q)
}

func (g *fakeGateway) count(d gateway.Domain) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, q := range g.calls {
		if q.Domain == d {
			n++
		}
	}
	return n
}

func failing(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
	return nil, &gateway.Error{Kind: gateway.ErrUnavailable, Domain: q.Domain, Err: errors.New("upstream returned 502 Bad Gateway")}
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []Change
}

func (p *fakePublisher) PublishState(key string, data []byte) error {
	var c Change
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func newTestStore(t *testing.T, gw gateway.Requester, loggedIn bool, opts ...StoreOpt) (*Store, *session.Store) {
	t.Helper()

	sessions := session.New(context.Background(), storage.NewMemorySlots())
	if loggedIn {
		if _, err := sessions.Login(context.Background(), "alice", "pw"); err != nil {
			t.Fatalf("logging in: %v", err)
		}
	}
	return New(gw, substitute.Provider{}, sessions, opts...), sessions
}

// settled reports the status of the tracked domain q names and whether it
// holds a value.
func settled(s *Store, q gateway.Query) (Status, bool) {
	switch q.Domain {
	case gateway.DomainWorldMap:
		st := s.WorldMap()
		return st.Status, st.HasValue()
	case gateway.DomainClaims:
		st := s.Claims()
		return st.Status, st.HasValue()
	case gateway.DomainEmpires:
		st := s.Empires()
		return st.Status, st.HasValue()
	case gateway.DomainResources:
		st := s.Resources()
		return st.Status, st.HasValue()
	case gateway.DomainServerStatus:
		st := s.ServerStatus()
		return st.Status, st.HasValue()
	case gateway.DomainOnlinePlayers:
		st := s.OnlinePlayers()
		return st.Status, st.HasValue()
	case gateway.DomainPlayerSearch:
		st := s.PlayerSearch()
		return st.Status, st.HasValue()
	case gateway.DomainChatRead:
		st := s.Messages(q.Params.Channel)
		return st.Status, st.HasValue()
	}
	return StatusIdle, false
}

var trackedQueries = map[string]gateway.Query{
	"world map":      {Domain: gateway.DomainWorldMap},
	"claims":         {Domain: gateway.DomainClaims},
	"empires":        {Domain: gateway.DomainEmpires},
	"resources":      {Domain: gateway.DomainResources, Params: gateway.Params{X: "10", Y: "20"}},
	"server status":  {Domain: gateway.DomainServerStatus},
	"online players": {Domain: gateway.DomainOnlinePlayers},
	"player search":  {Domain: gateway.DomainPlayerSearch, Params: gateway.Params{Query: "play"}},
	"global chat":    {Domain: gateway.DomainChatRead, Params: gateway.Params{Channel: bitcraft.ChannelGlobal}},
	"empire chat":    {Domain: gateway.DomainChatRead, Params: gateway.Params{Channel: bitcraft.ChannelEmpire}},
}

func TestStore_Refresh_AlwaysSettlesWithValue(t *testing.T) {
	gateways := map[string]struct {
		respond   func(context.Context, gateway.Query) (json.RawMessage, error)
		loggedIn  bool
		expStatus Status
	}{
		"live":        {loggedIn: true, expStatus: StatusReady},
		"unavailable": {respond: failing, loggedIn: true, expStatus: StatusFailed},
		"undecodable": {
			respond: func(context.Context, gateway.Query) (json.RawMessage, error) {
				return json.RawMessage(`"not an object"`), nil
			},
			loggedIn:  true,
			expStatus: StatusFailed,
		},
	}

	for gwName, gwc := range gateways {
		for qName, q := range trackedQueries {
			t.Run(gwName+"/"+qName, func(t *testing.T) {
				s, _ := newTestStore(t, &fakeGateway{respond: gwc.respond}, gwc.loggedIn)

				ran, err := s.Refresh(context.Background(), q)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, "ran", ran, true)

				status, hasValue := settled(s, q)
				testutil.AssertEqual(t, "status", status, gwc.expStatus)
				testutil.AssertEqual(t, "has value", hasValue, true)
			})
		}
	}
}

func TestStore_Refresh_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{respond: func(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
		close(started)
		<-release
		return substitute.Provider{}.Substitute(q), nil
	}}
	s, _ := newTestStore(t, gw, true)

	done := make(chan bool)
	go func() { done <- s.RefreshWorldMap(context.Background(), "") }()

	<-started
	testutil.AssertEqual(t, "status while loading", s.WorldMap().Status, StatusLoading)
	testutil.AssertEqual(t, "second refresh", s.RefreshWorldMap(context.Background(), ""), false)

	close(release)
	testutil.AssertEqual(t, "first refresh", <-done, true)

	testutil.AssertEqual(t, "gateway calls", gw.count(gateway.DomainWorldMap), 1)
	testutil.AssertEqual(t, "status", s.WorldMap().Status, StatusReady)
}

func TestStore_Refresh_DomainsAreIndependent(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{respond: func(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
		if q.Domain == gateway.DomainWorldMap {
			<-release
		}
		return substitute.Provider{}.Substitute(q), nil
	}}
	s, _ := newTestStore(t, gw, true)

	done := make(chan bool)
	go func() { done <- s.RefreshWorldMap(context.Background(), "") }()

	testutil.AssertEqual(t, "server status", s.RefreshServerStatus(context.Background()), true)
	testutil.AssertEqual(t, "server status state", s.ServerStatus().Status, StatusReady)

	close(release)
	<-done
}

func TestStore_Refresh_WorldMapServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Internal server error"}`))
	}))
	defer srv.Close()

	client, err := gateway.NewClient(srv.URL+"/api", "token")
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	s, _ := newTestStore(t, client, true)

	s.RefreshWorldMap(context.Background(), "")

	st := s.WorldMap()
	testutil.AssertEqual(t, "status", st.Status, StatusFailed)
	testutil.AssertEqual(t, "size", st.Get().Size, bitcraft.Size{Width: 1000, Height: 1000})
	if len(st.Get().Claims) < 2 {
		t.Errorf("expected at least 2 sample claims, got %d", len(st.Get().Claims))
	}
	testutil.AssertEqual(t, "value", st.Get().Id, substitute.WorldMap().Id)
	if st.ErrorMessage == "" {
		t.Error("expected an error message")
	}
}

func TestStore_Refresh_Deadline(t *testing.T) {
	gw := &fakeGateway{respond: func(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, &gateway.Error{Kind: gateway.ErrUnavailable, Domain: q.Domain, Err: ctx.Err()}
	}}
	s, _ := newTestStore(t, gw, true, WithRequestTimeout(20*time.Millisecond))

	s.RefreshServerStatus(context.Background())

	st := s.ServerStatus()
	testutil.AssertEqual(t, "status", st.Status, StatusFailed)
	testutil.AssertEqual(t, "value", st.Get().Status, substitute.ServerStatus().Status)
	testutil.AssertErrorContains(t, errors.New(st.ErrorMessage), "deadline exceeded")
}

func TestStore_Refresh_UnknownVariant(t *testing.T) {
	tests := map[string]struct {
		payload string
		expErr  string
	}{
		"unknown status": {
			payload: `[{"id":"c1","name":"Keep","status":"besieged"}]`,
			expErr:  `unknown claim status "besieged"`,
		},
		"missing status": {
			payload: `[{"id":"c1","name":"Keep"}]`,
			expErr:  `unknown claim status ""`,
		},
		"missing resource type": {
			payload: `[{"id":"c1","name":"Keep","status":"active","resources":[{"id":"r1"}]}]`,
			expErr:  `unknown resource type ""`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{respond: func(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
				return json.RawMessage(tt.payload), nil
			}}
			s, sessions := newTestStore(t, gw, true)

			s.RefreshClaims(context.Background())

			st := s.Claims()
			testutil.AssertEqual(t, "status", st.Status, StatusFailed)
			testutil.AssertErrorContains(t, errors.New(st.ErrorMessage), tt.expErr)
			testutil.AssertEqual(t, "substitute claims", len(st.Get()), len(substitute.Claims()))

			sess, _ := sessions.Current()
			testutil.AssertEqual(t, "holdings untouched", len(sess.Claims), 0)
		})
	}
}

func TestStore_RefreshClaims(t *testing.T) {
	tests := map[string]struct {
		loggedIn  bool
		expStatus Status
		expCalls  int
		expErr    string
	}{
		"logged in": {
			loggedIn:  true,
			expStatus: StatusReady,
			expCalls:  1,
		},
		"logged out": {
			expStatus: StatusFailed,
			expErr:    "user_id is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{}
			s, sessions := newTestStore(t, gw, tt.loggedIn)

			s.RefreshClaims(context.Background())

			st := s.Claims()
			testutil.AssertEqual(t, "status", st.Status, tt.expStatus)
			testutil.AssertEqual(t, "calls", gw.count(gateway.DomainClaims), tt.expCalls)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, errors.New(st.ErrorMessage), tt.expErr)
				return
			}

			sess, _ := sessions.Current()
			testutil.AssertEqual(t, "claim ids", len(sess.Claims), len(st.Get()))
			testutil.AssertEqual(t, "first id", sess.Claims[0], st.Get()[0].Id)
			testutil.AssertEqual(t, "user id", gw.calls[0].Params.UserId, sess.Id)
		})
	}
}

func TestStore_RefreshEmpires_RecordsHoldings(t *testing.T) {
	s, sessions := newTestStore(t, &fakeGateway{}, true)

	s.RefreshEmpires(context.Background())

	sess, _ := sessions.Current()
	testutil.AssertEqual(t, "empire ids", len(sess.Empires), len(substitute.Empires()))
	testutil.AssertEqual(t, "claims untouched", len(sess.Claims), 0)
}

func TestStore_Refresh_UserChangesMidFetch(t *testing.T) {
	tests := map[string]struct {
		domain  gateway.Domain
		payload string
		refresh func(s *Store) bool
	}{
		"claims": {
			domain:  gateway.DomainClaims,
			payload: `[{"id":"alice-claim","name":"Keep","status":"active","resources":[]}]`,
			refresh: func(s *Store) bool { return s.RefreshClaims(context.Background()) },
		},
		"empires": {
			domain:  gateway.DomainEmpires,
			payload: `[{"id":"alice-empire","name":"Guild","members":[],"claims":[]}]`,
			refresh: func(s *Store) bool { return s.RefreshEmpires(context.Background()) },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			gw := &fakeGateway{respond: func(ctx context.Context, q gateway.Query) (json.RawMessage, error) {
				if q.Domain == tt.domain {
					close(started)
					<-release
				}
				return json.RawMessage(tt.payload), nil
			}}
			s, sessions := newTestStore(t, gw, true)

			done := make(chan bool)
			go func() { done <- tt.refresh(s) }()

			<-started
			sessions.Logout(context.Background())
			if _, err := sessions.Login(context.Background(), "bob", "pw"); err != nil {
				t.Fatalf("logging in: %v", err)
			}
			close(release)
			testutil.AssertEqual(t, "refreshed", <-done, true)

			cur, _ := sessions.Current()
			testutil.AssertEqual(t, "username", cur.Username, "bob")
			testutil.AssertEqual(t, "claims", len(cur.Claims), 0)
			testutil.AssertEqual(t, "empires", len(cur.Empires), 0)
		})
	}
}

func TestStore_Refresh_FailureKeepsHoldings(t *testing.T) {
	s, sessions := newTestStore(t, &fakeGateway{}, true)
	s.RefreshClaims(context.Background())
	before, _ := sessions.Current()

	s.gateway = &fakeGateway{respond: failing}
	s.RefreshClaims(context.Background())

	after, _ := sessions.Current()
	testutil.AssertEqual(t, "claims", len(after.Claims), len(before.Claims))
}

func TestStore_Refresh_Untracked(t *testing.T) {
	tests := map[string]gateway.Query{
		"chat write":    {Domain: gateway.DomainChatWrite},
		"single claim":  {Domain: gateway.DomainClaim, Params: gateway.Params{Id: "c1"}},
		"unset channel": {Domain: gateway.DomainChatRead},
	}

	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{}
			s, _ := newTestStore(t, gw, true)

			ran, err := s.Refresh(context.Background(), q)
			if err == nil {
				t.Fatal("expected an error")
			}
			testutil.AssertEqual(t, "ran", ran, false)
			testutil.AssertEqual(t, "calls", len(gw.calls), 0)
		})
	}
}

func TestStore_Lookup(t *testing.T) {
	live, _ := newTestStore(t, &fakeGateway{}, true)
	st := live.LookupClaim(context.Background(), "sample-claim-1")
	testutil.AssertEqual(t, "live status", st.Status, StatusReady)
	testutil.AssertEqual(t, "live id", st.Get().Id, substitute.Claim().Id)

	down, _ := newTestStore(t, &fakeGateway{respond: failing}, true)
	est := down.LookupEmpire(context.Background(), "e1")
	testutil.AssertEqual(t, "failed status", est.Status, StatusFailed)
	testutil.AssertEqual(t, "substitute id", est.Get().Id, substitute.Empire().Id)

	bad := down.LookupClaim(context.Background(), "../etc")
	testutil.AssertEqual(t, "invalid id status", bad.Status, StatusFailed)
	testutil.AssertErrorContains(t, errors.New(bad.ErrorMessage), "not a valid identifier")
}

func TestStore_Changes(t *testing.T) {
	pub := &fakePublisher{}
	s, _ := newTestStore(t, &fakeGateway{respond: failing}, true, WithPublisher(pub))

	var seen []Change
	unsubscribe := s.Subscribe(func(c Change) { seen = append(seen, c) })

	s.RefreshWorldMap(context.Background(), "")
	unsubscribe()
	s.RefreshWorldMap(context.Background(), "")

	testutil.AssertEqual(t, "subscriber changes", len(seen), 2)
	testutil.AssertEqual(t, "first", seen[0].Status, StatusLoading)
	testutil.AssertEqual(t, "second", seen[1].Status, StatusFailed)
	testutil.AssertEqual(t, "key", seen[1].Key, KeyWorldMap)
	if seen[1].ErrorMessage == "" {
		t.Error("expected failure message on change")
	}

	testutil.AssertEqual(t, "published changes", len(pub.changes), 4)
	testutil.AssertEqual(t, "published status", pub.changes[3].Status, StatusFailed)
}
