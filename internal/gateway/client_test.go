package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/go-testutil"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	agent  string
	body   string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, chan recordedRequest) {
	t.Helper()

	var hits atomic.Int32
	reqs := make(chan recordedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		reqs <- recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			agent:  r.Header.Get("User-Agent"),
			body:   string(b),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits, reqs
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOpt) *Client {
	t.Helper()

	c, err := NewClient(srv.URL+"/api", "secret-token", opts...)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	tests := map[string]struct {
		baseURL string
		token   string
		expErr  string
	}{
		"valid":          {baseURL: "http://localhost:3000/api", token: "t"},
		"missing token":  {baseURL: "http://localhost:3000/api", token: "  ", expErr: "gateway token is required"},
		"bad scheme":     {baseURL: "ftp://localhost/api", token: "t", expErr: "must be http or https"},
		"unparsable url": {baseURL: "http://[::1", token: "t", expErr: "parsing base url"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL, tt.token)
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestClient_Request_Success(t *testing.T) {
	srv, _, reqs := newTestServer(t, http.StatusOK, `{"success":true,"data":{"status":"online","players":3}}`)
	c := newTestClient(t, srv)

	data, err := c.Request(context.Background(), Query{Domain: DomainServerStatus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var status bitcraft.ServerStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	testutil.AssertEqual(t, "status", status.Status, "online")
	testutil.AssertEqual(t, "players", status.Players, 3)

	req := <-reqs
	testutil.AssertEqual(t, "method", req.method, http.MethodGet)
	testutil.AssertEqual(t, "path", req.path, "/api/bitcraft/server-status")
	testutil.AssertEqual(t, "auth", req.auth, "Bearer secret-token")
	testutil.AssertEqual(t, "agent", req.agent, DefaultClientId)
}

func TestClient_Request_SendsParams(t *testing.T) {
	srv, _, reqs := newTestServer(t, http.StatusOK, `{"success":true,"data":[]}`)
	c := newTestClient(t, srv, WithClientId("custom-client/2"))

	_, err := c.Request(context.Background(), Query{
		Domain: DomainResources,
		Params: Params{X: "10", Y: "20", Radius: " 50 "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := <-reqs
	testutil.AssertEqual(t, "path", req.path, "/api/bitcraft/resources")
	testutil.AssertEqual(t, "query", req.query, "radius=50&x=10&y=20")
	testutil.AssertEqual(t, "agent", req.agent, "custom-client/2")
}

func TestClient_Request_ChatWrite(t *testing.T) {
	srv, _, reqs := newTestServer(t, http.StatusOK, `{"success":true}`)
	c := newTestClient(t, srv)

	_, err := c.Request(context.Background(), Query{
		Domain: DomainChatWrite,
		Params: Params{Channel: bitcraft.ChannelGlobal, Message: "hello"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := <-reqs
	testutil.AssertEqual(t, "method", req.method, http.MethodPost)
	testutil.AssertEqual(t, "path", req.path, "/api/chat/messages")
	testutil.AssertEqual(t, "body", req.body, `{"message":"hello","channel":"global"}`)
}

func TestClient_Request_InvalidParamsNeverSent(t *testing.T) {
	srv, hits, _ := newTestServer(t, http.StatusOK, `{"success":true,"data":[]}`)
	c := newTestClient(t, srv)

	_, err := c.Request(context.Background(), Query{
		Domain: DomainPlayerSearch,
		Params: Params{Query: "bob", Limit: "lots"},
	})

	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	testutil.AssertEqual(t, "domain", gwErr.Domain, DomainPlayerSearch)
	testutil.AssertEqual(t, "hits", hits.Load(), int32(0))
}

func TestClient_Request_Unavailable(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		domain Domain
		expErr string
	}{
		"server error": {
			status: http.StatusInternalServerError,
			body:   `{"success":false,"error":"Failed to fetch world map data","message":"boom"}`,
			domain: DomainWorldMap,
			expErr: "upstream returned 500 Internal Server Error: Failed to fetch world map data: boom",
		},
		"server error without envelope": {
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			domain: DomainWorldMap,
			expErr: "upstream returned 502 Bad Gateway",
		},
		"not successful": {
			status: http.StatusOK,
			body:   `{"success":false,"error":"nope"}`,
			domain: DomainOnlinePlayers,
			expErr: "upstream: nope",
		},
		"not successful without reason": {
			status: http.StatusOK,
			body:   `{"success":false}`,
			domain: DomainOnlinePlayers,
			expErr: "request was not successful",
		},
		"null data": {
			status: http.StatusOK,
			body:   `{"success":true,"data":null}`,
			domain: DomainWorldMap,
			expErr: "response carried no data",
		},
		"malformed body": {
			status: http.StatusOK,
			body:   `{"success":tru`,
			domain: DomainServerStatus,
			expErr: "decoding response",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv, hits, _ := newTestServer(t, tt.status, tt.body)
			c := newTestClient(t, srv)

			_, err := c.Request(context.Background(), Query{Domain: tt.domain})

			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "hits", hits.Load(), int32(1))
		})
	}
}

func TestClient_Request_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Request(context.Background(), Query{Domain: DomainServerStatus})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Request_Deadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := c.Request(context.Background(), Query{Domain: DomainWorldMap})

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("request did not honor deadline")
	}
}

func TestClient_Request_RateLimited(t *testing.T) {
	srv, hits, _ := newTestServer(t, http.StatusOK, `{"success":true,"data":{"status":"online"}}`)
	c := newTestClient(t, srv, WithRateLimit(0.001, 1))

	_, err := c.Request(context.Background(), Query{Domain: DomainServerStatus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Request(ctx, Query{Domain: DomainServerStatus})

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	testutil.AssertErrorContains(t, err, "rate limiter")
	testutil.AssertEqual(t, "hits", hits.Load(), int32(1))
}
