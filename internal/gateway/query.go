package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
)

type Domain string

const (
	DomainWorldMap      Domain = "world-map"
	DomainClaims        Domain = "claims"
	DomainClaim         Domain = "claim"
	DomainEmpires       Domain = "empires"
	DomainEmpire        Domain = "empire"
	DomainResources     Domain = "resources"
	DomainServerStatus  Domain = "server-status"
	DomainOnlinePlayers Domain = "online-players"
	DomainPlayerSearch  Domain = "player-search"
	DomainChatRead      Domain = "chat-read"
	DomainChatWrite     Domain = "chat-write"
)

const (
	DefaultRadius = 100
	MaxRadius     = 1000
	DefaultLimit  = 10
	MaxLimit      = 100
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Params carries every domain-specific parameter. Numeric values arrive as
// text, the way a user or a screen supplies them, and are coerced locally.
type Params struct {
	Bounds  string
	UserId  string
	Id      string
	X       string
	Y       string
	Radius  string
	Query   string
	Limit   string
	Channel bitcraft.Channel
	Message string
}

type Query struct {
	Domain Domain
	Params Params
}

type route struct {
	method string
	path   []string
	values url.Values
	body   []byte
}

// build validates the query and turns it into a request description.
func (q Query) build() (*route, error) {
	p := q.Params
	r := &route{method: http.MethodGet, values: url.Values{}}

	switch q.Domain {
	case DomainWorldMap:
		r.path = []string{"bitcraft", "world-map"}
		if b := strings.TrimSpace(p.Bounds); b != "" {
			r.values.Set("bounds", b)
		}

	case DomainClaims, DomainEmpires:
		if strings.TrimSpace(p.UserId) == "" {
			return nil, invalidParams(q.Domain, "user_id is required")
		}
		r.path = []string{"bitcraft", string(q.Domain)}
		r.values.Set("user_id", p.UserId)

	case DomainClaim, DomainEmpire:
		if !idPattern.MatchString(p.Id) {
			return nil, invalidParams(q.Domain, "id %q is not a valid identifier", p.Id)
		}
		r.path = []string{"bitcraft", string(q.Domain) + "s", p.Id}

	case DomainResources:
		x, err := parseInt(q.Domain, "x", p.X, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		y, err := parseInt(q.Domain, "y", p.Y, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		radius, err := parseInt(q.Domain, "radius", p.Radius, intPtr(DefaultRadius), 1, MaxRadius)
		if err != nil {
			return nil, err
		}
		r.path = []string{"bitcraft", "resources"}
		r.values.Set("x", strconv.Itoa(x))
		r.values.Set("y", strconv.Itoa(y))
		r.values.Set("radius", strconv.Itoa(radius))

	case DomainServerStatus:
		r.path = []string{"bitcraft", "server-status"}

	case DomainOnlinePlayers:
		r.path = []string{"bitcraft", "online-players"}

	case DomainPlayerSearch:
		text := strings.TrimSpace(p.Query)
		if text == "" {
			return nil, invalidParams(q.Domain, "search text is required")
		}
		limit, err := parseInt(q.Domain, "limit", p.Limit, intPtr(DefaultLimit), 1, MaxLimit)
		if err != nil {
			return nil, err
		}
		r.path = []string{"bitcraft", "search", "players"}
		r.values.Set("q", text)
		r.values.Set("limit", strconv.Itoa(limit))

	case DomainChatRead:
		if p.Channel == bitcraft.ChannelUnset {
			return nil, invalidParams(q.Domain, "channel is required")
		}
		r.path = []string{"chat", "messages"}
		r.values.Set("channel", p.Channel.String())

	case DomainChatWrite:
		if p.Channel == bitcraft.ChannelUnset {
			return nil, invalidParams(q.Domain, "channel is required")
		}
		if strings.TrimSpace(p.Message) == "" {
			return nil, invalidParams(q.Domain, "message is required")
		}
		body, err := json.Marshal(struct {
			Message string           `json:"message"`
			Channel bitcraft.Channel `json:"channel"`
		}{p.Message, p.Channel})
		if err != nil {
			return nil, invalidParams(q.Domain, "encoding body: %v", err)
		}
		r.method = http.MethodPost
		r.path = []string{"chat", "messages"}
		r.body = body

	default:
		return nil, invalidParams(q.Domain, "unknown domain %q", q.Domain)
	}

	return r, nil
}

// parseInt coerces text to an int. Blank text yields def when one is given.
// When max > 0 the value must fall within min..max.
func parseInt(d Domain, name, raw string, def *int, min, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if def == nil {
			return 0, invalidParams(d, "%s is required", name)
		}
		return *def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParams(d, "%s %q is not a valid number", name, raw)
	}
	if max > 0 && (v < min || v > max) {
		return 0, invalidParams(d, "%s must be between %d and %d, got %d", name, min, max, v)
	}
	return v, nil
}

func intPtr(i int) *int {
	return &i
}

func (d Domain) String() string {
	return string(d)
}

// Validate reports whether the query would be accepted without sending it.
func (q Query) Validate() error {
	_, err := q.build()
	return err
}

func (r *route) String() string {
	return fmt.Sprintf("%s /%s", r.method, strings.Join(r.path, "/"))
}
