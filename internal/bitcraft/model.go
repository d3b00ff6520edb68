package bitcraft

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Resource struct {
	Id          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ResourceType `json:"type"`
	Quantity    int          `json:"quantity"`
	MaxQuantity int          `json:"maxQuantity"`
	Coordinates Coordinates  `json:"coordinates"`
}

// Validate checks the resource's shape. Upstream data is never run through
// this; it exists for data the client produces itself.
func (r *Resource) Validate() error {
	el := errors.NewErrorList()

	if r.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if r.Type == ResourceTypeUnset {
		el.Add(fmt.Errorf("resource %q: type is required", r.Id))
	}
	if r.Quantity < 0 || r.Quantity > r.MaxQuantity {
		el.Add(fmt.Errorf("resource %q: quantity %d outside 0..%d", r.Id, r.Quantity, r.MaxQuantity))
	}

	return el.Err()
}

type Claim struct {
	Id          string      `json:"id"`
	Name        string      `json:"name"`
	Owner       string      `json:"owner"`
	Coordinates Coordinates `json:"coordinates"`
	Status      ClaimStatus `json:"status"`
	Resources   []Resource  `json:"resources"`
}

func (c *Claim) Validate() error {
	el := errors.NewErrorList()

	if c.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if c.Status == ClaimStatusUnset {
		el.Add(fmt.Errorf("claim %q: status is required", c.Id))
	}
	for i := range c.Resources {
		el.Add(c.Resources[i].Validate())
	}

	return el.Err()
}

// WorldMap is an immutable snapshot; a refresh replaces it wholesale.
type WorldMap struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	Size      Size       `json:"size"`
	Claims    []Claim    `json:"claims"`
	Resources []Resource `json:"resources"`
}

func (m *WorldMap) Validate() error {
	el := errors.NewErrorList()

	if m.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if m.Size.Width <= 0 || m.Size.Height <= 0 {
		el.Add(fmt.Errorf("size must be positive, got %dx%d", m.Size.Width, m.Size.Height))
	}
	for i := range m.Claims {
		el.Add(m.Claims[i].Validate())
	}
	for i := range m.Resources {
		el.Add(m.Resources[i].Validate())
	}

	return el.Err()
}

type Member struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Empire struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
	Claims  []Claim  `json:"claims"`
}

func (e *Empire) Validate() error {
	el := errors.NewErrorList()

	if e.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	for _, m := range e.Members {
		if m.Id == "" {
			el.Add(fmt.Errorf("empire %q: member id is required", e.Id))
		}
	}
	for i := range e.Claims {
		el.Add(e.Claims[i].Validate())
	}

	return el.Err()
}

type ChatMessage struct {
	Id        string    `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Channel   Channel   `json:"channel"`
}

func (m *ChatMessage) Validate() error {
	el := errors.NewErrorList()

	if m.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if m.Sender == "" {
		el.Add(fmt.Errorf("message %q: sender is required", m.Id))
	}
	if m.Channel == ChannelUnset {
		el.Add(fmt.Errorf("message %q: channel is required", m.Id))
	}
	if m.Timestamp.IsZero() {
		el.Add(fmt.Errorf("message %q: timestamp is required", m.Id))
	}

	return el.Err()
}

type ServerStatus struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

func (s *ServerStatus) Validate() error {
	if s.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

type Player struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

func (p *Player) Validate() error {
	el := errors.NewErrorList()

	if p.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if p.Username == "" {
		el.Add(fmt.Errorf("player %q: username is required", p.Id))
	}

	return el.Err()
}

// Session is the locally held authenticated identity. Claims and empires are
// referenced by id only.
type Session struct {
	Id       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Claims   []string `json:"claims"`
	Empires  []string `json:"empires"`
}

func (s *Session) Validate() error {
	el := errors.NewErrorList()

	if s.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if s.Username == "" {
		el.Add(fmt.Errorf("username is required"))
	}

	return el.Err()
}
