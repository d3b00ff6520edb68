// Package substitute supplies deterministic sample data for every gateway
// domain so callers always have a renderable value when the live call fails.
// Sample records carry a "sample-" id prefix.
package substitute

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
)

// referenceTime anchors sample timestamps so output never depends on the clock.
var referenceTime = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

// Provider has no state; the zero value is ready to use.
type Provider struct{}

// Substitute returns the sample payload for q's domain. Only the chat channel
// is consulted among the params, since each channel is tracked separately.
func (Provider) Substitute(q gateway.Query) json.RawMessage {
	var v any
	switch q.Domain {
	case gateway.DomainWorldMap:
		v = WorldMap()
	case gateway.DomainClaims:
		v = Claims()
	case gateway.DomainClaim:
		v = Claim()
	case gateway.DomainEmpires:
		v = Empires()
	case gateway.DomainEmpire:
		v = Empire()
	case gateway.DomainResources:
		v = Resources()
	case gateway.DomainServerStatus:
		v = ServerStatus()
	case gateway.DomainOnlinePlayers, gateway.DomainPlayerSearch:
		v = Players()
	case gateway.DomainChatRead:
		v = Messages(q.Params.Channel)
	default:
		v = struct{}{}
	}

	return mustMarshal(q.Domain, v)
}

func mustMarshal(d gateway.Domain, v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encoding sample %s: %v", d, err))
	}
	return b
}

func resource(id, name string, t bitcraft.ResourceType, qty, max, x, y int) bitcraft.Resource {
	return bitcraft.Resource{
		Id:          "sample-" + id,
		Name:        name,
		Type:        t,
		Quantity:    qty,
		MaxQuantity: max,
		Coordinates: bitcraft.Coordinates{X: x, Y: y},
	}
}

func Resources() []bitcraft.Resource {
	return []bitcraft.Resource{
		resource("wood", "Wood", bitcraft.ResourceTypeWood, 150, 200, 100, 100),
		resource("stone", "Stone", bitcraft.ResourceTypeStone, 75, 100, 100, 100),
		resource("iron", "Iron", bitcraft.ResourceTypeIron, 50, 100, 200, 150),
		resource("gold", "Gold", bitcraft.ResourceTypeGold, 25, 50, 300, 200),
	}
}

func WorldMap() bitcraft.WorldMap {
	res := Resources()
	return bitcraft.WorldMap{
		Id:   "sample-world",
		Name: "BitCraft World (sample)",
		Size: bitcraft.Size{Width: 1000, Height: 1000},
		Claims: []bitcraft.Claim{
			{
				Id:          "sample-new-haven",
				Name:        "New Haven",
				Owner:       "Player1",
				Coordinates: bitcraft.Coordinates{X: 100, Y: 100},
				Status:      bitcraft.ClaimStatusActive,
				Resources:   []bitcraft.Resource{res[0], res[1]},
			},
			{
				Id:          "sample-iron-forge",
				Name:        "Iron Forge",
				Owner:       "Player2",
				Coordinates: bitcraft.Coordinates{X: 200, Y: 150},
				Status:      bitcraft.ClaimStatusActive,
				Resources:   []bitcraft.Resource{res[2]},
			},
		},
		Resources: res,
	}
}

func Claim() bitcraft.Claim {
	res := Resources()
	return bitcraft.Claim{
		Id:          "sample-first-claim",
		Name:        "My First Claim",
		Owner:       "You",
		Coordinates: bitcraft.Coordinates{X: 100, Y: 100},
		Status:      bitcraft.ClaimStatusActive,
		Resources:   []bitcraft.Resource{res[0], res[1]},
	}
}

func Claims() []bitcraft.Claim {
	return []bitcraft.Claim{Claim()}
}

func Empire() bitcraft.Empire {
	c := Claim()
	c.Resources = nil
	return bitcraft.Empire{
		Id:   "sample-builders-guild",
		Name: "The Builders Guild",
		Members: []bitcraft.Member{
			{Id: "sample-player-1", Username: "Player1", Email: "player1@example.com"},
			{Id: "sample-player-2", Username: "Player2", Email: "player2@example.com"},
		},
		Claims: []bitcraft.Claim{c},
	}
}

func Empires() []bitcraft.Empire {
	return []bitcraft.Empire{Empire()}
}

func ServerStatus() bitcraft.ServerStatus {
	return bitcraft.ServerStatus{
		Status:  "online",
		Players: 1250,
		Uptime:  "99.9%",
		Version: "1.0.0-alpha (sample)",
	}
}

func Players() []bitcraft.Player {
	return []bitcraft.Player{
		{Id: "sample-player-1", Username: "Player1", Online: true},
		{Id: "sample-player-2", Username: "Player2", Online: false},
		{Id: "sample-player-3", Username: "Player3", Online: true},
	}
}

var sampleMessages = []bitcraft.ChatMessage{
	{
		Id:        "sample-msg-1",
		Sender:    "Player1",
		Message:   "Welcome to BitCraft! Anyone want to form an empire?",
		Timestamp: referenceTime.Add(-time.Hour),
		Channel:   bitcraft.ChannelGlobal,
	},
	{
		Id:        "sample-msg-2",
		Sender:    "Player2",
		Message:   "I have a claim near the iron deposits. Looking for partners!",
		Timestamp: referenceTime.Add(-30 * time.Minute),
		Channel:   bitcraft.ChannelGlobal,
	},
	{
		Id:        "sample-msg-3",
		Sender:    "Player3",
		Message:   "Great work on the new settlement!",
		Timestamp: referenceTime.Add(-15 * time.Minute),
		Channel:   bitcraft.ChannelEmpire,
	},
	{
		Id:        "sample-msg-4",
		Sender:    "Player1",
		Message:   "Storehouse is stocked, take what you need.",
		Timestamp: referenceTime.Add(-5 * time.Minute),
		Channel:   bitcraft.ChannelClaim,
	},
}

// Messages returns the sample messages for ch, never nil.
func Messages(ch bitcraft.Channel) []bitcraft.ChatMessage {
	out := []bitcraft.ChatMessage{}
	for _, m := range sampleMessages {
		if m.Channel == ch {
			out = append(out, m)
		}
	}
	return out
}
