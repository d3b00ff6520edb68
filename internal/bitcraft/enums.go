package bitcraft

import "fmt"

// UnknownVariantError is returned when text does not name a member of one of
// the closed enumerations below.
type UnknownVariantError struct {
	Enum  string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Enum, e.Value)
}

type ClaimStatus int

const (
	ClaimStatusUnset ClaimStatus = iota
	ClaimStatusActive
	ClaimStatusInactive
	ClaimStatusUnderAttack
)

func (s ClaimStatus) String() string {
	switch s {
	case ClaimStatusActive:
		return "active"
	case ClaimStatusInactive:
		return "inactive"
	case ClaimStatusUnderAttack:
		return "under_attack"
	default:
		return ""
	}
}

func (s ClaimStatus) MarshalText() ([]byte, error) {
	if s == ClaimStatusUnset {
		return nil, fmt.Errorf("claim status is unset")
	}
	return []byte(s.String()), nil
}

func (s *ClaimStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = ClaimStatusActive
	case "inactive":
		*s = ClaimStatusInactive
	case "under_attack":
		*s = ClaimStatusUnderAttack
	default:
		return &UnknownVariantError{Enum: "claim status", Value: string(text)}
	}
	return nil
}

type ResourceType int

const (
	ResourceTypeUnset ResourceType = iota
	ResourceTypeWood
	ResourceTypeStone
	ResourceTypeIron
	ResourceTypeGold
	ResourceTypeFood
	ResourceTypeWater
)

var resourceTypeNames = map[ResourceType]string{
	ResourceTypeWood:  "wood",
	ResourceTypeStone: "stone",
	ResourceTypeIron:  "iron",
	ResourceTypeGold:  "gold",
	ResourceTypeFood:  "food",
	ResourceTypeWater: "water",
}

func (t ResourceType) String() string {
	return resourceTypeNames[t]
}

func (t ResourceType) MarshalText() ([]byte, error) {
	name, ok := resourceTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("resource type is unset")
	}
	return []byte(name), nil
}

func (t *ResourceType) UnmarshalText(text []byte) error {
	for rt, name := range resourceTypeNames {
		if name == string(text) {
			*t = rt
			return nil
		}
	}
	return &UnknownVariantError{Enum: "resource type", Value: string(text)}
}

// Channel identifies a chat feed. Each channel is tracked as its own domain.
type Channel int

const (
	ChannelUnset Channel = iota
	ChannelGlobal
	ChannelEmpire
	ChannelClaim
)

// Channels lists every valid channel in display order.
var Channels = []Channel{ChannelGlobal, ChannelEmpire, ChannelClaim}

func (c Channel) String() string {
	switch c {
	case ChannelGlobal:
		return "global"
	case ChannelEmpire:
		return "empire"
	case ChannelClaim:
		return "claim"
	default:
		return ""
	}
}

func (c Channel) MarshalText() ([]byte, error) {
	if c == ChannelUnset {
		return nil, fmt.Errorf("channel is unset")
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "global":
		*c = ChannelGlobal
	case "empire":
		*c = ChannelEmpire
	case "claim":
		*c = ChannelClaim
	default:
		return &UnknownVariantError{Enum: "channel", Value: string(text)}
	}
	return nil
}

// ParseChannel converts user or wire text into a Channel.
func ParseChannel(s string) (Channel, error) {
	var c Channel
	err := c.UnmarshalText([]byte(s))
	return c, err
}
