package bitcraft

import "encoding/json"

// A missing or null enum field never reaches UnmarshalText, so the entities
// carrying one check for the unset value after decoding.

func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == ResourceTypeUnset {
		return &UnknownVariantError{Enum: "resource type", Value: ""}
	}
	*r = Resource(p)
	return nil
}

func (c *Claim) UnmarshalJSON(data []byte) error {
	type plain Claim
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Status == ClaimStatusUnset {
		return &UnknownVariantError{Enum: "claim status", Value: ""}
	}
	*c = Claim(p)
	return nil
}

func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Channel == ChannelUnset {
		return &UnknownVariantError{Enum: "channel", Value: ""}
	}
	*m = ChatMessage(p)
	return nil
}
