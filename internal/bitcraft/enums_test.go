package bitcraft

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestClaimStatus_UnmarshalText(t *testing.T) {
	tests := map[string]struct {
		text   string
		exp    ClaimStatus
		expErr string
	}{
		"active":       {text: "active", exp: ClaimStatusActive},
		"inactive":     {text: "inactive", exp: ClaimStatusInactive},
		"under attack": {text: "under_attack", exp: ClaimStatusUnderAttack},
		"wrong case":   {text: "Active", expErr: `unknown claim status "Active"`},
		"empty":        {text: "", expErr: `unknown claim status ""`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s ClaimStatus
			err := s.UnmarshalText([]byte(tt.text))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "status", s, tt.exp)
		})
	}
}

func TestResourceType_RoundTrip(t *testing.T) {
	for rt, name := range resourceTypeNames {
		b, err := rt.MarshalText()
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		var got ResourceType
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("unmarshal %s: %v", name, err)
		}
		testutil.AssertEqual(t, name, got, rt)
	}
}

func TestResourceType_MarshalUnset(t *testing.T) {
	_, err := ResourceTypeUnset.MarshalText()
	testutil.AssertErrorContains(t, err, "unset")
}

func TestChannel_UnknownVariant(t *testing.T) {
	var msg ChatMessage
	err := json.Unmarshal([]byte(`{"id":"1","sender":"a","message":"b","timestamp":"2025-01-01T00:00:00Z","channel":"party"}`), &msg)
	if err == nil {
		t.Fatal("expected error for unknown channel")
	}

	var uv *UnknownVariantError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UnknownVariantError, got %T: %v", err, err)
	}
	testutil.AssertEqual(t, "enum", uv.Enum, "channel")
	testutil.AssertEqual(t, "value", uv.Value, "party")
}

func TestParseChannel(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    Channel
		expErr bool
	}{
		"global": {in: "global", exp: ChannelGlobal},
		"empire": {in: "empire", exp: ChannelEmpire},
		"claim":  {in: "claim", exp: ChannelClaim},
		"bogus":  {in: "trade", expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseChannel(tt.in)
			testutil.AssertEqual(t, "error", err != nil, tt.expErr)
			testutil.AssertEqual(t, "channel", got, tt.exp)
		})
	}
}

func TestDecode_MissingEnum(t *testing.T) {
	tests := map[string]struct {
		raw     string
		into    any
		expEnum string
	}{
		"claim without status": {
			raw:     `{"id":"c","name":"Keep"}`,
			into:    &Claim{},
			expEnum: "claim status",
		},
		"claim with null status": {
			raw:     `{"id":"c","status":null}`,
			into:    &Claim{},
			expEnum: "claim status",
		},
		"resource without type": {
			raw:     `{"id":"r","quantity":1,"maxQuantity":2}`,
			into:    &Resource{},
			expEnum: "resource type",
		},
		"nested resource without type": {
			raw:     `{"id":"c","status":"active","resources":[{"id":"r"}]}`,
			into:    &Claim{},
			expEnum: "resource type",
		},
		"message without channel": {
			raw:     `{"id":"1","sender":"a","message":"b","timestamp":"2025-01-01T00:00:00Z"}`,
			into:    &ChatMessage{},
			expEnum: "channel",
		},
		"message with empty channel": {
			raw:     `{"id":"1","sender":"a","message":"b","timestamp":"2025-01-01T00:00:00Z","channel":""}`,
			into:    &ChatMessage{},
			expEnum: "channel",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.raw), tt.into)

			var uv *UnknownVariantError
			if !errors.As(err, &uv) {
				t.Fatalf("expected UnknownVariantError, got %T: %v", err, err)
			}
			testutil.AssertEqual(t, "enum", uv.Enum, tt.expEnum)
			testutil.AssertEqual(t, "value", uv.Value, "")
		})
	}
}

func TestDecode_EnumsPresent(t *testing.T) {
	var c Claim
	err := json.Unmarshal([]byte(`{"id":"c","status":"under_attack","resources":[{"id":"r","type":"iron","quantity":3,"maxQuantity":1}]}`), &c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "status", c.Status, ClaimStatusUnderAttack)
	testutil.AssertEqual(t, "resource type", c.Resources[0].Type, ResourceTypeIron)
	testutil.AssertEqual(t, "quantity kept as sent", c.Resources[0].Quantity, 3)
}
