package types

import (
	"encoding/json"
	"testing"
)

func TestShopperProfileCloneIsIndependent(t *testing.T) {
	original := ShopperProfile{City: StringPtr("Austin")}
	clone := original.Clone()
	*clone.City = "Dallas"
	if *original.City != "Austin" {
		t.Fatalf("clone shares storage with original")
	}
	if clone.Email != nil {
		t.Fatalf("nil fields must stay nil")
	}
}

func TestShopperProfileJSONKeepsMissingAsNull(t *testing.T) {
	raw, err := json.Marshal(ShopperProfile{Email: StringPtr("")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]*string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 8 {
		t.Fatalf("expected all eight keys, got %d", len(decoded))
	}
	if decoded["email"] == nil || *decoded["email"] != "" {
		t.Fatalf("empty string must round-trip as present")
	}
	if decoded["city"] != nil {
		t.Fatalf("missing value must encode as null")
	}
}
