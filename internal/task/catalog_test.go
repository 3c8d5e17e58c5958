package task

import (
	"strings"
	"testing"
)

func TestCatalog_AllInOrder(t *testing.T) {
	c := NewCatalog("user", "pass")
	defs := c.All()

	if len(defs) != Count {
		t.Fatalf("len(All()) = %d, want %d", len(defs), Count)
	}
	for i, d := range defs {
		if want := ID(i + 1); d.ID != want {
			t.Errorf("defs[%d].ID = %d, want %d", i, d.ID, want)
		}
		if d.Title == "" || d.Hint == "" || d.Icon == "" {
			t.Errorf("defs[%d] has empty descriptive fields: %+v", i, d)
		}
	}
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c := NewCatalog("user", "pass")
	defs := c.All()
	defs[0].Title = "mutated"

	if got, _ := c.Get(HelloWorld); got.Title == "mutated" {
		t.Error("mutating All() result changed the catalog")
	}
}

func TestCatalog_HintEmbedsCredentials(t *testing.T) {
	c := NewCatalog("alice", "s3cret")
	d, ok := c.Get(Authenticated)
	if !ok {
		t.Fatal("Get(Authenticated) not found")
	}
	if !strings.Contains(d.Hint, "<code>alice</code>") || !strings.Contains(d.Hint, "<code>s3cret</code>") {
		t.Errorf("hint %q does not contain configured credentials", d.Hint)
	}
}

func TestID_Valid(t *testing.T) {
	tests := []struct {
		id   ID
		want bool
	}{
		{0, false},
		{1, true},
		{4, true},
		{6, true},
		{7, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := tt.id.Valid(); got != tt.want {
			t.Errorf("ID(%d).Valid() = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCatalog_GetInvalid(t *testing.T) {
	c := NewCatalog("user", "pass")
	if _, ok := c.Get(7); ok {
		t.Error("Get(7) should report not found")
	}
}
