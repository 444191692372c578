package xid

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New("sale")
	if !strings.HasPrefix(id, "sale-") {
		t.Fatalf("expected sale- prefix, got %s", id)
	}
}

func TestNewDoesNotCollide(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New("prd")
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
