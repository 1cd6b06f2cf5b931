package compare

import (
	"testing"

	"github.com/inkeep/agents-sub000/internal/definition"
)

func TestRecordEqual_IgnoresVolatileAndEncodingNoise(t *testing.T) {
	a := definition.Tool{
		ID:        "search",
		ServerURL: "https://mcp.example.com/search",
		UpdatedAt: "2026-08-01T00:00:00Z",
	}
	b := definition.Tool{
		ID:        "search",
		ServerURL: "https://mcp.example.com/search",
		Headers:   map[string]string{},
	}

	equal, err := RecordEqual(a, b, Options{})
	if err != nil {
		t.Fatalf("RecordEqual failed: %v", err)
	}
	if !equal {
		t.Error("Volatile timestamps and empty collections must not break equality")
	}
}

func TestRecordEqual_RealDifference(t *testing.T) {
	a := definition.Tool{ID: "search", ServerURL: "https://a.example.com"}
	b := definition.Tool{ID: "search", ServerURL: "https://b.example.com"}

	equal, err := RecordEqual(a, b, Options{})
	if err != nil {
		t.Fatalf("RecordEqual failed: %v", err)
	}
	if equal {
		t.Error("Different server URLs must not compare equal")
	}
}

func TestRecordEqual_ConfiguredVolatilePath(t *testing.T) {
	a := map[string]any{"id": "x", "lastSeenAt": "now"}
	b := map[string]any{"id": "x"}

	equal, err := RecordEqual(a, b, Options{VolatilePaths: []string{"lastSeenAt"}})
	if err != nil {
		t.Fatalf("RecordEqual failed: %v", err)
	}
	if !equal {
		t.Error("Configured volatile path must be stripped before comparing")
	}
}

func TestRecordEqual_VolatileStrippedAtDepth(t *testing.T) {
	a := map[string]any{"nested": map[string]any{"createdAt": "t1", "v": 1}}
	b := map[string]any{"nested": map[string]any{"createdAt": "t2", "v": 1}}

	equal, err := RecordEqual(a, b, Options{})
	if err != nil {
		t.Fatalf("RecordEqual failed: %v", err)
	}
	if !equal {
		t.Error("Audit fields must be ignored at any depth")
	}
}
