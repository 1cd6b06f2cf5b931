package compare

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// RecordEqual reports whether two JSON-shaped records are structurally equal
// under the same normalization Compare uses: nulls and empty collections
// pruned, volatile fields stripped anywhere in the record. It exists for
// per-component classification, where callers compare one component's record
// at a time instead of whole definitions.
func RecordEqual(a, b any, opts Options) (bool, error) {
	volatile := volatileSet(opts)

	ta, err := recordTree(a, volatile)
	if err != nil {
		return false, fmt.Errorf("failed to normalize record: %w", err)
	}
	tb, err := recordTree(b, volatile)
	if err != nil {
		return false, fmt.Errorf("failed to normalize record: %w", err)
	}
	return cmp.Equal(ta, tb), nil
}

// recordTree JSON round-trips a record, strips volatile keys, and prunes
// encoding noise.
func recordTree(v any, volatile map[string]bool) (any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	stripTree(m, volatile, "", map[string]any{})
	pruned, empty := prune(m)
	if empty {
		return map[string]any{}, nil
	}
	return pruned, nil
}
