// Package compare implements structural comparison of two project
// definitions. Differences are addressed by dotted path so callers can
// attribute each one to a component and field. Volatile audit fields are
// surfaced as warnings, never as real differences, and encoding noise
// (null vs absent, empty vs absent collections) is normalized away before
// comparing.
package compare

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// DiffKind classifies one difference relative to the remote side.
type DiffKind string

const (
	// DiffAdded means the remote definition has the value and the local one
	// does not.
	DiffAdded DiffKind = "added"
	// DiffRemoved means the value exists locally but not remotely.
	DiffRemoved DiffKind = "removed"
	// DiffChanged means both sides have the value and it differs.
	DiffChanged DiffKind = "changed"
)

// Difference is one real, semantic divergence between two definitions.
type Difference struct {
	Path   string
	Kind   DiffKind
	Remote any
	Local  any
}

// Warning is a non-semantic divergence: a volatile field, or other noise the
// caller should see but never act on.
type Warning struct {
	Path   string
	Reason string
	Remote any
	Local  any
}

// Result is the outcome of one comparison.
type Result struct {
	Matches     bool
	Differences []Difference
	Warnings    []Warning
}

// Options tunes a comparison.
type Options struct {
	// VolatilePaths are extra field names, matched at any depth, treated as
	// volatile in addition to the audit timestamps.
	VolatilePaths []string
}

// defaultVolatile are the audit fields the API stamps on every record.
var defaultVolatile = []string{"createdAt", "updatedAt"}

// Compare returns the real differences and warnings between a remote and a
// local definition. If the two are equal under normalization, Matches is true
// and Differences is empty.
func Compare(remote, local *definition.Definition, opts Options) (*Result, error) {
	volatile := volatileSet(opts)

	remoteTree, remoteStripped, err := tree(remote, volatile)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize remote definition: %w", err)
	}
	localTree, localStripped, err := tree(local, volatile)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize local definition: %w", err)
	}

	rec := &recorder{}
	cmp.Equal(remoteTree, localTree, cmp.Reporter(rec))

	return &Result{
		Matches:     len(rec.diffs) == 0,
		Differences: rec.diffs,
		Warnings:    volatileWarnings(remoteStripped, localStripped),
	}, nil
}

func volatileSet(opts Options) map[string]bool {
	volatile := make(map[string]bool, len(defaultVolatile)+len(opts.VolatilePaths))
	for _, v := range defaultVolatile {
		volatile[v] = true
	}
	for _, v := range opts.VolatilePaths {
		volatile[v] = true
	}
	return volatile
}

// tree converts a definition to its normalized map form: JSON field names,
// volatile keys stripped at any depth, and null/empty-collection encodings
// pruned so the renderer's own normalization choices never show up as
// differences. Stripping runs before pruning so a map emptied by stripping
// compares equal to an absent one. Stripped values are returned by dotted
// path so divergent ones can surface as warnings.
func tree(def *definition.Definition, volatile map[string]bool) (map[string]any, map[string]any, error) {
	if def == nil {
		return map[string]any{}, nil, nil
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, err
	}
	stripped := make(map[string]any)
	stripTree(m, volatile, "", stripped)
	pruned, _ := prune(m)
	out, ok := pruned.(map[string]any)
	if !ok {
		return map[string]any{}, stripped, nil
	}
	return out, stripped, nil
}

// stripTree deletes volatile keys at any depth, in place, recording each
// stripped value by its dotted path.
func stripTree(v any, volatile map[string]bool, prefix string, stripped map[string]any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if volatile[k] {
				stripped[p] = child
				delete(val, k)
				continue
			}
			stripTree(child, volatile, p, stripped)
		}
	case []any:
		for i, child := range val {
			stripTree(child, volatile, fmt.Sprintf("%s.[%d]", prefix, i), stripped)
		}
	}
}

// volatileWarnings reports the volatile fields whose stripped values diverge
// between the two sides. Equal values are not a divergence and stay silent.
func volatileWarnings(remote, local map[string]any) []Warning {
	paths := make(map[string]bool, len(remote)+len(local))
	for p := range remote {
		paths[p] = true
	}
	for p := range local {
		paths[p] = true
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var out []Warning
	for _, p := range sorted {
		rv, lv := remote[p], local[p]
		if cmp.Equal(rv, lv) {
			continue
		}
		out = append(out, Warning{
			Path:   p,
			Reason: "volatile field",
			Remote: rv,
			Local:  lv,
		})
	}
	return out
}

// prune removes nulls and empty collections recursively. The second return
// reports whether the value itself is empty after pruning.
func prune(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			pruned, empty := prune(child)
			if !empty {
				out[k] = pruned
			}
		}
		return out, len(out) == 0
	case []any:
		out := make([]any, 0, len(val))
		for _, child := range val {
			pruned, empty := prune(child)
			if !empty {
				out = append(out, pruned)
			}
		}
		return out, len(out) == 0
	case string:
		return val, val == ""
	default:
		return val, false
	}
}

// recorder collects differences from a cmp run, with dotted paths. Both trees
// are already normalized, so every reported difference is real.
type recorder struct {
	path  cmp.Path
	diffs []Difference
}

func (r *recorder) PushStep(ps cmp.PathStep) {
	r.path = append(r.path, ps)
}

func (r *recorder) PopStep() {
	r.path = r.path[:len(r.path)-1]
}

func (r *recorder) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}
	vx, vy := r.path.Last().Values()

	var remote, local any
	kind := DiffChanged
	switch {
	case vx.IsValid() && !vy.IsValid():
		remote = vx.Interface()
		kind = DiffAdded
	case !vx.IsValid() && vy.IsValid():
		local = vy.Interface()
		kind = DiffRemoved
	case vx.IsValid() && vy.IsValid():
		remote = vx.Interface()
		local = vy.Interface()
	}

	dotted := strings.Join(pathSegments(r.path), ".")
	r.diffs = append(r.diffs, Difference{Path: dotted, Kind: kind, Remote: remote, Local: local})
}

// pathSegments renders a cmp.Path as dotted segments: map keys verbatim,
// slice indexes in brackets.
func pathSegments(path cmp.Path) []string {
	var segs []string
	for _, ps := range path {
		switch step := ps.(type) {
		case cmp.MapIndex:
			segs = append(segs, fmt.Sprintf("%v", step.Key().Interface()))
		case cmp.SliceIndex:
			if k := step.Key(); k >= 0 {
				segs = append(segs, fmt.Sprintf("[%d]", k))
			} else {
				xk, yk := step.SplitKeys()
				segs = append(segs, fmt.Sprintf("[%d->%d]", xk, yk))
			}
		}
	}
	return segs
}
