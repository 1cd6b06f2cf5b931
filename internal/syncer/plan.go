package syncer

import (
	"fmt"
	"sort"

	"github.com/inkeep/agents-sub000/internal/compare"
	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/internal/locate"
)

// Action classifies what sync must do for one component.
type Action string

const (
	// ActionAdd generates the component for the first time.
	ActionAdd Action = "add"
	// ActionModify replaces the component's existing declaration.
	ActionModify Action = "modify"
	// ActionDelete reports a local declaration the remote no longer has.
	// Deletions are never applied; the user removes declarations themselves.
	ActionDelete Action = "delete"
)

// Change is one planned component change.
type Change struct {
	Key    definition.ComponentKey
	Action Action
	// Location is the component's current declaration site; zero for
	// additions.
	Location locate.Location
	// Located is false for additions.
	Located bool
}

// Plan is the classified outcome of comparing remote and local definitions.
type Plan struct {
	// Changes holds additions and modifications in evaluation order,
	// referenced kinds first.
	Changes []Change
	// Deleted holds local components absent from the remote definition.
	Deleted []Change
}

// Empty reports whether the plan requires no writes.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// classify walks every remote component and decides its action from two
// facts only: whether its record differs from the local tree's re-derived
// record, and whether the locator found a declaration for it. A located
// component is modified in place wherever it lives; an unlocated one is
// generated fresh. Components equal on both sides are untouched even when
// their declaration style differs from what the renderer would produce.
func classify(remote, local *definition.Definition, idx *locate.Index, opts compare.Options) (*Plan, error) {
	plan := &Plan{}

	keys := append([]definition.ComponentKey{
		{Kind: definition.KindProject, ID: remote.ID},
	}, remote.ComponentKeys()...)

	for _, key := range keys {
		remoteShell, ok := shell(remote, key)
		if !ok {
			continue
		}
		localShell, localHas := shell(local, key)
		if localHas {
			equal, err := compare.RecordEqual(remoteShell, localShell, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s: %w", key, err)
			}
			if equal {
				continue
			}
		}

		change := Change{Key: key, Action: ActionAdd}
		if loc, found := idx.Lookup(key); found {
			change.Action = ActionModify
			change.Location = loc
			change.Located = true
		}
		plan.Changes = append(plan.Changes, change)
	}

	for _, key := range local.ComponentKeys() {
		if _, ok := remote.Component(key); ok {
			continue
		}
		change := Change{Key: key, Action: ActionDelete}
		if loc, found := idx.Lookup(key); found {
			change.Location = loc
			change.Located = true
		}
		plan.Deleted = append(plan.Deleted, change)
	}

	sortChanges(plan.Changes)
	sortChanges(plan.Deleted)
	return plan, nil
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i].Key, changes[j].Key
		if a.Kind != b.Kind {
			return a.Kind.EvalRank() < b.Kind.EvalRank()
		}
		return a.ID < b.ID
	})
}

// shell extracts the record compared for one component. Projects and agents
// are compared as their own fields plus the identifier list of what their
// declarations reference, so a membership change marks them modified without
// re-attributing every nested child's edit to the parent.
func shell(def *definition.Definition, key definition.ComponentKey) (any, bool) {
	rec, ok := def.Component(key)
	if !ok {
		return nil, false
	}
	switch v := rec.(type) {
	case definition.Definition:
		return map[string]any{
			"id":          v.ID,
			"name":        v.Name,
			"description": v.Description,
			"models":      v.Models,
			"stopWhen":    v.StopWhen,
			"agents":      sortedIDs(v.Agents),
		}, true
	case definition.Agent:
		return map[string]any{
			"id":                v.ID,
			"name":              v.Name,
			"description":       v.Description,
			"prompt":            v.Prompt,
			"models":            v.Models,
			"stopWhen":          v.StopWhen,
			"defaultSubAgentId": v.DefaultSubAgentID,
			"subAgents":         sortedIDs(v.SubAgents),
		}, true
	default:
		return rec, true
	}
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
