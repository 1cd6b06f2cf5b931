package compare

import (
	"sort"
	"strings"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// topLevelKinds maps a definition's top-level map fields to component kinds.
var topLevelKinds = map[string]definition.Kind{
	"agents":             definition.KindAgent,
	"tools":              definition.KindTool,
	"dataComponents":     definition.KindDataComponent,
	"artifactComponents": definition.KindArtifactComponent,
	"statusComponents":   definition.KindStatusComponent,
	"credentials":        definition.KindCredential,
	"functions":          definition.KindFunction,
}

// ComponentChanges attributes every real difference to a component key. A
// difference at the component's own map entry yields added/removed; anything
// deeper yields changed. Differences in project metadata are attributed to
// the project itself under projectID. Sub-agent differences are attributed to
// the sub-agent, not the enclosing agent.
func (r *Result) ComponentChanges(projectID string) map[definition.ComponentKey]DiffKind {
	changes := make(map[definition.ComponentKey]DiffKind)
	for _, diff := range r.Differences {
		// One side lacks the whole top-level map: the difference sits at the
		// kind key, so fan it out to the individual components inside.
		if kind, ok := topLevelKinds[diff.Path]; ok && diff.Kind != DiffChanged {
			if expandWholeMap(changes, kind, diff) {
				continue
			}
		}
		key, whole := attribute(diff.Path, projectID)
		if whole && (diff.Kind == DiffAdded || diff.Kind == DiffRemoved) {
			changes[key] = diff.Kind
			continue
		}
		if _, seen := changes[key]; !seen {
			changes[key] = DiffChanged
		}
	}
	return changes
}

// expandWholeMap attributes a difference covering an entire top-level
// component map to each component in it, one entry per identifier. Agents
// bring their nested sub-agents along.
func expandWholeMap(changes map[definition.ComponentKey]DiffKind, kind definition.Kind, diff Difference) bool {
	side := diff.Remote
	if diff.Kind == DiffRemoved {
		side = diff.Local
	}
	m, ok := side.(map[string]any)
	if !ok {
		return false
	}
	for id, value := range m {
		changes[definition.ComponentKey{Kind: kind, ID: id}] = diff.Kind
		if kind != definition.KindAgent {
			continue
		}
		agent, ok := value.(map[string]any)
		if !ok {
			continue
		}
		subs, ok := agent["subAgents"].(map[string]any)
		if !ok {
			continue
		}
		for sid := range subs {
			changes[definition.SubAgentKey(id, sid)] = diff.Kind
		}
	}
	return true
}

// SortedKeys returns change keys in a stable order for logging and planning.
func SortedKeys(changes map[definition.ComponentKey]DiffKind) []definition.ComponentKey {
	keys := make([]definition.ComponentKey, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind.EvalRank() < keys[j].Kind.EvalRank()
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

// attribute maps a dotted difference path to the component it belongs to.
// The second return reports whether the path addresses the component record
// itself rather than a field inside it.
func attribute(path, projectID string) (definition.ComponentKey, bool) {
	segs := strings.Split(path, ".")
	if len(segs) < 2 {
		return definition.ComponentKey{Kind: definition.KindProject, ID: projectID}, false
	}
	kind, ok := topLevelKinds[segs[0]]
	if !ok {
		return definition.ComponentKey{Kind: definition.KindProject, ID: projectID}, false
	}
	if kind == definition.KindAgent && len(segs) >= 4 && segs[2] == "subAgents" {
		key := definition.SubAgentKey(segs[1], segs[3])
		return key, len(segs) == 4
	}
	return definition.ComponentKey{Kind: kind, ID: segs[1]}, len(segs) == 2
}
