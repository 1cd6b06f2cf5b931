// Package resolve computes, for newly added components, which other remote
// components they reference. The closure rule is strict: a reference to an
// identifier the remote definition does not contain is dropped, never
// surfaced, because only remote-known components are guaranteed to have a
// declaration to point at. Resolution is pure; it informs generation order
// and reference wiring and has no side effects.
package resolve

import (
	"sort"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// Dependencies maps each given component to the remote components it
// references, restricted to identifiers present in def.
func Dependencies(def *definition.Definition, keys []definition.ComponentKey) map[definition.ComponentKey][]definition.ComponentKey {
	out := make(map[definition.ComponentKey][]definition.ComponentKey, len(keys))
	for _, key := range keys {
		out[key] = Of(def, key)
	}
	return out
}

// Of returns the remote components one component references, deduplicated
// and in stable order.
func Of(def *definition.Definition, key definition.ComponentKey) []definition.ComponentKey {
	seen := make(map[definition.ComponentKey]bool)
	var deps []definition.ComponentKey
	add := func(k definition.ComponentKey) {
		if seen[k] {
			return
		}
		if _, exists := def.Component(k); !exists {
			return
		}
		seen[k] = true
		deps = append(deps, k)
	}

	switch key.Kind {
	case definition.KindAgent:
		agent, ok := def.Agents[key.ID]
		if !ok {
			return nil
		}
		for sid := range agent.SubAgents {
			add(definition.SubAgentKey(key.ID, sid))
		}

	case definition.KindSubAgent:
		agentID, subID, ok := definition.SplitSubAgentID(key.ID)
		if !ok {
			return nil
		}
		agent, ok := def.Agents[agentID]
		if !ok {
			return nil
		}
		sub, ok := agent.SubAgents[subID]
		if !ok {
			return nil
		}
		for _, binding := range sub.CanUse {
			add(definition.ComponentKey{Kind: definition.KindTool, ID: binding.ToolID})
		}
		for _, target := range sub.CanDelegateTo {
			add(definition.SubAgentKey(agentID, target))
		}
		for _, id := range sub.DataComponents {
			add(definition.ComponentKey{Kind: definition.KindDataComponent, ID: id})
		}
		for _, id := range sub.ArtifactComponents {
			add(definition.ComponentKey{Kind: definition.KindArtifactComponent, ID: id})
		}
		for _, id := range sub.StatusComponents {
			add(definition.ComponentKey{Kind: definition.KindStatusComponent, ID: id})
		}
		for _, id := range sub.Functions {
			add(definition.ComponentKey{Kind: definition.KindFunction, ID: id})
		}

	case definition.KindTool:
		tool, ok := def.Tools[key.ID]
		if !ok {
			return nil
		}
		if tool.CredentialID != "" {
			add(definition.ComponentKey{Kind: definition.KindCredential, ID: tool.CredentialID})
		}
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Kind != deps[j].Kind {
			return deps[i].Kind.EvalRank() < deps[j].Kind.EvalRank()
		}
		return deps[i].ID < deps[j].ID
	})
	return deps
}
