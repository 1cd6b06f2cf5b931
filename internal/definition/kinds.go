package definition

import "fmt"

// Kind is the closed set of component kinds a definition can hold.
type Kind string

const (
	KindProject           Kind = "project"
	KindAgent             Kind = "agent"
	KindSubAgent          Kind = "sub-agent"
	KindTool              Kind = "tool"
	KindDataComponent     Kind = "data-component"
	KindArtifactComponent Kind = "artifact-component"
	KindStatusComponent   Kind = "status-component"
	KindCredential        Kind = "credential"
	KindFunction          Kind = "function"
)

// Kinds lists every component kind in the order the sandbox loader evaluates
// declaration files: referenced kinds before referencing kinds.
var Kinds = []Kind{
	KindCredential,
	KindFunction,
	KindDataComponent,
	KindArtifactComponent,
	KindStatusComponent,
	KindTool,
	KindSubAgent,
	KindAgent,
	KindProject,
}

// EvalRank orders kinds for sandbox evaluation; lower ranks are evaluated
// first so their declarations exist when later files reference them.
func (k Kind) EvalRank() int {
	for i, kind := range Kinds {
		if kind == k {
			return i
		}
	}
	return len(Kinds)
}

// Suffix is the collision-breaking suffix appended to a declared name when
// two identifiers fold to the same base name.
func (k Kind) Suffix() string {
	switch k {
	case KindAgent:
		return "Agent"
	case KindSubAgent:
		return "SubAgent"
	case KindTool:
		return "Tool"
	case KindDataComponent:
		return "DataComponent"
	case KindArtifactComponent:
		return "ArtifactComponent"
	case KindStatusComponent:
		return "StatusComponent"
	case KindCredential:
		return "Credential"
	case KindFunction:
		return "Function"
	case KindProject:
		return "Project"
	}
	return "Component"
}

// ComponentKey identifies one component within a definition. Identifiers are
// unique within a kind, not globally.
type ComponentKey struct {
	Kind Kind
	ID   string
}

func (k ComponentKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// Component looks up the typed record for a key. Sub-agents are addressed
// through their parent agent with a "parent/child" identifier.
func (d *Definition) Component(key ComponentKey) (any, bool) {
	switch key.Kind {
	case KindAgent:
		v, ok := d.Agents[key.ID]
		return v, ok
	case KindSubAgent:
		agentID, subID, ok := SplitSubAgentID(key.ID)
		if !ok {
			return nil, false
		}
		agent, ok := d.Agents[agentID]
		if !ok {
			return nil, false
		}
		v, ok := agent.SubAgents[subID]
		return v, ok
	case KindTool:
		v, ok := d.Tools[key.ID]
		return v, ok
	case KindDataComponent:
		v, ok := d.DataComponents[key.ID]
		return v, ok
	case KindArtifactComponent:
		v, ok := d.ArtifactComponents[key.ID]
		return v, ok
	case KindStatusComponent:
		v, ok := d.StatusComponents[key.ID]
		return v, ok
	case KindCredential:
		v, ok := d.Credentials[key.ID]
		return v, ok
	case KindFunction:
		v, ok := d.Functions[key.ID]
		return v, ok
	case KindProject:
		if key.ID == d.ID {
			return *d, true
		}
		return nil, false
	}
	return nil, false
}

// SubAgentKey builds the composite key for a sub-agent nested in an agent.
func SubAgentKey(agentID, subAgentID string) ComponentKey {
	return ComponentKey{Kind: KindSubAgent, ID: agentID + "/" + subAgentID}
}

// SplitSubAgentID splits a composite sub-agent identifier into its parent
// agent id and its own id.
func SplitSubAgentID(id string) (agentID, subAgentID string, ok bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return id[:i], id[i+1:], true
		}
	}
	return "", "", false
}
