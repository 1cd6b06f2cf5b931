package resolve

import (
	"testing"

	"github.com/inkeep/agents-sub000/internal/definition"
)

func resolverDefinition() *definition.Definition {
	return &definition.Definition{
		ID: "p",
		Agents: map[string]definition.Agent{
			"support-agent": {
				ID: "support-agent",
				SubAgents: map[string]definition.SubAgent{
					"router": {
						ID: "router",
						CanUse: []definition.ToolBinding{
							{ToolID: "kb-search"},
							{ToolID: "ghost-tool"},
						},
						CanDelegateTo:  []string{"billing", "ghost-agent"},
						DataComponents: []string{"order-summary", "ghost-data"},
						Functions:      []string{"format-date"},
					},
					"billing": {ID: "billing"},
				},
			},
		},
		Tools: map[string]definition.Tool{
			"kb-search":    {ID: "kb-search", CredentialID: "kb-api-key"},
			"orphan-tool":  {ID: "orphan-tool", CredentialID: "ghost-credential"},
			"weather-tool": {ID: "weather-tool"},
		},
		DataComponents: map[string]definition.DataComponent{
			"order-summary": {ID: "order-summary"},
		},
		Credentials: map[string]definition.Credential{
			"kb-api-key": {ID: "kb-api-key"},
		},
		Functions: map[string]definition.Function{
			"format-date": {ID: "format-date"},
		},
	}
}

func TestOf_ReferentialClosure(t *testing.T) {
	def := resolverDefinition()

	deps := Of(def, definition.SubAgentKey("support-agent", "router"))

	// Every returned dependency must exist in the remote definition.
	for _, dep := range deps {
		if _, ok := def.Component(dep); !ok {
			t.Errorf("Dependency %s is not present in the remote definition", dep)
		}
	}

	want := map[definition.ComponentKey]bool{
		{Kind: definition.KindTool, ID: "kb-search"}:                 true,
		definition.SubAgentKey("support-agent", "billing"):           true,
		{Kind: definition.KindDataComponent, ID: "order-summary"}:    true,
		{Kind: definition.KindFunction, ID: "format-date"}:           true,
	}
	if len(deps) != len(want) {
		t.Fatalf("Expected %d dependencies, got %v", len(want), deps)
	}
	for _, dep := range deps {
		if !want[dep] {
			t.Errorf("Unexpected dependency %s", dep)
		}
	}
}

func TestOf_ToolCredential(t *testing.T) {
	def := resolverDefinition()

	deps := Of(def, definition.ComponentKey{Kind: definition.KindTool, ID: "kb-search"})
	if len(deps) != 1 || deps[0].ID != "kb-api-key" {
		t.Errorf("Expected credential dependency, got %v", deps)
	}

	// A credential reference absent from the remote definition is dropped.
	deps = Of(def, definition.ComponentKey{Kind: definition.KindTool, ID: "orphan-tool"})
	if len(deps) != 0 {
		t.Errorf("Expected no dependencies for orphan-tool, got %v", deps)
	}
}

func TestOf_NoReferences(t *testing.T) {
	def := resolverDefinition()

	deps := Of(def, definition.ComponentKey{Kind: definition.KindTool, ID: "weather-tool"})
	if len(deps) != 0 {
		t.Errorf("Expected no dependencies, got %v", deps)
	}

	deps = Of(def, definition.ComponentKey{Kind: definition.KindDataComponent, ID: "order-summary"})
	if len(deps) != 0 {
		t.Errorf("Data components reference nothing, got %v", deps)
	}
}

func TestDependencies_Batch(t *testing.T) {
	def := resolverDefinition()
	keys := []definition.ComponentKey{
		{Kind: definition.KindTool, ID: "kb-search"},
		{Kind: definition.KindTool, ID: "weather-tool"},
	}

	deps := Dependencies(def, keys)
	if len(deps) != 2 {
		t.Fatalf("Expected entries for both keys, got %d", len(deps))
	}
	if len(deps[keys[0]]) != 1 {
		t.Errorf("kb-search should have one dependency, got %v", deps[keys[0]])
	}
	if len(deps[keys[1]]) != 0 {
		t.Errorf("weather-tool should have none, got %v", deps[keys[1]])
	}
}
