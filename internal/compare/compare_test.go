package compare

import (
	"testing"

	"github.com/inkeep/agents-sub000/internal/definition"
)

func baseDefinition() *definition.Definition {
	return &definition.Definition{
		ID:   "support-project",
		Name: "Support",
		Agents: map[string]definition.Agent{
			"support-agent": {
				ID:     "support-agent",
				Name:   "Support Agent",
				Prompt: "You help customers.",
				SubAgents: map[string]definition.SubAgent{
					"router": {
						ID:     "router",
						Prompt: "Route the question.",
						CanUse: []definition.ToolBinding{{ToolID: "kb-search"}},
					},
				},
			},
		},
		Tools: map[string]definition.Tool{
			"kb-search": {ID: "kb-search", Name: "KB Search", ServerURL: "https://mcp.example.com/kb"},
		},
	}
}

func TestCompare_IdenticalDefinitionsMatch(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if !result.Matches {
		t.Errorf("Expected match, got differences: %+v", result.Differences)
	}
	if len(result.Differences) != 0 {
		t.Errorf("Expected 0 differences, got %d", len(result.Differences))
	}
}

func TestCompare_EmptyCollectionEqualsAbsent(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()

	// Renderer-style normalization noise: explicit empty vs absent.
	remote.DataComponents = map[string]definition.DataComponent{}
	local.DataComponents = nil
	agent := local.Agents["support-agent"]
	sub := agent.SubAgents["router"]
	sub.CanDelegateTo = []string{}
	agent.SubAgents["router"] = sub
	local.Agents["support-agent"] = agent

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !result.Matches {
		t.Errorf("Expected empty/absent to be equal, got: %+v", result.Differences)
	}
}

func TestCompare_VolatileFieldIsWarningOnly(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()
	remote.UpdatedAt = "2026-08-28T10:00:00Z"
	local.UpdatedAt = "2026-08-27T09:00:00Z"

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if !result.Matches {
		t.Errorf("Volatile-only change should still match, got: %+v", result.Differences)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(result.Warnings))
	}
	if result.Warnings[0].Path != "updatedAt" {
		t.Errorf("Expected warning at updatedAt, got %s", result.Warnings[0].Path)
	}
}

func TestCompare_ConfiguredVolatilePath(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()
	tool := remote.Tools["kb-search"]
	tool.Headers = map[string]string{"x-trace": "abc"}
	remote.Tools["kb-search"] = tool

	result, err := Compare(remote, local, Options{VolatilePaths: []string{"x-trace"}})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !result.Matches {
		t.Errorf("Configured volatile path should not fail the match: %+v", result.Differences)
	}

	// The stripped value still surfaces, as a warning.
	found := false
	for _, w := range result.Warnings {
		if w.Path == "tools.kb-search.headers.x-trace" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a warning for the stripped volatile field, got %+v", result.Warnings)
	}
}

func TestCompare_AddedToolReportedWithPath(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()
	remote.Tools["weather-forecast"] = definition.Tool{
		ID:        "weather-forecast",
		Name:      "Weather Forecast",
		ServerURL: "https://mcp.example.com/weather",
	}

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.Matches {
		t.Fatal("Expected a difference for the added tool")
	}

	found := false
	for _, d := range result.Differences {
		if d.Path == "tools.weather-forecast" && d.Kind == DiffAdded {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected added difference at tools.weather-forecast, got %+v", result.Differences)
	}
}

func TestCompare_ModifiedPromptPath(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()
	agent := remote.Agents["support-agent"]
	agent.Prompt = "You help customers kindly."
	remote.Agents["support-agent"] = agent

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if len(result.Differences) != 1 {
		t.Fatalf("Expected exactly 1 difference, got %+v", result.Differences)
	}
	d := result.Differences[0]
	if d.Path != "agents.support-agent.prompt" || d.Kind != DiffChanged {
		t.Errorf("Unexpected difference: %+v", d)
	}
}

func TestComponentChanges_Attribution(t *testing.T) {
	remote := baseDefinition()
	local := baseDefinition()

	// New tool, modified sub-agent prompt, modified project name.
	remote.Tools["weather-forecast"] = definition.Tool{ID: "weather-forecast", Name: "Weather"}
	agent := remote.Agents["support-agent"]
	sub := agent.SubAgents["router"]
	sub.Prompt = "Route carefully."
	agent.SubAgents["router"] = sub
	remote.Agents["support-agent"] = agent
	remote.Name = "Support v2"

	result, err := Compare(remote, local, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	changes := result.ComponentChanges("support-project")

	tests := []struct {
		key  definition.ComponentKey
		kind DiffKind
	}{
		{definition.ComponentKey{Kind: definition.KindTool, ID: "weather-forecast"}, DiffAdded},
		{definition.SubAgentKey("support-agent", "router"), DiffChanged},
		{definition.ComponentKey{Kind: definition.KindProject, ID: "support-project"}, DiffChanged},
	}
	for _, tt := range tests {
		got, ok := changes[tt.key]
		if !ok {
			t.Errorf("Expected change for %s, got none (changes: %v)", tt.key, changes)
			continue
		}
		if got != tt.kind {
			t.Errorf("Expected %s for %s, got %s", tt.kind, tt.key, got)
		}
	}

	// The agent itself only changed through its sub-agent; it must not be
	// double-attributed.
	if _, ok := changes[definition.ComponentKey{Kind: definition.KindAgent, ID: "support-agent"}]; ok {
		t.Error("Sub-agent change should not be attributed to the enclosing agent")
	}
}

func TestCompare_NilLocalDefinition(t *testing.T) {
	remote := baseDefinition()

	result, err := Compare(remote, nil, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.Matches {
		t.Fatal("Expected differences against an empty local definition")
	}

	changes := result.ComponentChanges("support-project")
	for _, key := range []definition.ComponentKey{
		{Kind: definition.KindTool, ID: "kb-search"},
		{Kind: definition.KindAgent, ID: "support-agent"},
		definition.SubAgentKey("support-agent", "router"),
	} {
		if changes[key] != DiffAdded {
			t.Errorf("Expected %s to be added, got %v", key, changes[key])
		}
	}
}
