package render

import (
	"strings"
	"testing"

	"github.com/inkeep/agents-sub000/internal/definition"
)

func testDefinition() *definition.Definition {
	return &definition.Definition{
		ID:   "support-project",
		Name: "Support",
		Agents: map[string]definition.Agent{
			"support-agent": {
				ID:                "support-agent",
				Name:              "Support Agent",
				Prompt:            "You help customers.",
				DefaultSubAgentID: "router",
				SubAgents: map[string]definition.SubAgent{
					"router": {
						ID:     "router",
						Prompt: "Route the question.",
						CanUse: []definition.ToolBinding{
							{ToolID: "weather-forecast"},
							{ToolID: "not-in-remote"},
						},
						CanDelegateTo:  []string{"billing", "missing-target"},
						DataComponents: []string{"order-summary"},
					},
					"billing": {ID: "billing", Prompt: "Handle billing."},
				},
			},
		},
		Tools: map[string]definition.Tool{
			"weather-forecast": {
				ID:        "weather-forecast",
				Name:      "Weather Forecast",
				ServerURL: "https://mcp.example.com/weather",
			},
		},
		DataComponents: map[string]definition.DataComponent{
			"order-summary": {
				ID:   "order-summary",
				Name: "Order Summary",
				Props: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"total": map[string]any{"type": "number"},
					},
				},
			},
		},
	}
}

func TestDeclaration_Deterministic(t *testing.T) {
	def := testDefinition()
	key := definition.ComponentKey{Kind: definition.KindTool, ID: "weather-forecast"}

	first, err := Declaration(def, key, BuildNames(def))
	if err != nil {
		t.Fatalf("Declaration failed: %v", err)
	}
	second, err := Declaration(def, key, BuildNames(def))
	if err != nil {
		t.Fatalf("Declaration failed: %v", err)
	}

	if first != second {
		t.Errorf("Rendering is not deterministic:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(first, `var weatherForecast = sdk.Tool{`) {
		t.Errorf("Expected declared name weatherForecast, got:\n%s", first)
	}
	if !strings.Contains(first, `ID: "weather-forecast"`) {
		t.Errorf("Expected id field, got:\n%s", first)
	}
}

func TestBuildNames_CollisionByNormalization(t *testing.T) {
	def := &definition.Definition{
		ID: "p",
		Tools: map[string]definition.Tool{
			"weather-forecast": {ID: "weather-forecast"},
			"weather_forecast": {ID: "weather_forecast"},
			"weather.forecast": {ID: "weather.forecast"},
		},
	}
	names := BuildNames(def)

	seen := make(map[string]string)
	for id := range def.Tools {
		name, ok := names.Declared(definition.ComponentKey{Kind: definition.KindTool, ID: id})
		if !ok {
			t.Fatalf("No name assigned for %s", id)
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("Identifiers %q and %q share declared name %q", prev, id, name)
		}
		seen[name] = id
	}
}

func TestBuildNames_CrossKindCollision(t *testing.T) {
	def := &definition.Definition{
		ID:    "p",
		Tools: map[string]definition.Tool{"search": {ID: "search"}},
		Functions: map[string]definition.Function{
			"search": {ID: "search"},
		},
	}
	names := BuildNames(def)

	toolName, _ := names.Declared(definition.ComponentKey{Kind: definition.KindTool, ID: "search"})
	fnName, _ := names.Declared(definition.ComponentKey{Kind: definition.KindFunction, ID: "search"})
	if toolName == fnName {
		t.Errorf("Cross-kind collision not resolved: both %q", toolName)
	}
	if !strings.HasPrefix(toolName, "search") || !strings.HasPrefix(fnName, "search") {
		t.Errorf("Collision suffixing should preserve the base name, got %q / %q", toolName, fnName)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"weather-forecast", "weatherForecast"},
		{"weather_forecast", "weatherForecast"},
		{"Support Agent", "supportAgent"},
		{"9to5", "_9to5"},
		{"kb.search.v2", "kbSearchV2"},
		{"!!!", "component"},
	}
	for _, tt := range tests {
		if got := Fold(tt.id); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRenderSubAgent_DropsUnknownReferences(t *testing.T) {
	def := testDefinition()
	names := BuildNames(def)

	text, err := Declaration(def, definition.SubAgentKey("support-agent", "router"), names)
	if err != nil {
		t.Fatalf("Declaration failed: %v", err)
	}

	if strings.Contains(text, "not-in-remote") || strings.Contains(text, "notInRemote") {
		t.Errorf("Reference to unknown tool should be dropped:\n%s", text)
	}
	if strings.Contains(text, "missing-target") {
		t.Errorf("Delegation to unknown sub-agent should be dropped:\n%s", text)
	}
	if !strings.Contains(text, "Tool: &weatherForecast") {
		t.Errorf("Expected known tool reference:\n%s", text)
	}
	if !strings.Contains(text, `CanDelegateTo: []string{"billing"}`) {
		t.Errorf("Expected delegation to billing:\n%s", text)
	}
	if !strings.Contains(text, "DataComponents: []*sdk.DataComponent{\n\t\t&orderSummary,\n\t}") {
		t.Errorf("Expected data component reference:\n%s", text)
	}
}

func TestRenderProject_File(t *testing.T) {
	def := testDefinition()
	names := BuildNames(def)

	decl, err := Declaration(def, definition.ComponentKey{Kind: definition.KindProject, ID: def.ID}, names)
	if err != nil {
		t.Fatalf("Declaration failed: %v", err)
	}
	file := File(decl)

	for _, want := range []string{
		"package project",
		`import "github.com/inkeep/agents-sub000/pkg/sdk"`,
		"var Project = sdk.Project{",
		`ID: "support-project"`,
		"&supportAgent",
	} {
		if !strings.Contains(file, want) {
			t.Errorf("Expected file to contain %q:\n%s", want, file)
		}
	}
	// The entry point only references agents; other components are standalone
	// declarations found by scanning.
	if strings.Contains(file, "&weatherForecast") {
		t.Errorf("Entry point must not reference tools:\n%s", file)
	}
}

func TestRenderDataComponent_SortedSchemaKeys(t *testing.T) {
	def := testDefinition()
	names := BuildNames(def)
	key := definition.ComponentKey{Kind: definition.KindDataComponent, ID: "order-summary"}

	text, err := Declaration(def, key, names)
	if err != nil {
		t.Fatalf("Declaration failed: %v", err)
	}

	// "properties" sorts before "type".
	propIdx := strings.Index(text, `"properties"`)
	typeIdx := strings.Index(text, `"type"`)
	if propIdx == -1 || typeIdx == -1 || propIdx > typeIdx {
		t.Errorf("Schema keys not rendered in sorted order:\n%s", text)
	}
}
