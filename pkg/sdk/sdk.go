// Package sdk defines the declaration surface of a local Inkeep project tree.
//
// A synchronized project is a set of Go source files that declare components
// as package-level vars of these types, with the entry point declaring
// `var Project = sdk.Project{...}`. The types use pointer shorthand for
// cross-references (an agent points at the tool var it uses); the sync
// engine normalizes that shorthand back into the management API's
// explicit-identifier form when it re-derives a definition from source.
package sdk

// Project is the top-level declaration of a synchronized project.
type Project struct {
	ID          string
	Name        string
	Description string

	Models   *ModelSettings
	StopWhen *StopWhen

	Agents             []*Agent
	Tools              []*Tool
	DataComponents     []*DataComponent
	ArtifactComponents []*ArtifactComponent
	StatusComponents   []*StatusComponent
	Credentials        []*Credential
	Functions          []*Function
}

// ModelSettings binds the models a project or agent runs on.
type ModelSettings struct {
	Base             string
	StructuredOutput string
	Summarizer       string
}

// StopWhen is the termination policy for an agent conversation.
type StopWhen struct {
	TransferCountIs int
	StepCountIs     int
}

// Agent is a top-level agent graph with its sub-agents.
type Agent struct {
	ID          string
	Name        string
	Description string
	Prompt      string

	Models   *ModelSettings
	StopWhen *StopWhen

	// DefaultSubAgent receives the conversation first.
	DefaultSubAgent *SubAgent
	SubAgents       []*SubAgent
}

// SubAgent is one member of an agent graph. Delegation targets are referenced
// by identifier rather than pointer so that mutually-delegating sub-agents do
// not form an initialization cycle.
type SubAgent struct {
	ID          string
	Name        string
	Description string
	Prompt      string

	Models *ModelSettings

	CanUse             []ToolUse
	CanDelegateTo      []string
	DataComponents     []*DataComponent
	ArtifactComponents []*ArtifactComponent
	StatusComponents   []*StatusComponent
	Functions          []*Function
}

// ToolUse grants a sub-agent access to a tool, optionally narrowed to a
// subset of the tool's operations.
type ToolUse struct {
	Tool      *Tool
	Selection []string
	Headers   map[string]string
}

// Tool is an MCP tool server registration.
type Tool struct {
	ID          string
	Name        string
	Description string
	ServerURL   string
	Transport   string
	Headers     map[string]string
	ActiveTools []string
	Credential  *Credential
}

// DataComponent is a typed structured-output schema agents can emit.
type DataComponent struct {
	ID          string
	Name        string
	Description string
	Props       map[string]any
}

// ArtifactComponent describes an artifact agents can produce, with separate
// summary and full-detail schemas.
type ArtifactComponent struct {
	ID          string
	Name        string
	Description string
	SummaryProps map[string]any
	FullProps    map[string]any
}

// StatusComponent is a status-indicator surface an agent can update while it
// works.
type StatusComponent struct {
	ID            string
	Type          string
	Description   string
	DetailsSchema map[string]any
}

// Credential references a secret held in a credential store. Secret values
// never appear in source; RetrievalParams holds only the non-secret lookup
// parameters that are safe to commit.
type Credential struct {
	ID              string
	Type            string
	StoreID         string
	RetrievalParams map[string]string
}

// Function is an inline function implementation callable by sub-agents.
type Function struct {
	ID           string
	Description  string
	Code         string
	Dependencies map[string]string
}
