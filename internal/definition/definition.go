// Package definition holds the typed model of a project definition as the
// management API describes it: the canonical, declarative record of a project
// and every component in it. Records are decoded once at ingestion into
// closed structs; everything downstream (comparison, rendering, dependency
// resolution) switches over these types rather than probing loose maps.
package definition

// Definition is the full declarative description of one project.
type Definition struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Models   *ModelSettings `json:"models,omitempty"`
	StopWhen *StopWhen      `json:"stopWhen,omitempty"`

	Agents             map[string]Agent             `json:"agents,omitempty"`
	Tools              map[string]Tool              `json:"tools,omitempty"`
	DataComponents     map[string]DataComponent     `json:"dataComponents,omitempty"`
	ArtifactComponents map[string]ArtifactComponent `json:"artifactComponents,omitempty"`
	StatusComponents   map[string]StatusComponent   `json:"statusComponents,omitempty"`
	Credentials        map[string]Credential        `json:"credentials,omitempty"`
	Functions          map[string]Function          `json:"functions,omitempty"`

	// Audit fields from the API; volatile, never compared.
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ModelSettings binds a project or agent to its models.
type ModelSettings struct {
	Base             string `json:"base,omitempty"`
	StructuredOutput string `json:"structuredOutput,omitempty"`
	Summarizer       string `json:"summarizer,omitempty"`
}

// StopWhen is a termination policy.
type StopWhen struct {
	TransferCountIs int `json:"transferCountIs,omitempty"`
	StepCountIs     int `json:"stepCountIs,omitempty"`
}

// Agent is a top-level agent graph.
type Agent struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Prompt      string `json:"prompt,omitempty"`

	Models   *ModelSettings `json:"models,omitempty"`
	StopWhen *StopWhen      `json:"stopWhen,omitempty"`

	DefaultSubAgentID string              `json:"defaultSubAgentId,omitempty"`
	SubAgents         map[string]SubAgent `json:"subAgents,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// SubAgent is one member of an agent graph. All cross-references are by
// identifier; this is the API's explicit form, which SDK pointer shorthand
// normalizes back into.
type SubAgent struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Prompt      string `json:"prompt,omitempty"`

	Models *ModelSettings `json:"models,omitempty"`

	CanUse             []ToolBinding `json:"canUse,omitempty"`
	CanDelegateTo      []string      `json:"canDelegateTo,omitempty"`
	DataComponents     []string      `json:"dataComponents,omitempty"`
	ArtifactComponents []string      `json:"artifactComponents,omitempty"`
	StatusComponents   []string      `json:"statusComponents,omitempty"`
	Functions          []string      `json:"functions,omitempty"`
}

// ToolBinding grants a sub-agent access to one tool.
type ToolBinding struct {
	ToolID    string            `json:"toolId" validate:"required"`
	Selection []string          `json:"toolSelection,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// Tool is an MCP tool server registration.
type Tool struct {
	ID          string            `json:"id" validate:"required"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ServerURL   string            `json:"serverUrl,omitempty"`
	Transport   string            `json:"transport,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ActiveTools []string          `json:"activeTools,omitempty"`
	CredentialID string           `json:"credentialReferenceId,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// DataComponent is a typed structured-output schema.
type DataComponent struct {
	ID          string         `json:"id" validate:"required"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
}

// ArtifactComponent describes an artifact with summary and full schemas.
type ArtifactComponent struct {
	ID           string         `json:"id" validate:"required"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	SummaryProps map[string]any `json:"summaryProps,omitempty"`
	FullProps    map[string]any `json:"fullProps,omitempty"`
}

// StatusComponent is a status-indicator surface.
type StatusComponent struct {
	ID            string         `json:"id" validate:"required"`
	Type          string         `json:"type,omitempty"`
	Description   string         `json:"description,omitempty"`
	DetailsSchema map[string]any `json:"detailsSchema,omitempty"`
}

// Credential references a secret in a credential store. The API never ships
// secret values; RetrievalParams holds lookup parameters only.
type Credential struct {
	ID              string            `json:"id" validate:"required"`
	Type            string            `json:"type,omitempty"`
	StoreID         string            `json:"credentialStoreId,omitempty"`
	RetrievalParams map[string]string `json:"retrievalParams,omitempty"`
}

// Function is an inline function implementation.
type Function struct {
	ID           string            `json:"id" validate:"required"`
	Description  string            `json:"description,omitempty"`
	Code         string            `json:"code,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
