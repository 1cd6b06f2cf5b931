package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// PackageName is the declaration namespace every synchronized file lives in.
// The sandbox loader evaluates all files into this one namespace regardless
// of directory, so generated declarations can reference each other by name.
const PackageName = "project"

// SDKImport is the sole import a generated file carries.
const SDKImport = "github.com/inkeep/agents-sub000/pkg/sdk"

const fileHeader = "// Code generated by inkeep sync. Components may be edited by hand;\n" +
	"// edits are reconciled against the remote definition on the next sync.\n"

// File assembles a complete declaration file from rendered declarations.
func File(decls ...string) string {
	var b strings.Builder
	b.WriteString(fileHeader)
	fmt.Fprintf(&b, "package %s\n\n", PackageName)
	fmt.Fprintf(&b, "import \"%s\"\n", SDKImport)
	for _, d := range decls {
		b.WriteString("\n")
		b.WriteString(d)
	}
	return b.String()
}

// Declaration renders the canonical `var` declaration for one component of
// the definition. It is a total function of (definition record, key, naming
// context); references to components absent from the definition are dropped,
// since only definition-known components have a declared name to point at.
func Declaration(def *definition.Definition, key definition.ComponentKey, names *NamingContext) (string, error) {
	name, ok := names.Declared(key)
	if key.Kind == definition.KindProject {
		name, ok = "Project", true
	}
	if !ok {
		return "", fmt.Errorf("no declared name for component %s", key)
	}

	record, ok := def.Component(key)
	if !ok && key.Kind != definition.KindProject {
		return "", fmt.Errorf("component %s not present in definition", key)
	}

	switch key.Kind {
	case definition.KindProject:
		return renderProject(def, names), nil
	case definition.KindAgent:
		return renderAgent(def, record.(definition.Agent), name, names), nil
	case definition.KindSubAgent:
		agentID, _, _ := definition.SplitSubAgentID(key.ID)
		return renderSubAgent(def, def.Agents[agentID], record.(definition.SubAgent), name, names), nil
	case definition.KindTool:
		return renderTool(def, record.(definition.Tool), name, names), nil
	case definition.KindDataComponent:
		return renderDataComponent(record.(definition.DataComponent), name), nil
	case definition.KindArtifactComponent:
		return renderArtifactComponent(record.(definition.ArtifactComponent), name), nil
	case definition.KindStatusComponent:
		return renderStatusComponent(record.(definition.StatusComponent), name), nil
	case definition.KindCredential:
		return renderCredential(record.(definition.Credential), name), nil
	case definition.KindFunction:
		return renderFunction(record.(definition.Function), name), nil
	}
	return "", fmt.Errorf("unknown component kind %q", key.Kind)
}

// decl accumulates the fields of one composite literal.
type decl struct {
	b strings.Builder
}

func newDecl(name, sdkType string) *decl {
	d := &decl{}
	fmt.Fprintf(&d.b, "var %s = sdk.%s{\n", name, sdkType)
	return d
}

func (d *decl) field(name, value string) {
	fmt.Fprintf(&d.b, "\t%s: %s,\n", name, value)
}

func (d *decl) stringField(name, value string) {
	if value != "" {
		d.field(name, strconv.Quote(value))
	}
}

func (d *decl) String() string {
	d.b.WriteString("}\n")
	return d.b.String()
}

func renderProject(def *definition.Definition, names *NamingContext) string {
	d := newDecl("Project", "Project")
	d.stringField("ID", def.ID)
	d.stringField("Name", def.Name)
	d.stringField("Description", def.Description)
	if m := modelSettings(def.Models, "\t"); m != "" {
		d.field("Models", m)
	}
	if s := stopWhen(def.StopWhen, "\t"); s != "" {
		d.field("StopWhen", s)
	}
	// Only agents are referenced from the entry point. Every other component
	// is a standalone declaration discovered by scanning the tree, so adding
	// one never rewrites this file.
	refList(d, "Agents", "Agent", mapIDs(def.Agents), definition.KindAgent, names)
	return d.String()
}

func renderAgent(def *definition.Definition, agent definition.Agent, name string, names *NamingContext) string {
	d := newDecl(name, "Agent")
	d.stringField("ID", agent.ID)
	d.stringField("Name", agent.Name)
	d.stringField("Description", agent.Description)
	d.stringField("Prompt", agent.Prompt)
	if m := modelSettings(agent.Models, "\t"); m != "" {
		d.field("Models", m)
	}
	if s := stopWhen(agent.StopWhen, "\t"); s != "" {
		d.field("StopWhen", s)
	}
	if agent.DefaultSubAgentID != "" {
		if _, ok := agent.SubAgents[agent.DefaultSubAgentID]; ok {
			if sub, ok := names.Declared(definition.SubAgentKey(agent.ID, agent.DefaultSubAgentID)); ok {
				d.field("DefaultSubAgent", "&"+sub)
			}
		}
	}
	subIDs := mapIDs(agent.SubAgents)
	var subRefs []string
	for _, sid := range subIDs {
		if sub, ok := names.Declared(definition.SubAgentKey(agent.ID, sid)); ok {
			subRefs = append(subRefs, "&"+sub)
		}
	}
	if len(subRefs) > 0 {
		d.field("SubAgents", pointerList("sdk.SubAgent", subRefs, "\t"))
	}
	return d.String()
}

func renderSubAgent(def *definition.Definition, agent definition.Agent, sub definition.SubAgent, name string, names *NamingContext) string {
	d := newDecl(name, "SubAgent")
	d.stringField("ID", sub.ID)
	d.stringField("Name", sub.Name)
	d.stringField("Description", sub.Description)
	d.stringField("Prompt", sub.Prompt)
	if m := modelSettings(sub.Models, "\t"); m != "" {
		d.field("Models", m)
	}

	var uses []string
	for _, binding := range sub.CanUse {
		toolName, ok := names.Declared(definition.ComponentKey{Kind: definition.KindTool, ID: binding.ToolID})
		if !ok {
			continue
		}
		if _, exists := def.Tools[binding.ToolID]; !exists {
			continue
		}
		var fields []string
		fields = append(fields, "Tool: &"+toolName)
		if len(binding.Selection) > 0 {
			fields = append(fields, "Selection: "+stringSlice(binding.Selection))
		}
		if len(binding.Headers) > 0 {
			fields = append(fields, "Headers: "+stringMap(binding.Headers, "\t\t"))
		}
		uses = append(uses, "{"+strings.Join(fields, ", ")+"}")
	}
	if len(uses) > 0 {
		var b strings.Builder
		b.WriteString("[]sdk.ToolUse{\n")
		for _, u := range uses {
			fmt.Fprintf(&b, "\t\t%s,\n", u)
		}
		b.WriteString("\t}")
		d.field("CanUse", b.String())
	}

	var delegates []string
	for _, target := range sub.CanDelegateTo {
		if _, exists := agent.SubAgents[target]; exists {
			delegates = append(delegates, target)
		}
	}
	if len(delegates) > 0 {
		d.field("CanDelegateTo", stringSlice(delegates))
	}

	componentRefs(d, def, "DataComponents", "DataComponent", sub.DataComponents, definition.KindDataComponent, names)
	componentRefs(d, def, "ArtifactComponents", "ArtifactComponent", sub.ArtifactComponents, definition.KindArtifactComponent, names)
	componentRefs(d, def, "StatusComponents", "StatusComponent", sub.StatusComponents, definition.KindStatusComponent, names)
	componentRefs(d, def, "Functions", "Function", sub.Functions, definition.KindFunction, names)
	return d.String()
}

func renderTool(def *definition.Definition, tool definition.Tool, name string, names *NamingContext) string {
	d := newDecl(name, "Tool")
	d.stringField("ID", tool.ID)
	d.stringField("Name", tool.Name)
	d.stringField("Description", tool.Description)
	d.stringField("ServerURL", tool.ServerURL)
	d.stringField("Transport", tool.Transport)
	if len(tool.Headers) > 0 {
		d.field("Headers", stringMap(tool.Headers, "\t"))
	}
	if len(tool.ActiveTools) > 0 {
		d.field("ActiveTools", stringSlice(tool.ActiveTools))
	}
	if tool.CredentialID != "" {
		if _, exists := def.Credentials[tool.CredentialID]; exists {
			if cred, ok := names.Declared(definition.ComponentKey{Kind: definition.KindCredential, ID: tool.CredentialID}); ok {
				d.field("Credential", "&"+cred)
			}
		}
	}
	return d.String()
}

func renderDataComponent(dc definition.DataComponent, name string) string {
	d := newDecl(name, "DataComponent")
	d.stringField("ID", dc.ID)
	d.stringField("Name", dc.Name)
	d.stringField("Description", dc.Description)
	if len(dc.Props) > 0 {
		d.field("Props", literal(dc.Props, "\t"))
	}
	return d.String()
}

func renderArtifactComponent(ac definition.ArtifactComponent, name string) string {
	d := newDecl(name, "ArtifactComponent")
	d.stringField("ID", ac.ID)
	d.stringField("Name", ac.Name)
	d.stringField("Description", ac.Description)
	if len(ac.SummaryProps) > 0 {
		d.field("SummaryProps", literal(ac.SummaryProps, "\t"))
	}
	if len(ac.FullProps) > 0 {
		d.field("FullProps", literal(ac.FullProps, "\t"))
	}
	return d.String()
}

func renderStatusComponent(sc definition.StatusComponent, name string) string {
	d := newDecl(name, "StatusComponent")
	d.stringField("ID", sc.ID)
	d.stringField("Type", sc.Type)
	d.stringField("Description", sc.Description)
	if len(sc.DetailsSchema) > 0 {
		d.field("DetailsSchema", literal(sc.DetailsSchema, "\t"))
	}
	return d.String()
}

func renderCredential(c definition.Credential, name string) string {
	d := newDecl(name, "Credential")
	d.stringField("ID", c.ID)
	d.stringField("Type", c.Type)
	d.stringField("StoreID", c.StoreID)
	if len(c.RetrievalParams) > 0 {
		d.field("RetrievalParams", stringMap(c.RetrievalParams, "\t"))
	}
	return d.String()
}

func renderFunction(f definition.Function, name string) string {
	d := newDecl(name, "Function")
	d.stringField("ID", f.ID)
	d.stringField("Description", f.Description)
	d.stringField("Code", f.Code)
	if len(f.Dependencies) > 0 {
		d.field("Dependencies", stringMap(f.Dependencies, "\t"))
	}
	return d.String()
}

// componentRefs renders a pointer list for identifier references, dropping
// any identifier the definition does not know.
func componentRefs(d *decl, def *definition.Definition, field, sdkType string, ids []string, kind definition.Kind, names *NamingContext) {
	var refs []string
	for _, id := range ids {
		if _, exists := def.Component(definition.ComponentKey{Kind: kind, ID: id}); !exists {
			continue
		}
		if name, ok := names.Declared(definition.ComponentKey{Kind: kind, ID: id}); ok {
			refs = append(refs, "&"+name)
		}
	}
	if len(refs) > 0 {
		d.field(field, pointerList("sdk."+sdkType, refs, "\t"))
	}
}

// refList renders the project-level pointer list for one component kind.
func refList(d *decl, field, sdkType string, ids []string, kind definition.Kind, names *NamingContext) {
	var refs []string
	for _, id := range ids {
		if name, ok := names.Declared(definition.ComponentKey{Kind: kind, ID: id}); ok {
			refs = append(refs, "&"+name)
		}
	}
	if len(refs) > 0 {
		d.field(field, pointerList("sdk."+sdkType, refs, "\t"))
	}
}

func pointerList(sdkType string, refs []string, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[]*%s{\n", sdkType)
	for _, r := range refs {
		fmt.Fprintf(&b, "%s\t%s,\n", indent, r)
	}
	b.WriteString(indent + "}")
	return b.String()
}

func modelSettings(m *definition.ModelSettings, indent string) string {
	if m == nil || (m.Base == "" && m.StructuredOutput == "" && m.Summarizer == "") {
		return ""
	}
	var b strings.Builder
	b.WriteString("&sdk.ModelSettings{\n")
	if m.Base != "" {
		fmt.Fprintf(&b, "%s\tBase: %s,\n", indent, strconv.Quote(m.Base))
	}
	if m.StructuredOutput != "" {
		fmt.Fprintf(&b, "%s\tStructuredOutput: %s,\n", indent, strconv.Quote(m.StructuredOutput))
	}
	if m.Summarizer != "" {
		fmt.Fprintf(&b, "%s\tSummarizer: %s,\n", indent, strconv.Quote(m.Summarizer))
	}
	b.WriteString(indent + "}")
	return b.String()
}

func stopWhen(s *definition.StopWhen, indent string) string {
	if s == nil || (s.TransferCountIs == 0 && s.StepCountIs == 0) {
		return ""
	}
	var b strings.Builder
	b.WriteString("&sdk.StopWhen{\n")
	if s.TransferCountIs != 0 {
		fmt.Fprintf(&b, "%s\tTransferCountIs: %d,\n", indent, s.TransferCountIs)
	}
	if s.StepCountIs != 0 {
		fmt.Fprintf(&b, "%s\tStepCountIs: %d,\n", indent, s.StepCountIs)
	}
	b.WriteString(indent + "}")
	return b.String()
}

// mapIDs returns sorted identifiers of any component map.
func mapIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
