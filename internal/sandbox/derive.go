package sandbox

import (
	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/pkg/sdk"
)

// Extras carries the standalone component declarations found outside the
// Project declaration's own reference graph.
type Extras struct {
	Agents             []*sdk.Agent
	Tools              []*sdk.Tool
	DataComponents     []*sdk.DataComponent
	ArtifactComponents []*sdk.ArtifactComponent
	StatusComponents   []*sdk.StatusComponent
	Credentials        []*sdk.Credential
	Functions          []*sdk.Function
}

// Derive converts an evaluated Project declaration back into the API's
// definition form: the inverse of rendering. SDK pointer shorthand becomes
// explicit identifiers, and component slices become identifier-keyed maps.
// Components referenced only through another component (a credential hung
// off a tool, a tool used by a sub-agent) are folded in as well, as are the
// standalone declarations in extras, so a tree that declares a component
// without listing it at the project level still round-trips to the same
// definition. The Project declaration wins on identifier collisions.
func Derive(p *sdk.Project, extras *Extras) *definition.Definition {
	if extras == nil {
		extras = &Extras{}
	}
	def := &definition.Definition{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Models:      deriveModels(p.Models),
		StopWhen:    deriveStopWhen(p.StopWhen),
	}

	addCredential := func(c *sdk.Credential) {
		if c == nil || c.ID == "" {
			return
		}
		if def.Credentials == nil {
			def.Credentials = make(map[string]definition.Credential)
		}
		if _, exists := def.Credentials[c.ID]; exists {
			return
		}
		def.Credentials[c.ID] = definition.Credential{
			ID:              c.ID,
			Type:            c.Type,
			StoreID:         c.StoreID,
			RetrievalParams: c.RetrievalParams,
		}
	}

	addTool := func(t *sdk.Tool) {
		if t == nil || t.ID == "" {
			return
		}
		if def.Tools == nil {
			def.Tools = make(map[string]definition.Tool)
		}
		if _, exists := def.Tools[t.ID]; exists {
			return
		}
		tool := definition.Tool{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			ServerURL:   t.ServerURL,
			Transport:   t.Transport,
			Headers:     t.Headers,
			ActiveTools: t.ActiveTools,
		}
		if t.Credential != nil {
			tool.CredentialID = t.Credential.ID
			addCredential(t.Credential)
		}
		def.Tools[t.ID] = tool
	}

	addData := func(dc *sdk.DataComponent) {
		if dc == nil || dc.ID == "" {
			return
		}
		if def.DataComponents == nil {
			def.DataComponents = make(map[string]definition.DataComponent)
		}
		if _, exists := def.DataComponents[dc.ID]; exists {
			return
		}
		def.DataComponents[dc.ID] = definition.DataComponent{
			ID: dc.ID, Name: dc.Name, Description: dc.Description, Props: dc.Props,
		}
	}

	addArtifact := func(ac *sdk.ArtifactComponent) {
		if ac == nil || ac.ID == "" {
			return
		}
		if def.ArtifactComponents == nil {
			def.ArtifactComponents = make(map[string]definition.ArtifactComponent)
		}
		if _, exists := def.ArtifactComponents[ac.ID]; exists {
			return
		}
		def.ArtifactComponents[ac.ID] = definition.ArtifactComponent{
			ID: ac.ID, Name: ac.Name, Description: ac.Description,
			SummaryProps: ac.SummaryProps, FullProps: ac.FullProps,
		}
	}

	addStatus := func(sc *sdk.StatusComponent) {
		if sc == nil || sc.ID == "" {
			return
		}
		if def.StatusComponents == nil {
			def.StatusComponents = make(map[string]definition.StatusComponent)
		}
		if _, exists := def.StatusComponents[sc.ID]; exists {
			return
		}
		def.StatusComponents[sc.ID] = definition.StatusComponent{
			ID: sc.ID, Type: sc.Type, Description: sc.Description, DetailsSchema: sc.DetailsSchema,
		}
	}

	addFunction := func(f *sdk.Function) {
		if f == nil || f.ID == "" {
			return
		}
		if def.Functions == nil {
			def.Functions = make(map[string]definition.Function)
		}
		if _, exists := def.Functions[f.ID]; exists {
			return
		}
		def.Functions[f.ID] = definition.Function{
			ID: f.ID, Description: f.Description, Code: f.Code, Dependencies: f.Dependencies,
		}
	}

	for _, c := range append(p.Credentials, extras.Credentials...) {
		addCredential(c)
	}
	for _, t := range append(p.Tools, extras.Tools...) {
		addTool(t)
	}
	for _, dc := range append(p.DataComponents, extras.DataComponents...) {
		addData(dc)
	}
	for _, ac := range append(p.ArtifactComponents, extras.ArtifactComponents...) {
		addArtifact(ac)
	}
	for _, sc := range append(p.StatusComponents, extras.StatusComponents...) {
		addStatus(sc)
	}
	for _, f := range append(p.Functions, extras.Functions...) {
		addFunction(f)
	}

	for _, a := range append(p.Agents, extras.Agents...) {
		if a == nil || a.ID == "" {
			continue
		}
		if def.Agents == nil {
			def.Agents = make(map[string]definition.Agent)
		}
		if _, exists := def.Agents[a.ID]; exists {
			continue
		}
		agent := definition.Agent{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Prompt:      a.Prompt,
			Models:      deriveModels(a.Models),
			StopWhen:    deriveStopWhen(a.StopWhen),
		}
		if a.DefaultSubAgent != nil {
			agent.DefaultSubAgentID = a.DefaultSubAgent.ID
		}
		for _, s := range a.SubAgents {
			if s == nil || s.ID == "" {
				continue
			}
			if agent.SubAgents == nil {
				agent.SubAgents = make(map[string]definition.SubAgent)
			}
			sub := definition.SubAgent{
				ID:            s.ID,
				Name:          s.Name,
				Description:   s.Description,
				Prompt:        s.Prompt,
				Models:        deriveModels(s.Models),
				CanDelegateTo: s.CanDelegateTo,
			}
			for _, use := range s.CanUse {
				if use.Tool == nil || use.Tool.ID == "" {
					continue
				}
				addTool(use.Tool)
				sub.CanUse = append(sub.CanUse, definition.ToolBinding{
					ToolID:    use.Tool.ID,
					Selection: use.Selection,
					Headers:   use.Headers,
				})
			}
			for _, dc := range s.DataComponents {
				if dc != nil && dc.ID != "" {
					addData(dc)
					sub.DataComponents = append(sub.DataComponents, dc.ID)
				}
			}
			for _, ac := range s.ArtifactComponents {
				if ac != nil && ac.ID != "" {
					addArtifact(ac)
					sub.ArtifactComponents = append(sub.ArtifactComponents, ac.ID)
				}
			}
			for _, sc := range s.StatusComponents {
				if sc != nil && sc.ID != "" {
					addStatus(sc)
					sub.StatusComponents = append(sub.StatusComponents, sc.ID)
				}
			}
			for _, f := range s.Functions {
				if f != nil && f.ID != "" {
					addFunction(f)
					sub.Functions = append(sub.Functions, f.ID)
				}
			}
			agent.SubAgents[s.ID] = sub
		}
		def.Agents[a.ID] = agent
	}

	return def
}

func deriveModels(m *sdk.ModelSettings) *definition.ModelSettings {
	if m == nil {
		return nil
	}
	return &definition.ModelSettings{
		Base:             m.Base,
		StructuredOutput: m.StructuredOutput,
		Summarizer:       m.Summarizer,
	}
}

func deriveStopWhen(s *sdk.StopWhen) *definition.StopWhen {
	if s == nil {
		return nil
	}
	return &definition.StopWhen{
		TransferCountIs: s.TransferCountIs,
		StepCountIs:     s.StepCountIs,
	}
}
