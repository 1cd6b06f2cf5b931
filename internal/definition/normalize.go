package definition

// PruneDanglingReferences drops cross-references to components the definition
// itself does not contain. The API can ship a reference whose target was
// deleted remotely; a rendered declaration has nothing to point at for it, so
// the dangling identifier is removed before the definition is compared or
// rendered. Without this the derived local tree could never round-trip equal.
func (d *Definition) PruneDanglingReferences() {
	for aid, agent := range d.Agents {
		for sid, sub := range agent.SubAgents {
			var uses []ToolBinding
			for _, binding := range sub.CanUse {
				if _, ok := d.Tools[binding.ToolID]; ok {
					uses = append(uses, binding)
				}
			}
			sub.CanUse = uses
			sub.CanDelegateTo = keepKnown(sub.CanDelegateTo, agent.SubAgents)
			sub.DataComponents = keepKnown(sub.DataComponents, d.DataComponents)
			sub.ArtifactComponents = keepKnown(sub.ArtifactComponents, d.ArtifactComponents)
			sub.StatusComponents = keepKnown(sub.StatusComponents, d.StatusComponents)
			sub.Functions = keepKnown(sub.Functions, d.Functions)
			agent.SubAgents[sid] = sub
		}
		if agent.DefaultSubAgentID != "" {
			if _, ok := agent.SubAgents[agent.DefaultSubAgentID]; !ok {
				agent.DefaultSubAgentID = ""
			}
		}
		d.Agents[aid] = agent
	}
	for tid, tool := range d.Tools {
		if tool.CredentialID == "" {
			continue
		}
		if _, ok := d.Credentials[tool.CredentialID]; !ok {
			tool.CredentialID = ""
			d.Tools[tid] = tool
		}
	}
}

func keepKnown[V any](ids []string, known map[string]V) []string {
	var out []string
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
