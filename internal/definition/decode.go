package definition

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses a JSON-encoded definition and validates it. Decoding is the
// only place loose JSON is handled; everything after this operates on the
// closed types.
func Decode(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	if err := Validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks structural invariants the JSON schema alone cannot express:
// required identifiers, and map keys agreeing with the record's own id field.
func Validate(def *Definition) error {
	if err := validate.Struct(def); err != nil {
		return fmt.Errorf("definition failed validation: %w", err)
	}
	if err := checkKeyedIDs(def); err != nil {
		return err
	}
	return nil
}

func checkKeyedIDs(def *Definition) error {
	for id, agent := range def.Agents {
		if agent.ID != "" && agent.ID != id {
			return fmt.Errorf("agent keyed %q declares id %q", id, agent.ID)
		}
		for sid, sub := range agent.SubAgents {
			if sub.ID != "" && sub.ID != sid {
				return fmt.Errorf("sub-agent keyed %q in agent %q declares id %q", sid, id, sub.ID)
			}
		}
	}
	for id, tool := range def.Tools {
		if tool.ID != "" && tool.ID != id {
			return fmt.Errorf("tool keyed %q declares id %q", id, tool.ID)
		}
	}
	for id, c := range def.Credentials {
		if c.ID != "" && c.ID != id {
			return fmt.Errorf("credential keyed %q declares id %q", id, c.ID)
		}
	}
	return nil
}

// ComponentKeys returns every component key in the definition, parents before
// their sub-agents, in no further guaranteed order.
func (d *Definition) ComponentKeys() []ComponentKey {
	var keys []ComponentKey
	for id := range d.Credentials {
		keys = append(keys, ComponentKey{Kind: KindCredential, ID: id})
	}
	for id := range d.Functions {
		keys = append(keys, ComponentKey{Kind: KindFunction, ID: id})
	}
	for id := range d.DataComponents {
		keys = append(keys, ComponentKey{Kind: KindDataComponent, ID: id})
	}
	for id := range d.ArtifactComponents {
		keys = append(keys, ComponentKey{Kind: KindArtifactComponent, ID: id})
	}
	for id := range d.StatusComponents {
		keys = append(keys, ComponentKey{Kind: KindStatusComponent, ID: id})
	}
	for id := range d.Tools {
		keys = append(keys, ComponentKey{Kind: KindTool, ID: id})
	}
	for id, agent := range d.Agents {
		keys = append(keys, ComponentKey{Kind: KindAgent, ID: id})
		for sid := range agent.SubAgents {
			keys = append(keys, SubAgentKey(id, sid))
		}
	}
	return keys
}
