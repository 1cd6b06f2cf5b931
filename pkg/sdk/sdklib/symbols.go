// Package sdklib exports the sdk package's symbols for use inside a yaegi
// interpreter, so that a project tree can be evaluated in a sandbox without
// compiling it. The map follows the layout produced by `yaegi extract`.
package sdklib

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/inkeep/agents-sub000/pkg/sdk"
)

// Symbols maps the sdk import path to its exported types.
var Symbols = interp.Exports{
	"github.com/inkeep/agents-sub000/pkg/sdk/sdk": map[string]reflect.Value{
		"Agent":             reflect.ValueOf((*sdk.Agent)(nil)),
		"ArtifactComponent": reflect.ValueOf((*sdk.ArtifactComponent)(nil)),
		"Credential":        reflect.ValueOf((*sdk.Credential)(nil)),
		"DataComponent":     reflect.ValueOf((*sdk.DataComponent)(nil)),
		"Function":          reflect.ValueOf((*sdk.Function)(nil)),
		"ModelSettings":     reflect.ValueOf((*sdk.ModelSettings)(nil)),
		"Project":           reflect.ValueOf((*sdk.Project)(nil)),
		"StatusComponent":   reflect.ValueOf((*sdk.StatusComponent)(nil)),
		"StopWhen":          reflect.ValueOf((*sdk.StopWhen)(nil)),
		"SubAgent":          reflect.ValueOf((*sdk.SubAgent)(nil)),
		"Tool":              reflect.ValueOf((*sdk.Tool)(nil)),
		"ToolUse":           reflect.ValueOf((*sdk.ToolUse)(nil)),
	},
}
