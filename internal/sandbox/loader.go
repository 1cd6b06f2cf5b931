package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/internal/locate"
	"github.com/inkeep/agents-sub000/pkg/sdk"
	"github.com/inkeep/agents-sub000/pkg/sdk/sdklib"
)

// LoadDefinition evaluates a project tree in a sandboxed yaegi interpreter
// and re-derives the definition it encodes. All declaration files share one
// logical namespace, so they are folded into a single package source and
// evaluated in one shot; the interpreter's own analysis resolves references
// between declarations regardless of file or declaration order. Only the
// stdlib and the sdk symbols are available to evaluated code.
//
// The definition is the union of the Project declaration's graph and every
// standalone component declaration the locator indexed: a component's
// membership in the project is its declaration's existence, not its presence
// in an entry-point list.
func LoadDefinition(ctx context.Context, root string, idx *locate.Index) (*definition.Definition, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load interpreter stdlib: %w", err)
	}
	if err := i.Use(sdklib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load sdk symbols: %w", err)
	}

	var src strings.Builder
	src.WriteString("package project\n\n")
	fmt.Fprintf(&src, "import sdk %q\n\n", "github.com/inkeep/agents-sub000/pkg/sdk")
	src.WriteString("var _ sdk.Project\n\n")
	for _, f := range idx.Files() {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		src.WriteString(stripHeader(string(content)))
		src.WriteString("\n")
	}

	if _, err := i.EvalWithContext(ctx, src.String()); err != nil {
		return nil, fmt.Errorf("failed to evaluate project tree: %w", err)
	}

	v, err := i.EvalWithContext(ctx, "project.Project")
	if err != nil {
		return nil, fmt.Errorf("tree declares no Project: %w", err)
	}
	proj, ok := v.Interface().(sdk.Project)
	if !ok {
		return nil, fmt.Errorf("Project declaration has type %T, want sdk.Project", v.Interface())
	}

	extras, err := collectDeclared(ctx, i, idx)
	if err != nil {
		return nil, err
	}
	return Derive(&proj, extras), nil
}

// collectDeclared reads back every standalone component declaration from the
// evaluated package. Inline literals are already part of their enclosing
// declaration's value; standalone sub-agent declarations are reached through
// the agents that reference them.
func collectDeclared(ctx context.Context, i *interp.Interpreter, idx *locate.Index) (*Extras, error) {
	extras := &Extras{}
	for _, loc := range idx.Locations() {
		if loc.Inline || loc.Kind == definition.KindProject || loc.Kind == definition.KindSubAgent {
			continue
		}
		v, err := i.EvalWithContext(ctx, "project."+loc.DeclaredName)
		if err != nil {
			return nil, fmt.Errorf("failed to read declaration %s: %w", loc.DeclaredName, err)
		}
		switch val := v.Interface().(type) {
		case sdk.Agent:
			extras.Agents = append(extras.Agents, &val)
		case sdk.Tool:
			extras.Tools = append(extras.Tools, &val)
		case sdk.DataComponent:
			extras.DataComponents = append(extras.DataComponents, &val)
		case sdk.ArtifactComponent:
			extras.ArtifactComponents = append(extras.ArtifactComponents, &val)
		case sdk.StatusComponent:
			extras.StatusComponents = append(extras.StatusComponents, &val)
		case sdk.Credential:
			extras.Credentials = append(extras.Credentials, &val)
		case sdk.Function:
			extras.Functions = append(extras.Functions, &val)
		default:
			return nil, fmt.Errorf("declaration %s has unexpected type %T", loc.DeclaredName, v.Interface())
		}
	}
	return extras, nil
}

// stripHeader removes the package clause and import declarations from one
// declaration file, leaving only its declarations; the loader supplies a
// single shared package clause and sdk import instead.
func stripHeader(src string) string {
	var out strings.Builder
	inImportBlock := false
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if inImportBlock {
			if strings.HasPrefix(trimmed, ")") {
				inImportBlock = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, "package ") {
			continue
		}
		if strings.HasPrefix(trimmed, "import (") {
			inImportBlock = true
			continue
		}
		if strings.HasPrefix(trimmed, "import ") {
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String()
}

// DeriveTree scans and loads a project tree, returning the definition it
// encodes. A tree with no Project declaration yields an empty definition:
// every remote component is then new.
func DeriveTree(ctx context.Context, root string) (*definition.Definition, *locate.Index, error) {
	idx, err := locate.Scan(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	if !idx.HasKind(definition.KindProject) {
		return &definition.Definition{}, idx, nil
	}

	def, err := LoadDefinition(ctx, root, idx)
	if err != nil {
		return nil, nil, err
	}
	return def, idx, nil
}
