// Package locate scans a project tree and maps each component identifier to
// the file and declaration that currently holds it. Detection is syntactic:
// a component is "found" when its declaration form is recognized by the
// parser, never by evaluating code. The index is rebuilt from scratch on
// every sync and is never persisted.
package locate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"golang.org/x/sync/errgroup"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// Location records where a component currently lives in the local tree.
type Location struct {
	Identifier   string
	Kind         definition.Kind
	FilePath     string // relative to the project root
	DeclaredName string
	// Inline marks a component declared as a nested literal inside another
	// component's declaration rather than as its own var. DeclaredName then
	// names the enclosing declaration.
	Inline bool
}

// FileInfo describes one scanned source file.
type FileInfo struct {
	Path string
	// Rank orders files for sandbox evaluation: files declaring only
	// referenced kinds come before files declaring referencing kinds.
	Rank int
}

// Index is the result of one scan.
type Index struct {
	locations map[definition.ComponentKey]Location
	files     map[string]int // path -> rank
}

// skipDirs are directory names never scanned: build output, dependency
// trees, and the sync engine's own scratch space.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// sdkKinds maps the sdk type name in a declaration to its component kind.
var sdkKinds = map[string]definition.Kind{
	"Project":           definition.KindProject,
	"Agent":             definition.KindAgent,
	"SubAgent":          definition.KindSubAgent,
	"Tool":              definition.KindTool,
	"DataComponent":     definition.KindDataComponent,
	"ArtifactComponent": definition.KindArtifactComponent,
	"StatusComponent":   definition.KindStatusComponent,
	"Credential":        definition.KindCredential,
	"Function":          definition.KindFunction,
}

// Scan walks every Go source file under root and indexes the component
// declarations it finds. Files are parsed concurrently, one parser per
// worker, since tree-sitter parsers are not safe for shared use.
func Scan(ctx context.Context, root string) (*Index, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".go") {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project root: %w", err)
	}
	sort.Strings(paths)

	idx := &Index{
		locations: make(map[definition.ComponentKey]Location),
		files:     make(map[string]int),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, rel := range paths {
		g.Go(func() error {
			content, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			locs, err := scanFile(ctx, rel, content)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			rank := len(definition.Kinds)
			for _, loc := range locs {
				key := indexKey(loc)
				// First declaration wins; duplicates are a local-tree
				// defect surfaced later by validation.
				if _, exists := idx.locations[key]; !exists {
					idx.locations[key] = loc
				}
				if !loc.Inline && loc.Kind.EvalRank() < rank {
					rank = loc.Kind.EvalRank()
				}
			}
			idx.files[rel] = rank
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

// indexKey keys sub-agents by bare identifier: a standalone sub-agent var
// gives no syntactic evidence of its parent agent, so lookups fall back to
// the bare id.
func indexKey(loc Location) definition.ComponentKey {
	return definition.ComponentKey{Kind: loc.Kind, ID: loc.Identifier}
}

// Lookup finds the location for a component key. Sub-agent keys carry a
// composite "agent/sub" identifier; the index matches either the composite
// form (inline declarations, where the parent is known) or the bare id.
func (idx *Index) Lookup(key definition.ComponentKey) (Location, bool) {
	if loc, ok := idx.locations[key]; ok {
		return loc, true
	}
	if key.Kind == definition.KindSubAgent {
		if _, sub, ok := definition.SplitSubAgentID(key.ID); ok {
			if loc, ok := idx.locations[definition.ComponentKey{Kind: definition.KindSubAgent, ID: sub}]; ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

// Files lists every scanned file with its evaluation rank, sorted by rank
// then path.
func (idx *Index) Files() []FileInfo {
	out := make([]FileInfo, 0, len(idx.files))
	for path, rank := range idx.files {
		out = append(out, FileInfo{Path: path, Rank: rank})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Locations lists every indexed location, ordered by kind then identifier.
func (idx *Index) Locations() []Location {
	out := make([]Location, 0, len(idx.locations))
	for _, loc := range idx.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind.EvalRank() < out[j].Kind.EvalRank()
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out
}

// Len reports how many component locations were indexed.
func (idx *Index) Len() int {
	return len(idx.locations)
}

// HasKind reports whether any component of the given kind was found.
func (idx *Index) HasKind(kind definition.Kind) bool {
	for key := range idx.locations {
		if key.Kind == kind {
			return true
		}
	}
	return false
}

// Project returns the entry-point location, if one was found.
func (idx *Index) Project() (Location, bool) {
	for key, loc := range idx.locations {
		if key.Kind == definition.KindProject {
			return loc, true
		}
	}
	return Location{}, false
}

// scanFile parses one file and extracts every component declaration.
func scanFile(ctx context.Context, rel string, content []byte) ([]Location, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rel, err)
	}
	defer tree.Close()

	var locs []Location
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "var_declaration" {
			continue
		}
		for j := 0; j < int(node.NamedChildCount()); j++ {
			spec := node.NamedChild(j)
			if spec.Type() != "var_spec" {
				continue
			}
			locs = append(locs, scanVarSpec(spec, rel, content)...)
		}
	}
	return locs, nil
}

// scanVarSpec inspects one `var name = sdk.Kind{...}` spec, plus any inline
// component literals nested inside it.
func scanVarSpec(spec *sitter.Node, rel string, content []byte) []Location {
	nameNode := spec.ChildByFieldName("name")
	valueNode := spec.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil || valueNode.NamedChildCount() == 0 {
		return nil
	}
	declared := nameNode.Content(content)

	lit := valueNode.NamedChild(0)
	// Hand-written trees sometimes declare `var x = &sdk.Kind{...}`.
	if lit.Type() == "unary_expression" {
		if operand := lit.ChildByFieldName("operand"); operand != nil {
			lit = operand
		}
	}
	if lit.Type() != "composite_literal" {
		return nil
	}

	var locs []Location
	kind, id, ok := componentLiteral(lit, content)
	if ok {
		locs = append(locs, Location{
			Identifier:   id,
			Kind:         kind,
			FilePath:     rel,
			DeclaredName: declared,
		})
	}

	// Nested literals: sub-agents (or other components) declared inline
	// inside the enclosing declaration. Keyed by identifier so later merge
	// requests can target the enclosing file.
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "composite_literal" {
				if nestedKind, nestedID, found := componentLiteral(child, content); found {
					nestedID = inlineIdentifier(kind, id, nestedKind, nestedID)
					locs = append(locs, Location{
						Identifier:   nestedID,
						Kind:         nestedKind,
						FilePath:     rel,
						DeclaredName: declared,
						Inline:       true,
					})
				}
			}
			walk(child)
		}
	}
	walk(lit)
	return locs
}

// inlineIdentifier builds the index identifier for an inline declaration.
// A sub-agent nested in an agent literal is keyed by the composite
// "agent/sub" form since the parent is syntactically known.
func inlineIdentifier(parentKind definition.Kind, parentID string, kind definition.Kind, id string) string {
	if kind == definition.KindSubAgent && parentKind == definition.KindAgent {
		return parentID + "/" + id
	}
	return id
}

// componentLiteral recognizes `sdk.<Kind>{..., ID: "<id>", ...}` and returns
// the kind and identifier. The grammar parses the literal's type as a
// qualified_type; selector_expression is accepted too for grammars that
// resolve the package selector as an expression.
func componentLiteral(lit *sitter.Node, content []byte) (definition.Kind, string, bool) {
	typeNode := lit.ChildByFieldName("type")
	if typeNode == nil {
		return "", "", false
	}
	var pkg, typeName *sitter.Node
	switch typeNode.Type() {
	case "qualified_type":
		pkg = typeNode.ChildByFieldName("package")
		typeName = typeNode.ChildByFieldName("name")
	case "selector_expression":
		pkg = typeNode.ChildByFieldName("operand")
		typeName = typeNode.ChildByFieldName("field")
	default:
		return "", "", false
	}
	if pkg == nil || typeName == nil || pkg.Content(content) != "sdk" {
		return "", "", false
	}
	kind, ok := sdkKinds[typeName.Content(content)]
	if !ok {
		return "", "", false
	}

	body := lit.ChildByFieldName("body")
	if body == nil {
		return "", "", false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		elem := body.NamedChild(i)
		if elem.Type() != "keyed_element" || elem.NamedChildCount() < 2 {
			continue
		}
		key := elem.NamedChild(0)
		value := elem.NamedChild(int(elem.NamedChildCount()) - 1)
		// The grammar wraps each side of a keyed_element in a
		// literal_element node; the literal itself is one level down.
		if value.Type() == "literal_element" && value.NamedChildCount() > 0 {
			value = value.NamedChild(0)
		}
		if key.Content(content) != "ID" {
			continue
		}
		if value.Type() != "interpreted_string_literal" && value.Type() != "raw_string_literal" {
			continue
		}
		id, err := strconv.Unquote(value.Content(content))
		if err != nil {
			continue
		}
		return kind, id, true
	}
	return "", "", false
}
