// Package render turns component records into declaration source text. All
// rendering is deterministic: the same record, identifier, and naming context
// always produce byte-identical output, which is what makes generating new
// components safe without any verification beyond the later round trip.
package render

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// goReserved lists identifiers a declared name may never collide with:
// keywords plus the predeclared names the generated files actually touch.
var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"sdk": true, "true": true, "false": true, "nil": true,
}

// NamingContext is the per-sync bijection between component identifiers and
// their stable declared names. It is built once at the start of a sync and
// threaded through every rendering call; it is never shared across syncs.
type NamingContext struct {
	names map[definition.ComponentKey]string
	taken map[string]bool
}

// BuildNames assigns a declared name to every component of the definition.
// Assignment order is deterministic (kind rank, then identifier), so collision
// suffixes are stable across runs.
func BuildNames(def *definition.Definition) *NamingContext {
	n := &NamingContext{
		names: make(map[definition.ComponentKey]string),
		taken: map[string]bool{"Project": true},
	}
	keys := def.ComponentKeys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind.EvalRank() < keys[j].Kind.EvalRank()
		}
		return keys[i].ID < keys[j].ID
	})
	for _, key := range keys {
		n.assign(key)
	}
	return n
}

// Declared returns the declared name for a component key.
func (n *NamingContext) Declared(key definition.ComponentKey) (string, bool) {
	name, ok := n.names[key]
	return name, ok
}

func (n *NamingContext) assign(key definition.ComponentKey) string {
	if name, ok := n.names[key]; ok {
		return name
	}

	id := key.ID
	if key.Kind == definition.KindSubAgent {
		if _, sub, ok := definition.SplitSubAgentID(key.ID); ok {
			id = sub
		}
	}

	base := Fold(id)
	name := base
	if n.taken[name] || goReserved[name] {
		name = base + key.Kind.Suffix()
	}
	for i := 2; n.taken[name]; i++ {
		name = base + key.Kind.Suffix() + strconv.Itoa(i)
	}

	n.taken[name] = true
	n.names[key] = name
	return name
}

// Fold derives the base declared name from an identifier: lower-cased,
// delimiter-split, camel-case folded, non-alphanumerics stripped, and a
// leading digit escaped with an underscore.
func Fold(id string) string {
	parts := strings.FieldsFunc(strings.ToLower(id), func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})

	var b strings.Builder
	for i, part := range parts {
		var clean []rune
		for _, r := range part {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				clean = append(clean, r)
			}
		}
		if len(clean) == 0 {
			continue
		}
		if i > 0 && b.Len() > 0 {
			clean[0] = unicode.ToUpper(clean[0])
		}
		b.WriteString(string(clean))
	}

	name := b.String()
	if name == "" {
		return "component"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
