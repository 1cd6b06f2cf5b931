package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/internal/locate"
	"github.com/inkeep/agents-sub000/internal/oracle"
	"github.com/inkeep/agents-sub000/internal/render"
	"github.com/inkeep/agents-sub000/internal/resolve"
)

// fileTask is all the work planned for one target file. A file is either
// generated whole (no existing declaration file at its path) or merged once
// through the oracle, never both.
type fileTask struct {
	Path string
	// Existing is the file's current content; empty with IsNew set when the
	// file does not exist yet.
	Existing string
	IsNew    bool
	// Components are the canonical declarations destined for this file, in
	// evaluation order.
	Components []oracle.CanonicalComponent
}

// buildTasks renders the canonical declaration for every planned change and
// groups the results by target file. Modified components go to the file that
// declares them; new components go to a type-conventional path. A new
// component whose conventional path collides with an existing file is routed
// through the merge pass instead of clobbering the file.
func buildTasks(remote *definition.Definition, plan *Plan, idx *locate.Index, root string, logger *zap.Logger) ([]fileTask, error) {
	names := render.BuildNames(remote)

	changeKeys := make([]definition.ComponentKey, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		changeKeys = append(changeKeys, c.Key)
	}
	deps := resolve.Dependencies(remote, changeKeys)

	added := make(map[definition.ComponentKey]bool, len(plan.Changes))
	for _, c := range plan.Changes {
		if c.Action == ActionAdd {
			added[c.Key] = true
		}
	}

	grouped := make(map[string][]oracle.CanonicalComponent)
	seen := make(map[string]map[definition.ComponentKey]bool)
	put := func(target string, c oracle.CanonicalComponent, key definition.ComponentKey) {
		if seen[target] == nil {
			seen[target] = make(map[definition.ComponentKey]bool)
		}
		if seen[target][key] {
			return
		}
		seen[target][key] = true
		grouped[target] = append(grouped[target], c)
	}

	for _, change := range plan.Changes {
		declared, ok := names.Declared(change.Key)
		if !ok {
			if change.Key.Kind != definition.KindProject {
				return nil, fmt.Errorf("%w: no declared name for %s", ErrStructuralDefect, change.Key)
			}
			declared = "Project"
		}
		text, err := render.Declaration(remote, change.Key, names)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrStructuralDefect, change.Key, err)
		}

		logger.Debug("planned component",
			zap.String("component", change.Key.String()),
			zap.String("action", string(change.Action)),
			zap.Int("dependencies", len(deps[change.Key])))

		// An inline declaration has no standalone var to replace; it is
		// promoted to one, and the enclosing declaration is replaced below.
		mode := oracle.ModeAdd
		if change.Action == ActionModify && !change.Location.Inline {
			mode = oracle.ModeReplace
		}
		canonical := oracle.CanonicalComponent{
			Kind:         change.Key.Kind,
			ID:           change.Key.ID,
			DeclaredName: declared,
			Mode:         mode,
			Text:         text,
		}
		target := targetPath(change, declared, added, names)
		put(target, canonical, change.Key)

		// A component declared inline cannot be replaced on its own: its text
		// lives inside the enclosing declaration's literal. The enclosing
		// declaration is replaced with its canonical form too, which
		// references the promoted standalone var instead of nesting the
		// literal.
		if change.Action == ActionModify && change.Location.Inline {
			enclosingKey, ok := enclosing(idx, change.Location)
			if !ok {
				return nil, fmt.Errorf("%w: inline %s has no enclosing declaration in %s",
					ErrStructuralDefect, change.Key, change.Location.FilePath)
			}
			enclosingName, ok := names.Declared(enclosingKey)
			if !ok {
				return nil, fmt.Errorf("%w: no declared name for %s", ErrStructuralDefect, enclosingKey)
			}
			enclosingText, err := render.Declaration(remote, enclosingKey, names)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %s", ErrStructuralDefect, enclosingKey, err)
			}
			put(target, oracle.CanonicalComponent{
				Kind:         enclosingKey.Kind,
				ID:           enclosingKey.ID,
				DeclaredName: enclosingName,
				Mode:         oracle.ModeReplace,
				Text:         enclosingText,
			}, enclosingKey)
		}
	}

	tasks := make([]fileTask, 0, len(grouped))
	for target, components := range grouped {
		sort.SliceStable(components, func(i, j int) bool {
			if components[i].Kind != components[j].Kind {
				return components[i].Kind.EvalRank() < components[j].Kind.EvalRank()
			}
			return components[i].ID < components[j].ID
		})
		task := fileTask{Path: target, Components: components}

		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(target)))
		switch {
		case err == nil:
			task.Existing = string(content)
			// Additions destined for an existing file become inserts for the
			// merge pass.
		case errors.Is(err, os.ErrNotExist):
			task.IsNew = true
		default:
			return nil, fmt.Errorf("failed to read %s: %w", target, err)
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Path < tasks[j].Path })
	return tasks, nil
}

// enclosing finds the top-level declaration an inline literal lives in: the
// non-inline location with the same file and declared name.
func enclosing(idx *locate.Index, loc locate.Location) (definition.ComponentKey, bool) {
	for _, cand := range idx.Locations() {
		if !cand.Inline && cand.FilePath == loc.FilePath && cand.DeclaredName == loc.DeclaredName {
			return definition.ComponentKey{Kind: cand.Kind, ID: cand.Identifier}, true
		}
	}
	return definition.ComponentKey{}, false
}

// targetPath picks the file a change is written to. Modified components stay
// where they are. New components get a type-conventional path, except a new
// sub-agent whose parent agent is also new: it rides along in the parent's
// file so the graph is born in one place.
func targetPath(change Change, declared string, added map[definition.ComponentKey]bool, names *render.NamingContext) string {
	if change.Located {
		return change.Location.FilePath
	}
	if change.Key.Kind == definition.KindProject {
		return "project.go"
	}
	if change.Key.Kind == definition.KindSubAgent {
		if agentID, _, ok := definition.SplitSubAgentID(change.Key.ID); ok {
			agentKey := definition.ComponentKey{Kind: definition.KindAgent, ID: agentID}
			if added[agentKey] {
				if agentName, ok := names.Declared(agentKey); ok {
					return path.Join(kindDir(definition.KindAgent), goFileName(agentName))
				}
			}
		}
	}
	return path.Join(kindDir(change.Key.Kind), goFileName(declared))
}

// kindDir maps a component kind to its conventional directory.
func kindDir(k definition.Kind) string {
	switch k {
	case definition.KindAgent, definition.KindSubAgent:
		return "agents"
	case definition.KindTool:
		return "tools"
	case definition.KindDataComponent:
		return "datacomponents"
	case definition.KindArtifactComponent:
		return "artifactcomponents"
	case definition.KindStatusComponent:
		return "statuscomponents"
	case definition.KindCredential:
		return "credentials"
	case definition.KindFunction:
		return "functions"
	}
	return "."
}

// goFileName converts a declared name to its snake_case file name. A name
// escaped for a leading digit keeps the bare digit form here: file names have
// no identifier rules, and a _-prefixed file would be invisible to the Go
// toolchain.
func goFileName(declared string) string {
	var b strings.Builder
	for i, r := range declared {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" {
		name = "component"
	}
	return name + ".go"
}

// passOne deterministically generates every new file. No model involvement:
// canonical declarations are concatenated in evaluation order.
func passOne(tasks []fileTask, logger *zap.Logger) map[string]string {
	out := make(map[string]string)
	for _, task := range tasks {
		if !task.IsNew {
			continue
		}
		texts := make([]string, 0, len(task.Components))
		for _, c := range task.Components {
			texts = append(texts, c.Text)
		}
		out[task.Path] = render.File(texts...)
		logger.Info("generated file",
			zap.String("path", task.Path),
			zap.Int("components", len(task.Components)))
	}
	return out
}

// passTwo sends each existing file through the merge oracle, one request per
// file with all of that file's components batched. Every file is attempted
// even after an earlier one fails, so one retry round surfaces every failing
// merge; any failure fails the pass.
func passTwo(ctx context.Context, tasks []fileTask, orc oracle.Oracle, logger *zap.Logger) (map[string]string, error) {
	out := make(map[string]string)
	var errs []error
	for _, task := range tasks {
		if task.IsNew {
			continue
		}
		resp, err := orc.Merge(ctx, oracle.MergeRequest{
			FilePath:     task.Path,
			ExistingText: task.Existing,
			Components:   task.Components,
		})
		if err != nil {
			logger.Warn("merge failed",
				zap.String("path", task.Path),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", task.Path, err))
			continue
		}
		out[task.Path] = resp.MergedText
		logger.Info("merged file",
			zap.String("path", task.Path),
			zap.Int("components", len(task.Components)))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMergeFailed, errors.Join(errs...))
	}
	return out, nil
}
