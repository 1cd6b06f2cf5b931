// Package oracle is the client for the text-merging service: an LLM that
// integrates canonical component declarations into an existing source file.
// The oracle is treated as unreliable by design. It may time out, and it may
// violate its contract; every correctness guarantee comes from the sandbox
// round-trip validation downstream, never from trusting a merge response.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// Mode tells the oracle how a canonical component relates to the file.
type Mode string

const (
	// ModeAdd inserts a declaration that does not yet exist in the file.
	ModeAdd Mode = "add"
	// ModeReplace swaps an existing declaration for its canonical form.
	ModeReplace Mode = "replace"
)

// CanonicalComponent is one declaration the oracle must place verbatim.
type CanonicalComponent struct {
	Kind         definition.Kind
	ID           string
	DeclaredName string
	Mode         Mode
	Text         string
}

// MergeRequest asks for one file merge. All modified components of a file
// are batched into a single request so independent merges cannot conflict.
type MergeRequest struct {
	FilePath     string
	ExistingText string
	Components   []CanonicalComponent
}

// MergeResponse carries the full replacement text for the file.
type MergeResponse struct {
	MergedText string
}

// ErrEmptyResponse is returned when the oracle produced no usable text.
var ErrEmptyResponse = errors.New("merge oracle returned empty response")

// Oracle merges canonical component text into existing files.
type Oracle interface {
	Merge(ctx context.Context, req MergeRequest) (MergeResponse, error)
}

// BuildPrompt renders the merge instruction for one request. The contract
// language is strict: declarations are inserted or replaced byte-for-byte,
// and nothing else in the file may change.
func BuildPrompt(req MergeRequest) string {
	var b strings.Builder
	b.WriteString("You are updating one Go source file in a declarative agent project.\n")
	b.WriteString("Apply the canonical declarations below to the file. Rules:\n")
	b.WriteString("1. Insert or replace each declaration EXACTLY as given, byte for byte.\n")
	b.WriteString("2. For mode=replace, the existing declaration with the same ID is replaced.\n")
	b.WriteString("3. For mode=add, the declaration is inserted at a sensible position.\n")
	b.WriteString("4. Touch nothing else: keep all other declarations, comments, and formatting.\n")
	b.WriteString("5. Keep the package clause and the sdk import.\n")
	b.WriteString("6. Respond with the complete merged file content and nothing else.\n\n")

	fmt.Fprintf(&b, "File: %s\n", req.FilePath)
	b.WriteString("--- existing file ---\n")
	b.WriteString(req.ExistingText)
	if !strings.HasSuffix(req.ExistingText, "\n") {
		b.WriteString("\n")
	}
	for _, c := range req.Components {
		fmt.Fprintf(&b, "--- canonical declaration (%s %s, mode=%s) ---\n", c.Kind, c.ID, c.Mode)
		b.WriteString(c.Text)
		if !strings.HasSuffix(c.Text, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("--- end ---\n")
	return b.String()
}

// CleanResponse strips markdown code fences the model tends to wrap source
// files in, and trims leading blank lines.
func CleanResponse(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		if idx := strings.Index(trimmed, "\n"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		} else {
			trimmed = ""
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimRight(trimmed, " \t\n")
	}
	if trimmed == "" {
		return ""
	}
	return trimmed + "\n"
}
