package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inkeep/agents-sub000/internal/compare"
	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/internal/locate"
)

// ErrValidationMismatch marks a round trip that did not reproduce the remote
// definition. It is recoverable: the promotion controller retries the whole
// merge pass, since the merge step is the suspected source of drift.
var ErrValidationMismatch = errors.New("candidate tree does not round-trip to the remote definition")

// Outcome is a successful validation result.
type Outcome struct {
	// Warnings carries comparator warnings plus tolerated credential
	// conditions; visibility only, never a failure.
	Warnings []compare.Warning
	// PendingCredentials lists credentials whose secret configuration is not
	// yet present locally. Expected for first-time generation, before the
	// user fills in real values.
	PendingCredentials []string
}

// Validate round-trips a materialized scratch tree against the remote
// definition:
//
//  1. cheap static pre-check of the entry point declaration,
//  2. sandboxed evaluation of the tree and re-derivation of its definition,
//  3. shorthand normalization (done inside Derive),
//  4. structural comparison against the remote definition.
//
// The only tolerated real difference is a credential whose values are not
// configured locally yet; anything else returns ErrValidationMismatch.
func Validate(ctx context.Context, remote *definition.Definition, scratchDir string, cmpOpts compare.Options, logger *zap.Logger) (*Outcome, error) {
	idx, err := locate.Scan(ctx, scratchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate tree: %w", err)
	}

	if err := precheck(idx, remote.ID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationMismatch, err)
	}

	derived, err := LoadDefinition(ctx, scratchDir, idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationMismatch, err)
	}

	result, err := compare.Compare(remote, derived, cmpOpts)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Warnings: result.Warnings}
	for _, diff := range result.Differences {
		if cred, ok := pendingCredential(diff); ok {
			outcome.PendingCredentials = append(outcome.PendingCredentials, cred)
			outcome.Warnings = append(outcome.Warnings, compare.Warning{
				Path:   diff.Path,
				Reason: "credential not configured locally yet",
				Remote: diff.Remote,
				Local:  diff.Local,
			})
			continue
		}
		logger.Warn("round-trip mismatch",
			zap.String("path", diff.Path),
			zap.String("kind", string(diff.Kind)),
			zap.Any("remote", diff.Remote),
			zap.Any("local", diff.Local))
		return nil, fmt.Errorf("%w: %s differs (%s)", ErrValidationMismatch, diff.Path, diff.Kind)
	}

	return outcome, nil
}

// precheck statically verifies the entry point before paying for a full
// evaluation: a top-level Project declaration must exist and its declared
// identifier must match the remote project's.
func precheck(idx *locate.Index, projectID string) error {
	loc, ok := idx.Project()
	if !ok {
		return fmt.Errorf("candidate tree declares no sdk.Project entry point")
	}
	if loc.Inline {
		return fmt.Errorf("Project declaration in %s is not top-level", loc.FilePath)
	}
	if loc.Identifier != projectID {
		return fmt.Errorf("entry point declares project %q, remote definition is %q", loc.Identifier, projectID)
	}
	return nil
}

// pendingCredential reports whether a difference is attributable solely to a
// credential whose secret-bearing values are absent on the local side.
func pendingCredential(diff compare.Difference) (string, bool) {
	segs := strings.SplitN(diff.Path, ".", 3)
	if len(segs) < 2 || segs[0] != "credentials" {
		return "", false
	}
	if diff.Kind != compare.DiffAdded {
		return "", false
	}
	return segs[1], true
}
