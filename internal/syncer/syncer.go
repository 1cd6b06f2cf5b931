// Package syncer orchestrates one synchronization run: fetch the remote
// definition, classify what changed against the local tree, generate and
// merge declaration files in a scratch directory, validate the candidate
// tree by round trip, and promote it only on success. The real tree is never
// touched until a candidate has validated.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkeep/agents-sub000/internal/compare"
	"github.com/inkeep/agents-sub000/internal/definition"
	"github.com/inkeep/agents-sub000/internal/locate"
	"github.com/inkeep/agents-sub000/internal/oracle"
	"github.com/inkeep/agents-sub000/internal/sandbox"
)

// RemoteSource fetches project definitions from the management API.
type RemoteSource interface {
	GetFullDefinition(ctx context.Context, projectID string) (*definition.Definition, error)
}

// RunRecord is one journaled sync run.
type RunRecord struct {
	ProjectID     string
	StartedAt     time.Time
	FinishedAt    time.Time
	Attempts      int
	Result        string // "up-to-date", "promoted", or "failed"
	PromotedFiles []string
	Error         string
}

// Recorder persists run records. A nil Recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, rec RunRecord) error
}

// Config tunes one Syncer.
type Config struct {
	ProjectID string
	// Root is the local project tree.
	Root string
	// MaxAttempts bounds merge+validate rounds; defaults to 3.
	MaxAttempts int
	Compare     compare.Options
}

// Outcome reports a successful run.
type Outcome struct {
	UpToDate      bool
	Attempts      int
	PromotedFiles []string
	// DeletedComponents are local declarations the remote no longer has.
	// Reported for the user to remove; sync never deletes local code.
	DeletedComponents  []definition.ComponentKey
	Warnings           []compare.Warning
	PendingCredentials []string
}

// Syncer runs the full synchronization flow for one project.
type Syncer struct {
	remote   RemoteSource
	oracle   oracle.Oracle
	recorder Recorder
	logger   *zap.Logger
	cfg      Config
}

func New(remote RemoteSource, orc oracle.Oracle, recorder Recorder, logger *zap.Logger, cfg Config) *Syncer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Syncer{remote: remote, oracle: orc, recorder: recorder, logger: logger, cfg: cfg}
}

// Run performs one synchronization. On success the promoted files are listed
// in the outcome; on failure the real tree is untouched.
func (s *Syncer) Run(ctx context.Context) (*Outcome, error) {
	started := time.Now()
	outcome, attempts, err := s.run(ctx)

	if s.recorder != nil {
		rec := RunRecord{
			ProjectID:  s.cfg.ProjectID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Attempts:   attempts,
		}
		switch {
		case err != nil:
			rec.Result = "failed"
			rec.Error = err.Error()
		case outcome.UpToDate:
			rec.Result = "up-to-date"
		default:
			rec.Result = "promoted"
			rec.PromotedFiles = outcome.PromotedFiles
		}
		if recErr := s.recorder.Record(ctx, rec); recErr != nil {
			s.logger.Warn("failed to journal sync run", zap.Error(recErr))
		}
	}
	return outcome, err
}

func (s *Syncer) run(ctx context.Context) (*Outcome, int, error) {
	remoteDef, localDef, idx, result, err := s.assess(ctx)
	if err != nil {
		return nil, 0, err
	}

	plan, err := classify(remoteDef, localDef, idx, s.cfg.Compare)
	if err != nil {
		return nil, 0, err
	}
	outcome := &Outcome{Warnings: result.Warnings}
	for _, del := range plan.Deleted {
		outcome.DeletedComponents = append(outcome.DeletedComponents, del.Key)
		s.logger.Warn("component removed remotely; delete its local declaration",
			zap.String("component", del.Key.String()),
			zap.String("file", del.Location.FilePath))
	}

	if result.Matches || plan.Empty() {
		s.logger.Info("local tree is up to date",
			zap.String("project", s.cfg.ProjectID))
		outcome.UpToDate = true
		return outcome, 0, nil
	}

	tasks, err := buildTasks(remoteDef, plan, idx, s.cfg.Root, s.logger)
	if err != nil {
		return nil, 0, err
	}

	// Pass 1 is deterministic; generated once and reused across attempts.
	// Pass 2 involves the oracle and is redone every attempt.
	generated := passOne(tasks, s.logger)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		promoted, valErr := s.attempt(ctx, remoteDef, tasks, generated, outcome)
		if valErr == nil {
			outcome.PromotedFiles = promoted
			outcome.Attempts = attempt
			s.logger.Info("sync promoted",
				zap.String("project", s.cfg.ProjectID),
				zap.Int("attempt", attempt),
				zap.Strings("files", promoted))
			return outcome, attempt, nil
		}
		if !errors.Is(valErr, ErrMergeFailed) && !errors.Is(valErr, sandbox.ErrValidationMismatch) {
			return nil, attempt, valErr
		}
		lastErr = valErr
		s.logger.Warn("sync attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", s.cfg.MaxAttempts),
			zap.Error(valErr))
	}
	return nil, s.cfg.MaxAttempts, fmt.Errorf("sync failed after %d attempts: %w", s.cfg.MaxAttempts, lastErr)
}

// attempt runs one merge+validate round in a fresh scratch directory and
// promotes on success. The scratch directory is always removed.
func (s *Syncer) attempt(ctx context.Context, remoteDef *definition.Definition, tasks []fileTask, generated map[string]string, outcome *Outcome) ([]string, error) {
	candidates := make(map[string]string, len(generated))
	for p, text := range generated {
		candidates[p] = text
	}
	merged, err := passTwo(ctx, tasks, s.oracle, s.logger)
	if err != nil {
		return nil, err
	}
	for p, text := range merged {
		candidates[p] = text
	}

	scratch := sandbox.NewScratchDir(s.cfg.Root)
	defer sandbox.Cleanup(scratch)
	if err := sandbox.Materialize(s.cfg.Root, scratch, candidates); err != nil {
		return nil, fmt.Errorf("failed to materialize scratch tree: %w", err)
	}

	validated, err := sandbox.Validate(ctx, remoteDef, scratch, s.cfg.Compare, s.logger)
	if err != nil {
		return nil, err
	}
	outcome.Warnings = append(outcome.Warnings, validated.Warnings...)
	outcome.PendingCredentials = validated.PendingCredentials

	return promote(s.cfg.Root, candidates, s.logger)
}

// assess fetches the remote definition, derives the local one, and compares
// them. Shared by Run and Status.
func (s *Syncer) assess(ctx context.Context) (*definition.Definition, *definition.Definition, *locate.Index, *compare.Result, error) {
	remoteDef, err := s.remote.GetFullDefinition(ctx, s.cfg.ProjectID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to fetch remote definition: %w", err)
	}
	// A rendered declaration cannot point at a component the definition does
	// not contain; dangling references would make every round trip fail.
	remoteDef.PruneDanglingReferences()

	localDef, idx, err := sandbox.DeriveTree(ctx, s.cfg.Root)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to derive local tree: %w", err)
	}

	if loc, ok := idx.Project(); ok && loc.Identifier != remoteDef.ID {
		return nil, nil, nil, nil, fmt.Errorf("%w: tree declares %q, syncing %q",
			ErrForeignTree, loc.Identifier, remoteDef.ID)
	}

	result, err := compare.Compare(remoteDef, localDef, s.cfg.Compare)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return remoteDef, localDef, idx, result, nil
}

// Report is a dry-run assessment: what a sync would do, without writing.
type Report struct {
	UpToDate bool
	Changes  []Change
	Deleted  []Change
	Warnings []compare.Warning
}

// Status classifies pending changes without generating, merging, or writing
// anything.
func (s *Syncer) Status(ctx context.Context) (*Report, error) {
	remoteDef, localDef, idx, result, err := s.assess(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := classify(remoteDef, localDef, idx, s.cfg.Compare)
	if err != nil {
		return nil, err
	}
	return &Report{
		UpToDate: result.Matches || plan.Empty(),
		Changes:  plan.Changes,
		Deleted:  plan.Deleted,
		Warnings: result.Warnings,
	}, nil
}
