package syncer

import "errors"

var (
	// ErrStructuralDefect marks a remote definition the renderer cannot turn
	// into declarations. Fatal: no amount of retrying fixes the input.
	ErrStructuralDefect = errors.New("remote definition has a structural defect")

	// ErrMergeFailed marks a merge pass in which at least one file-level
	// oracle request failed. Recoverable: the controller retries the whole
	// merge pass with a fresh scratch directory.
	ErrMergeFailed = errors.New("merge pass failed")

	// ErrForeignTree marks a local tree whose entry point declares a
	// different project than the one being synced. Fatal: syncing would
	// overwrite someone else's project.
	ErrForeignTree = errors.New("local tree belongs to a different project")
)
