// Package store resolves (run, step) requests to validated simulation steps.
// Storage is read-only: runs are immutable sequences of step records written
// by the allocator upstream.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shardviz/shardviz/internal/snapshot"
)

// ErrInvalidArgument reports a malformed run identifier or a negative step
// index. Distinct from NotFoundError: the request never reached storage.
var ErrInvalidArgument = errors.New("invalid argument")

// RunID identifies one immutable run: a test name plus the timestamped
// folder the allocator wrote its steps into.
type RunID struct {
	Test   string
	Folder string
}

func (r RunID) String() string {
	return r.Test + "/" + r.Folder
}

// RunInfo describes one discovered run and its contiguous step count.
type RunInfo struct {
	Test   string `json:"test"`
	Folder string `json:"folder"`
	Steps  int    `json:"steps"` // steps 0..Steps-1 exist
}

// NotFoundError reports that the requested run or step does not exist in
// storage. Step is -1 when the run itself is missing.
type NotFoundError struct {
	Run  RunID
	Step int
}

func (e *NotFoundError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("run %s not found", e.Run)
	}
	return fmt.Sprintf("step %d of run %s not found", e.Step, e.Run)
}

// Store resolves and loads steps of named runs. Implementations must not
// mutate the underlying storage, and repeated loads of the same (run, step)
// must return structurally identical data.
type Store interface {
	// LoadStep reads and validates exactly one step record. Fails with
	// *NotFoundError when the run or step does not exist and with
	// *snapshot.SchemaError when the record is malformed.
	LoadStep(ctx context.Context, run RunID, t int) (*snapshot.SimulationStep, error)

	// ListRuns discovers all runs under the store root.
	ListRuns(ctx context.Context) ([]RunInfo, error)

	// StepCount returns the number of contiguous steps of the run,
	// starting at index 0.
	StepCount(ctx context.Context, run RunID) (int, error)
}
