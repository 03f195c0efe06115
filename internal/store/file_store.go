package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/snapshot"
)

const (
	stepFileSuffix       = ".json"
	snappyStepFileSuffix = ".json.sz"
)

// FileStore reads step records from the directory layout the allocator
// writes: <root>/<test>/<folder>/<t>.json, optionally snappy-compressed as
// <t>.json.sz.
type FileStore struct {
	root   string
	logger *logging.Logger
}

// NewFileStore creates a store over the given data root.
func NewFileStore(root string, logger *logging.Logger) *FileStore {
	return &FileStore{root: root, logger: logger}
}

// validateRunID rejects empty components and path traversal attempts.
func validateRunID(run RunID) error {
	for _, component := range []string{run.Test, run.Folder} {
		if component == "" {
			return fmt.Errorf("%w: empty run component", ErrInvalidArgument)
		}
		if component == "." || component == ".." ||
			strings.ContainsAny(component, `/\`) {
			return fmt.Errorf("%w: run component %q", ErrInvalidArgument, component)
		}
	}
	return nil
}

func (s *FileStore) runDir(run RunID) string {
	return filepath.Join(s.root, run.Test, run.Folder)
}

// LoadStep reads exactly one step record, decoding through the snapshot
// schema. The context is checked before I/O; the read itself is a single
// small file and is not interruptible.
func (s *FileStore) LoadStep(ctx context.Context, run RunID, t int) (*snapshot.SimulationStep, error) {
	if err := validateRunID(run); err != nil {
		return nil, err
	}
	if t < 0 {
		return nil, fmt.Errorf("%w: negative step index %d", ErrInvalidArgument, t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.runDir(run)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, &NotFoundError{Run: run, Step: -1}
	}

	data, compressed, err := s.readStepFile(dir, t)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Run: run, Step: t}
		}
		return nil, fmt.Errorf("failed to read step %d of run %s: %w", t, run, err)
	}

	if compressed {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, &snapshot.SchemaError{Reason: "snappy decode failed", Err: err}
		}
	}

	step, err := snapshot.DecodeStep(data)
	if err != nil {
		s.logger.Warn("Rejected malformed step record",
			"run", run.String(), "step", t, "error", err)
		return nil, err
	}

	return step, nil
}

// readStepFile tries the plain record first, then the snappy sidecar.
func (s *FileStore) readStepFile(dir string, t int) (data []byte, compressed bool, err error) {
	base := filepath.Join(dir, strconv.Itoa(t))

	data, err = os.ReadFile(base + stepFileSuffix)
	if err == nil {
		return data, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, err
	}

	data, err = os.ReadFile(base + snappyStepFileSuffix)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// ListRuns walks the two-level run layout and reports each run with its
// contiguous step count. Results are ordered by test name, then folder.
func (s *FileStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	tests, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read data root %s: %w", s.root, err)
	}

	runs := []RunInfo{}
	for _, test := range tests {
		if !test.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		folders, err := os.ReadDir(filepath.Join(s.root, test.Name()))
		if err != nil {
			s.logger.Warn("Skipping unreadable test directory",
				"test", test.Name(), "error", err)
			continue
		}

		for _, folder := range folders {
			if !folder.IsDir() {
				continue
			}
			run := RunID{Test: test.Name(), Folder: folder.Name()}
			steps, err := s.StepCount(ctx, run)
			if err != nil {
				return nil, err
			}
			runs = append(runs, RunInfo{Test: run.Test, Folder: run.Folder, Steps: steps})
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Test != runs[j].Test {
			return runs[i].Test < runs[j].Test
		}
		return runs[i].Folder < runs[j].Folder
	})
	return runs, nil
}

// StepCount counts step records contiguously from index 0. Gaps terminate
// the count: runs are contiguous by contract, so a hole means later files
// are unreachable by step index anyway.
func (s *FileStore) StepCount(ctx context.Context, run RunID) (int, error) {
	if err := validateRunID(run); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.runDir(run))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, &NotFoundError{Run: run, Step: -1}
		}
		return 0, fmt.Errorf("failed to read run %s: %w", run, err)
	}

	present := make(map[int]bool, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		name = strings.TrimSuffix(name, snappyStepFileSuffix)
		name = strings.TrimSuffix(name, stepFileSuffix)
		if t, err := strconv.Atoi(name); err == nil && t >= 0 {
			present[t] = true
		}
	}

	count := 0
	for present[count] {
		count++
	}
	return count, nil
}
