package services

import (
	"context"
	"time"

	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/metrics"
	"github.com/shardviz/shardviz/internal/models"
	"github.com/shardviz/shardviz/internal/snapshot"
	"github.com/shardviz/shardviz/internal/store"
)

// StepService loads simulation steps and derives the view data every page
// needs: the assignment index, per-node utilization, and prior-step lists
// for side-by-side comparison.
type StepService struct {
	logger *logging.Logger
	store  store.Store
}

// NewStepService creates a new StepService
func NewStepService(logger *logging.Logger, st store.Store) *StepService {
	return &StepService{
		logger: logger,
		store:  st,
	}
}

// ListRuns discovers all runs known to the store.
func (s *StepService) ListRuns(ctx context.Context) (*models.RunListResponse, error) {
	runs, err := s.store.ListRuns(ctx)
	if err != nil {
		return nil, classify(err)
	}

	resp := &models.RunListResponse{Runs: make([]models.RunResponse, len(runs))}
	for i, r := range runs {
		resp.Runs[i] = models.RunResponse{Test: r.Test, Folder: r.Folder, Steps: r.Steps}
	}
	return resp, nil
}

// loadWithPrior loads the requested step and, for t > 0, its predecessor.
// Runs are contiguous by contract, so a missing predecessor surfaces as an
// error instead of being papered over as "no delta".
func (s *StepService) loadWithPrior(ctx context.Context, run store.RunID, t int) (current, prior *snapshot.SimulationStep, err error) {
	current, err = s.store.LoadStep(ctx, run, t)
	if err != nil {
		return nil, nil, err
	}

	if t > 0 {
		prior, err = s.store.LoadStep(ctx, run, t-1)
		if err != nil {
			return nil, nil, err
		}
	}

	return current, prior, nil
}

// GetStep loads one step and its derived assignment index.
func (s *StepService) GetStep(ctx context.Context, run store.RunID, t int) (*models.StepResponse, error) {
	started := time.Now()

	step, err := s.store.LoadStep(ctx, run, t)
	if err != nil {
		return nil, classify(err)
	}

	cs := &step.ClusterState
	index := snapshot.BuildAssignmentIndex(cs)

	resp := &models.StepResponse{
		Test:          run.Test,
		Folder:        run.Folder,
		T:             step.T,
		TimeInMs:      step.TimeInMs,
		Configuration: step.Configuration,
		Nodes:         make([]models.NodeView, 0, len(cs.Nodes)),
		Shards:        make([]models.ShardView, 0, len(cs.Shards)),
		Assignment:    cs.CurrentAssignment,
		Index:         index,
	}

	for _, id := range cs.SortedNodeIDs() {
		node := cs.Nodes[id]
		resp.Nodes = append(resp.Nodes, models.NodeView{
			ID:        int64(id),
			Tags:      node.TagList(),
			Resources: node.Resources,
		})
	}
	for _, id := range cs.SortedShardIDs() {
		shard := cs.Shards[id]
		resp.Shards = append(resp.Shards, models.ShardView{
			ID:      int64(id),
			Tags:    shard.TagList(),
			Demands: shard.Demands,
		})
	}

	s.logger.Debug("Step loaded",
		"run", run.String(), "t", t,
		"nodes", len(resp.Nodes), "shards", len(resp.Shards),
		"latency_ms", time.Since(started).Milliseconds())

	return resp, nil
}

// GetUtilization computes per-node aggregate capacity and QPS usage for the
// step, the data behind the bar chart views.
func (s *StepService) GetUtilization(ctx context.Context, run store.RunID, t int) (*models.UtilizationResponse, error) {
	step, err := s.store.LoadStep(ctx, run, t)
	if err != nil {
		return nil, classify(err)
	}

	cs := &step.ClusterState
	index := snapshot.BuildAssignmentIndex(cs)
	usage := metrics.NodeUtilization(step, index)
	dims := metrics.DetectDimensions(step)

	resp := &models.UtilizationResponse{
		Test:            run.Test,
		Folder:          run.Folder,
		T:               step.T,
		CapacityPresent: dims.Capacity,
		QPSPresent:      dims.QPS,
		Nodes:           make([]models.NodeUtilizationView, 0, len(usage)),
	}

	for _, id := range cs.SortedNodeIDs() {
		u := usage[id]
		view := models.NodeUtilizationView{
			NodeID:       int64(id),
			UsedCapacity: u.UsedCapacity,
			UsedQPS:      u.UsedQPS,
		}
		if u.CapacityPercent.Applicable {
			percent := u.CapacityPercent.Value
			view.CapacityPercent = &percent
		}
		resp.Nodes = append(resp.Nodes, view)
	}

	return resp, nil
}

// GetNodeTable builds the node table view: capacities, assigned shards and,
// when a prior step exists, the prior assignment for visual comparison.
func (s *StepService) GetNodeTable(ctx context.Context, run store.RunID, t int) (*models.NodeTableResponse, error) {
	step, prior, err := s.loadWithPrior(ctx, run, t)
	if err != nil {
		return nil, classify(err)
	}

	cs := &step.ClusterState
	index := snapshot.BuildAssignmentIndex(cs)

	var priorIndex snapshot.AssignmentIndex
	if prior != nil {
		priorIndex = snapshot.BuildAssignmentIndex(&prior.ClusterState)
	}
	delta := metrics.NodeDelta(step, priorIndex)

	resp := &models.NodeTableResponse{
		Test:     run.Test,
		Folder:   run.Folder,
		T:        step.T,
		HasPrior: delta != nil,
		Rows:     make([]models.NodeRow, 0, len(cs.Nodes)),
	}

	for _, id := range cs.SortedNodeIDs() {
		node := cs.Nodes[id]
		row := models.NodeRow{
			NodeID:         int64(id),
			Tags:           node.TagList(),
			MaxCapacity:    resourceValue(node.Resources, snapshot.DimCapacity),
			QPS:            resourceValue(node.Resources, snapshot.DimQPS),
			AssignedShards: shardIDs(index[id]),
		}
		if delta != nil {
			row.PriorShards = shardIDs(delta[id])
		}
		resp.Rows = append(resp.Rows, row)
	}

	return resp, nil
}

// GetShardTable builds the shard table view, the structural mirror of
// GetNodeTable.
func (s *StepService) GetShardTable(ctx context.Context, run store.RunID, t int) (*models.ShardTableResponse, error) {
	step, prior, err := s.loadWithPrior(ctx, run, t)
	if err != nil {
		return nil, classify(err)
	}

	cs := &step.ClusterState
	delta := metrics.ShardDelta(step, prior)

	resp := &models.ShardTableResponse{
		Test:     run.Test,
		Folder:   run.Folder,
		T:        step.T,
		HasPrior: delta != nil,
		Rows:     make([]models.ShardRow, 0, len(cs.Shards)),
	}

	for _, id := range cs.SortedShardIDs() {
		shard := cs.Shards[id]
		row := models.ShardRow{
			ShardID:          int64(id),
			Rf:               step.Configuration.Rf,
			Tags:             shard.TagList(),
			CapacityRequired: resourceValue(shard.Demands, snapshot.DimCapacity),
			QPS:              resourceValue(shard.Demands, snapshot.DimQPS),
			AssignedNodes:    nodeIDs(cs.CurrentAssignment[id]),
		}
		if delta != nil {
			row.PriorNodes = nodeIDs(delta[id])
		}
		resp.Rows = append(resp.Rows, row)
	}

	return resp, nil
}

// resourceValue returns a pointer to the dimension value, or nil when the
// dimension is not declared - "Not Set" in the upstream tables.
func resourceValue(dims map[string]int64, key string) *int64 {
	if v, ok := dims[key]; ok {
		return &v
	}
	return nil
}

func shardIDs(ids []snapshot.ShardID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func nodeIDs(ids []snapshot.NodeID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
