// Package metrics computes derived, presentation-ready metrics for a loaded
// simulation step, optionally relative to the preceding step. All functions
// are pure: they operate on validated values and perform no I/O. Missing
// optional dimensions degrade to not-applicable sentinels, never to errors.
package metrics

import "github.com/shardviz/shardviz/internal/snapshot"

// Percent carries a percentage that may be undefined for the run. Applicable
// is false when the node declares no capacity for the dimension or the
// dimension is absent from the step; the zero Value then carries no meaning.
// Presentation layers must never conflate an inapplicable percent with 0.
type Percent struct {
	Value      float64
	Applicable bool
}

// Dimensions records, per step, which conventional demand dimensions are
// declared. Detected once per step and passed explicitly instead of being
// re-checked at every call site.
type Dimensions struct {
	Capacity bool // dimension "0"
	QPS      bool // dimension "1"
}

// DetectDimensions probes the lowest-id shard for the conventional dimension
// keys, matching the upstream convention that all shards of a run declare the
// same dimensions. A heterogeneous run (only some shards declaring a
// dimension) will be mis-detected.
func DetectDimensions(step *snapshot.SimulationStep) Dimensions {
	shardIDs := step.ClusterState.SortedShardIDs()
	if len(shardIDs) == 0 {
		return Dimensions{}
	}

	probe := step.ClusterState.Shards[shardIDs[0]]
	_, capacity := probe.Demands[snapshot.DimCapacity]
	_, qps := probe.Demands[snapshot.DimQPS]
	return Dimensions{Capacity: capacity, QPS: qps}
}

// Utilization aggregates the demand placed on one node by its assigned
// shards. UsedCapacity and UsedQPS stay 0 when the respective dimension is
// absent from the run; CapacityPercent is inapplicable rather than dividing
// by a zero or undeclared node capacity.
type Utilization struct {
	UsedCapacity    int64
	UsedQPS         int64
	CapacityPercent Percent
}

// NodeUtilization computes per-node aggregate usage for the step. The index
// must have been built from the same step. Every node known to the step has
// an entry; a node with no shards reports zero usage, and a zero-percent
// capacity when the dimension is present.
func NodeUtilization(step *snapshot.SimulationStep, index snapshot.AssignmentIndex) map[snapshot.NodeID]Utilization {
	dims := DetectDimensions(step)
	result := make(map[snapshot.NodeID]Utilization, len(step.ClusterState.Nodes))

	for nodeID, node := range step.ClusterState.Nodes {
		var u Utilization
		for _, shardID := range index[nodeID] {
			demands := step.ClusterState.Shards[shardID].Demands
			if dims.Capacity {
				u.UsedCapacity += demands[snapshot.DimCapacity]
			}
			if dims.QPS {
				u.UsedQPS += demands[snapshot.DimQPS]
			}
		}

		if dims.Capacity {
			if capacity, ok := node.Resources[snapshot.DimCapacity]; ok && capacity > 0 {
				u.CapacityPercent = Percent{
					Value:      float64(u.UsedCapacity) / float64(capacity) * 100,
					Applicable: true,
				}
			}
		}

		result[nodeID] = u
	}

	return result
}

// NodeDelta returns, for each node of the current step, the shard list it
// hosted in the prior step, for side-by-side display. It is the raw prior
// list, not a diff; comparing is left to the presentation layer. The result
// is nil when there is no prior step (t == 0) - a wholly absent delta, not an
// empty one. Nodes absent from the prior step report an empty list.
func NodeDelta(current *snapshot.SimulationStep, priorIndex snapshot.AssignmentIndex) map[snapshot.NodeID][]snapshot.ShardID {
	if priorIndex == nil {
		return nil
	}

	result := make(map[snapshot.NodeID][]snapshot.ShardID, len(current.ClusterState.Nodes))
	for nodeID := range current.ClusterState.Nodes {
		prior := priorIndex[nodeID]
		if prior == nil {
			prior = []snapshot.ShardID{}
		}
		result[nodeID] = prior
	}
	return result
}

// ShardDelta is the structural mirror of NodeDelta: for each shard of the
// current step, the node list it was assigned to in the prior step. Nil when
// there is no prior step.
func ShardDelta(current, prior *snapshot.SimulationStep) map[snapshot.ShardID][]snapshot.NodeID {
	if prior == nil {
		return nil
	}

	result := make(map[snapshot.ShardID][]snapshot.NodeID, len(current.ClusterState.Shards))
	for shardID := range current.ClusterState.Shards {
		nodes := prior.ClusterState.CurrentAssignment[shardID]
		if nodes == nil {
			nodes = []snapshot.NodeID{}
		}
		result[shardID] = nodes
	}
	return result
}
