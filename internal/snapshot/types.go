// Package snapshot defines the persisted shape of one allocation simulation
// step and validates raw records against it. Field names mirror the files the
// allocator writes, one JSON record per time step.
package snapshot

import "sort"

// NodeID identifies a node within a snapshot. Stable across time steps for
// the same logical node.
type NodeID int64

// ShardID identifies a shard within a snapshot.
type ShardID int64

// Resource dimension keys. Dimensions are open-ended; these two are the
// conventional axes every view understands.
const (
	DimCapacity = "0" // storage/disk capacity
	DimQPS      = "1" // query rate
)

// Node is a simulated allocation target with resource capacities.
type Node struct {
	Id        NodeID           `json:"Id"`
	Tags      []string         `json:"Tags"` // nil means no tags
	Resources map[string]int64 `json:"Resources"`
}

// Shard is a simulated unit of work with resource demands.
type Shard struct {
	Id      ShardID          `json:"Id"`
	Tags    []string         `json:"Tags"` // nil means no tags
	Demands map[string]int64 `json:"Demands"`
}

// ClusterState holds the nodes, shards and placement recorded in one step.
type ClusterState struct {
	Nodes             map[NodeID]Node      `json:"Nodes"`
	Shards            map[ShardID]Shard    `json:"Shards"`
	CurrentAssignment map[ShardID][]NodeID `json:"CurrentAssignment"` // shard -> hosting nodes, in placement order
}

// Configuration carries the allocator parameters in effect for the run.
// Immutable per step; recorded for display and audit, never recomputed here.
type Configuration struct {
	WithCapacity      bool  `json:"WithCapacity"`
	WithLoadBalancing bool  `json:"WithLoadBalancing"`
	WithTagAffinity   bool  `json:"WithTagAffinity"`
	WithMinimalChurn  bool  `json:"WithMinimalChurn"`
	MaxChurn          int64 `json:"MaxChurn"`
	SearchTimeout     int64 `json:"SearchTimeout"`
	VerboseLogging    bool  `json:"VerboseLogging"`
	Rf                int   `json:"Rf"`
}

// SimulationStep is one point-in-time snapshot of cluster state within a run.
// Immutable once loaded.
type SimulationStep struct {
	ClusterState  ClusterState  `json:"ClusterState"`
	Configuration Configuration `json:"Configuration"`
	TimeInMs      int64         `json:"TimeInMs"` // solver elapsed time
	T             int           `json:"T"`        // step index within the run
}

// SortedNodeIDs returns the node identifiers in ascending order.
func (cs *ClusterState) SortedNodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(cs.Nodes))
	for id := range cs.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SortedShardIDs returns the shard identifiers in ascending order.
func (cs *ClusterState) SortedShardIDs() []ShardID {
	ids := make([]ShardID, 0, len(cs.Shards))
	for id := range cs.Shards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TagList returns the node's tags, treating nil as an empty set.
func (n *Node) TagList() []string {
	if n.Tags == nil {
		return []string{}
	}
	return n.Tags
}

// TagList returns the shard's tags, treating nil as an empty set.
func (s *Shard) TagList() []string {
	if s.Tags == nil {
		return []string{}
	}
	return s.Tags
}
