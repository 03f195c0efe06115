package snapshot

import (
	"reflect"
	"testing"
)

func testClusterState() *ClusterState {
	return &ClusterState{
		Nodes: map[NodeID]Node{
			0: {Id: 0, Resources: map[string]int64{DimCapacity: 100}},
			1: {Id: 1, Resources: map[string]int64{DimCapacity: 50}},
			2: {Id: 2, Resources: map[string]int64{DimCapacity: 80}},
		},
		Shards: map[ShardID]Shard{
			0: {Id: 0, Demands: map[string]int64{DimCapacity: 30}},
			1: {Id: 1, Demands: map[string]int64{DimCapacity: 10}},
			2: {Id: 2, Demands: map[string]int64{DimCapacity: 20}},
		},
		CurrentAssignment: map[ShardID][]NodeID{
			0: {0, 1},
			1: {1},
			2: {0},
		},
	}
}

func TestBuildAssignmentIndex_Inverse(t *testing.T) {
	cs := testClusterState()
	index := BuildAssignmentIndex(cs)

	// index[n] must equal exactly {s : n in CurrentAssignment[s]}
	for nodeID := range cs.Nodes {
		want := map[ShardID]bool{}
		for shardID, nodes := range cs.CurrentAssignment {
			for _, n := range nodes {
				if n == nodeID {
					want[shardID] = true
				}
			}
		}

		got := map[ShardID]bool{}
		for _, shardID := range index[nodeID] {
			got[shardID] = true
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("node %d: index %v does not invert assignment (want shard set %v)", nodeID, got, want)
		}
	}
}

func TestBuildAssignmentIndex_Deterministic(t *testing.T) {
	cs := testClusterState()

	first := BuildAssignmentIndex(cs)
	for i := 0; i < 10; i++ {
		if next := BuildAssignmentIndex(cs); !reflect.DeepEqual(first, next) {
			t.Fatalf("index order changed between identical inputs: %v vs %v", first, next)
		}
	}

	if want := []ShardID{0, 2}; !reflect.DeepEqual(first[0], want) {
		t.Errorf("Expected node 0 shards in ascending order %v, got %v", want, first[0])
	}
}

func TestBuildAssignmentIndex_UnassignedNodeHasEmptyEntry(t *testing.T) {
	cs := testClusterState()
	cs.Nodes[3] = Node{Id: 3, Resources: map[string]int64{}}

	index := BuildAssignmentIndex(cs)

	entry, ok := index[3]
	if !ok {
		t.Fatal("Expected an entry for node 3 to be present")
	}
	if entry == nil || len(entry) != 0 {
		t.Errorf("Expected empty (non-nil) entry for node 3, got %v", entry)
	}
}

func TestBuildAssignmentIndex_Empty(t *testing.T) {
	cs := &ClusterState{
		Nodes:             map[NodeID]Node{},
		Shards:            map[ShardID]Shard{},
		CurrentAssignment: map[ShardID][]NodeID{},
	}

	index := BuildAssignmentIndex(cs)
	if len(index) != 0 {
		t.Errorf("Expected empty index, got %v", index)
	}
}

func TestSortedIDs(t *testing.T) {
	cs := testClusterState()

	if want := []NodeID{0, 1, 2}; !reflect.DeepEqual(cs.SortedNodeIDs(), want) {
		t.Errorf("Expected node ids %v, got %v", want, cs.SortedNodeIDs())
	}
	if want := []ShardID{0, 1, 2}; !reflect.DeepEqual(cs.SortedShardIDs(), want) {
		t.Errorf("Expected shard ids %v, got %v", want, cs.SortedShardIDs())
	}
}
