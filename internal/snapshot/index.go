package snapshot

// AssignmentIndex is the inverse of CurrentAssignment: node -> shards hosted
// on it. Every node known to the cluster state has an entry; a node hosting
// nothing maps to an empty slice, never to an absent key, so callers cannot
// confuse "zero shards" with "unknown node".
type AssignmentIndex map[NodeID][]ShardID

// BuildAssignmentIndex inverts the step's shard->nodes mapping. Shards are
// visited in ascending id order so the per-node shard lists are deterministic
// for a given input. Runs in O(total assignment entries).
func BuildAssignmentIndex(cs *ClusterState) AssignmentIndex {
	index := make(AssignmentIndex, len(cs.Nodes))
	for nodeID := range cs.Nodes {
		index[nodeID] = []ShardID{}
	}

	for _, shardID := range cs.SortedShardIDs() {
		for _, nodeID := range cs.CurrentAssignment[shardID] {
			index[nodeID] = append(index[nodeID], shardID)
		}
	}

	return index
}
