package snapshot

import (
	"encoding/json"
	"fmt"
)

// Raw record mirrors with pointer fields so that absent required fields are
// distinguishable from zero values after unmarshalling.

type rawNode struct {
	Id        *NodeID          `json:"Id"`
	Tags      []string         `json:"Tags"`
	Resources map[string]int64 `json:"Resources"`
}

type rawShard struct {
	Id      *ShardID         `json:"Id"`
	Tags    []string         `json:"Tags"`
	Demands map[string]int64 `json:"Demands"`
}

type rawClusterState struct {
	Nodes             map[NodeID]rawNode   `json:"Nodes"`
	Shards            map[ShardID]rawShard `json:"Shards"`
	CurrentAssignment map[ShardID][]NodeID `json:"CurrentAssignment"`
}

type rawConfiguration struct {
	WithCapacity      *bool  `json:"WithCapacity"`
	WithLoadBalancing *bool  `json:"WithLoadBalancing"`
	WithTagAffinity   *bool  `json:"WithTagAffinity"`
	WithMinimalChurn  *bool  `json:"WithMinimalChurn"`
	MaxChurn          *int64 `json:"MaxChurn"`
	SearchTimeout     *int64 `json:"SearchTimeout"`
	VerboseLogging    *bool  `json:"VerboseLogging"`
	Rf                *int   `json:"Rf"`
}

type rawStep struct {
	ClusterState  *rawClusterState  `json:"ClusterState"`
	Configuration *rawConfiguration `json:"Configuration"`
	TimeInMs      *int64            `json:"TimeInMs"`
	T             *int              `json:"T"`
}

// DecodeStep deserializes one persisted simulation step and validates it.
// Returns a *SchemaError when a required field is absent, a type mismatches,
// or the assignment references an unknown node or shard.
func DecodeStep(data []byte) (*SimulationStep, error) {
	var raw rawStep
	if err := json.Unmarshal(data, &raw); err != nil {
		field := ""
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			field = typeErr.Field
		}
		return nil, &SchemaError{Field: field, Reason: "malformed record", Err: err}
	}

	if raw.ClusterState == nil {
		return nil, schemaErrorf("ClusterState", "required field is absent")
	}
	if raw.Configuration == nil {
		return nil, schemaErrorf("Configuration", "required field is absent")
	}
	if raw.TimeInMs == nil {
		return nil, schemaErrorf("TimeInMs", "required field is absent")
	}
	if raw.T == nil {
		return nil, schemaErrorf("T", "required field is absent")
	}
	if *raw.T < 0 {
		return nil, schemaErrorf("T", "step index cannot be negative, got %d", *raw.T)
	}

	cfg, err := convertConfiguration(raw.Configuration)
	if err != nil {
		return nil, err
	}

	cs, err := convertClusterState(raw.ClusterState)
	if err != nil {
		return nil, err
	}

	step := &SimulationStep{
		ClusterState:  *cs,
		Configuration: *cfg,
		TimeInMs:      *raw.TimeInMs,
		T:             *raw.T,
	}

	if err := validateReferences(&step.ClusterState); err != nil {
		return nil, err
	}

	return step, nil
}

func convertConfiguration(raw *rawConfiguration) (*Configuration, error) {
	required := []struct {
		name string
		ok   bool
	}{
		{"Configuration.WithCapacity", raw.WithCapacity != nil},
		{"Configuration.WithLoadBalancing", raw.WithLoadBalancing != nil},
		{"Configuration.WithTagAffinity", raw.WithTagAffinity != nil},
		{"Configuration.WithMinimalChurn", raw.WithMinimalChurn != nil},
		{"Configuration.MaxChurn", raw.MaxChurn != nil},
		{"Configuration.SearchTimeout", raw.SearchTimeout != nil},
		{"Configuration.VerboseLogging", raw.VerboseLogging != nil},
		{"Configuration.Rf", raw.Rf != nil},
	}
	for _, r := range required {
		if !r.ok {
			return nil, schemaErrorf(r.name, "required field is absent")
		}
	}

	return &Configuration{
		WithCapacity:      *raw.WithCapacity,
		WithLoadBalancing: *raw.WithLoadBalancing,
		WithTagAffinity:   *raw.WithTagAffinity,
		WithMinimalChurn:  *raw.WithMinimalChurn,
		MaxChurn:          *raw.MaxChurn,
		SearchTimeout:     *raw.SearchTimeout,
		VerboseLogging:    *raw.VerboseLogging,
		Rf:                *raw.Rf,
	}, nil
}

func convertClusterState(raw *rawClusterState) (*ClusterState, error) {
	if raw.Nodes == nil {
		return nil, schemaErrorf("ClusterState.Nodes", "required field is absent")
	}
	if raw.Shards == nil {
		return nil, schemaErrorf("ClusterState.Shards", "required field is absent")
	}
	if raw.CurrentAssignment == nil {
		return nil, schemaErrorf("ClusterState.CurrentAssignment", "required field is absent")
	}

	cs := &ClusterState{
		Nodes:             make(map[NodeID]Node, len(raw.Nodes)),
		Shards:            make(map[ShardID]Shard, len(raw.Shards)),
		CurrentAssignment: make(map[ShardID][]NodeID, len(raw.CurrentAssignment)),
	}

	for key, n := range raw.Nodes {
		field := fmt.Sprintf("ClusterState.Nodes[%d]", key)
		if key < 0 {
			return nil, schemaErrorf(field, "node id cannot be negative")
		}
		if n.Id == nil {
			return nil, schemaErrorf(field+".Id", "required field is absent")
		}
		if *n.Id != key {
			return nil, schemaErrorf(field+".Id", "id %d disagrees with map key %d", *n.Id, key)
		}
		if n.Resources == nil {
			return nil, schemaErrorf(field+".Resources", "required field is absent")
		}
		cs.Nodes[key] = Node{Id: key, Tags: n.Tags, Resources: n.Resources}
	}

	for key, s := range raw.Shards {
		field := fmt.Sprintf("ClusterState.Shards[%d]", key)
		if key < 0 {
			return nil, schemaErrorf(field, "shard id cannot be negative")
		}
		if s.Id == nil {
			return nil, schemaErrorf(field+".Id", "required field is absent")
		}
		if *s.Id != key {
			return nil, schemaErrorf(field+".Id", "id %d disagrees with map key %d", *s.Id, key)
		}
		if s.Demands == nil {
			return nil, schemaErrorf(field+".Demands", "required field is absent")
		}
		cs.Shards[key] = Shard{Id: key, Tags: s.Tags, Demands: s.Demands}
	}

	for shardID, nodes := range raw.CurrentAssignment {
		// Preserve placement order as written.
		cs.CurrentAssignment[shardID] = append([]NodeID(nil), nodes...)
	}

	return cs, nil
}

// validateReferences checks referential integrity of the assignment: every
// shard key must exist in Shards and every listed node must exist in Nodes.
func validateReferences(cs *ClusterState) error {
	for shardID, nodes := range cs.CurrentAssignment {
		if _, ok := cs.Shards[shardID]; !ok {
			return schemaErrorf("ClusterState.CurrentAssignment",
				"assignment references unknown shard %d", shardID)
		}
		for _, nodeID := range nodes {
			if _, ok := cs.Nodes[nodeID]; !ok {
				return schemaErrorf("ClusterState.CurrentAssignment",
					"shard %d is assigned to unknown node %d", shardID, nodeID)
			}
		}
	}
	return nil
}
