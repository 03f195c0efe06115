package models

import "github.com/shardviz/shardviz/internal/snapshot"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RunResponse describes one discovered run
type RunResponse struct {
	Test   string `json:"test"`
	Folder string `json:"folder"`
	Steps  int    `json:"steps"`
}

// RunListResponse represents the run discovery response
type RunListResponse struct {
	Runs []RunResponse `json:"runs"`
}

// NodeView is one node of a step view, sorted by id in responses
type NodeView struct {
	ID        int64            `json:"id"`
	Tags      []string         `json:"tags"`
	Resources map[string]int64 `json:"resources"`
}

// ShardView is one shard of a step view
type ShardView struct {
	ID      int64            `json:"id"`
	Tags    []string         `json:"tags"`
	Demands map[string]int64 `json:"demands"`
}

// StepResponse represents one loaded simulation step with its derived
// assignment index
type StepResponse struct {
	Test          string                                 `json:"test"`
	Folder        string                                 `json:"folder"`
	T             int                                    `json:"t"`
	TimeInMs      int64                                  `json:"time_in_ms"`
	Configuration snapshot.Configuration                 `json:"configuration"`
	Nodes         []NodeView                             `json:"nodes"`
	Shards        []ShardView                            `json:"shards"`
	Assignment    map[snapshot.ShardID][]snapshot.NodeID `json:"assignment"`
	Index         map[snapshot.NodeID][]snapshot.ShardID `json:"index"`
}

// NodeUtilizationView carries per-node usage for the bar chart views.
// CapacityPercent is null when the metric is not applicable for the run,
// never 0 - consumers must not conflate the two.
type NodeUtilizationView struct {
	NodeID          int64    `json:"node_id"`
	UsedCapacity    int64    `json:"used_capacity"`
	UsedQPS         int64    `json:"used_qps"`
	CapacityPercent *float64 `json:"capacity_percent"`
}

// UtilizationResponse represents per-node aggregate usage for one step
type UtilizationResponse struct {
	Test            string                `json:"test"`
	Folder          string                `json:"folder"`
	T               int                   `json:"t"`
	CapacityPresent bool                  `json:"capacity_dimension_present"`
	QPSPresent      bool                  `json:"qps_dimension_present"`
	Nodes           []NodeUtilizationView `json:"nodes"`
}

// NodeRow is one row of the node table view. PriorShards is null when the
// step has no predecessor (t == 0) and an empty list when the node simply
// hosted nothing in the prior step.
type NodeRow struct {
	NodeID         int64    `json:"node_id"`
	Tags           []string `json:"tags"`
	MaxCapacity    *int64   `json:"max_capacity"`
	QPS            *int64   `json:"qps"`
	AssignedShards []int64  `json:"assigned_shards"`
	PriorShards    []int64  `json:"prior_shards"`
}

// NodeTableResponse represents the node table view of one step
type NodeTableResponse struct {
	Test     string    `json:"test"`
	Folder   string    `json:"folder"`
	T        int       `json:"t"`
	HasPrior bool      `json:"has_prior"`
	Rows     []NodeRow `json:"rows"`
}

// ShardRow is one row of the shard table view; the structural mirror of
// NodeRow
type ShardRow struct {
	ShardID          int64    `json:"shard_id"`
	Rf               int      `json:"rf"`
	Tags             []string `json:"tags"`
	CapacityRequired *int64   `json:"capacity_required"`
	QPS              *int64   `json:"qps"`
	AssignedNodes    []int64  `json:"assigned_nodes"`
	PriorNodes       []int64  `json:"prior_nodes"`
}

// ShardTableResponse represents the shard table view of one step
type ShardTableResponse struct {
	Test     string     `json:"test"`
	Folder   string     `json:"folder"`
	T        int        `json:"t"`
	HasPrior bool       `json:"has_prior"`
	Rows     []ShardRow `json:"rows"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
