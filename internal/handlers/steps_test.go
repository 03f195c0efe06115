package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/models"
	"github.com/shardviz/shardviz/internal/snapshot"
	"github.com/shardviz/shardviz/internal/store"
)

// stubStore serves a fixed two-step run for handler tests
type stubStore struct {
	schemaErr bool
}

func stubStep(t int) *snapshot.SimulationStep {
	return &snapshot.SimulationStep{
		ClusterState: snapshot.ClusterState{
			Nodes: map[snapshot.NodeID]snapshot.Node{
				0: {Id: 0, Resources: map[string]int64{snapshot.DimCapacity: 100}},
			},
			Shards: map[snapshot.ShardID]snapshot.Shard{
				0: {Id: 0, Demands: map[string]int64{snapshot.DimCapacity: 30}},
			},
			CurrentAssignment: map[snapshot.ShardID][]snapshot.NodeID{0: {0}},
		},
		Configuration: snapshot.Configuration{WithCapacity: true, MaxChurn: -1, SearchTimeout: 10000, Rf: 1},
		TimeInMs:      42,
		T:             t,
	}
}

func (s *stubStore) LoadStep(ctx context.Context, run store.RunID, t int) (*snapshot.SimulationStep, error) {
	if s.schemaErr {
		return nil, &snapshot.SchemaError{Reason: "broken record"}
	}
	if run.Test != "test" || run.Folder != "run-a" {
		return nil, &store.NotFoundError{Run: run, Step: -1}
	}
	if t > 1 {
		return nil, &store.NotFoundError{Run: run, Step: t}
	}
	return stubStep(t), nil
}

func (s *stubStore) ListRuns(ctx context.Context) ([]store.RunInfo, error) {
	return []store.RunInfo{{Test: "test", Folder: "run-a", Steps: 2}}, nil
}

func (s *stubStore) StepCount(ctx context.Context, run store.RunID) (int, error) {
	return 2, nil
}

func newTestApp(st store.Store) *fiber.App {
	logger := logging.NewDevelopment()
	h := New(logger, st)

	app := fiber.New()
	app.Get("/v1/runs", h.ListRuns)
	app.Get("/v1/runs/:test/:folder/steps/:t", h.GetStep)
	app.Get("/v1/runs/:test/:folder/steps/:t/utilization", h.GetUtilization)
	app.Get("/v1/runs/:test/:folder/steps/:t/nodes", h.GetNodeTable)
	app.Get("/v1/runs/:test/:folder/steps/:t/shards", h.GetShardTable)
	return app
}

func decodeBody(t *testing.T, resp io.Reader, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}

func TestHandler_ListRuns(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var runs models.RunListResponse
	decodeBody(t, resp.Body, &runs)
	if len(runs.Runs) != 1 || runs.Runs[0].Steps != 2 {
		t.Errorf("Unexpected run list: %+v", runs)
	}
}

func TestHandler_GetStep(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/1", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var step models.StepResponse
	decodeBody(t, resp.Body, &step)
	if step.T != 1 {
		t.Errorf("Expected t=1, got %d", step.T)
	}
	if len(step.Nodes) != 1 || len(step.Shards) != 1 {
		t.Errorf("Unexpected step shape: %+v", step)
	}
}

func TestHandler_GetUtilization(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/0/utilization", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var util models.UtilizationResponse
	decodeBody(t, resp.Body, &util)
	if !util.CapacityPresent {
		t.Error("Expected capacity dimension present")
	}
	if len(util.Nodes) != 1 || util.Nodes[0].UsedCapacity != 30 {
		t.Errorf("Unexpected utilization: %+v", util)
	}
	if util.Nodes[0].CapacityPercent == nil || *util.Nodes[0].CapacityPercent != 30.0 {
		t.Errorf("Expected capacity percent 30.0, got %v", util.Nodes[0].CapacityPercent)
	}
}

func TestHandler_StepNotFound(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/7", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != "STEP_NOT_FOUND" {
		t.Errorf("Expected STEP_NOT_FOUND, got %s", errResp.Error.Code)
	}
}

func TestHandler_RunNotFound(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/no/such-run/steps/0", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != "RUN_NOT_FOUND" {
		t.Errorf("Expected RUN_NOT_FOUND, got %s", errResp.Error.Code)
	}
}

func TestHandler_InvalidSnapshot(t *testing.T) {
	app := newTestApp(&stubStore{schemaErr: true})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/0", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != "INVALID_SNAPSHOT" {
		t.Errorf("Expected INVALID_SNAPSHOT, got %s", errResp.Error.Code)
	}
}

func TestHandler_BadStepParam(t *testing.T) {
	app := newTestApp(&stubStore{})

	for _, path := range []string{
		"/v1/runs/test/run-a/steps/abc",
		"/v1/runs/test/run-a/steps/-1",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("Failed to perform request: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestHandler_NodeTableDelta(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/1/nodes", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var table models.NodeTableResponse
	decodeBody(t, resp.Body, &table)
	if !table.HasPrior {
		t.Error("Expected has_prior=true at t=1")
	}
	if len(table.Rows) != 1 || table.Rows[0].PriorShards == nil {
		t.Errorf("Expected prior shards present, got %+v", table.Rows)
	}

	// t=0 must carry a wholly absent delta
	resp, err = app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/0/nodes", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	decodeBody(t, resp.Body, &table)
	if table.HasPrior {
		t.Error("Expected has_prior=false at t=0")
	}
	if table.Rows[0].PriorShards != nil {
		t.Errorf("Expected null prior shards at t=0, got %v", table.Rows[0].PriorShards)
	}
}

func TestHandler_ShardTable(t *testing.T) {
	app := newTestApp(&stubStore{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/runs/test/run-a/steps/1/shards", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var table models.ShardTableResponse
	decodeBody(t, resp.Body, &table)
	if len(table.Rows) != 1 {
		t.Fatalf("Expected 1 shard row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if row.Rf != 1 {
		t.Errorf("Expected rf=1, got %d", row.Rf)
	}
	if row.CapacityRequired == nil || *row.CapacityRequired != 30 {
		t.Errorf("Expected capacity required 30, got %v", row.CapacityRequired)
	}
	if row.QPS != nil {
		t.Errorf("Expected QPS null when undeclared, got %v", row.QPS)
	}
}
