// rungen writes a deterministic sample run in the allocator's step file
// format, for local development and demos:
//
//	rungen -data-root ./data/runs -test demo -nodes 5 -shards 12 -steps 6
//
// Placement starts round-robin and drifts by one move per step so the delta
// views have something to show.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang/snappy"
	"github.com/shardviz/shardviz/internal/snapshot"
)

func main() {
	dataRoot := flag.String("data-root", "./data/runs", "Run data root directory")
	testName := flag.String("test", "demo", "Test name")
	folder := flag.String("folder", "", "Run folder name (default: current timestamp)")
	nodes := flag.Int("nodes", 5, "Number of nodes")
	shards := flag.Int("shards", 12, "Number of shards")
	steps := flag.Int("steps", 6, "Number of steps")
	rf := flag.Int("rf", 2, "Replication factor")
	withQPS := flag.Bool("qps", true, "Declare the QPS dimension")
	compress := flag.Bool("compress", false, "Write snappy-compressed records")

	flag.Parse()

	if *nodes < 1 || *shards < 1 || *steps < 1 {
		log.Fatal("Error: -nodes, -shards and -steps must all be positive")
	}
	if *rf < 1 || *rf > *nodes {
		log.Fatalf("Error: -rf must be between 1 and the node count %d", *nodes)
	}

	runFolder := *folder
	if runFolder == "" {
		runFolder = time.Now().Format("2006-01-02_15.04.05")
	}

	dir := filepath.Join(*dataRoot, *testName, runFolder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Error: failed to create run directory: %v", err)
	}

	for t := 0; t < *steps; t++ {
		step := buildStep(t, *nodes, *shards, *rf, *withQPS)
		if err := writeStep(dir, t, step, *compress); err != nil {
			log.Fatalf("Error: failed to write step %d: %v", t, err)
		}
	}

	fmt.Printf("Wrote %d steps to %s\n", *steps, dir)
}

func buildStep(t, nodeCount, shardCount, rf int, withQPS bool) *snapshot.SimulationStep {
	cs := snapshot.ClusterState{
		Nodes:             make(map[snapshot.NodeID]snapshot.Node, nodeCount),
		Shards:            make(map[snapshot.ShardID]snapshot.Shard, shardCount),
		CurrentAssignment: make(map[snapshot.ShardID][]snapshot.NodeID, shardCount),
	}

	for i := 0; i < nodeCount; i++ {
		id := snapshot.NodeID(i)
		resources := map[string]int64{
			snapshot.DimCapacity: int64(100 + 50*(i%3)),
		}
		if withQPS {
			resources[snapshot.DimQPS] = int64(1000 + 200*(i%2))
		}
		cs.Nodes[id] = snapshot.Node{
			Id:        id,
			Tags:      []string{"zone-" + strconv.Itoa(i%3)},
			Resources: resources,
		}
	}

	for i := 0; i < shardCount; i++ {
		id := snapshot.ShardID(i)
		demands := map[string]int64{
			snapshot.DimCapacity: int64(10 + 5*(i%4)),
		}
		if withQPS {
			demands[snapshot.DimQPS] = int64(100 + 25*(i%3))
		}
		cs.Shards[id] = snapshot.Shard{Id: id, Demands: demands}

		// Round-robin placement, shifted one node per step so consecutive
		// steps differ by a visible amount of churn.
		replicas := make([]snapshot.NodeID, 0, rf)
		for r := 0; r < rf; r++ {
			replicas = append(replicas, snapshot.NodeID((i+r+t)%nodeCount))
		}
		cs.CurrentAssignment[id] = replicas
	}

	return &snapshot.SimulationStep{
		ClusterState: cs,
		Configuration: snapshot.Configuration{
			WithCapacity:      true,
			WithLoadBalancing: true,
			MaxChurn:          -1,
			SearchTimeout:     10000,
			Rf:                rf,
		},
		TimeInMs: int64(40 + 7*t),
		T:        t,
	}
}

func writeStep(dir string, t int, step *snapshot.SimulationStep, compress bool) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}

	name := filepath.Join(dir, strconv.Itoa(t)+".json")
	if compress {
		data = snappy.Encode(nil, data)
		name += ".sz"
	}

	return os.WriteFile(name, data, 0644)
}
