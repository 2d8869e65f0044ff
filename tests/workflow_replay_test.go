package tests

// Replay test validates workflow determinism by replaying a recorded history.
//
// The test is a stub until a recorded history JSON lands in tests/testdata/.
// To generate:
//
//  1. Run the worker + trigger a sweep via parityctl
//  2. Export history: temporal workflow show --workflow-id WID -o json > tests/testdata/parity_sweep_history.json
//  3. Uncomment the test below.
//
// import (
//     "testing"
//     "go.temporal.io/sdk/worker"
//     "github.com/contract-parity/parity-go/internal/temporal/workflows"
// )
//
// func TestReplayParitySweep(t *testing.T) {
//     replayer := worker.NewWorkflowReplayer()
//     replayer.RegisterWorkflow(workflows.ParitySweepWorkflow)
//     err := replayer.ReplayWorkflowHistoryFromJSONFile(nil, "testdata/parity_sweep_history.json")
//     if err != nil {
//         t.Fatalf("replay failed: %v", err)
//     }
// }
