// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/worker"

	"github.com/contract-parity/parity-go/internal/temporal/versioning"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueueSweep: fetch-heavy comparison suites, generous concurrency
//   - QueuePublish: CloudWatch/CodeDeploy writes, tight concurrency
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueueSweep: {
			Name: versioning.QueueSweep,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     10,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueuePublish: {
			Name: versioning.QueuePublish,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     3,
				MaxConcurrentWorkflowTaskExecutionSize: 1,
			},
		},
	}
}

// ForSweep returns the sweep queue configuration.
func ForSweep() QueueConfig {
	return DefaultConfigs()[versioning.QueueSweep]
}

// ParseQueues parses a comma-separated queue list (e.g. "sweep,publish")
// into a set of queue names. Accepts both short names ("sweep") and
// full names ("parity-sweep"). Returns an error for unknown queues.
func ParseQueues(raw string) ([]string, error) {
	if raw == "" {
		return []string{versioning.QueueSweep}, nil
	}

	shortNames := map[string]string{
		"sweep":   versioning.QueueSweep,
		"publish": versioning.QueuePublish,
	}
	fullNames := map[string]bool{
		versioning.QueueSweep:   true,
		versioning.QueuePublish: true,
	}

	seen := make(map[string]bool)
	var result []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		// Resolve short name to full name.
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if !fullNames[name] {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return []string{versioning.QueueSweep}, nil
	}
	return result, nil
}
