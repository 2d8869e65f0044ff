// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	ParitySweepV1 = "parity-sweep-v1"

	// Task queues. Sweeps fetch from both environments; publish is kept on
	// its own queue so AWS-writing activities can run under a narrower role.
	QueueSweep   = "parity-sweep"
	QueuePublish = "parity-publish"
)
