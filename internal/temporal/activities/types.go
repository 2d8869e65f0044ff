// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the pure-logic packages in internal/.
package activities

import (
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/parity"
)

// RunSuiteInput is the activity input for a comparison suite run. Endpoints
// restricts the run to the named endpoints; empty means every configured one.
type RunSuiteInput struct {
	RunID     string   `json:"run_id,omitempty"`
	Endpoints []string `json:"endpoints,omitempty"`
}

// RunSuiteOutput is the activity output from a comparison suite run.
type RunSuiteOutput struct {
	Report parity.Report `json:"report"`
}

// PublishRunMetricsInput is the activity input for CloudWatch publication.
// Namespace overrides the worker's configured namespace when set.
type PublishRunMetricsInput struct {
	Namespace string        `json:"namespace,omitempty"`
	Report    parity.Report `json:"report"`
}

// FetchDeployContextInput is the activity input for deploy-context lookup.
type FetchDeployContextInput struct {
	Report parity.Report `json:"report"`
}

// FetchDeployContextOutput is the activity output from deploy-context lookup.
type FetchDeployContextOutput struct {
	Annotations annotate.RunAnnotations `json:"annotations"`
}
