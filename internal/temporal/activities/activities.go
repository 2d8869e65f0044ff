package activities

import (
	"context"
	"fmt"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/parity"
)

// MetricsPublisher pushes run totals to a metrics backend.
// connectors/aws/cloudwatch.Client satisfies this without changes.
type MetricsPublisher interface {
	PublishRunMetrics(ctx context.Context, namespace string, r *parity.Report) error
}

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
// Publisher and Annotator are nil when the worker runs without AWS access;
// the corresponding activities then degrade to no-ops.
type Activities struct {
	Doc       *config.Document
	Fetcher   parity.Fetcher
	EnvA      parity.Environment
	EnvB      parity.Environment
	Publisher MetricsPublisher
	Annotator *annotate.Annotator
	Namespace string
}

// RunSuite fetches every selected endpoint from both environments and diffs
// the response shapes. Fetch failures are report data, not activity errors;
// the activity fails only on unknown endpoint names.
func (a *Activities) RunSuite(ctx context.Context, in RunSuiteInput) (RunSuiteOutput, error) {
	specs, err := a.Doc.SpecsFor(in.Endpoints)
	if err != nil {
		return RunSuiteOutput{}, fmt.Errorf("run suite activity: %w", err)
	}
	ignore := contract.NewSegmentIgnore(a.Doc.Ignore...)
	report := parity.RunObserved(ctx, in.RunID, specs, a.EnvA, a.EnvB, a.Fetcher, ignore, nil)
	return RunSuiteOutput{Report: report}, nil
}

// PublishRunMetrics pushes the report totals to CloudWatch. A worker without
// a publisher treats this as a no-op.
func (a *Activities) PublishRunMetrics(ctx context.Context, in PublishRunMetricsInput) error {
	if a.Publisher == nil {
		return nil
	}
	namespace := in.Namespace
	if namespace == "" {
		namespace = a.Namespace
	}
	if err := a.Publisher.PublishRunMetrics(ctx, namespace, &in.Report); err != nil {
		return fmt.Errorf("publish metrics activity: %w", err)
	}
	return nil
}

// FetchDeployContext looks up recent deployments around the run window for
// both environments. A worker without an annotator returns empty context.
func (a *Activities) FetchDeployContext(ctx context.Context, in FetchDeployContextInput) (FetchDeployContextOutput, error) {
	if a.Annotator == nil {
		return FetchDeployContextOutput{}, nil
	}
	anns := a.Annotator.Annotate(ctx, &in.Report)
	return FetchDeployContextOutput{Annotations: anns}, nil
}
