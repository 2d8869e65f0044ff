// Package workflows defines the Temporal workflow functions.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/temporal/activities"
	"github.com/contract-parity/parity-go/internal/temporal/versioning"
)

// QueryNameSweep is the Temporal Query handler name exposing the sweep's
// latest result.
const QueryNameSweep = "sweep_result"

// SweepInput configures one scheduled comparison sweep.
type SweepInput struct {
	// Endpoints restricts the sweep to the named endpoints; empty means all.
	Endpoints []string `json:"endpoints,omitempty"`
	// Namespace overrides the worker's CloudWatch namespace when set.
	Namespace string `json:"namespace,omitempty"`
}

// SweepResult summarizes the sweep outcome. ActivityErrors counts follow-up
// activities (metrics, deploy context) that failed without failing the sweep.
type SweepResult struct {
	RunID          string                   `json:"run_id"`
	Status         parity.Status            `json:"status"`
	Totals         parity.Totals            `json:"totals"`
	ActivityErrors int                      `json:"activity_errors"`
	Deploys        []annotate.DeployContext `json:"deploys,omitempty"`
}

// ParitySweepWorkflow runs one comparison suite and fans out the follow-up
// work: metric publication always, deploy-context lookup only when the run
// found something. The suite activity failing fails the workflow; follow-up
// failures are counted and the sweep completes anyway.
func ParitySweepWorkflow(ctx workflow.Context, input SweepInput) (SweepResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("parity sweep started",
		"version", versioning.ParitySweepV1,
		"endpoints", len(input.Endpoints),
	)
	result := SweepResult{}

	// Registered before any activity so running sweeps are queryable.
	if err := workflow.SetQueryHandler(ctx, QueryNameSweep, func() (SweepResult, error) {
		return result, nil
	}); err != nil {
		return result, fmt.Errorf("register query handler: %w", err)
	}

	// Activity options: generous timeout, no retry by default (a failed
	// fetch is already data; retrying hides flapping environments).
	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	// The workflow ID doubles as the run ID so reports trace back to the
	// sweep that produced them, including across replays.
	runID := workflow.GetInfo(ctx).WorkflowExecution.ID

	var suiteOut activities.RunSuiteOutput
	err := workflow.ExecuteActivity(actCtx, "RunSuite", activities.RunSuiteInput{
		RunID:     runID,
		Endpoints: input.Endpoints,
	}).Get(ctx, &suiteOut)
	if err != nil {
		return result, fmt.Errorf("run suite: %w", err)
	}

	report := suiteOut.Report
	result.RunID = report.RunID
	result.Status = report.Status
	result.Totals = report.Totals
	logger.Info("comparison suite complete",
		"run_id", report.RunID,
		"status", report.Status,
		"mismatches", report.Totals.ContractMismatches,
		"failed_fetches", report.Totals.FailedFetches,
	)

	err = workflow.ExecuteActivity(actCtx, "PublishRunMetrics", activities.PublishRunMetricsInput{
		Namespace: input.Namespace,
		Report:    report,
	}).Get(ctx, nil)
	if err != nil {
		result.ActivityErrors++
		logger.Warn("metric publication failed", "error", err)
	}

	// Deploy context is only interesting when something drifted or broke.
	if report.Status != parity.StatusPass {
		var deployOut activities.FetchDeployContextOutput
		err = workflow.ExecuteActivity(actCtx, "FetchDeployContext", activities.FetchDeployContextInput{
			Report: report,
		}).Get(ctx, &deployOut)
		if err != nil {
			result.ActivityErrors++
			logger.Warn("deploy context lookup failed", "error", err)
		} else {
			result.Deploys = deployOut.Annotations.Deploys
		}
	}

	return result, nil
}
