package querier

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/contract-parity/parity-go/internal/temporal/queues"
	"github.com/contract-parity/parity-go/internal/temporal/workflows"
)

// TemporalQuerier implements SweepQuerier using a Temporal client.
type TemporalQuerier struct {
	client client.Client
}

// New creates a TemporalQuerier.
func New(c client.Client) *TemporalQuerier {
	return &TemporalQuerier{client: c}
}

// StartSweep starts a ParitySweepWorkflow on the sweep queue.
func (q *TemporalQuerier) StartSweep(ctx context.Context, input workflows.SweepInput) (SweepHandle, error) {
	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("parity-sweep-%s", uuid.NewString()),
		TaskQueue: queues.ForSweep().Name,
	}, workflows.ParitySweepWorkflow, input)
	if err != nil {
		return SweepHandle{}, fmt.Errorf("start sweep: %w", err)
	}
	return SweepHandle{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

// ListSweeps lists sweep executions using Temporal's visibility API.
func (q *TemporalQuerier) ListSweeps(ctx context.Context, opts ListOptions) ([]SweepSummary, error) {
	query := ""
	if opts.TaskQueue != "" {
		query = fmt.Sprintf("TaskQueue = %q", opts.TaskQueue)
	}
	if opts.StatusFilter != "" {
		if query != "" {
			query += " AND "
		}
		query += fmt.Sprintf("ExecutionStatus = %q", opts.StatusFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Query:    query,
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}

	var summaries []SweepSummary
	for _, exec := range resp.Executions {
		s := SweepSummary{
			WorkflowID: exec.Execution.WorkflowId,
			RunID:      exec.Execution.RunId,
			Status:     exec.Status.String(),
			StartTime:  exec.StartTime.AsTime(),
			TaskQueue:  exec.TaskQueue,
		}
		if exec.CloseTime != nil {
			s.CloseTime = exec.CloseTime.AsTime()
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// DescribeSweep returns detailed information about a sweep execution.
func (q *TemporalQuerier) DescribeSweep(ctx context.Context, workflowID string) (*SweepDescription, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe sweep: %w", err)
	}

	info := desc.WorkflowExecutionInfo
	sd := &SweepDescription{
		SweepSummary: SweepSummary{
			WorkflowID: info.Execution.WorkflowId,
			RunID:      info.Execution.RunId,
			Status:     info.Status.String(),
			StartTime:  info.StartTime.AsTime(),
			TaskQueue:  info.TaskQueue,
		},
	}
	if info.CloseTime != nil {
		sd.CloseTime = info.CloseTime.AsTime()
	}
	return sd, nil
}

// GetSweepResult returns the sweep's result. For completed sweeps it reads
// the workflow result; for running sweeps it uses the Query handler.
func (q *TemporalQuerier) GetSweepResult(ctx context.Context, workflowID string) (*workflows.SweepResult, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe sweep: %w", err)
	}

	status := desc.WorkflowExecutionInfo.Status
	if status == enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		run := q.client.GetWorkflow(ctx, workflowID, "")
		var result workflows.SweepResult
		if err := run.Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("get sweep result: %w", err)
		}
		return &result, nil
	}

	if status == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING {
		resp, err := q.client.QueryWorkflow(ctx, workflowID, "", workflows.QueryNameSweep)
		if err != nil {
			return nil, fmt.Errorf("query sweep state: %w", err)
		}
		var result workflows.SweepResult
		if err := resp.Get(&result); err != nil {
			return nil, fmt.Errorf("decode query result: %w", err)
		}
		return &result, nil
	}

	return nil, fmt.Errorf("sweep %s has status %s, cannot read result", workflowID, status)
}
