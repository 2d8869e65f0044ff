package uischema

import (
	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/parity"
)

// statusBadge builds the always-present run verdict badge.
func statusBadge(r *parity.Report) Component {
	return Component{
		Type:       ComponentStatusBadge,
		Title:      "Run Status",
		Priority:   0,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"status":        string(r.Status),
			"environment_a": r.EnvironmentA.Name,
			"environment_b": r.EnvironmentB.Name,
			"duration_ms":   r.DurationMS,
		},
	}
}

// totalsGrid builds the run counters grid.
func totalsGrid(r *parity.Report) Component {
	t := r.Totals
	return Component{
		Type:       ComponentTotalsGrid,
		Title:      "Totals",
		Priority:   10,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"total_endpoints":        t.TotalEndpoints,
			"successful_comparisons": t.SuccessfulComparisons,
			"identical_contracts":    t.IdenticalContracts,
			"compatible_contracts":   t.CompatibleContracts,
			"contract_mismatches":    t.ContractMismatches,
			"failed_fetches":         t.FailedFetches,
		},
	}
}

// driftSummary builds the classified-drift overview card.
func driftSummary(an *analysis.Analysis) Component {
	return Component{
		Type:       ComponentDriftSummary,
		Title:      "Drift Summary",
		Priority:   20,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"summary":        an.Summary,
			"breaking_count": an.BreakingCount,
			"removal_count":  an.RemovalCount,
			"additive_count": an.AdditiveCount,
			"hot_paths":      an.HotPaths,
		},
	}
}

// differenceTable flattens every difference in the report into table rows.
func differenceTable(r *parity.Report) Component {
	rows := make([]map[string]any, 0)
	for _, ep := range r.Endpoints {
		if ep.Comparison == nil {
			continue
		}
		for _, d := range ep.Comparison.Differences {
			row := map[string]any{
				"endpoint": ep.EndpointName,
				"path":     d.Path,
				"kind":     string(d.Kind),
				"severity": string(d.Severity),
			}
			if d.AKind != "" {
				row["a_kind"] = string(d.AKind)
			}
			if d.BKind != "" {
				row["b_kind"] = string(d.BKind)
			}
			rows = append(rows, row)
		}
	}
	return Component{
		Type:       ComponentDifferenceTable,
		Title:      "Differences",
		Priority:   30,
		Visibility: VisibilityVisible,
		Data:       map[string]any{"rows": rows},
	}
}

// fetchFailureList lists endpoints that could not be compared.
func fetchFailureList(r *parity.Report) Component {
	rows := make([]map[string]any, 0)
	for _, ep := range r.Endpoints {
		if ep.Comparison != nil {
			continue
		}
		row := map[string]any{"endpoint": ep.EndpointName, "path": ep.Path}
		if !ep.OutcomeA.Success() {
			row["reason_a"] = ep.OutcomeA.Reason
		}
		if !ep.OutcomeB.Success() {
			row["reason_b"] = ep.OutcomeB.Reason
		}
		rows = append(rows, row)
	}
	return Component{
		Type:       ComponentFetchFailures,
		Title:      "Fetch Failures",
		Priority:   40,
		Visibility: VisibilityVisible,
		Data:       map[string]any{"rows": rows},
	}
}

// deployContext shows recent deployments per environment.
func deployContext(anns *annotate.RunAnnotations) Component {
	rows := make([]map[string]any, 0, len(anns.Deploys))
	for _, d := range anns.Deploys {
		rows = append(rows, map[string]any{
			"environment":    d.Environment,
			"application":    d.Application,
			"deployment_ids": d.DeploymentIDs,
		})
	}
	return Component{
		Type:       ComponentDeployContext,
		Title:      "Recent Deployments",
		Priority:   50,
		Visibility: VisibilityCollapsed,
		Data:       map[string]any{"rows": rows},
	}
}
