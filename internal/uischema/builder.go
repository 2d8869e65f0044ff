package uischema

import (
	"github.com/contract-parity/parity-go/internal/analysis"
	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/parity"
)

const schemaVersion = "v1"

// Build constructs a UISchema from a finished run. Analysis and annotations
// are optional; nil simply omits their cards.
func Build(r *parity.Report, an *analysis.Analysis, anns *annotate.RunAnnotations) UISchema {
	schema := UISchema{
		Version: schemaVersion,
		RunID:   r.RunID,
		Status:  string(r.Status),
	}

	schema.Components = append(schema.Components, statusBadge(r), totalsGrid(r))

	if an != nil {
		schema.Components = append(schema.Components, driftSummary(an))
	}

	if hasDifferences(r) {
		schema.Components = append(schema.Components, differenceTable(r))
	}

	if r.Totals.FailedFetches > 0 {
		schema.Components = append(schema.Components, fetchFailureList(r))
	}

	if anns != nil && len(anns.Deploys) > 0 {
		schema.Components = append(schema.Components, deployContext(anns))
	}

	return schema
}

func hasDifferences(r *parity.Report) bool {
	for _, ep := range r.Endpoints {
		if ep.Comparison != nil && len(ep.Comparison.Differences) > 0 {
			return true
		}
	}
	return false
}
