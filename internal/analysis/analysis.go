// Package analysis classifies the drift in a finished comparison run.
package analysis

import (
	"fmt"
	"sort"

	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/parity"
)

// Category labels one drift finding by the consumer impact it carries.
type Category string

const (
	// CategoryBreaking means a field changed shape between environments.
	CategoryBreaking Category = "breaking"
	// CategoryRemoval means environment B dropped a field A still serves.
	CategoryRemoval Category = "removal"
	// CategoryAdditive means environment B serves a field A does not.
	CategoryAdditive Category = "additive"
)

// categoryForKind maps a difference kind to its drift category.
var categoryForKind = map[contract.DiffKind]Category{
	contract.DiffTypeMismatch:    CategoryBreaking,
	contract.DiffFieldMissingInB: CategoryRemoval,
	contract.DiffFieldMissingInA: CategoryAdditive,
}

// remediationForCategory maps a drift category to a remediation recipe.
var remediationForCategory = map[Category]string{
	CategoryBreaking: "coordinate a versioned rollout or translate the field in a compatibility layer",
	CategoryRemoval:  "restore the field or confirm every consumer has migrated off it",
	CategoryAdditive: "usually safe; confirm the addition is intentional and update the reference contract",
}

// Finding is one classified drift observation tied to a concrete endpoint and path.
type Finding struct {
	Endpoint    string   `json:"endpoint"`
	Path        string   `json:"path"`
	Category    Category `json:"category"`
	Detail      string   `json:"detail"`
	Remediation string   `json:"remediation"`
}

// Analysis is the classified view of a run report.
type Analysis struct {
	Summary       string    `json:"summary"`
	Findings      []Finding `json:"findings"`
	BreakingCount int       `json:"breaking_count"`
	RemovalCount  int       `json:"removal_count"`
	AdditiveCount int       `json:"additive_count"`
	// HotPaths are difference paths seen in more than one endpoint report,
	// sorted; a shared model drifting shows up here first.
	HotPaths []string `json:"hot_paths,omitempty"`
}

// Analyze classifies every difference in the report. It never fails; a report
// with no comparisons yields an empty analysis with a summary saying so.
func Analyze(r *parity.Report) Analysis {
	var (
		findings  []Finding
		pathSeen  = map[string]int{}
		breaking  int
		removals  int
		additions int
	)

	for _, ep := range r.Endpoints {
		if ep.Comparison == nil {
			continue
		}
		for _, d := range ep.Comparison.Differences {
			category := categoryForKind[d.Kind]
			if category == "" {
				category = CategoryBreaking
			}
			switch category {
			case CategoryBreaking:
				breaking++
			case CategoryRemoval:
				removals++
			case CategoryAdditive:
				additions++
			}

			findings = append(findings, Finding{
				Endpoint:    ep.EndpointName,
				Path:        displayPath(d.Path),
				Category:    category,
				Detail:      detailFor(d, r.EnvironmentA.Name, r.EnvironmentB.Name),
				Remediation: remediationForCategory[category],
			})
			pathSeen[displayPath(d.Path)]++
		}
	}

	var hot []string
	for p, n := range pathSeen {
		if n > 1 {
			hot = append(hot, p)
		}
	}
	sort.Strings(hot)

	return Analysis{
		Summary:       summaryFor(r, len(findings), breaking, removals, additions),
		Findings:      findings,
		BreakingCount: breaking,
		RemovalCount:  removals,
		AdditiveCount: additions,
		HotPaths:      hot,
	}
}

func detailFor(d contract.Difference, envA, envB string) string {
	path := displayPath(d.Path)
	switch d.Kind {
	case contract.DiffTypeMismatch:
		return fmt.Sprintf("%s is %s in %s but %s in %s", path, d.AKind, envA, d.BKind, envB)
	case contract.DiffFieldMissingInB:
		return fmt.Sprintf("%s served by %s but missing from %s", path, envA, envB)
	case contract.DiffFieldMissingInA:
		return fmt.Sprintf("%s served by %s but missing from %s", path, envB, envA)
	}
	return path
}

func summaryFor(r *parity.Report, total, breaking, removals, additions int) string {
	if r.Totals.SuccessfulComparisons == 0 {
		return "no endpoint pair was fetched successfully from both environments"
	}
	if total == 0 {
		return fmt.Sprintf("all %d compared endpoints have identical contracts", r.Totals.SuccessfulComparisons)
	}
	return fmt.Sprintf("%d drift findings across %d compared endpoints (%d breaking, %d removals, %d additive)",
		total, r.Totals.SuccessfulComparisons, breaking, removals, additions)
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
