// Package report renders comparison run reports as JSON, plain text, or Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/parity"
)

// Format selects a report output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatText, FormatMarkdown:
		return true
	}
	return false
}

// Write renders the report to w in the requested format.
func Write(w io.Writer, f Format, r *parity.Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatText:
		return WriteText(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r)
	}
	return fmt.Errorf("report: unknown format %q", f)
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, r *parity.Report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// WriteText renders a compact human-readable summary, one line per endpoint
// followed by its differences.
func WriteText(w io.Writer, r *parity.Report) error {
	fmt.Fprintf(w, "Contract parity: %s vs %s\n", r.EnvironmentA.Name, r.EnvironmentB.Name)
	fmt.Fprintf(w, "Run %s, started %s, took %dms\n", r.RunID, r.StartedAt.Format(time.RFC3339), r.DurationMS)
	fmt.Fprintf(w, "Status: %s\n\n", r.Status)

	for _, ep := range r.Endpoints {
		fmt.Fprintf(w, "[%s] %s %s\n", Verdict(ep), ep.EndpointName, ep.Path)
		if ep.OutcomeA.State == parity.OutcomeFailure {
			fmt.Fprintf(w, "  %s: fetch failed: %s\n", r.EnvironmentA.Name, ep.OutcomeA.Reason)
		}
		if ep.OutcomeB.State == parity.OutcomeFailure {
			fmt.Fprintf(w, "  %s: fetch failed: %s\n", r.EnvironmentB.Name, ep.OutcomeB.Reason)
		}
		if ep.Comparison == nil {
			continue
		}
		for _, d := range ep.Comparison.Differences {
			fmt.Fprintf(w, "  %-7s %s %s\n", d.Severity, d.Kind, describeDifference(d))
		}
	}

	t := r.Totals
	fmt.Fprintf(w, "\n%d endpoints: %d compared, %d identical, %d compatible, %d mismatched, %d fetch failures\n",
		t.TotalEndpoints, t.SuccessfulComparisons, t.IdenticalContracts,
		t.CompatibleContracts, t.ContractMismatches, t.FailedFetches)
	return nil
}

// WriteMarkdown renders the report as a Markdown document, one section per
// endpoint that has something to say.
func WriteMarkdown(w io.Writer, r *parity.Report) error {
	fmt.Fprintf(w, "# Contract Parity Report\n\n")
	fmt.Fprintf(w, "Comparing **%s** (`%s`) against **%s** (`%s`).\n\n",
		r.EnvironmentA.Name, r.EnvironmentA.BaseURL,
		r.EnvironmentB.Name, r.EnvironmentB.BaseURL)
	fmt.Fprintf(w, "Generated: %s\n\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "**Status: %s**\n\n", r.Status)

	t := r.Totals
	fmt.Fprintf(w, "| Total | Compared | Identical | Compatible | Mismatched | Fetch failures |\n")
	fmt.Fprintf(w, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(w, "| %d | %d | %d | %d | %d | %d |\n\n",
		t.TotalEndpoints, t.SuccessfulComparisons, t.IdenticalContracts,
		t.CompatibleContracts, t.ContractMismatches, t.FailedFetches)

	for _, ep := range r.Endpoints {
		clean := ep.Comparison != nil && ep.Comparison.Identical
		if clean {
			continue
		}
		fmt.Fprintf(w, "## %s\n\n", ep.EndpointName)
		fmt.Fprintf(w, "`%s` (%s)\n\n", ep.Path, Verdict(ep))
		if ep.OutcomeA.State == parity.OutcomeFailure {
			fmt.Fprintf(w, "- **fetch failed** in %s: %s\n", r.EnvironmentA.Name, ep.OutcomeA.Reason)
		}
		if ep.OutcomeB.State == parity.OutcomeFailure {
			fmt.Fprintf(w, "- **fetch failed** in %s: %s\n", r.EnvironmentB.Name, ep.OutcomeB.Reason)
		}
		if ep.Comparison != nil {
			for _, d := range ep.Comparison.Differences {
				fmt.Fprintf(w, "- **%s**: %s\n", d.Kind, describeDifference(d))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteMarkdownAnnotated renders the Markdown report followed by a recent
// deployments section, so drift can be read next to the rollouts that may
// have caused it.
func WriteMarkdownAnnotated(w io.Writer, r *parity.Report, anns annotate.RunAnnotations) error {
	if err := WriteMarkdown(w, r); err != nil {
		return err
	}
	if len(anns.Deploys) == 0 {
		return nil
	}
	fmt.Fprintf(w, "## Recent deployments\n\n")
	for _, dc := range anns.Deploys {
		if len(dc.DeploymentIDs) == 0 {
			fmt.Fprintf(w, "- **%s** (`%s`): none in window\n", dc.Environment, dc.Application)
			continue
		}
		fmt.Fprintf(w, "- **%s** (`%s`): %s\n", dc.Environment, dc.Application,
			strings.Join(dc.DeploymentIDs, ", "))
	}
	fmt.Fprintln(w)
	return nil
}

// Verdict summarizes one endpoint report in a single word.
func Verdict(ep parity.EndpointReport) string {
	switch {
	case ep.Comparison == nil:
		return "error"
	case ep.Comparison.Identical:
		return "identical"
	case ep.Comparison.Compatible:
		return "compatible"
	default:
		return "mismatch"
	}
}

func describeDifference(d contract.Difference) string {
	path := d.Path
	if path == "" {
		path = "(root)"
	}
	switch d.Kind {
	case contract.DiffTypeMismatch:
		return fmt.Sprintf("`%s` is %s in A but %s in B", path, d.AKind, d.BKind)
	case contract.DiffFieldMissingInB:
		return fmt.Sprintf("`%s` present only in A", path)
	case contract.DiffFieldMissingInA:
		return fmt.Sprintf("`%s` present only in B", path)
	}
	return fmt.Sprintf("`%s`", path)
}
