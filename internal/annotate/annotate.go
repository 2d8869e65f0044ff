// Package annotate attaches recent-deploy context to a finished run report.
// Drift usually lands with a rollout; the annotation names the rollouts that
// were in flight.
package annotate

import (
	"context"
	"log/slog"
	"time"

	"github.com/contract-parity/parity-go/internal/parity"
)

// DeployLister is the slice of the deploy reader used here. Satisfied by the
// codedeploy connector.
type DeployLister interface {
	RecentDeployments(ctx context.Context, app string, since time.Time) ([]string, error)
}

// DeployContext pairs an environment with the deployments that recently
// landed in it.
type DeployContext struct {
	Environment   string   `json:"environment"`
	Application   string   `json:"application"`
	DeploymentIDs []string `json:"deployment_ids,omitempty"`
}

// RunAnnotations is best-effort context attached alongside a report.
type RunAnnotations struct {
	Deploys []DeployContext `json:"deploys,omitempty"`
}

const defaultLookback = 24 * time.Hour

// Annotator gathers deploy context for the environments of a run.
type Annotator struct {
	lister   DeployLister
	apps     map[string]string // environment name -> CodeDeploy application
	lookback time.Duration
	logger   *slog.Logger
}

// New creates an Annotator. apps maps environment names to their CodeDeploy
// application; environments without a mapping are skipped.
func New(lister DeployLister, apps map[string]string, lookback time.Duration, logger *slog.Logger) *Annotator {
	if lookback <= 0 {
		lookback = defaultLookback
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{lister: lister, apps: apps, lookback: lookback, logger: logger}
}

// Annotate returns deploy context for both environments of the report. It
// never fails: a lister error degrades to a missing context and a log line,
// because annotation is context, not a run input.
func (a *Annotator) Annotate(ctx context.Context, r *parity.Report) RunAnnotations {
	since := r.StartedAt.Add(-a.lookback)

	var anns RunAnnotations
	for _, env := range []parity.Environment{r.EnvironmentA, r.EnvironmentB} {
		app := a.apps[env.Name]
		if app == "" {
			continue
		}
		ids, err := a.lister.RecentDeployments(ctx, app, since)
		if err != nil {
			a.logger.Warn("deploy annotation failed",
				"environment", env.Name, "application", app, "error", err)
			continue
		}
		anns.Deploys = append(anns.Deploys, DeployContext{
			Environment:   env.Name,
			Application:   app,
			DeploymentIDs: ids,
		})
	}
	return anns
}
