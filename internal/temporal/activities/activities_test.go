package activities_test

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/temporal/activities"
)

// envFetcher returns a fixed body per environment name.
type envFetcher struct {
	bodies map[string]string
}

func (f *envFetcher) Fetch(_ context.Context, env parity.Environment, _ parity.EndpointSpec) parity.Outcome {
	body, ok := f.bodies[env.Name]
	if !ok {
		return parity.FailureOutcome("no route")
	}
	return parity.SuccessOutcome(http.StatusOK, nil, []byte(body))
}

type capturingPublisher struct {
	namespace string
	report    *parity.Report
	err       error
}

func (p *capturingPublisher) PublishRunMetrics(_ context.Context, namespace string, r *parity.Report) error {
	p.namespace = namespace
	p.report = r
	return p.err
}

type fixedLister struct {
	ids []string
}

func (l *fixedLister) RecentDeployments(_ context.Context, _ string, _ time.Time) ([]string, error) {
	return l.ids, nil
}

func newTestActivities() *activities.Activities {
	doc := &config.Document{
		Endpoints: []config.EndpointDoc{
			{Name: "users", Path: "/api/users"},
			{Name: "health", Path: "/health"},
		},
	}
	return &activities.Activities{
		Doc:     doc,
		Fetcher: &envFetcher{bodies: map[string]string{"canary": `{"ok": true}`, "prod": `{"ok": true}`}},
		EnvA:    parity.Environment{Name: "canary", BaseURL: "http://canary.local"},
		EnvB:    parity.Environment{Name: "prod", BaseURL: "http://prod.local"},
	}
}

func TestRunSuite_HappyPath(t *testing.T) {
	a := newTestActivities()
	out, err := a.RunSuite(context.Background(), activities.RunSuiteInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Report.Status != parity.StatusPass {
		t.Errorf("status = %q, want pass", out.Report.Status)
	}
	if out.Report.Totals.TotalEndpoints != 2 {
		t.Errorf("total endpoints = %d, want 2", out.Report.Totals.TotalEndpoints)
	}
}

func TestRunSuite_PreassignedRunID(t *testing.T) {
	a := newTestActivities()
	out, err := a.RunSuite(context.Background(), activities.RunSuiteInput{RunID: "sweep-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Report.RunID != "sweep-42" {
		t.Errorf("run id = %q, want sweep-42", out.Report.RunID)
	}
}

func TestRunSuite_UnknownEndpoint(t *testing.T) {
	a := newTestActivities()
	_, err := a.RunSuite(context.Background(), activities.RunSuiteInput{Endpoints: []string{"nope"}})
	if err == nil {
		t.Fatal("expected error for unknown endpoint")
	}
	if !strings.Contains(err.Error(), "unknown endpoint") {
		t.Errorf("error = %q, want unknown endpoint mention", err)
	}
}

func TestPublishRunMetrics_UsesConfiguredNamespace(t *testing.T) {
	pub := &capturingPublisher{}
	a := newTestActivities()
	a.Publisher = pub
	a.Namespace = "Parity/Runs"

	err := a.PublishRunMetrics(context.Background(), activities.PublishRunMetricsInput{
		Report: parity.Report{RunID: "r1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.namespace != "Parity/Runs" {
		t.Errorf("namespace = %q, want Parity/Runs", pub.namespace)
	}
	if pub.report == nil || pub.report.RunID != "r1" {
		t.Error("report not forwarded to publisher")
	}
}

func TestPublishRunMetrics_InputNamespaceOverrides(t *testing.T) {
	pub := &capturingPublisher{}
	a := newTestActivities()
	a.Publisher = pub
	a.Namespace = "Parity/Runs"

	err := a.PublishRunMetrics(context.Background(), activities.PublishRunMetricsInput{
		Namespace: "Parity/Canary",
		Report:    parity.Report{RunID: "r2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.namespace != "Parity/Canary" {
		t.Errorf("namespace = %q, want Parity/Canary", pub.namespace)
	}
}

func TestPublishRunMetrics_NoPublisherIsNoop(t *testing.T) {
	a := newTestActivities()
	if err := a.PublishRunMetrics(context.Background(), activities.PublishRunMetricsInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchDeployContext(t *testing.T) {
	a := newTestActivities()
	a.Annotator = annotate.New(
		&fixedLister{ids: []string{"d-1", "d-2"}},
		map[string]string{"canary": "svc-canary", "prod": "svc-prod"},
		time.Hour,
		slog.Default(),
	)

	out, err := a.FetchDeployContext(context.Background(), activities.FetchDeployContextInput{
		Report: parity.Report{
			EnvironmentA: parity.Environment{Name: "canary"},
			EnvironmentB: parity.Environment{Name: "prod"},
			StartedAt:    time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Annotations.Deploys) != 2 {
		t.Fatalf("deploys = %d, want 2", len(out.Annotations.Deploys))
	}
	if out.Annotations.Deploys[0].Application != "svc-canary" {
		t.Errorf("application = %q, want svc-canary", out.Annotations.Deploys[0].Application)
	}
}

func TestFetchDeployContext_NoAnnotatorIsEmpty(t *testing.T) {
	a := newTestActivities()
	out, err := a.FetchDeployContext(context.Background(), activities.FetchDeployContextInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Annotations.Deploys) != 0 {
		t.Errorf("expected no deploys, got %d", len(out.Annotations.Deploys))
	}
}
