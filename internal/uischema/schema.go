// Package uischema defines the typed UI contract emitted for a comparison
// run. The frontend renders components from this schema -- it never decides
// what to show on its own.
package uischema

// UISchema is the top-level schema emitted for one run.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	RunID      string      `json:"run_id"`
	Status     string      `json:"status"`
	Components []Component `json:"components"`
}

// ComponentType identifies what component to render.
type ComponentType string

const (
	ComponentStatusBadge     ComponentType = "status_badge"
	ComponentTotalsGrid      ComponentType = "totals_grid"
	ComponentDriftSummary    ComponentType = "drift_summary"
	ComponentDifferenceTable ComponentType = "difference_table"
	ComponentFetchFailures   ComponentType = "fetch_failure_list"
	ComponentDeployContext   ComponentType = "deploy_context"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}
