// Package cloudwatch publishes comparison run counters as CloudWatch metrics
// so drift can be alarmed on without scraping reports.
package cloudwatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/contract-parity/parity-go/internal/parity"
)

// API is the subset of the CloudWatch client used by this package.
type API interface {
	PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error)
}

// Client wraps the CloudWatch API.
type Client struct {
	api API
}

// New creates a CloudWatch client from an AWS config.
func New(cfg aws.Config) *Client {
	return &Client{api: cw.NewFromConfig(cfg)}
}

// NewFromAPI creates a Client from an explicit API implementation (for testing).
func NewFromAPI(api API) *Client {
	return &Client{api: api}
}

// statusGauge maps a run status to a numeric gauge value, higher is worse.
var statusGauge = map[parity.Status]float64{
	parity.StatusPass:    0,
	parity.StatusWarning: 1,
	parity.StatusFail:    2,
	parity.StatusError:   3,
}

// PublishRunMetrics emits one datum per run counter under the given namespace,
// dimensioned by the two environment names. Timestamps come from the report's
// start time so re-publishing a report is idempotent for alarms.
func (c *Client) PublishRunMetrics(ctx context.Context, namespace string, r *parity.Report) error {
	dims := []cwtypes.Dimension{
		{Name: aws.String("EnvironmentA"), Value: aws.String(r.EnvironmentA.Name)},
		{Name: aws.String("EnvironmentB"), Value: aws.String(r.EnvironmentB.Name)},
	}

	datum := func(name string, value float64) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  aws.Time(r.StartedAt),
			Value:      aws.Float64(value),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		}
	}

	t := r.Totals
	data := []cwtypes.MetricDatum{
		datum("EndpointsTotal", float64(t.TotalEndpoints)),
		datum("ContractMismatches", float64(t.ContractMismatches)),
		datum("Warnings", float64(totalWarnings(r))),
		datum("FailedFetches", float64(t.FailedFetches)),
		datum("RunStatus", statusGauge[r.Status]),
	}

	_, err := c.api.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("cloudwatch: put metric data: %w", err)
	}
	return nil
}

func totalWarnings(r *parity.Report) int {
	var n int
	for _, ep := range r.Endpoints {
		if ep.Comparison != nil {
			n += ep.Comparison.WarningCount
		}
	}
	return n
}
