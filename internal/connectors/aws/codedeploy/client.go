// Package codedeploy reads recent deployments so a drift report can be
// correlated with the rollout that likely caused it.
package codedeploy

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cd "github.com/aws/aws-sdk-go-v2/service/codedeploy"
	cdtypes "github.com/aws/aws-sdk-go-v2/service/codedeploy/types"
)

// API is the subset of the CodeDeploy client used by this package.
type API interface {
	ListDeployments(ctx context.Context, params *cd.ListDeploymentsInput, optFns ...func(*cd.Options)) (*cd.ListDeploymentsOutput, error)
}

// Client wraps the CodeDeploy API.
type Client struct {
	api API
}

// New creates a CodeDeploy client from an AWS config.
func New(cfg aws.Config) *Client {
	return &Client{api: cd.NewFromConfig(cfg)}
}

// NewFromAPI creates a Client from an explicit API implementation (for testing).
func NewFromAPI(api API) *Client {
	return &Client{api: api}
}

// RecentDeployments returns IDs of deployments created for the application
// since the given time.
func (c *Client) RecentDeployments(ctx context.Context, app string, since time.Time) ([]string, error) {
	out, err := c.api.ListDeployments(ctx, &cd.ListDeploymentsInput{
		ApplicationName: aws.String(app),
		CreateTimeRange: &cdtypes.TimeRange{
			Start: aws.Time(since),
			End:   aws.Time(time.Now().UTC()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("codedeploy: list deployments: %w", err)
	}
	return out.Deployments, nil
}
