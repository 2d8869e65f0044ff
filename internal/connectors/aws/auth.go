// Package aws provides the shared AWS configuration loader for the metric
// publisher and deploy reader. Environments often live in separate accounts,
// so an optional assume-role ARN is supported.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// roleSessionName tags assumed-role sessions in CloudTrail so parity traffic
// is attributable.
const roleSessionName = "parity-go"

// NewAWSConfig creates an aws.Config with the given region, optional shared
// config profile, and optional cross-account role ARN. Adaptive retry keeps
// metric publication from compounding throttles during drift storms.
func NewAWSConfig(ctx context.Context, region, profile, roleARN string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("aws auth: load config: %w", err)
	}

	if roleARN != "" {
		stsClient := sts.NewFromConfig(cfg)
		cfg.Credentials = stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		})
	}

	return cfg, nil
}
