// Command worker-parity runs the Temporal worker for contract parity sweeps.
// Supports stub mode (fixtures) and production mode (live environments + AWS).
package main

import (
	"context"
	"flag"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/config"
	awsauth "github.com/contract-parity/parity-go/internal/connectors/aws"
	"github.com/contract-parity/parity-go/internal/connectors/aws/cloudwatch"
	"github.com/contract-parity/parity-go/internal/connectors/aws/codedeploy"
	"github.com/contract-parity/parity-go/internal/fetch"
	"github.com/contract-parity/parity-go/internal/observability"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/temporal/activities"
	"github.com/contract-parity/parity-go/internal/temporal/queues"
	"github.com/contract-parity/parity-go/internal/temporal/workflows"
	"github.com/contract-parity/parity-go/internal/testutil"
)

func main() {
	queuesFlag := flag.String("queues", "", "task queues to serve, comma-separated (default sweep)")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	doc, err := config.LoadEndpointsFile(cfg.EndpointsFile)
	if err != nil {
		log.Fatalf("load endpoints: %v", err)
	}

	queueNames, err := queues.ParseQueues(*queuesFlag)
	if err != nil {
		log.Fatalf("queues: %v", err)
	}

	acts := &activities.Activities{
		Doc:       doc,
		EnvA:      parity.Environment{Name: cfg.EnvA.Name, BaseURL: cfg.EnvA.BaseURL},
		EnvB:      parity.Environment{Name: cfg.EnvB.Name, BaseURL: cfg.EnvB.BaseURL},
		Namespace: cfg.CloudWatchNamespace,
	}

	switch cfg.Mode {
	case config.ModeProduction:
		acts.Fetcher = fetch.New(fetch.Options{
			Timeout:   cfg.HTTPTimeout,
			RPS:       cfg.FetchRPS,
			Burst:     cfg.FetchBurst,
			UserAgent: "worker-parity",
			Tokens: map[string]string{
				cfg.EnvA.Name: cfg.EnvA.Token,
				cfg.EnvB.Name: cfg.EnvB.Token,
			},
		})

		awsCfg, err := awsauth.NewAWSConfig(context.Background(), cfg.AWSRegion, cfg.AWSProfile, cfg.CrossAccountRole)
		if err != nil {
			log.Fatalf("aws config: %v", err)
		}
		acts.Publisher = cloudwatch.New(awsCfg)

		apps := map[string]string{}
		if cfg.CodeDeployAppA != "" {
			apps[cfg.EnvA.Name] = cfg.CodeDeployAppA
		}
		if cfg.CodeDeployAppB != "" {
			apps[cfg.EnvB.Name] = cfg.CodeDeployAppB
		}
		if len(apps) > 0 {
			acts.Annotator = annotate.New(codedeploy.New(awsCfg), apps, 0, logger)
		}

	default: // stub mode
		fixturesDir := cfg.FixturesDir
		if fixturesDir == "" {
			fixturesDir = testutil.GoldenDir()
		}
		acts.Fetcher = &testutil.StubFetcher{FixturesDir: fixturesDir}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
		Logger:    observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	configs := queues.DefaultConfigs()
	workers := make([]worker.Worker, 0, len(queueNames))
	for _, name := range queueNames {
		qc := configs[name]
		w := worker.New(c, qc.Name, qc.Options)
		w.RegisterWorkflow(workflows.ParitySweepWorkflow)
		w.RegisterActivity(acts)
		workers = append(workers, w)

		if err := w.Start(); err != nil {
			log.Fatalf("worker start failed on queue %s: %v", qc.Name, err)
		}
		log.Printf("started worker on queue %s (mode=%s)", qc.Name, cfg.Mode)
	}

	<-worker.InterruptCh()
	log.Printf("shutting down workers")
	for _, w := range workers {
		w.Stop()
	}
}
