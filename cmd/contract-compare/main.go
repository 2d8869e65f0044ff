// Command contract-compare runs one comparison suite between two environments,
// renders the report, and exits via the CI gate.
// Exit code 0 = contracts in parity. Exit code 1 = contract drift. Exit code 2 = operational failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/contract-parity/parity-go/internal/config"
	"github.com/contract-parity/parity-go/internal/contract"
	"github.com/contract-parity/parity-go/internal/fetch"
	"github.com/contract-parity/parity-go/internal/gate"
	"github.com/contract-parity/parity-go/internal/observability"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/report"
	"github.com/contract-parity/parity-go/internal/verifier"
)

func main() {
	endpointsFile := flag.String("endpoints", "endpoints.yaml", "path to the endpoints YAML document")
	envAFlag := flag.String("env-a", "", "first environment as name=url (overrides the document)")
	envBFlag := flag.String("env-b", "", "second environment as name=url (overrides the document)")
	ignoreFlag := flag.String("ignore", "", "extra field names to ignore, comma-separated")
	format := flag.String("format", "text", "report format: text, json, or markdown")
	outPath := flag.String("o", "", "write the report to a file instead of stdout")
	failOnWarnings := flag.Bool("fail-on-warnings", false, "exit 1 when any warning-level drift is found")
	preflight := flag.String("preflight", "", "health path to poll on both environments before comparing")
	timeout := flag.Duration("timeout", 15*time.Second, "per-request timeout")
	rate := flag.Float64("rate", 0, "max requests per second per host (0 = unlimited)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := observability.InitLogger(level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, logger, options{
		endpointsFile:  *endpointsFile,
		envA:           *envAFlag,
		envB:           *envBFlag,
		ignore:         *ignoreFlag,
		format:         *format,
		outPath:        *outPath,
		failOnWarnings: *failOnWarnings,
		preflight:      *preflight,
		timeout:        *timeout,
		rate:           *rate,
	}))
}

type options struct {
	endpointsFile  string
	envA, envB     string
	ignore         string
	format         string
	outPath        string
	failOnWarnings bool
	preflight      string
	timeout        time.Duration
	rate           float64
}

// run is main without os.Exit, so deferred cleanup actually runs.
func run(ctx context.Context, logger *slog.Logger, opts options) int {
	doc, err := config.LoadEndpointsFile(opts.endpointsFile)
	if err != nil {
		logger.Error("load endpoints", "error", err)
		return gate.ExitOperator
	}

	envA, envB, err := resolveEnvironments(doc, opts.envA, opts.envB)
	if err != nil {
		logger.Error("resolve environments", "error", err)
		return gate.ExitOperator
	}

	f := normalizeFormat(opts.format)
	if !f.Valid() {
		logger.Error("unknown format", "format", opts.format)
		return gate.ExitOperator
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:   opts.timeout,
		RPS:       opts.rate,
		UserAgent: "contract-compare",
		Tokens: map[string]string{
			envA.Name: os.Getenv("PARITY_ENV_A_TOKEN"),
			envB.Name: os.Getenv("PARITY_ENV_B_TOKEN"),
		},
	})

	if opts.preflight != "" {
		logger.Info("running pre-flight health checks", "path", opts.preflight)
		envs := []parity.Environment{envA, envB}
		if err := verifier.WaitAllHealthy(ctx, fetcher, envs, opts.preflight, 5, 2*time.Second); err != nil {
			logger.Error("pre-flight failed", "error", err)
			return gate.ExitOperator
		}
	}

	ignore := contract.NewSegmentIgnore(append(doc.Ignore, splitCSV(opts.ignore)...)...)
	logger.Info("comparing environments",
		"env_a", envA.Name, "env_b", envB.Name,
		"endpoints", len(doc.Endpoints), "ignore", ignore.Names())

	rep := parity.Run(ctx, doc.Specs(), envA, envB, fetcher, ignore)

	out := io.Writer(os.Stdout)
	if opts.outPath != "" {
		file, err := os.Create(opts.outPath)
		if err != nil {
			logger.Error("create output file", "error", err)
			return gate.ExitOperator
		}
		defer file.Close()
		out = file
	}
	if err := report.Write(out, f, &rep); err != nil {
		logger.Error("render report", "error", err)
		return gate.ExitOperator
	}

	settings := gate.Settings{
		FailOnWarnings:    opts.failOnWarnings || doc.Gate.FailOnWarnings,
		MaxWarnings:       doc.Gate.MaxWarnings,
		RequiredEndpoints: doc.Gate.RequiredEndpoints,
	}
	decision := gate.Evaluate(&rep, settings)
	if decision.Passed() {
		logger.Info("gate passed", "status", rep.Status, "reasons", decision.Reasons)
	} else {
		logger.Warn("gate failed", "status", rep.Status, "reasons", decision.Reasons)
	}
	return decision.ExitCode
}

// resolveEnvironments combines document defaults with flag overrides. Flags
// win; both environments must end up with a base URL.
func resolveEnvironments(doc *config.Document, flagA, flagB string) (parity.Environment, parity.Environment, error) {
	var envA, envB parity.Environment
	if doc.Environments != nil {
		envA = parity.Environment{Name: doc.Environments.A.Name, BaseURL: doc.Environments.A.BaseURL}
		envB = parity.Environment{Name: doc.Environments.B.Name, BaseURL: doc.Environments.B.BaseURL}
	}
	if flagA != "" {
		envA = parseEnvFlag(flagA, "a")
	}
	if flagB != "" {
		envB = parseEnvFlag(flagB, "b")
	}
	if envA.BaseURL == "" || envB.BaseURL == "" {
		return envA, envB, fmt.Errorf("both environments need a base URL: set -env-a/-env-b or an environments block in the document")
	}
	if envA.Name == envB.Name {
		envB.Name += "-b"
	}
	return envA, envB, nil
}

// parseEnvFlag parses "name=url"; a bare URL gets the fallback name.
func parseEnvFlag(raw, fallbackName string) parity.Environment {
	if name, url, ok := strings.Cut(raw, "="); ok && !strings.Contains(name, "/") {
		return parity.Environment{Name: name, BaseURL: url}
	}
	return parity.Environment{Name: fallbackName, BaseURL: raw}
}

func normalizeFormat(raw string) report.Format {
	switch strings.ToLower(raw) {
	case "md", "markdown":
		return report.FormatMarkdown
	case "txt", "text":
		return report.FormatText
	default:
		return report.Format(strings.ToLower(raw))
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}
