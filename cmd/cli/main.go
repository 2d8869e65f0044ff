// Command parityctl triggers and inspects contract parity sweeps.
//
// Usage:
//
//	parityctl trigger [--endpoints e1,e2] [--namespace NS]
//	parityctl status  --workflow-id WID
//	parityctl result  --workflow-id WID
//	parityctl list    [--queue Q] [--status S] [-n N]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.temporal.io/sdk/client"

	"github.com/contract-parity/parity-go/internal/temporal/querier"
	"github.com/contract-parity/parity-go/internal/temporal/versioning"
	"github.com/contract-parity/parity-go/internal/temporal/workflows"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "trigger":
		cmdTrigger(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "result":
		cmdResult(os.Args[2:])
	case "list":
		cmdList(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: parityctl <trigger|status|result|list> [flags]")
	os.Exit(1)
}

func dial() client.Client {
	c, err := client.Dial(client.Options{
		HostPort:  os.Getenv("PARITY_TEMPORAL_HOSTPORT"),
		Namespace: os.Getenv("PARITY_TEMPORAL_NAMESPACE"),
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	return c
}

func cmdTrigger(args []string) {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	endpoints := fs.String("endpoints", "", "endpoint names to compare, comma-separated (default all)")
	namespace := fs.String("namespace", "", "CloudWatch namespace override for published metrics")
	_ = fs.Parse(args)

	input := workflows.SweepInput{
		Endpoints: splitCSV(*endpoints),
		Namespace: *namespace,
	}

	c := dial()
	defer c.Close()

	handle, err := querier.New(c).StartSweep(context.Background(), input)
	if err != nil {
		log.Fatalf("failed to start sweep: %v", err)
	}
	fmt.Printf("started sweep %s (run=%s)\n", handle.WorkflowID, handle.RunID)
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := dial()
	defer c.Close()

	desc, err := querier.New(c).DescribeSweep(context.Background(), *wfID)
	if err != nil {
		log.Fatalf("failed to describe sweep: %v", err)
	}
	printJSON(desc)
}

func cmdResult(args []string) {
	fs := flag.NewFlagSet("result", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := dial()
	defer c.Close()

	result, err := querier.New(c).GetSweepResult(context.Background(), *wfID)
	if err != nil {
		log.Fatalf("failed to get sweep result: %v", err)
	}
	printJSON(result)
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	queue := fs.String("queue", versioning.QueueSweep, "task queue to list sweeps from")
	status := fs.String("status", "", "filter by execution status (e.g. Running, Completed)")
	n := fs.Int("n", 20, "max sweeps to return")
	_ = fs.Parse(args)

	c := dial()
	defer c.Close()

	sweeps, err := querier.New(c).ListSweeps(context.Background(), querier.ListOptions{
		TaskQueue:    *queue,
		StatusFilter: *status,
		PageSize:     *n,
	})
	if err != nil {
		log.Fatalf("failed to list sweeps: %v", err)
	}
	printJSON(sweeps)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal output: %v", err)
	}
	fmt.Println(string(data))
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
