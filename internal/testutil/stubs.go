// Package testutil provides fixture-backed stubs shared across package tests.
package testutil

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/contract-parity/parity-go/internal/parity"
)

// StubFetcher satisfies parity.Fetcher using golden fixture files. Each
// fetch resolves to <FixturesDir>/<environment>/<endpoint>.json; a missing
// file becomes a failure outcome, so tests exercise fetch failures by
// leaving a fixture out.
type StubFetcher struct {
	FixturesDir string
}

func (s *StubFetcher) Fetch(_ context.Context, env parity.Environment, spec parity.EndpointSpec) parity.Outcome {
	path := filepath.Join(s.FixturesDir, env.Name, spec.Name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return parity.FailureOutcome("no fixture for " + env.Name + "/" + spec.Name)
	}
	return parity.SuccessOutcome(http.StatusOK, http.Header{"Content-Type": []string{"application/json"}}, data)
}

// GoldenDir returns the absolute path to the tests/golden directory.
// It walks up from this source file to find the repo root.
func GoldenDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "golden")
}
