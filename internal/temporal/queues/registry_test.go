package queues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/temporal/versioning"
)

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	assert.Len(t, configs, 2)
	assert.Contains(t, configs, versioning.QueueSweep)
	assert.Contains(t, configs, versioning.QueuePublish)

	// Publish queue should have tightest concurrency.
	publishCfg := configs[versioning.QueuePublish]
	assert.Equal(t, 3, publishCfg.Options.MaxConcurrentActivityExecutionSize)
}

func TestForSweep(t *testing.T) {
	cfg := ForSweep()
	assert.Equal(t, versioning.QueueSweep, cfg.Name)
	assert.Equal(t, 10, cfg.Options.MaxConcurrentActivityExecutionSize)
}

func TestParseQueues(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr string
	}{
		{"empty defaults to sweep", "", []string{versioning.QueueSweep}, ""},
		{"short name sweep", "sweep", []string{versioning.QueueSweep}, ""},
		{"short name publish", "publish", []string{versioning.QueuePublish}, ""},
		{"full name", "parity-sweep", []string{versioning.QueueSweep}, ""},
		{"multiple", "sweep,publish", []string{versioning.QueueSweep, versioning.QueuePublish}, ""},
		{"deduplicate", "sweep,sweep", []string{versioning.QueueSweep}, ""},
		{"spaces trimmed", " sweep , publish ", []string{versioning.QueueSweep, versioning.QueuePublish}, ""},
		{"unknown queue", "bogus", nil, `unknown queue "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQueues(tt.raw)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
