package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salestracker/internal/shared/testutil"
	"salestracker/pkg/contracts/domain"
)

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", sampleTables(), logger)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		tables     TableSource
		wantStatus string
	}{
		{"both loaded", sampleTables(), "ready"},
		{"enriched missing", tableMap{domain.SourceSales: testutil.SampleTable("sales.xlsx")}, "not_ready"},
		{"nothing loaded", nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			status := NewHealthService("1.0.0", tt.tables, logger).ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			require.Contains(t, status.Services, "sales")
			require.Contains(t, status.Services, "enriched")
		})
	}
}

func TestHealthService_ReadinessReportsRows(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	status := NewHealthService("1.0.0", sampleTables(), logger).ReadinessCheck(context.Background())

	sh, ok := status.Services["enriched"].(ServiceHealth)
	require.True(t, ok)
	assert.True(t, sh.Ready())
	assert.Equal(t, 8, sh.Rows)
	assert.Equal(t, "enriched.csv", sh.Message)
}

func TestHealthService_ReadinessReportsUnparseableColumns(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	tables := sampleTables()
	tables[domain.SourceEnriched] = badDateTable()

	status := NewHealthService("1.0.0", tables, logger).ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)

	sh, ok := status.Services["enriched"].(ServiceHealth)
	require.True(t, ok)
	assert.True(t, sh.Ready())
	assert.Equal(t, []string{"transaction_date"}, sh.UnparseableColumns)

	sh, ok = status.Services["sales"].(ServiceHealth)
	require.True(t, ok)
	assert.Empty(t, sh.UnparseableColumns)
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewHealthService("1.0.0", nil, logger).Version()

	assert.Equal(t, "1.0.0", v["version"])
	assert.Contains(t, v, "go_version")
	assert.Contains(t, v, "start_time")
}
