package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	keys := []string{
		"HTTP_ADDR", "LOG_LEVEL", "UPLOAD_BATCH_SIZE", "RUN_JUDGES_PAGE",
		"JOB_BATCH_SIZE", "EVALUATIONS_PAGE_LIMIT", "WORKER_CONCURRENCY",
		"WORKER_BATCH", "WORKER_POLL_INTERVAL", "WORKER_JUDGE_REFRESH",
		"ORPHAN_SCAN_INTERVAL", "ORPHAN_THRESHOLD", "CORS_ALLOW_ORIGINS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 100, cfg.UploadBatchSize)
	assert.Equal(t, 1000, cfg.RunJudgesPage)
	assert.Equal(t, 500, cfg.JobBatchSize)
	assert.Equal(t, 50, cfg.EvaluationsPageLimit)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 10, cfg.WorkerBatch)
	assert.Equal(t, 5*time.Second, cfg.WorkerPoll)
	assert.Equal(t, 60*time.Second, cfg.WorkerJudgeRefresh)
	assert.Equal(t, 600*time.Second, cfg.OrphanThreshold)
	assert.Nil(t, cfg.CORSAllowOrigins)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("WORKER_POLL_INTERVAL", "2.5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.test, https://b.test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.WorkerConcurrency)
	assert.Equal(t, 2500*time.Millisecond, cfg.WorkerPoll)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowOrigins)
}

func TestValidateRejectsZeroConcurrency(t *testing.T) {
	cfg := Config{WorkerConcurrency: 0, WorkerBatch: 1, UploadBatchSize: 1}
	assert.Error(t, cfg.Validate())
}
