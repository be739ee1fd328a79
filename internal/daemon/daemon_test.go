package daemon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/mathwise/internal/config"
	"github.com/harun/mathwise/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AI.OpenAIAPIKey = "sk-test-key"
	cfg.Knowledge.Enabled = false
	cfg.Logging.Console = false
	cfg.Retention.ArchivePath = filepath.Join(cfg.DataDir, "archive.jsonl")
	return cfg
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestNew_WiresModules(t *testing.T) {
	d, err := New(testConfig(t), testLogger(t))
	require.NoError(t, err)

	assert.NotNil(t, d.Controller())
	assert.Equal(t, 0, d.Controller().ActiveSessions())
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Provider = "carrier-pigeon"

	_, err := New(cfg, testLogger(t))
	assert.Error(t, err)
}

func TestNew_KnowledgeFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Knowledge.Enabled = true
	// An unreadable db path keeps the knowledge base down but the daemon up.
	cfg.Knowledge.DBPath = filepath.Join(cfg.DataDir, "missing-dir", "no", "knowledge.db")
	cfg.Knowledge.WatchSeeds = false
	cfg.Knowledge.SeedDir = filepath.Join(cfg.DataDir, "seeds")

	d, err := New(cfg, testLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, d.Controller())
}
