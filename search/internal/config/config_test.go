package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7002, cfg.Server.Port)
	assert.Equal(t, "https://localhost:9200", cfg.OpenSearch.URL)
	assert.Equal(t, "gavel-auctions", cfg.OpenSearch.Index)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "http://localhost:7001", cfg.Bootstrap.AuctionURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
opensearch:
  url: https://os.internal:9200
  insecure: true
bootstrap:
  auction_url: http://auction.internal:7001
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://os.internal:9200", cfg.OpenSearch.URL)
	assert.True(t, cfg.OpenSearch.Insecure)
	assert.Equal(t, "http://auction.internal:7001", cfg.Bootstrap.AuctionURL)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SEARCH_OPENSEARCH_INDEX", "gavel-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gavel-test", cfg.OpenSearch.Index)
}
