package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
port: "9090"
ai_provider: gemini
documents_dir: /srv/docs
weaviate_store_config:
  host: http://localhost:8081
chunking:
  chunk_size: 256
ocr:
  languages: eng
`), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, "/srv/docs", cfg.DocumentsDir)
	assert.Equal(t, "http://localhost:8081", cfg.WeaviateStoreConfig.Host)
	assert.Equal(t, 256, cfg.Chunking.ChunkSize)
	assert.Equal(t, "eng", cfg.OCR.Languages)

	// Defaults fill in everything the file leaves out.
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 100, cfg.Chunking.OverlapSize)
	assert.Equal(t, 0.5, cfg.OCR.MinConfidence)
	assert.True(t, cfg.OCR.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
