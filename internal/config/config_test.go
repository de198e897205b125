package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/hobbyfinder/hobby"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hobbyfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PathEnvVar, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8001", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, "hobbies.json", cfg.Data.HobbiesPath)
	assert.Equal(t, "hobby_emb.npy", cfg.Data.EmbeddingsPath)
	assert.Equal(t, "hobby_docs.json", cfg.Data.DocumentsPath)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedder.ModelID)
	assert.Equal(t, hobby.ModeHybrid, cfg.Ranking.Mode)
	assert.Equal(t, 5, cfg.Ranking.TopK)
	assert.Equal(t, 2.0, cfg.Ranking.SemanticWeight)
	assert.Equal(t, "server.log", cfg.Logging.File)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  read_timeout: 5s
embedder:
  provider: hash
  hash_dim: 64
ranking:
  mode: rules
  top_k: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep their defaults")
	assert.Equal(t, hobby.ProviderHash, cfg.Embedder.Provider)
	assert.Equal(t, 64, cfg.Embedder.HashDim)
	assert.Equal(t, hobby.ModeRules, cfg.Ranking.Mode)
	assert.Equal(t, 3, cfg.Ranking.TopK)
	assert.Equal(t, 10, cfg.Ranking.CandidateK)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("HOBBY_SERVER_PORT", "9100")
	t.Setenv("HOBBY_SERVER_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("HOBBY_RANKING_SEMANTIC_WEIGHT", "0.5")
	t.Setenv("HOBBY_DATA_HOBBIES_PATH", "/srv/hobbies.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0.5, cfg.Ranking.SemanticWeight)
	assert.Equal(t, "/srv/hobbies.json", cfg.Data.HobbiesPath)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9200\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"port":     "server:\n  port: 70000\n",
		"mode":     "ranking:\n  mode: random\n",
		"provider": "embedder:\n  provider: word2vec\n",
		"level":    "logging:\n  level: loud\n",
		"data":     "data:\n  hobbies_path: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestValidateListsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Ranking.TopK = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port")
	assert.Contains(t, err.Error(), "TopK")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	cfg := Default()
	cfg.Server.Port = 8123
	cfg.Server.WriteTimeout = 90 * time.Second
	cfg.Ranking.Mode = hobby.ModeSemantic
	cfg.Embedder.Provider = hobby.ProviderHash

	path := filepath.Join(t.TempDir(), "conf", "hobbyfinder.yaml")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1m30s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("HOBBY_SERVER_PORT"))
	assert.Equal(t, "embedder.max_seq_len", envKey("HOBBY_EMBEDDER_MAX_SEQ_LEN"))
	assert.Equal(t, "config", envKey("HOBBY_CONFIG"))
}
