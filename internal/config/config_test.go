package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Setenv("GEDCART_DB", "")
	t.Setenv("GEDCART_TREE", "")
	t.Setenv("GEDCART_ROLE", "")
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Tree, cfg.Tree)
	assert.Equal(t, "sqlite", cfg.Graph.Backend)
	assert.Equal(t, "visitor", cfg.Viewer.Role)
	assert.Equal(t, 1000, cfg.Limits.MaxRecursion)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
tree: family
db: /tmp/g.db
viewer:
  role: manager
media:
  dir: /srv/media
  prefix: media/
limits:
  max_recursion: 50
log:
  level: debug
  development: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "family", cfg.Tree)
	assert.Equal(t, "/tmp/g.db", cfg.DB)
	assert.Equal(t, "manager", cfg.Viewer.Role)
	assert.Equal(t, "/srv/media", cfg.Media.Dir)
	assert.Equal(t, 50, cfg.Limits.MaxRecursion)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "sqlite", cfg.Graph.Backend, "unset keys keep their defaults")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEDCART_DB", "/tmp/env.db")
	t.Setenv("GEDCART_TREE", "envtree")
	t.Setenv("GEDCART_ROLE", "member")

	cfg, err := Load(writeConfig(t, "tree: file\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DB)
	assert.Equal(t, "envtree", cfg.Tree)
	assert.Equal(t, "member", cfg.Viewer.Role)
}

func TestValidation(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"bad role":       "viewer:\n  role: king\n",
		"bad backend":    "graph:\n  backend: mongo\n",
		"neo4j no uri":   "graph:\n  backend: neo4j\n",
		"zero recursion": "limits:\n  max_recursion: 0\n",
		"bad level":      "log:\n  level: loud\n",
		"bad yaml":       "tree: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestNeo4jBackend(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, `
graph:
  backend: neo4j
  neo4j:
    uri: bolt://localhost:7687
    username: neo4j
    password: secret
`))
	require.NoError(t, err)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Neo4j.Username)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.db"), expandHome("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db"))
}
