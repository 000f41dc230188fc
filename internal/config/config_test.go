package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "STORE_BACKEND", "STORE_TIMEOUT_MS",
		"MONGO_URI", "MONGO_DATABASE", "MONGO_CONNECT_TIMEOUT_MS",
		"LOG_MODE", "LOG_LEVEL", "CORS_ORIGINS", "GIN_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.StoreBackend != BackendMemory || c.StoreTimeout != 5*time.Second {
		t.Fatalf("store defaults: %+v", c)
	}
	if c.MongoDatabase != "production_dashboard" || c.MongoConnectTimeout != 10*time.Second {
		t.Fatalf("mongo defaults: %+v", c)
	}
	if len(c.CORSOrigins) != 2 {
		t.Fatalf("cors default: %v", c.CORSOrigins)
	}
	require.NoError(t, c.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("STORE_BACKEND", "MONGO")
	t.Setenv("STORE_TIMEOUT_MS", "250")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DATABASE", "ledger")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("LOG_MODE", "dev")
	c := Load()
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr env")
	}
	if c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("ShutdownTimeout env")
	}
	if c.StoreBackend != BackendMongo || c.StoreTimeout != 250*time.Millisecond {
		t.Fatalf("store env: %+v", c)
	}
	if c.MongoURI != "mongodb://db:27017" || c.MongoDatabase != "ledger" {
		t.Fatalf("mongo env: %+v", c)
	}
	require.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins)
	require.Equal(t, "dev", c.LogMode)
}

func TestLoadInvalidNumberFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_TIMEOUT_MS", "soon")
	c := Load()
	require.Equal(t, 5*time.Second, c.StoreTimeout)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	data := []byte(`
http_addr: ":7070"
store_backend: mongo
store_timeout: 3s
mongo_uri: mongodb://files:27017
mongo_database: from_file
cors_origins:
  - http://dash.local
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("MONGO_DATABASE", "from_env")

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", c.HTTPAddr)
	require.Equal(t, BackendMongo, c.StoreBackend)
	require.Equal(t, 3*time.Second, c.StoreTimeout)
	require.Equal(t, "mongodb://files:27017", c.MongoURI)
	require.Equal(t, "from_env", c.MongoDatabase)
	require.Equal(t, []string{"http://dash.local"}, c.CORSOrigins)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadFileRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")
	_, err := LoadFile("")
	require.Error(t, err)
}
