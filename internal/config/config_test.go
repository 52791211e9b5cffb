package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		configFileEnvName, "PORT", "SECRET_KEY", "FLASK_SECRET_KEY", "UPLOAD_FOLDER",
		"DATABASE_URL", "DATABASE_TYPE", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "instance/delus.db", cfg.Database.DSN)
	assert.Equal(t, "static/music", cfg.Upload.Folder)
	assert.Equal(t, []string{"wav", "mp3"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, []string{"US", "CA"}, cfg.Checkout.AllowedCountries)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.UsingDevSecret())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("FLASK_SECRET_KEY", "flask-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_1")
	t.Setenv("UPLOAD_FOLDER", "/srv/music")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "flask-secret", cfg.Session.Secret)
	assert.Equal(t, "sk_test_1", cfg.Stripe.SecretKey)
	assert.Equal(t, "whsec_1", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "/srv/music", cfg.Upload.Folder)

	t.Run("SecretKeyWinsOverFlask", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "primary")
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "primary", cfg.Session.Secret)
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9000
database:
  type: memory
cart:
  image_overrides:
    "1": images/curated/hat-front.jpg
checkout:
  allowed_countries: [US]
`)

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.Equal(t, []string{"US"}, cfg.Checkout.AllowedCountries)

	overrides, err := cfg.ImageOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "images/curated/hat-front.jpg"}, overrides)

	t.Run("EnvSelectsFile", func(t *testing.T) {
		t.Setenv(configFileEnvName, path)
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
	})
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, "server:\n  prot: 1\n")
		_, err := Load([]string{"--config", path})
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("BadOverrideKey", func(t *testing.T) {
		path := writeConfig(t, "cart:\n  image_overrides:\n    hat: x.jpg\n")
		_, err := Load([]string{"--config", path})
		assert.Error(t, err)
	})
}
