package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"conference-api/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_TIMEOUT", "")
	t.Setenv("BULK_MAX_ITEMS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 100, cfg.BulkMaxItems)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("STORE_TIMEOUT", "1500ms")
	t.Setenv("BULK_MAX_ITEMS", "-4")
	t.Setenv("CORS_ORIGINS", " https://a.example.org , ,https://b.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 1500*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, 100, cfg.BulkMaxItems)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.CORSOrigins)
}

func TestGetDurationRejectsNonsense(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getDuration("SOME_TIMEOUT", time.Second))
	t.Setenv("SOME_TIMEOUT", "-2s")
	assert.Equal(t, time.Second, getDuration("SOME_TIMEOUT", time.Second))
}

func TestNewMailerNeedsHostAndSender(t *testing.T) {
	assert.Nil(t, NewMailer(SMTPConfig{Host: "smtp.example.org"}))
	assert.NotNil(t, NewMailer(SMTPConfig{Host: "smtp.example.org", From: "noreply@example.org", Port: 587}))

	var m *Mailer
	assert.NoError(t, m.Send(nil, "subject", "body"))
	assert.Error(t, m.Send([]string{"a@example.org"}, "subject", "body"))
}

func TestTaxonomyFileRoundTrip(t *testing.T) {
	doc := TaxonomyFile{
		Tracks:             []models.Track{{Name: "Track 1: Diagnostics", Value: "track_1", Topics: []string{"Point of care"}}},
		CrossCuttingThemes: []string{"Gender"},
	}
	raw, err := EncodeTaxonomyFile(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := LoadTaxonomyFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, *loaded); diff != "" {
		t.Fatalf("taxonomy file mismatch (-want +got):\n%s", diff)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("cross_cutting_themes: [x]\n"), 0o600))
	_, err = LoadTaxonomyFile(empty)
	assert.ErrorContains(t, err, "no tracks")

	_, err = LoadTaxonomyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
