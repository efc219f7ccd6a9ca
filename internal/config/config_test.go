package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DEFAULT_QA_VERIFIER", "Meena")
	t.Setenv("DEFAULT_BRAND", "SHI")
	for _, k := range []string{"HTTP_PORT", "DATABASE_DSN", "CORS_ALLOWED_ORIGINS", "SEARCH_RATE_LIMIT", "LOG_FORMAT", "DEFAULT_MATERIAL_VERIFIER", "DEFAULT_REVIEWED_BY"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 120, cfg.SearchRateLimit)
	assert.Equal(t, "Meena", cfg.Assignees.QAVerifier)
	assert.Equal(t, "Meena", cfg.Assignees.MaterialVerifiedBy)
	assert.Equal(t, "Meena", cfg.ReportDefaults.ReviewedBy)
	assert.Equal(t, "SHI", cfg.Assignees.Brand)
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad rate", map[string]string{"JWT_SECRET": secret, "SEARCH_RATE_LIMIT": "many"}},
		{"bad format", map[string]string{"JWT_SECRET": secret, "LOG_FORMAT": "xml"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.test, http://b.test "}
	assert.Equal(t, "http://a.test,http://b.test", cfg.Origins())
}
