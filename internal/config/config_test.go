package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("PORT", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("PAYSTACK_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "https://api.paystack.co", cfg.PaystackBaseURL)
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGOURI", "")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")

	_, err := Load()
	assert.ErrorContains(t, err, "MONGOURI")
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("PAYSTACK_SECRET_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "PAYSTACK_SECRET_KEY")
}

func TestLoadRejectsMalformedSecretKey(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("PAYSTACK_SECRET_KEY", "pk_live_not_a_secret")

	_, err := Load()
	assert.ErrorContains(t, err, "secret key")
}
