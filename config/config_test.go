package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET": "secret",
		"MONGO_URI":  "mongodb://localhost:27017",
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.Production())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "quickhire", cfg.MongoDB)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.ForceOnboardingOnEmptyUpdate)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.Empty(t, cfg.DemoAccounts)
}

func TestParse_Overrides(t *testing.T) {
	env := baseEnv()
	env["ALLOWED_ORIGINS"] = "http://localhost:3000,https://quickhire.dev"
	env["OTP_TTL"] = "5m"
	env["AUTH_FORCE_ONBOARDING_ON_EMPTY_UPDATE"] = "false"
	env["AUTH_DEMO_ACCOUNTS"] = `[{"email":"demo@quickhire.dev","password":"demo123","displayName":"Demo"}]`

	cfg, err := Parse(env)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000", "https://quickhire.dev"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.False(t, cfg.ForceOnboardingOnEmptyUpdate)
	require.Len(t, cfg.DemoAccounts, 1)
	assert.Equal(t, "Demo", cfg.DemoAccounts[0].DisplayName)
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{"missing secret", func(e map[string]string) { delete(e, "JWT_SECRET") }, "JWT_SECRET"},
		{"missing mongo uri", func(e map[string]string) { delete(e, "MONGO_URI") }, "MONGO_URI"},
		{"memory needs no uri", func(e map[string]string) {
			delete(e, "MONGO_URI")
			e["STORE_DRIVER"] = DriverMemory
		}, ""},
		{"unknown driver", func(e map[string]string) { e["STORE_DRIVER"] = "sqlite" }, "unknown STORE_DRIVER"},
		{"memory refused in production", func(e map[string]string) {
			e["APP_ENV"] = "production"
			e["STORE_DRIVER"] = DriverMemory
		}, "not allowed in production"},
		{"production needs smtp", func(e map[string]string) { e["APP_ENV"] = "Production" }, "SMTP_HOST"},
		{"production with smtp", func(e map[string]string) {
			e["APP_ENV"] = "production"
			e["SMTP_HOST"] = "smtp.example.com"
			e["SMTP_USER"] = "bot"
			e["SMTP_PASS"] = "pw"
		}, ""},
		{"bad demo accounts", func(e map[string]string) { e["AUTH_DEMO_ACCOUNTS"] = `[{"email":"x"}]` }, "AUTH_DEMO_ACCOUNTS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := baseEnv()
			tc.mutate(env)
			_, err := Parse(env)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
