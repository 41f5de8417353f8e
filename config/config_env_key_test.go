package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"googleCalendar": map[string]any{
			"tokenUrl": "",
		},
		"authGate": map[string]any{
			"redirectThreshold": 3,
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "GOOGLECALENDAR_TOKENURL", want: "googleCalendar.tokenUrl"},
		{envKey: "AUTHGATE_REDIRECTTHRESHOLD", want: "authGate.redirectThreshold"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_FillsGateAndStateSettings(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.AuthGate.RedirectThreshold != 3 {
		t.Fatalf("RedirectThreshold = %d, want 3", cfg.AuthGate.RedirectThreshold)
	}
	if cfg.AuthGate.SignInPath != "/auth/signin" {
		t.Fatalf("SignInPath = %q", cfg.AuthGate.SignInPath)
	}
	if cfg.AuthState.InitTimeout.Seconds() != 10 {
		t.Fatalf("InitTimeout = %v, want 10s", cfg.AuthState.InitTimeout)
	}
	if cfg.AuthState.DedupWindow.Seconds() != 2 {
		t.Fatalf("DedupWindow = %v, want 2s", cfg.AuthState.DedupWindow)
	}
	if cfg.Vacation.DefaultAllowanceDays != 20 {
		t.Fatalf("DefaultAllowanceDays = %d, want 20", cfg.Vacation.DefaultAllowanceDays)
	}
}
