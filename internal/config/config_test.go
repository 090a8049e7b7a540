package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("JWT_EXPIRES_IN", "15m")
	os.Setenv("JWT_REFRESH_EXPIRES_IN", "7d")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":4000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":4000")
	}
	if cfg.BcryptSaltRounds != 12 {
		t.Errorf("BcryptSaltRounds = %d, want 12", cfg.BcryptSaltRounds)
	}
	if cfg.MaxRefreshTokensPerUser != 5 {
		t.Errorf("MaxRefreshTokensPerUser = %d, want 5", cfg.MaxRefreshTokensPerUser)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", cfg.RefreshTTL())
	}
	if cfg.SweepInterval() != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval())
	}
	if cfg.Production() {
		t.Error("Production should default to false")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []string{"JWT_SECRET", "JWT_EXPIRES_IN", "JWT_REFRESH_EXPIRES_IN"}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			os.Unsetenv(name)
			if _, err := Load(); err == nil {
				t.Fatalf("Load succeeded without %s", name)
			}
		})
	}
}

func TestLoad_InvalidNumerics(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("BCRYPT_SALT_ROUNDS", "2")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted BCRYPT_SALT_ROUNDS=2")
	}

	setRequiredEnv(t)
	os.Setenv("MAX_REFRESH_TOKENS_PER_USER", "0")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted MAX_REFRESH_TOKENS_PER_USER=0")
	}
}

func TestLoad_MalformedExpiry(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("JWT_EXPIRES_IN", "fifteen minutes")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed JWT_EXPIRES_IN")
	}
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "broker1:9092" || got[1] != "broker2:9092" {
		t.Errorf("KafkaBrokersList = %v", got)
	}
}

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"15m", 15 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"900", 900 * time.Second, false},
		{"", 0, true},
		{"m", 0, true},
		{"-5m", 0, true},
		{"0", 0, true},
		{"1w", 0, true},
		{"1.5h", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseExpiry(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseExpiry(%q): want error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseExpiry(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseExpiry(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
