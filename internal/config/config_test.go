package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "SQLITE_PATH", "REDIS_URL", "JWT_SECRET", "WS_MAX_MESSAGE_BYTES", "CHAT_HISTORY_LIMIT_MAX"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode by default")
	}
	if cfg.MaxMessageBytes != 8*1024 {
		t.Fatalf("expected default max message size, got %d", cfg.MaxMessageBytes)
	}
	if cfg.HistoryLimitMax != 200 {
		t.Fatalf("expected default history cap 200, got %d", cfg.HistoryLimitMax)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "staging")
	t.Setenv("DATABASE_URL", "postgres://localhost/chat")
	t.Setenv("WS_MAX_MESSAGE_BYTES", "4096")
	t.Setenv("CHAT_HISTORY_LIMIT_MAX", "50")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Fatal("staging should not report development mode")
	}
	if cfg.DatabaseURL != "postgres://localhost/chat" {
		t.Fatalf("unexpected database URL %q", cfg.DatabaseURL)
	}
	if cfg.MaxMessageBytes != 4096 {
		t.Fatalf("expected 4096, got %d", cfg.MaxMessageBytes)
	}
	if cfg.HistoryLimitMax != 50 {
		t.Fatalf("expected 50, got %d", cfg.HistoryLimitMax)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("WS_MAX_MESSAGE_BYTES", "not-a-number")
	t.Setenv("CHAT_HISTORY_LIMIT_MAX", "-7")

	cfg := Load()
	if cfg.MaxMessageBytes != 8*1024 {
		t.Fatalf("invalid value should fall back to the default, got %d", cfg.MaxMessageBytes)
	}
	if cfg.HistoryLimitMax != 200 {
		t.Fatalf("non-positive value should fall back to the default, got %d", cfg.HistoryLimitMax)
	}
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for missing production configuration")
		}
	}()
	Load()
}
