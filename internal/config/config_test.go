package config

import "testing"

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "harvest", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", LotSecret: "lot-secret"},
		Admin: AdminConfig{Email: "admin@example.com", Password: "pw"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "harvest"
	c.Auth.JWTAudience = "api"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RejectsSharedSecrets(t *testing.T) {
	c := validBase()
	c.Auth.LotSecret = c.Auth.JWTSecret
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when LOT_SECRET equals JWT_SECRET")
	}
}

func TestValidate_RejectsBadTimezone(t *testing.T) {
	c := validBase()
	c.App.Timezone = "Mars/Olympus_Mons"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestValidate_AppliesTokenTTLDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.UserTokenTTL <= 0 || c.Auth.LotTokenTTL <= 0 {
		t.Fatalf("expected TTL defaults, got %v / %v", c.Auth.UserTokenTTL, c.Auth.LotTokenTTL)
	}
}
