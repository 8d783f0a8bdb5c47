package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.S3Bucket == "" {
		t.Fatalf("expected default bucket")
	}
	if cfg.VisionEndpoint == "" {
		t.Fatalf("expected default vision endpoint")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("S3_BUCKET", "bucket-test")
	t.Setenv("VISION_API_KEY", "vision-key")
	t.Setenv("PLACES_API_KEY", "places-key")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.S3Bucket != "bucket-test" {
		t.Fatalf("expected override bucket")
	}
	if cfg.VisionAPIKey != "vision-key" {
		t.Fatalf("expected override vision key")
	}
	if cfg.PlacesAPIKey != "places-key" {
		t.Fatalf("expected override places key")
	}
}
