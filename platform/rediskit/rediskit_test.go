package rediskit

import "testing"

type testRedisConfig struct {
	url      string
	insecure bool
}

func (c testRedisConfig) GetRedisURL() string       { return c.url }
func (c testRedisConfig) GetRedisTLSInsecure() bool { return c.insecure }

func TestOptionsRequiresURL(t *testing.T) {
	if _, err := Options(testRedisConfig{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestOptionsInsecureTLS(t *testing.T) {
	opt, err := Options(testRedisConfig{url: "rediss://:secret@cache.internal:6380/2", insecure: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.DB != 2 || opt.Password != "secret" {
		t.Fatalf("unexpected options: addr=%s db=%d", opt.Addr, opt.DB)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}

func TestOptionsPlainURLHasNoTLS(t *testing.T) {
	opt, err := Options(testRedisConfig{url: "redis://localhost:6379/0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig != nil {
		t.Fatal("expected no TLS config for redis:// url")
	}
}
