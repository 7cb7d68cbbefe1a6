package config

import "testing"

func TestParse_DefaultsApplied(t *testing.T) {
	cfg, err := Parse([]byte(`
http:
  addr: ":8080"
auth:
  secret: "s3cret"
postgres:
  dsn: "postgres://localhost/lobby"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Logging.Service != "lobby-service" || cfg.Logging.Env != "dev" || cfg.Logging.Backend != "std" {
		t.Fatalf("defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis must default to disabled, got %q", cfg.Redis.Addr)
	}
}

func TestParse_RequiredFields(t *testing.T) {
	cases := map[string]string{
		"no addr":   "auth:\n  secret: s\npostgres:\n  dsn: d\n",
		"no dsn":    "http:\n  addr: :1\nauth:\n  secret: s\n",
		"no secret": "http:\n  addr: :1\npostgres:\n  dsn: d\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
