package wecom

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{CorpID: "corp", CorpSecret: "secret", AgentID: 1000002, UserID: "@all"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing corp id", mutate: func(c *Config) { c.CorpID = "" }, wantErr: "wecom: corp_id is required"},
		{name: "missing secret", mutate: func(c *Config) { c.CorpSecret = "" }, wantErr: "wecom: corp_secret is required"},
		{name: "zero agent id", mutate: func(c *Config) { c.AgentID = 0 }, wantErr: "wecom: agent_id must be a positive integer"},
		{name: "missing user id", mutate: func(c *Config) { c.UserID = "" }, wantErr: "wecom: user_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_ValidateFillsDefaults(t *testing.T) {
	cfg := Config{CorpID: "corp", CorpSecret: "secret", AgentID: 1, UserID: "u"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout)
	}
}

func TestConfig_CredentialsAndRecipient(t *testing.T) {
	cfg := Config{CorpID: "corp", CorpSecret: "secret", AgentID: 7, UserID: "bob"}
	if got := cfg.Credentials(); got != (Credentials{CorpID: "corp", CorpSecret: "secret"}) {
		t.Errorf("unexpected credentials %+v", got)
	}
	if got := cfg.Recipient(); got != (Recipient{AgentID: 7, UserID: "bob"}) {
		t.Errorf("unexpected recipient %+v", got)
	}
}
