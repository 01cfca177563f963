package wecom

import (
	"errors"
	"time"
)

// Config holds everything needed to talk to one WeCom application.
type Config struct {
	CorpID     string
	CorpSecret string
	AgentID    int
	UserID     string

	// Endpoint overrides DefaultEndpoint (useful for testing).
	Endpoint string

	// Timeout is the maximum duration of each API call.
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second

// Validate checks that required fields are set and fills defaults.
func (c *Config) Validate() error {
	if c.CorpID == "" {
		return errors.New("wecom: corp_id is required")
	}
	if c.CorpSecret == "" {
		return errors.New("wecom: corp_secret is required")
	}
	if c.AgentID <= 0 {
		return errors.New("wecom: agent_id must be a positive integer")
	}
	if c.UserID == "" {
		return errors.New("wecom: user_id is required")
	}

	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// Credentials returns the token exchange credentials.
func (c Config) Credentials() Credentials {
	return Credentials{CorpID: c.CorpID, CorpSecret: c.CorpSecret}
}

// Recipient returns the delivery target.
func (c Config) Recipient() Recipient {
	return Recipient{AgentID: c.AgentID, UserID: c.UserID}
}
