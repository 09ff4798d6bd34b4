package account

import (
	"errors"
	"time"
)

// Config holds membership configuration.
type Config struct {
	// Salt is the secret mixed into invite email digests.
	Salt string

	// InviteExpiry is how long an invite remains acceptable.
	InviteExpiry time.Duration

	// MaxRosterRetries bounds compare-and-set attempts per roster change.
	MaxRosterRetries int

	// RetryBackoff is the base delay between roster attempts.
	RetryBackoff time.Duration

	// InviteRateLimit is invites per admin per InviteRateWindow; 0 disables it.
	InviteRateLimit  int
	InviteRateWindow time.Duration

	// MaxAccountNameLength caps account names.
	MaxAccountNameLength int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		InviteExpiry:         72 * time.Hour,
		MaxRosterRetries:     5,
		RetryBackoff:         10 * time.Millisecond,
		InviteRateLimit:      20,
		InviteRateWindow:     time.Hour,
		MaxAccountNameLength: 255,
	}
}

// Validate fills zero values with defaults and rejects a missing salt.
func (c *Config) Validate() error {
	if c.Salt == "" {
		return errors.New("membership salt is required")
	}
	d := DefaultConfig()
	if c.InviteExpiry <= 0 {
		c.InviteExpiry = d.InviteExpiry
	}
	if c.MaxRosterRetries <= 0 {
		c.MaxRosterRetries = d.MaxRosterRetries
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	if c.InviteRateWindow <= 0 {
		c.InviteRateWindow = d.InviteRateWindow
	}
	if c.MaxAccountNameLength <= 0 {
		c.MaxAccountNameLength = d.MaxAccountNameLength
	}
	return nil
}
