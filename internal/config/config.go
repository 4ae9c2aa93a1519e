// Package config holds the Server's startup configuration, populated from
// CLI flags overlaid with environment variables (the NOTEDAV_ prefix),
// mirroring the env-var-default shape the teacher's own config package
// uses.
package config

import "fmt"

// Config is the full set of parameters a running server needs. UserID
// defaults to Username when left unset (original_source/src/commands.rs's
// user_id.unwrap_or_else(|| username) rule).
type Config struct {
	DatabasePath string
	Host         string
	Port         int
	Username     string
	Password     string
	UserID       string
}

// Addr renders the host:port pair http.ListenAndServe expects.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the fields a server cannot safely start without.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: database path is required")
	}
	if c.Username == "" {
		return fmt.Errorf("config: username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("config: password is required")
	}
	return nil
}

// WithDefaults fills UserID from Username when unset, per the CLI contract.
func (c Config) WithDefaults() Config {
	if c.UserID == "" {
		c.UserID = c.Username
	}
	return c
}
