package connection

import (
	"fmt"
	"net/url"
	"time"
)

// ClickHouseConnection represents the column-store connection configuration.
// The native protocol port is used (default 9000).
type ClickHouseConnection struct {
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	Database    string        `json:"database"`
	Username    string        `json:"username"`
	Password    string        `json:"-"`
	DialTimeout time.Duration `json:"dial_timeout"`
}

// Addr returns host:port for the native protocol.
func (c *ClickHouseConnection) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetDSN generates a connection string without password (for logging).
// Format: clickhouse://username@host:port/dbname
func (c *ClickHouseConnection) GetDSN() string {
	return c.dsn(url.User(c.Username))
}

// GetDSNWithPassword generates a complete connection string with password.
// Credentials are percent-encoded.
func (c *ClickHouseConnection) GetDSNWithPassword() string {
	return c.dsn(url.UserPassword(c.Username, c.Password))
}

func (c *ClickHouseConnection) dsn(user *url.Userinfo) string {
	u := &url.URL{
		Scheme: "clickhouse",
		User:   user,
		Host:   c.Addr(),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// Redact returns a redacted connection string for display.
func (c *ClickHouseConnection) Redact() string {
	return fmt.Sprintf("***@%s/%s", c.Addr(), c.Database)
}

// Validate validates the connection parameters.
func (c *ClickHouseConnection) Validate() error {
	var timeoutErr error
	if c.DialTimeout < 0 {
		timeoutErr = &ValidationError{Field: "dial_timeout", Message: "dial timeout must not be negative", Value: c.DialTimeout}
	}
	return collect(
		ValidateRequired("host", c.Host),
		ValidateRequired("database", c.Database),
		ValidateRequired("username", c.Username),
		ValidatePort(c.Port),
		timeoutErr,
	)
}
