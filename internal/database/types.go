package database

import (
	"fmt"
	"net/url"
	"strings"
)

// database/sql driver names registered by lib/pq and go-sqlite3.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const defaultMaxOpenConns = 4

// Config holds connection settings for the legacy Synapse database.
type Config struct {
	Driver       string
	DSN          string
	PlaintextDSN string // tried when the server refuses TLS on DSN
	MaxOpenConns int    // 0 = default
}

// ProviderCount is the number of users linked to one upstream auth provider.
type ProviderCount struct {
	Provider string `json:"provider"`
	Users    int64  `json:"users"`
}

// ConfigFromURI builds a Config from a connection URI. postgres:// and
// postgresql:// select lib/pq; anything else is treated as a SQLite path.
// Both are forced read-only.
func ConfigFromURI(uri string) (Config, error) {
	switch {
	case uri == "":
		return Config{}, fmt.Errorf("empty database URI")
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Config{}, fmt.Errorf("parse database URI: %w", err)
		}
		q := u.Query()
		q.Set("default_transaction_read_only", "on")
		u.RawQuery = q.Encode()
		return Config{Driver: DriverPostgres, DSN: u.String()}, nil
	case strings.HasPrefix(uri, "file:"):
		return sqliteReadOnly(uri)
	default:
		return sqliteReadOnly("file:" + strings.TrimPrefix(uri, "sqlite://"))
	}
}

// sqliteReadOnly forces mode=ro on a SQLite file: URI, replacing any rw or
// rwc mode so a mistyped path is never created.
func sqliteReadOnly(uri string) (Config, error) {
	path, rawQuery, _ := strings.Cut(uri, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Config{}, fmt.Errorf("parse database URI: %w", err)
	}
	q.Set("mode", "ro")
	return Config{Driver: DriverSQLite, DSN: path + "?" + q.Encode()}, nil
}
