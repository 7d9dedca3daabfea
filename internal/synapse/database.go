package synapse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/synapsespectre/internal/database"
)

// DatabaseConfig derives read-only connection settings from the database
// block of homeserver.yaml.
func (c *Config) DatabaseConfig() (database.Config, error) {
	args := c.Database.Args
	switch c.Database.Name {
	case EngineSQLite:
		if args.Database == "" {
			return database.Config{}, fmt.Errorf("synapse config: database.args.database is required for sqlite3")
		}
		return database.Config{
			Driver: database.DriverSQLite,
			DSN:    "file:" + args.Database + "?mode=ro",
		}, nil
	case EnginePostgres:
		sslmode, fallback := pqSSLMode(args.SSLMode)
		params := map[string]string{
			"default_transaction_read_only": "on",
			"sslmode":                       sslmode,
		}
		dbname := args.DBName
		if dbname == "" {
			dbname = args.Database
		}
		setIfNotEmpty(params, "dbname", dbname)
		setIfNotEmpty(params, "user", args.User)
		setIfNotEmpty(params, "password", args.Password)
		setIfNotEmpty(params, "host", args.Host)
		if args.Port != nil {
			setIfNotEmpty(params, "port", fmt.Sprint(args.Port))
		}
		cfg := database.Config{
			Driver: database.DriverPostgres,
			DSN:    encodeKeyValueDSN(params),
		}
		if fallback {
			params["sslmode"] = "disable"
			cfg.PlaintextDSN = encodeKeyValueDSN(params)
		}
		return cfg, nil
	default:
		return database.Config{}, fmt.Errorf("synapse config: unsupported database engine %q", c.Database.Name)
	}
}

// pqSSLMode maps a libpq sslmode onto lib/pq. lib/pq has no opportunistic
// modes, so unset, "prefer" and "allow" become "require" with a plaintext
// retry when the server refuses TLS. Other values pass through unchanged.
func pqSSLMode(mode string) (string, bool) {
	switch mode {
	case "", "prefer", "allow":
		return "require", true
	default:
		return mode, false
	}
}

func setIfNotEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func encodeKeyValueDSN(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(params[k], `\`, `\\`)
		v = strings.ReplaceAll(v, `'`, `\'`)
		parts = append(parts, k+"='"+v+"'")
	}
	return strings.Join(parts, " ")
}
