package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	queryGuestUsers = `SELECT COUNT(*) FROM users WHERE is_guest = 1`

	queryUsersWithoutEmail = `SELECT COUNT(*) FROM users u
WHERE NOT EXISTS (
	SELECT 1 FROM user_threepids t WHERE t.user_id = u.name AND t.medium = 'email'
)`

	queryAccessTokensWithoutDevice = `SELECT COUNT(*) FROM access_tokens WHERE device_id IS NULL OR device_id = ''`

	queryNonEmailThreepids = `SELECT COUNT(*) FROM user_threepids WHERE medium <> 'email'`

	queryUsersWithPassword = `SELECT COUNT(*) FROM users WHERE password_hash IS NOT NULL`

	queryAccessTokensWithDevice = `SELECT COUNT(*) FROM access_tokens WHERE device_id IS NOT NULL AND device_id <> ''`

	queryRefreshTokens = `SELECT COUNT(*) FROM refresh_tokens`

	queryExternalIDsByProvider = `SELECT auth_provider, COUNT(DISTINCT user_id) FROM user_external_ids
GROUP BY auth_provider
ORDER BY auth_provider`
)

// sqlClient abstracts the database/sql handle for testability.
type sqlClient interface {
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Reader issues read-only counting queries against a Synapse database.
// It is safe for concurrent use.
type Reader struct {
	db sqlClient
}

// Open connects to the database and verifies the connection.
// The context deadline bounds the initial ping. When the server refuses TLS
// and cfg.PlaintextDSN is set, Open retries once without TLS.
func Open(ctx context.Context, cfg Config) (*Reader, error) {
	r, err := open(ctx, cfg, cfg.DSN)
	if err != nil && cfg.PlaintextDSN != "" && tlsRefused(err) {
		return open(ctx, cfg, cfg.PlaintextDSN)
	}
	return r, err
}

func tlsRefused(err error) bool {
	return errors.Is(err, pq.ErrSSLNotSupported)
}

func open(ctx context.Context, cfg Config, dsn string) (*Reader, error) {
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = defaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Reader{db: db}, nil
}

// New wraps an already opened handle.
func New(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Close releases the connection pool.
func (r *Reader) Close() error {
	return r.db.Close()
}

// CountGuestUsers returns the number of guest accounts.
func (r *Reader) CountGuestUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "guest users", queryGuestUsers)
}

// CountUsersWithoutEmail returns the number of users with no email threepid.
func (r *Reader) CountUsersWithoutEmail(ctx context.Context) (int64, error) {
	return r.count(ctx, "users without email", queryUsersWithoutEmail)
}

// CountAccessTokensWithoutDevice returns the number of access tokens with a
// null or empty device_id.
func (r *Reader) CountAccessTokensWithoutDevice(ctx context.Context) (int64, error) {
	return r.count(ctx, "access tokens without device", queryAccessTokensWithoutDevice)
}

// CountNonEmailThreepids returns the number of threepids whose medium is not email.
func (r *Reader) CountNonEmailThreepids(ctx context.Context) (int64, error) {
	return r.count(ctx, "non-email threepids", queryNonEmailThreepids)
}

// CountUsersWithPassword returns the number of users with a password hash.
func (r *Reader) CountUsersWithPassword(ctx context.Context) (int64, error) {
	return r.count(ctx, "users with password", queryUsersWithPassword)
}

// CountAccessTokensWithDevice returns the number of access tokens bound to a device.
func (r *Reader) CountAccessTokensWithDevice(ctx context.Context) (int64, error) {
	return r.count(ctx, "access tokens with device", queryAccessTokensWithDevice)
}

// CountRefreshTokens returns the number of refresh tokens.
func (r *Reader) CountRefreshTokens(ctx context.Context) (int64, error) {
	return r.count(ctx, "refresh tokens", queryRefreshTokens)
}

// ExternalIDsByProvider groups user_external_ids by auth_provider, ordered
// by provider name.
func (r *Reader) ExternalIDsByProvider(ctx context.Context) ([]ProviderCount, error) {
	rows, err := r.db.QueryContext(ctx, queryExternalIDsByProvider)
	if err != nil {
		return nil, fmt.Errorf("query external ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ProviderCount
	for rows.Next() {
		var pc ProviderCount
		if err := rows.Scan(&pc.Provider, &pc.Users); err != nil {
			return nil, fmt.Errorf("scan external ids: %w", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate external ids: %w", err)
	}
	return out, nil
}

// count runs a single-value COUNT query. No row means zero; every other
// failure is returned and never reported as zero.
func (r *Reader) count(ctx context.Context, what, query string) (int64, error) {
	var n sql.NullInt64
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", what, err)
	}
	return n.Int64, nil
}
