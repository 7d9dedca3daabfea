package synapse

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Supported values of database.name in homeserver.yaml.
const (
	EnginePostgres = "psycopg2"
	EngineSQLite   = "sqlite3"
)

// Config is the subset of a Synapse homeserver.yaml the readiness checks read.
// It is loaded once and never modified afterwards.
type Config struct {
	ServerName                string             `yaml:"server_name"`
	AllowGuestAccess          bool               `yaml:"allow_guest_access"`
	EnableRegistration        bool               `yaml:"enable_registration"`
	EnableRegistrationCaptcha bool               `yaml:"enable_registration_captcha"`
	UserConsent               map[string]any     `yaml:"user_consent"`
	OIDCProviders             []OIDCProvider     `yaml:"oidc_providers"`
	OIDCConfig                *OIDCProvider      `yaml:"oidc_config"`
	CASConfig                 *Toggle            `yaml:"cas_config"`
	SAML2Config               *SAML2Config       `yaml:"saml2_config"`
	JWTConfig                 *Toggle            `yaml:"jwt_config"`
	PasswordConfig            PasswordConfig     `yaml:"password_config"`
	PasswordProviders         []PasswordProvider `yaml:"password_providers"`
	Enable3PIDChanges         bool               `yaml:"enable_3pid_changes"`
	LoginViaExistingSession   Toggle             `yaml:"login_via_existing_session"`
	Database                  DatabaseSection    `yaml:"database"`
}

// Toggle is a config block whose only relevant field is "enabled".
type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

// OIDCProvider is one entry of oidc_providers, or the legacy oidc_config block.
type OIDCProvider struct {
	IdpID   string `yaml:"idp_id"`
	IdpName string `yaml:"idp_name"`
	Issuer  string `yaml:"issuer"`
	Enabled *bool  `yaml:"enabled"`
}

// SAML2Config is enabled when sp_config or metadata is present, unless
// explicitly switched off.
type SAML2Config struct {
	Enabled  *bool          `yaml:"enabled"`
	SPConfig map[string]any `yaml:"sp_config"`
	Metadata map[string]any `yaml:"metadata"`
}

// PasswordConfig mirrors password_config. Enabled is a bool or
// "only_for_reauth". Both fields default to true.
type PasswordConfig struct {
	Enabled        any   `yaml:"enabled"`
	LocalDBEnabled *bool `yaml:"localdb_enabled"`
}

// PasswordProvider is a legacy password_providers module entry.
type PasswordProvider struct {
	Module string `yaml:"module"`
}

// DatabaseSection mirrors the database block of homeserver.yaml.
type DatabaseSection struct {
	Name string       `yaml:"name"`
	Args DatabaseArgs `yaml:"args"`
}

// DatabaseArgs holds the connection arguments Synapse passes to its driver.
type DatabaseArgs struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	DBName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     any    `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
}

// Load reads and parses a homeserver.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synapse config: %w", err)
	}
	return Parse(data)
}

// Parse decodes homeserver.yaml content and validates the fields the
// analysis cannot run without.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse synapse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerName == "" {
		return fmt.Errorf("synapse config: server_name is required")
	}
	switch c.Database.Name {
	case EnginePostgres, EngineSQLite:
	case "":
		return fmt.Errorf("synapse config: database.name is required")
	default:
		return fmt.Errorf("synapse config: unsupported database engine %q", c.Database.Name)
	}
	return nil
}

// UserConsentEnabled reports whether a user_consent block is configured.
func (c *Config) UserConsentEnabled() bool {
	return c.UserConsent != nil
}

// PasswordEnabled reports whether password authentication is on at all.
// "only_for_reauth" still checks passwords and counts as enabled.
func (c *Config) PasswordEnabled() bool {
	enabled, ok := c.PasswordConfig.Enabled.(bool)
	return !ok || enabled
}

// LocalDBEnabled reports whether passwords are checked against the Synapse
// database rather than only an external backend.
func (c *Config) LocalDBEnabled() bool {
	if c.PasswordConfig.LocalDBEnabled == nil {
		return true
	}
	return *c.PasswordConfig.LocalDBEnabled
}
