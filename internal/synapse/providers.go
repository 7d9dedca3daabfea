package synapse

import "fmt"

// ProviderKind identifies the mechanism of an external identity provider.
type ProviderKind string

const (
	ProviderOIDC         ProviderKind = "oidc"
	ProviderOIDCLegacy   ProviderKind = "oidc_config"
	ProviderCAS          ProviderKind = "cas"
	ProviderSAML2        ProviderKind = "saml2"
	ProviderJWT          ProviderKind = "jwt"
	ProviderPasswordAuth ProviderKind = "password_provider"
	ProviderNonLocalDB   ProviderKind = "password_backend"
)

// Provider is one configured external identity provider.
type Provider struct {
	Kind   ProviderKind `json:"kind"`
	ID     string       `json:"id,omitempty"`
	Issuer string       `json:"issuer,omitempty"`
}

// String names the provider for report messages.
func (p Provider) String() string {
	switch {
	case p.Issuer != "" && p.ID != "":
		return fmt.Sprintf("%s provider %q (issuer %s)", p.Kind, p.ID, p.Issuer)
	case p.Issuer != "":
		return fmt.Sprintf("%s provider (issuer %s)", p.Kind, p.Issuer)
	case p.ID != "":
		return fmt.Sprintf("%s provider %q", p.Kind, p.ID)
	default:
		return fmt.Sprintf("%s provider", p.Kind)
	}
}

// ExternalProviders lists every configured external identity provider in a
// fixed order. Entries are not deduplicated.
func (c *Config) ExternalProviders() []Provider {
	var out []Provider
	for _, p := range c.OIDCProviders {
		id := p.IdpID
		if id == "" {
			id = p.IdpName
		}
		out = append(out, Provider{Kind: ProviderOIDC, ID: id, Issuer: p.Issuer})
	}
	if c.OIDCConfig != nil && c.OIDCConfig.Enabled != nil && *c.OIDCConfig.Enabled {
		out = append(out, Provider{Kind: ProviderOIDCLegacy, ID: "oidc", Issuer: c.OIDCConfig.Issuer})
	}
	if c.CASConfig != nil && c.CASConfig.Enabled {
		out = append(out, Provider{Kind: ProviderCAS})
	}
	if c.saml2Enabled() {
		out = append(out, Provider{Kind: ProviderSAML2})
	}
	if c.JWTConfig != nil && c.JWTConfig.Enabled {
		out = append(out, Provider{Kind: ProviderJWT})
	}
	for _, p := range c.PasswordProviders {
		out = append(out, Provider{Kind: ProviderPasswordAuth, ID: p.Module})
	}
	if c.PasswordEnabled() && !c.LocalDBEnabled() {
		out = append(out, Provider{Kind: ProviderNonLocalDB, ID: "localdb_enabled=false"})
	}
	return out
}

func (c *Config) saml2Enabled() bool {
	if c.SAML2Config == nil {
		return false
	}
	if c.SAML2Config.Enabled != nil {
		return *c.SAML2Config.Enabled
	}
	return c.SAML2Config.SPConfig != nil || c.SAML2Config.Metadata != nil
}
