package advisor

import (
	"context"
	"fmt"

	"github.com/ppiankov/synapsespectre/internal/database"
	"github.com/ppiankov/synapsespectre/internal/synapse"
)

// Reader is the read-only query surface checks use against the Synapse database.
type Reader interface {
	CountGuestUsers(ctx context.Context) (int64, error)
	CountUsersWithoutEmail(ctx context.Context) (int64, error)
	CountAccessTokensWithoutDevice(ctx context.Context) (int64, error)
	CountNonEmailThreepids(ctx context.Context) (int64, error)
	CountUsersWithPassword(ctx context.Context) (int64, error)
	CountAccessTokensWithDevice(ctx context.Context) (int64, error)
	CountRefreshTokens(ctx context.Context) (int64, error)
	ExternalIDsByProvider(ctx context.Context) ([]database.ProviderCount, error)
}

// CheckFunc evaluates one rule. A nil or empty result means the rule passed.
// Errors are reserved for failures of the tool itself.
type CheckFunc func(ctx context.Context, cfg *synapse.Config, db Reader) ([]Finding, error)

// Check is one named, independent rule.
type Check struct {
	Name        string
	Description string
	Run         CheckFunc
}

// DefaultChecks returns the readiness checks in report order.
func DefaultChecks() []Check {
	return []Check{
		{Name: string(RuleGuestUsers), Description: "guest accounts exist in the database", Run: checkGuestUsers},
		{Name: string(RuleGuestAccessEnabled), Description: "allow_guest_access is enabled", Run: checkGuestAccess},
		{Name: string(RuleRegistrationEnabled), Description: "enable_registration is enabled", Run: checkRegistration},
		{Name: string(RuleRegistrationCaptcha), Description: "enable_registration_captcha is enabled", Run: checkRegistrationCaptcha},
		{Name: string(RuleUserConsentEnabled), Description: "user_consent is configured", Run: checkUserConsent},
		{Name: string(RuleUsersWithoutEmail), Description: "users without an email address", Run: checkUsersWithoutEmail},
		{Name: string(RuleAccessTokensWithoutDevice), Description: "access tokens without a device", Run: checkAccessTokensWithoutDevice},
		{Name: string(RuleNonEmailThreepids), Description: "non-email third-party identifiers", Run: checkNonEmailThreepids},
		{Name: string(RuleExternalProvider), Description: "configured external identity providers", Run: checkExternalProviders},
		{Name: string(RuleExternalIDsPresent), Description: "users linked to upstream providers", Run: checkExternalIDs},
		{Name: string(RulePasswordUsers), Description: "users with a password", Run: checkPasswordUsers},
		{Name: string(RuleMigratableAccessTokens), Description: "access tokens eligible for migration", Run: checkMigratableAccessTokens},
		{Name: string(RuleRefreshTokens), Description: "refresh tokens", Run: checkRefreshTokens},
		{Name: "legacy_features", Description: "enable_3pid_changes and login_via_existing_session", Run: checkLegacyFeatures},
	}
}

func checkGuestUsers(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountGuestUsers(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{failure(RuleGuestUsers,
		fmt.Sprintf("Synapse database contains %d guest users which aren't supported by MAS", n))}, nil
}

func checkGuestAccess(ctx context.Context, cfg *synapse.Config, db Reader) ([]Finding, error) {
	if !cfg.AllowGuestAccess {
		return nil, nil
	}
	n, err := db.CountGuestUsers(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []Finding{failure(RuleGuestAccessEnabled,
			"Synapse config allows guest access which isn't supported by MAS. Disable allow_guest_access before migrating")}, nil
	}
	return []Finding{failure(RuleGuestAccessEnabled,
		fmt.Sprintf("Synapse config allows guest access which isn't supported by MAS, and %d guest users already exist. Disabling allow_guest_access alone is not enough", n))}, nil
}

func checkRegistration(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
	if !cfg.EnableRegistration {
		return nil, nil
	}
	return []Finding{warning(RuleRegistrationEnabled,
		"Synapse config has registration enabled. This will need to be disabled after migration")}, nil
}

func checkRegistrationCaptcha(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
	if !cfg.EnableRegistrationCaptcha {
		return nil, nil
	}
	return []Finding{warning(RuleRegistrationCaptcha,
		"Synapse config has registration CAPTCHA enabled. It will need to be configured in MAS")}, nil
}

func checkUserConsent(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
	if !cfg.UserConsentEnabled() {
		return nil, nil
	}
	return []Finding{warning(RuleUserConsentEnabled,
		"Synapse config has user_consent configured which isn't supported by MAS. This will need to be disabled after migration")}, nil
}

func checkUsersWithoutEmail(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountUsersWithoutEmail(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{warning(RuleUsersWithoutEmail,
		fmt.Sprintf("%d users do not have a verified email address. They will need to add one before they can log in after migration", n))}, nil
}

func checkAccessTokensWithoutDevice(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountAccessTokensWithoutDevice(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{failure(RuleAccessTokensWithoutDevice,
		fmt.Sprintf("%d access tokens are not associated with a device and cannot be migrated. They will be dropped", n))}, nil
}

func checkNonEmailThreepids(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountNonEmailThreepids(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{failure(RuleNonEmailThreepids,
		fmt.Sprintf("%d non-email third-party identifiers (e.g. phone numbers) aren't supported by MAS and will be dropped", n))}, nil
}

func checkExternalProviders(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
	var findings []Finding
	for _, p := range cfg.ExternalProviders() {
		findings = append(findings, warning(RuleExternalProvider,
			fmt.Sprintf("Synapse config has %s configured. It will need to be set up as an upstream provider in MAS", p)))
	}
	return findings, nil
}

func checkExternalIDs(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	groups, err := db.ExternalIDsByProvider(ctx)
	if err != nil {
		return nil, err
	}
	var findings []Finding
	for _, g := range groups {
		findings = append(findings, warning(RuleExternalIDsPresent,
			fmt.Sprintf("%d users are linked to upstream provider %q. It will need to be configured in MAS with a matching ID", g.Users, g.Provider)))
	}
	return findings, nil
}

func checkPasswordUsers(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountUsersWithPassword(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{info(RulePasswordUsers, fmt.Sprintf("%d users with a password will be migrated", n))}, nil
}

func checkMigratableAccessTokens(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountAccessTokensWithDevice(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{info(RuleMigratableAccessTokens, fmt.Sprintf("%d access tokens will be migrated", n))}, nil
}

func checkRefreshTokens(ctx context.Context, _ *synapse.Config, db Reader) ([]Finding, error) {
	n, err := db.CountRefreshTokens(ctx)
	if err != nil || n == 0 {
		return nil, err
	}
	return []Finding{info(RuleRefreshTokens, fmt.Sprintf("%d refresh tokens will be migrated", n))}, nil
}

func checkLegacyFeatures(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
	var findings []Finding
	if cfg.Enable3PIDChanges {
		findings = append(findings, warning(RuleThreepidChangesEnabled,
			"Synapse config has enable_3pid_changes enabled. This will need to be disabled after migration"))
	}
	if cfg.LoginViaExistingSession.Enabled {
		findings = append(findings, warning(RuleLoginViaExistingSession,
			"Synapse config has login_via_existing_session enabled. This will need to be disabled after migration"))
	}
	return findings, nil
}
