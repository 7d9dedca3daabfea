package advisor

// Severity classifies a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// RuleID identifies the check that produced a finding.
type RuleID string

const (
	RuleGuestUsers                RuleID = "guest_users"
	RuleGuestAccessEnabled        RuleID = "guest_access_enabled"
	RuleRegistrationEnabled       RuleID = "registration_enabled"
	RuleRegistrationCaptcha       RuleID = "registration_captcha_enabled"
	RuleUserConsentEnabled        RuleID = "user_consent_enabled"
	RuleUsersWithoutEmail         RuleID = "users_without_email"
	RuleAccessTokensWithoutDevice RuleID = "access_tokens_without_device"
	RuleNonEmailThreepids         RuleID = "non_email_threepids"
	RuleExternalProvider          RuleID = "external_provider_configured"
	RuleExternalIDsPresent        RuleID = "external_ids_present"
	RulePasswordUsers             RuleID = "password_users"
	RuleMigratableAccessTokens    RuleID = "migratable_access_tokens"
	RuleRefreshTokens             RuleID = "refresh_tokens"
	RuleThreepidChangesEnabled    RuleID = "threepid_changes_enabled"
	RuleLoginViaExistingSession   RuleID = "login_via_existing_session_enabled"
	RuleMASServerNameMismatch     RuleID = "mas_server_name_mismatch"
)

// Finding is a single classified observation. Findings are values and are
// never modified after a check returns them.
type Finding struct {
	Rule     RuleID   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Outcome is the verdict of a complete analysis run.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

func info(rule RuleID, msg string) Finding {
	return Finding{Rule: rule, Severity: SeverityInfo, Message: msg}
}

func warning(rule RuleID, msg string) Finding {
	return Finding{Rule: rule, Severity: SeverityWarning, Message: msg}
}

func failure(rule RuleID, msg string) Finding {
	return Finding{Rule: rule, Severity: SeverityError, Message: msg}
}

// ExitCode maps an outcome to a process exit code.
func ExitCode(o Outcome) int {
	if o == OutcomeFail {
		return 1
	}
	return 0
}
