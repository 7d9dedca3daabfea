package reporter

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/ppiankov/synapsespectre/internal/advisor"
)

// FormatSARIF is the SARIF output format constant.
const FormatSARIF Format = "sarif"

// SARIF v2.1.0 types: minimal subset for code-scanning upload.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string                     `json:"name"`
	Version        string                     `json:"version,omitempty"`
	InformationURI string                     `json:"informationUri,omitempty"`
	Rules          []sarifReportingDescriptor `json:"rules,omitempty"`
}

type sarifReportingDescriptor struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifLogicalLocation struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind,omitempty"`
}

func rule(id advisor.RuleID, text, level string) sarifReportingDescriptor {
	return sarifReportingDescriptor{ID: string(id), ShortDescription: sarifMessage{Text: text}, DefaultConfig: sarifDefaultConfig{Level: level}}
}

// sarifRules defines the SARIF rule descriptors for each rule.
var sarifRules = map[advisor.RuleID]sarifReportingDescriptor{
	advisor.RuleGuestUsers:                rule(advisor.RuleGuestUsers, "Guest users exist and are not supported by MAS", "error"),
	advisor.RuleGuestAccessEnabled:        rule(advisor.RuleGuestAccessEnabled, "Guest access is enabled in Synapse", "error"),
	advisor.RuleRegistrationEnabled:       rule(advisor.RuleRegistrationEnabled, "Registration must be disabled after migration", "warning"),
	advisor.RuleRegistrationCaptcha:       rule(advisor.RuleRegistrationCaptcha, "Registration CAPTCHA must be configured in MAS", "warning"),
	advisor.RuleUserConsentEnabled:        rule(advisor.RuleUserConsentEnabled, "user_consent is not supported by MAS", "warning"),
	advisor.RuleUsersWithoutEmail:         rule(advisor.RuleUsersWithoutEmail, "Users without a verified email address", "warning"),
	advisor.RuleAccessTokensWithoutDevice: rule(advisor.RuleAccessTokensWithoutDevice, "Access tokens without a device will be dropped", "error"),
	advisor.RuleNonEmailThreepids:         rule(advisor.RuleNonEmailThreepids, "Non-email third-party identifiers will be dropped", "error"),
	advisor.RuleExternalProvider:          rule(advisor.RuleExternalProvider, "External identity provider needs an upstream provider in MAS", "warning"),
	advisor.RuleExternalIDsPresent:        rule(advisor.RuleExternalIDsPresent, "Users are linked to an upstream provider", "warning"),
	advisor.RulePasswordUsers:             rule(advisor.RulePasswordUsers, "Users with a password will be migrated", "note"),
	advisor.RuleMigratableAccessTokens:    rule(advisor.RuleMigratableAccessTokens, "Access tokens will be migrated", "note"),
	advisor.RuleRefreshTokens:             rule(advisor.RuleRefreshTokens, "Refresh tokens will be migrated", "note"),
	advisor.RuleThreepidChangesEnabled:    rule(advisor.RuleThreepidChangesEnabled, "enable_3pid_changes must be disabled after migration", "warning"),
	advisor.RuleLoginViaExistingSession:   rule(advisor.RuleLoginViaExistingSession, "login_via_existing_session must be disabled after migration", "warning"),
	advisor.RuleMASServerNameMismatch:     rule(advisor.RuleMASServerNameMismatch, "MAS homeserver does not match Synapse server_name", "error"),
}

func writeSARIF(w io.Writer, report *Report) error {
	findings := report.Findings()

	// Collect unique rules used in findings.
	usedRules := make(map[advisor.RuleID]bool)
	for _, f := range findings {
		usedRules[f.Rule] = true
	}
	var rules []sarifReportingDescriptor
	for id := range usedRules {
		if r, ok := sarifRules[id]; ok {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		r := sarifResult{
			RuleID:  string(f.Rule),
			Level:   severityToSARIFLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
		}
		if loc, ok := location(&report.Metadata); ok {
			r.Locations = []sarifLocation{loc}
		}
		results = append(results, r)
	}

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "synapsespectre",
					Version:        report.Metadata.Version,
					InformationURI: "https://github.com/ppiankov/synapsespectre",
					Rules:          rules,
				},
			},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func severityToSARIFLevel(s advisor.Severity) string {
	switch s {
	case advisor.SeverityError:
		return "error"
	case advisor.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func location(m *Metadata) (sarifLocation, bool) {
	var loc sarifLocation
	if m.ConfigPath != "" {
		loc.PhysicalLocation = &sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: m.ConfigPath}}
	}
	if m.ServerName != "" {
		loc.LogicalLocations = []sarifLogicalLocation{{FullyQualifiedName: m.ServerName, Kind: "module"}}
	}
	return loc, loc.PhysicalLocation != nil || loc.LogicalLocations != nil
}
