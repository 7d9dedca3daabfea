package advisor

import "testing"

func TestCollector_Buckets(t *testing.T) {
	c := NewCollector()
	c.Record(info(RulePasswordUsers, "i1"))
	c.Record(failure(RuleGuestUsers, "e1"))
	c.Record(warning(RuleRegistrationEnabled, "w1"))
	c.Record(info(RuleRefreshTokens, "i2"))
	c.Record(failure(RuleNonEmailThreepids, "e2"))

	if got := len(c.Infos()); got != 2 {
		t.Fatalf("infos = %d, want 2", got)
	}
	if got := len(c.Warnings()); got != 1 {
		t.Fatalf("warnings = %d, want 1", got)
	}
	if got := len(c.Errors()); got != 2 {
		t.Fatalf("errors = %d, want 2", got)
	}
	if c.Infos()[0].Message != "i1" || c.Infos()[1].Message != "i2" {
		t.Errorf("infos out of order: %+v", c.Infos())
	}
	if c.Errors()[0].Message != "e1" || c.Errors()[1].Message != "e2" {
		t.Errorf("errors out of order: %+v", c.Errors())
	}

	all := c.All()
	want := []string{"e1", "e2", "w1", "i1", "i2"}
	if len(all) != len(want) {
		t.Fatalf("all = %d findings, want %d", len(all), len(want))
	}
	for i, f := range all {
		if f.Message != want[i] {
			t.Errorf("all[%d] = %s, want %s", i, f.Message, want[i])
		}
	}
}

func TestCollector_UnknownSeverityIsError(t *testing.T) {
	c := NewCollector()
	c.Record(Finding{Rule: "custom", Severity: "critical", Message: "x"})
	if len(c.Errors()) != 1 {
		t.Fatalf("errors = %d, want 1", len(c.Errors()))
	}
	if c.Outcome() != OutcomeFail {
		t.Errorf("outcome = %s, want fail", c.Outcome())
	}
}

func TestCollector_Outcome(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     Outcome
	}{
		{"empty", nil, OutcomePass},
		{"infos only", []Finding{info(RulePasswordUsers, "a"), info(RuleRefreshTokens, "b")}, OutcomePass},
		{"many warnings", []Finding{
			warning(RuleRegistrationEnabled, "a"), warning(RuleUsersWithoutEmail, "b"), warning(RuleExternalProvider, "c"),
		}, OutcomePass},
		{"single error", []Finding{failure(RuleGuestUsers, "a")}, OutcomeFail},
		{"error among others", []Finding{
			info(RulePasswordUsers, "a"), warning(RuleRegistrationEnabled, "b"), failure(RuleAccessTokensWithoutDevice, "c"),
		}, OutcomeFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			for _, f := range tt.findings {
				c.Record(f)
			}
			if got := c.Outcome(); got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
			// Idempotent.
			if got := c.Outcome(); got != tt.want {
				t.Errorf("second outcome = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(OutcomePass); got != 0 {
		t.Errorf("ExitCode(pass) = %d, want 0", got)
	}
	if got := ExitCode(OutcomeFail); got != 1 {
		t.Errorf("ExitCode(fail) = %d, want 1", got)
	}
}
