package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExitErrorError(t *testing.T) {
	err := (&ExitError{Code: 2}).Error()
	if err != "exit status 2" {
		t.Fatalf("error() = %q, want %q", err, "exit status 2")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"blocked", &ExitError{Code: ExitBlocked}, ExitBlocked},
		{"operational", errors.New("connect: refused"), ExitFault},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"synapsespectre test-version", "abc1234", "2026-01-01"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output missing %q: %s", want, stdout)
		}
	}
}

func TestVersionCommandJSON(t *testing.T) {
	stdout, _, err := execCLI(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got BuildInfo
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if got != testBuildInfo {
		t.Fatalf("build info = %+v, want %+v", got, testBuildInfo)
	}
}

func TestFormatValidationError(t *testing.T) {
	stubOpenReader(t, &fakeReader{})
	path := writeHomeserver(t, cleanHomeserver)

	_, _, err := execCLI(t, "check", path, "--format", "xml")
	if err == nil {
		t.Fatal("expected invalid format error")
	}
	if !strings.Contains(err.Error(), "invalid --format") {
		t.Fatalf("unexpected error: %v", err)
	}
	if ExitCode(err) != ExitFault {
		t.Fatalf("exit code = %d, want %d", ExitCode(err), ExitFault)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	stubOpenReader(t, &fakeReader{})
	path := writeHomeserver(t, cleanHomeserver)

	_, _, err := execCLI(t, "check", path, "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected invalid log level error, got %v", err)
	}
}
