package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ppiankov/synapsespectre/internal/database"
)

var testBuildInfo = BuildInfo{
	Version:   "test-version",
	Commit:    "abc1234",
	Date:      "2026-01-01",
	GoVersion: "go1.25.7",
}

type fakeReader struct {
	mu sync.Mutex

	guests           int64
	noEmail          int64
	noDevice         int64
	nonEmail         int64
	passwordUsers    int64
	withDevice       int64
	refreshTokens    int64
	externalIDs      []database.ProviderCount
	err              error
	closeCalls       int
	countCalls       int
	lastOpenedConfig database.Config
}

func (f *fakeReader) count(n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return n, nil
}

func (f *fakeReader) CountGuestUsers(context.Context) (int64, error) { return f.count(f.guests) }
func (f *fakeReader) CountUsersWithoutEmail(context.Context) (int64, error) {
	return f.count(f.noEmail)
}
func (f *fakeReader) CountAccessTokensWithoutDevice(context.Context) (int64, error) {
	return f.count(f.noDevice)
}
func (f *fakeReader) CountNonEmailThreepids(context.Context) (int64, error) {
	return f.count(f.nonEmail)
}
func (f *fakeReader) CountUsersWithPassword(context.Context) (int64, error) {
	return f.count(f.passwordUsers)
}
func (f *fakeReader) CountAccessTokensWithDevice(context.Context) (int64, error) {
	return f.count(f.withDevice)
}
func (f *fakeReader) CountRefreshTokens(context.Context) (int64, error) {
	return f.count(f.refreshTokens)
}

func (f *fakeReader) ExternalIDsByProvider(context.Context) ([]database.ProviderCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.externalIDs, nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

// stubOpenReader replaces the database connection with fake and records
// the config it was opened with.
func stubOpenReader(t *testing.T, fake *fakeReader) {
	t.Helper()
	orig := openReader
	openReader = func(_ context.Context, cfg database.Config) (reader, error) {
		fake.lastOpenedConfig = cfg
		return fake, nil
	}
	t.Cleanup(func() {
		openReader = orig
	})
}

func stubOpenReaderErr(t *testing.T, err error) {
	t.Helper()
	orig := openReader
	openReader = func(context.Context, database.Config) (reader, error) {
		return nil, err
	}
	t.Cleanup(func() {
		openReader = orig
	})
}

const cleanHomeserver = `server_name: example.com
database:
  name: psycopg2
  args:
    user: synapse
    database: synapse
    host: localhost
`

func writeHomeserver(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "homeserver.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return execCLIWithEnv(t, nil, args...)
}

func execCLIWithEnv(t *testing.T, env map[string]string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(envDatabaseURI, "")
	for k, v := range env {
		t.Setenv(k, v)
	}
	prevLevel := logLevel
	prevFormat := logFormat
	prevVersion := version
	t.Cleanup(func() {
		logLevel = prevLevel
		logFormat = prevFormat
		version = prevVersion
	})
	logLevel = "info"
	logFormat = "text"
	version = "test-version"

	cmd := newRootCmd(testBuildInfo)
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected ExitError(%d), got nil", want)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError(%d), got %T (%v)", want, err, err)
	}
	if exitErr.Code != want {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, want)
	}
}
