//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
	"github.com/fivetwenty-io/couchbeans/pkg/couchclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL       string
	Username  string
	Password  string
	CouchPath string
	Verbose   bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:       os.Getenv("COUCH_TEST_URL"),
		Username:  os.Getenv("COUCH_TEST_USERNAME"),
		Password:  os.Getenv("COUCH_TEST_PASSWORD"),
		CouchPath: getCouchPath(),
		Verbose:   os.Getenv("COUCH_TEST_VERBOSE") == "true",
	}
}

// getCouchPath determines the path to the couch binary
func getCouchPath() string {
	if path := os.Getenv("COUCH_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../couch",
		"./couch",
		"../couch",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "couch" // Fallback to PATH
}

// SkipIfMissingConfig skips test if no server is configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" {
		t.Skip("COUCH_TEST_URL not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the CLI has not been built
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	config.SkipIfMissingConfig(t)

	if _, err := exec.LookPath(config.CouchPath); err != nil {
		t.Skipf("couch binary not found at %s, skipping integration test", config.CouchPath)
	}
}

// NewClient connects to the configured server
func (config *TestConfig) NewClient(t *testing.T) couch.Client {
	t.Helper()

	client, _, err := couchclient.Connect(context.Background(), &couch.Config{
		URL:      config.URL,
		Username: config.Username,
		Password: config.Password,
	})
	require.NoError(t, err)

	return client
}

// CommandRunner provides utilities for running couch commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a couch command against the configured server
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a couch command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	// #nosec G204 -- test binary and arguments are controlled by the test
	cmd := exec.Command(runner.config.CouchPath, args...)
	cmd.Env = append(os.Environ(),
		"COUCH_URL="+runner.config.URL,
		"COUCH_USERNAME="+runner.config.Username,
		"COUCH_PASSWORD="+runner.config.Password,
		"COUCH_OUTPUT=json",
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CouchPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique database name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupDatabase deletes a test database, ignoring errors
func CleanupDatabase(t *testing.T, client couch.Client, database string) {
	t.Helper()

	err := client.DeleteDatabase(context.Background(), database)
	if err != nil && !couch.IsNotFound(err) {
		t.Logf("Cleanup warning for database %s: %v", database, err)
	}
}
