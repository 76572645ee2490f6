package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeConfigFixture(home))

	stdout, stderr, err := runCodeLynx(t, binaryPath, home, "", "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, strings.TrimSpace(stdout))

	stdout, stderr, err = runCodeLynx(t, binaryPath, home, "", "models")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "* llama3.1-8b")

	stdout, stderr, err = runCodeLynx(t, binaryPath, home, "", "key", "check")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Equal(t, "missing: API key not configured\n", stdout)

	_, stderr, err = runCodeLynx(t, binaryPath, home, "csk-smoke\n", "key", "set")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err = runCodeLynx(t, binaryPath, home, "", "key", "check", "--json")
	require.NoError(t, err, "stderr: %s", stderr)

	var status struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, "configured", status.Status)

	stdout, stderr, err = runCodeLynx(t, binaryPath, home, `{"command":"checkApiKey"}`+"\n", "serve")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"command":"apiKeyStatus"`)
	assert.Contains(t, stdout, `"status":"configured"`)
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "codelynx-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/codelynx")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build codelynx binary: %s", string(output))
	return binaryPath
}

func runCodeLynx(t *testing.T, binaryPath, home, input string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"CEREBRAS_API_KEY=",
		"PASSWORD_STORE_DIR="+filepath.Join(home, ".password-store"),
	)
	cmd.Stdin = strings.NewReader(input)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeConfigFixture(home string) error {
	configDir := filepath.Join(home, ".codelynx")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	config := `api_daily_limit = 50

[log]
level = "error"
`

	return os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o644)
}
