package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []map[string]any
	reply    string
	status   int
}

func newFakeProvider(t *testing.T, reply string) (*fakeProvider, *httptest.Server) {
	t.Helper()

	provider := &fakeProvider{reply: reply, status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		provider.mu.Lock()
		provider.requests = append(provider.requests, body)
		status := provider.status
		provider.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":{"message":"rejected by fake"}}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":"cmpl-1","model":%q,"choices":[{"message":{"role":"assistant","content":%q}}],"usage":{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}}`,
			body["model"], provider.reply)
	}))
	t.Cleanup(server.Close)

	return provider, server
}

func (p *fakeProvider) lastUserMessage(t *testing.T) string {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests)

	messages := p.requests[len(p.requests)-1]["messages"].([]any)
	last := messages[len(messages)-1].(map[string]any)
	return last["content"].(string)
}

func (p *fakeProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestModelsMarksConfiguredDefault(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home, `chat_model = "llama-3.3-70b"`))

	stdout, _, err := executeCLI(t, home, "models")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* llama-3.3-70b")
	assert.Contains(t, stdout, "  llama3.1-8b")
	assert.Equal(t, 4, strings.Count(stdout, "\n"))
}

func TestKeyCheckWithoutKey(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "key", "check")
	require.NoError(t, err)
	assert.Equal(t, "missing: API key not configured\n", stdout)
}

func TestKeySetThenCheckThenClear(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "key", "set", "--value", "  csk-from-cli  ")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API key updated successfully")

	stdout, _, err = executeCLI(t, home, "key", "check")
	require.NoError(t, err)
	assert.Equal(t, "configured: API key configured\n", stdout)

	stdout, _, err = executeCLI(t, home, "key", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored API key removed")
	assert.Contains(t, stdout, "missing: API key not configured")
}

func TestKeySetReadsStdinWhenNotInteractive(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "csk-piped\n", "key", "set")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API key updated successfully")
}

func TestKeySetRejectsMalformedKey(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "key", "set", "--value", "csk with spaces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to update API key: Invalid API key. Please check your configuration.")

	stdout, _, err := executeCLI(t, home, "key", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "missing")
}

func TestAskWithoutKeyFailsWithConfigError(t *testing.T) {
	_, stderr, err := executeCLI(t, t.TempDir(), "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please configure your Cerebras API key first.")
	assert.Contains(t, err.Error(), "CLYNX-")
	assert.Contains(t, stderr, "codelynx key set")
}

func TestAskRecordsUsage(t *testing.T) {
	provider, server := newFakeProvider(t, "Use a context.")
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	stdout, _, err := executeCLI(t, home, "ask", "--model", "llama3.1-70b", "how", "do", "I", "cancel?")
	require.NoError(t, err)
	assert.Equal(t, "Use a context.\n", stdout)
	assert.Equal(t, "how do I cancel?", provider.lastUserMessage(t))

	stdout, _, err = executeCLI(t, home, "usage", "--json")
	require.NoError(t, err)

	var stats struct {
		Command string `json:"command"`
		Stats   struct {
			TotalRequests uint64            `json:"totalRequests"`
			DailyRequests uint64            `json:"dailyRequests"`
			Models        map[string]uint64 `json:"models"`
			Tokens        struct {
				Total uint64 `json:"total"`
			} `json:"tokens"`
		} `json:"stats"`
		Config struct {
			APIDailyLimit int `json:"apiDailyLimit"`
		} `json:"config"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, "usageStats", stats.Command)
	assert.Equal(t, uint64(1), stats.Stats.TotalRequests)
	assert.Equal(t, uint64(1), stats.Stats.DailyRequests)
	assert.Equal(t, uint64(20), stats.Stats.Tokens.Total)
	assert.Equal(t, map[string]uint64{"llama3.1-70b": 1}, stats.Stats.Models)
	assert.Equal(t, 100, stats.Config.APIDailyLimit)
}

func TestAskStopsAtDailyLimit(t *testing.T) {
	provider, server := newFakeProvider(t, "ok")
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL, `api_daily_limit = 1`))

	_, _, err := executeCLI(t, home, "ask", "first")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "ask", "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Daily API request limit reached (1/1)")
	assert.Equal(t, 1, provider.count())

	_, _, err = executeCLI(t, home, "usage", "reset")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "ask", "third")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.count())
}

func TestAskSurfacesProviderErrors(t *testing.T) {
	provider, server := newFakeProvider(t, "")
	provider.status = http.StatusUnauthorized
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	_, _, err := executeCLI(t, home, "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API Error: Authentication failed. Please check your API key. Details: rejected by fake")

	stdout, _, err := executeCLI(t, home, "usage", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"totalRequests": 0`)
}

func TestExplainReadsWorkspaceFile(t *testing.T) {
	provider, server := newFakeProvider(t, "It wires commands.")
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	stdout, _, err := executeCLI(t, home, "explain", "root.go")
	require.NoError(t, err)
	assert.Equal(t, "It wires commands.\n", stdout)
	assert.True(t, strings.HasPrefix(provider.lastUserMessage(t), "Please explain this code from root.go"))
	assert.Contains(t, provider.lastUserMessage(t), "func newRootCmd()")
}

func TestReviewReadsStdin(t *testing.T) {
	provider, server := newFakeProvider(t, "Looks fine.")
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	_, _, err := executeCLIWithInput(t, home, "x := 1\n", "review", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(provider.lastUserMessage(t), "Please review this code from the current file"))
}

func TestExplainRejectsPathOutsideWorkspace(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "explain", "../go.mod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path escapes the workspace folder")
}

func TestTestsRejectsUnknownType(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "tests", "--type", "fuzz", "root.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Analysis Error")
}

func TestScanRendersReport(t *testing.T) {
	report := `{"summary":"One issue","riskLevel":"high","vulnerabilities":[{"type":"Command Injection","severity":"High","line":12,"description":"exec with user input","recommendation":"validate input"}]}`
	_, server := newFakeProvider(t, report)
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	stdout, _, err := executeCLI(t, home, "scan", "wire.go")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Risk level: HIGH")
	assert.Contains(t, stdout, "[HIGH] Command Injection (line 12)")
	assert.Contains(t, stdout, "fix: validate input")

	stdout, _, err = executeCLI(t, home, "scan", "--json", "wire.go")
	require.NoError(t, err)
	assert.JSONEq(t, report, stdout)
}

func TestUsageDashboardAndExport(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeUsageFixture(home))

	stdout, _, err := executeCLI(t, home, "usage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CodeLynx API Usage Statistics")
	assert.Contains(t, stdout, "llama3.1-8b")

	exportPath := filepath.Join(home, "exports", "usage.json")
	stdout, _, err = executeCLI(t, home, "usage", "export", "--output", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, exportPath)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), `"totalRequests": 7`)
}

func TestFilesListsWorkingDirectory(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "files")
	require.NoError(t, err)
	assert.Contains(t, stdout, "root.go\n")
	assert.Contains(t, stdout, "codelynx/main.go\n")

	stdout, _, err = executeCLI(t, t.TempDir(), "files", "show", "--json", "version.go")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"language": "go"`)
}

func TestConfigShowsEffectiveSettings(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home, "api_daily_limit = -3\nchat_temperature = 0.2"))

	stdout, _, err := executeCLI(t, home, "config", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"apiDailyLimit": 100`)
	assert.Contains(t, stdout, `"chatTemperature": 0.2`)
	assert.NotContains(t, stdout, "cerebras_api_key")
}

func TestChatReadsPipedInput(t *testing.T) {
	provider, server := newFakeProvider(t, "Hello back.")
	home := t.TempDir()
	require.NoError(t, writeProviderConfig(home, server.URL))

	stdout, stderr, err := executeCLIWithInput(t, home, "hello\n/model llama3.1-405b\nagain\n/clear\n/bogus\n/exit\nignored\n", "chat")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stdout, "Hello back."))
	assert.Contains(t, stdout, "Switched to llama3.1-405b.")
	assert.Contains(t, stdout, "Chat history cleared.")
	assert.Contains(t, stderr, "unknown command /bogus")
	assert.Equal(t, 2, provider.count())

	provider.mu.Lock()
	defer provider.mu.Unlock()
	second := provider.requests[1]
	assert.Equal(t, "llama3.1-405b", second["model"])
	assert.Len(t, second["messages"], 4, "system, previous exchange, new message")
}

func TestServeSpeaksJSONLines(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, `{"command":"getAvailableModels"}`+"\n", "serve")
	require.NoError(t, err)

	var message struct {
		Command string           `json:"command"`
		Models  []map[string]any `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &message))
	assert.Equal(t, "availableModels", message.Command)
	assert.Len(t, message.Models, 4)
}

func TestUnknownCommandIsRejected(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"login\"")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("CEREBRAS_API_KEY", "")
	t.Setenv("PASSWORD_STORE_DIR", filepath.Join(home, ".password-store"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(home string, body string) error {
	configDir := filepath.Join(home, ".codelynx")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(body+"\n"), 0o644)
}

func writeProviderConfig(home string, baseURL string, extra ...string) error {
	lines := append([]string{
		`cerebras_api_key = "csk-test-key"`,
		`chat_temperature = 0.7`,
	}, extra...)
	lines = append(lines, "", "[provider]", fmt.Sprintf("base_url = %q", baseURL+"/v1"))

	return writeConfigFixture(home, strings.Join(lines, "\n"))
}

func writeUsageFixture(home string) error {
	configDir := filepath.Join(home, ".codelynx")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	usage := `version = 1
updated_at = "2026-10-14T09:00:00Z"

[usage]
total_requests = 7
daily_requests = 2
daily_reset_date = "2026-10-14"

[usage.tokens]
prompt = 700
completion = 300
total = 1000

[usage.models]
"llama3.1-8b" = 5
"llama-3.3-70b" = 2
`

	return os.WriteFile(filepath.Join(configDir, "usage.toml"), []byte(usage), 0o644)
}
