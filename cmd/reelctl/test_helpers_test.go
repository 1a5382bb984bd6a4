package main

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
	"sync/atomic"
	"testing"

	"reelctl/internal/reel"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	webhook    *fakeWebhook
	backend    *fakeBackend
}

// fakeWebhook answers the generation/sync actions from memory.
type fakeWebhook struct {
	mu      sync.Mutex
	scripts []reel.Script
	history []reel.HistoryItem
	fail    map[string]string
	actions []string
}

func (f *fakeWebhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	var action string
	_ = json.Unmarshal(body["action"], &action)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	if msg, ok := f.fail[action]; ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
		return
	}
	switch action {
	case "sync-load":
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "scripts": f.scripts})
	case "sync-save":
		_ = json.Unmarshal(body["scripts"], &f.scripts)
		_, _ = io.WriteString(w, `{"ok":true}`)
	case "sync-load-history":
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "history": f.history})
	case "sync-save-history":
		_ = json.Unmarshal(body["history"], &f.history)
		_, _ = io.WriteString(w, `{"ok":true}`)
	case "generate":
		_, _ = io.WriteString(w, `{"ok":true,"script":{"title":"雨の日の過ごし方","scenes":[{"text":"映画を観る","expression":"idea","emphasis":["映画"]}]},"yaml":"title: 雨の日の過ごし方\n"}`)
	case "generate-questions":
		_, _ = io.WriteString(w, `{"ok":true,"questions":[{"question":"いつ困った？","purpose":"場面"}]}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true}`)
	}
}

func (f *fakeWebhook) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.actions {
		if a == action {
			n++
		}
	}
	return n
}

// fakeBackend serves the render backend catalogue and a render that finishes
// on the second status call.
type fakeBackend struct {
	statusCalls atomic.Int32
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/presets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"coral","voice":"ja-JP-Nanami","speed":1.1,"description":"明るい"}]`)
	})
	mux.HandleFunc("POST /api/projects/generate-v2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"projectId":"proj-42"}`)
	})
	mux.HandleFunc("GET /api/projects/generate/status", func(w http.ResponseWriter, r *http.Request) {
		if f.statusCalls.Add(1) >= 2 {
			_, _ = io.WriteString(w, `{"running":false,"projectId":"proj-42"}`)
			return
		}
		_, _ = io.WriteString(w, `{"running":true,"progress":"tts","projectId":"proj-42"}`)
	})
	return mux
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"REELCTL_GITHUB_TOKEN", "GITHUB_TOKEN", "REELCTL_WEBHOOK_URL", "REELCTL_API_URL"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir: base,
		webhook: &fakeWebhook{fail: map[string]string{}},
		backend: &fakeBackend{},
	}
	webhookSrv := httptest.NewServer(env.webhook)
	t.Cleanup(webhookSrv.Close)
	backendSrv := httptest.NewServer(env.backend.handler())
	t.Cleanup(backendSrv.Close)

	env.configPath = filepath.Join(base, "reelctl.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[render]
api_url = %q
mode = "direct"
poll_interval_ms = 10

[webhook]
url = %q

[upload]
strategy = "backend"
transcoder = "none"
work_dir = %q

[logging]
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		backendSrv.URL,
		webhookSrv.URL,
		filepath.Join(base, "work"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// createdID extracts the id from "Created <id> (...)" output.
func createdID(t *testing.T, output string) string {
	t.Helper()
	fields := strings.Fields(output)
	if len(fields) < 2 || fields[0] != "Created" {
		t.Fatalf("unexpected create output %q", output)
	}
	return fields[1]
}
