package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelctl/internal/backend"
	"reelctl/internal/config"
	"reelctl/internal/webhook"
)

const checkTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWebhook probes the generation and sync endpoint.
func CheckWebhook(ctx context.Context, url string) Result {
	const name = "Generation webhook"
	if strings.TrimSpace(url) == "" {
		return Result{Name: name, Skipped: true, Detail: "not configured (generation and sync disabled)"}
	}
	res := webhook.New(url, webhook.WithConnectionTimeout(checkTimeout)).TestConnection(ctx)
	return Result{Name: name, Passed: res.OK, Detail: res.Message}
}

// CheckRenderBackend probes the render backend.
func CheckRenderBackend(ctx context.Context, url string) Result {
	const name = "Render backend"
	if strings.TrimSpace(url) == "" {
		return Result{Name: name, Skipped: true, Detail: "not configured"}
	}
	client := backend.New(url, backend.WithConnectionTimeout(checkTimeout))
	if !client.TestConnection(ctx) {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable", url)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// CheckHostingToken reports whether features that go through the hosting API
// have a token to work with.
func CheckHostingToken(cfg *config.Config) Result {
	const name = "Hosting token"
	var needs []string
	if cfg.Render.Mode == config.RenderModeWorkflow {
		needs = append(needs, "workflow renders")
	}
	switch cfg.Upload.Strategy {
	case config.StrategyContents, config.StrategyGitData, config.StrategyRelease:
		needs = append(needs, cfg.Upload.Strategy+" uploads")
	}
	if strings.TrimSpace(cfg.Export.Repo) != "" {
		needs = append(needs, "markdown export")
	}
	if len(needs) == 0 {
		return Result{Name: name, Skipped: true, Detail: "not needed"}
	}
	if strings.TrimSpace(cfg.Hosting.Token) == "" {
		return Result{Name: name, Detail: "missing (needed for " + strings.Join(needs, ", ") + ")"}
	}
	return Result{Name: name, Passed: true, Detail: "set for " + strings.Join(needs, ", ")}
}

// CheckObjectStore verifies the object-store strategy has a bucket and
// credentials.
func CheckObjectStore(cfg config.ObjectStore) Result {
	const name = "Object store"
	switch {
	case strings.TrimSpace(cfg.Bucket) == "":
		return Result{Name: name, Detail: "bucket not set"}
	case strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "":
		return Result{Name: name, Detail: "credentials not set"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Bucket}
}
