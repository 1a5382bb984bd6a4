package preflight

import (
	"context"

	"reelctl/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Data directory", cfg.Paths.DataDir)}

	for _, status := range CheckBinaries(Requirements(cfg)) {
		r := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if r.Passed {
			r.Detail = status.Command
		}
		if !r.Passed && status.Optional {
			r.Skipped = true
		}
		results = append(results, r)
	}

	results = append(results,
		CheckWebhook(ctx, cfg.Webhook.URL),
		CheckRenderBackend(ctx, cfg.Render.APIURL),
		CheckHostingToken(cfg),
	)
	if cfg.Upload.Strategy == config.StrategyObjectStore {
		results = append(results, CheckObjectStore(cfg.ObjectStore))
	}
	return results
}

// Failed reports whether any non-skipped check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return true
		}
	}
	return false
}
