package media

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	draptolib "github.com/five82/drapto"

	"reelctl/internal/logging"
)

// Drapto encodes in-process with the drapto library. Output is written as
// <stem>.mkv inside workDir.
type Drapto struct {
	Logger *slog.Logger
}

func (Drapto) Name() string { return "drapto" }

func (d Drapto) Transcode(ctx context.Context, input, workDir string) (string, error) {
	if input == "" {
		return "", errors.New("input path required")
	}
	if strings.TrimSpace(workDir) == "" {
		return "", errors.New("work directory required")
	}
	encoder, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return "", err
	}
	logger := logging.NewComponentLogger(d.Logger, "transcode")
	if _, err := encoder.EncodeWithReporter(ctx, input, workDir, &draptoReporter{logger: logger}); err != nil {
		return "", err
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(workDir, stem+".mkv"), nil
}

// draptoReporter forwards the milestones worth keeping to slog.
type draptoReporter struct {
	logger *slog.Logger
}

func (r *draptoReporter) Hardware(draptolib.HardwareSummary) {}

func (r *draptoReporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Info("drapto encode starting",
		logging.String("input", s.InputFile),
		logging.String("resolution", s.Resolution),
	)
}

func (r *draptoReporter) StageProgress(s draptolib.StageProgress) {
	r.logger.Debug("drapto stage", logging.String("stage", s.Stage), logging.String("message", s.Message))
}

func (r *draptoReporter) CropResult(draptolib.CropSummary) {}

func (r *draptoReporter) EncodingConfig(draptolib.EncodingConfigSummary) {}

func (r *draptoReporter) EncodingStarted(uint64) {}

func (r *draptoReporter) EncodingProgress(draptolib.ProgressSnapshot) {}

func (r *draptoReporter) ValidationComplete(s draptolib.ValidationSummary) {
	r.logger.Info("drapto validation", logging.Bool("passed", s.Passed))
}

func (r *draptoReporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.logger.Info("drapto encode complete", logging.String("output", s.OutputPath))
}

func (r *draptoReporter) Warning(message string) {
	r.logger.Warn("drapto warning", logging.String("message", message))
}

func (r *draptoReporter) Error(e draptolib.ReporterError) {
	r.logger.Error("drapto error", logging.String("title", e.Title), logging.String("message", e.Message))
}

func (r *draptoReporter) OperationComplete(string) {}

func (r *draptoReporter) BatchStarted(draptolib.BatchStartInfo) {}

func (r *draptoReporter) FileProgress(draptolib.FileProgressContext) {}

func (r *draptoReporter) BatchComplete(draptolib.BatchSummary) {}

var _ draptolib.Reporter = (*draptoReporter)(nil)
