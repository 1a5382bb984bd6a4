package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"reelctl/internal/config"
)

// Requirement is an external binary reelctl may shell out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// BinaryStatus reports whether a requirement resolved on PATH.
type BinaryStatus struct {
	Name      string
	Command   string
	Optional  bool
	Available bool
	Detail    string
}

// Requirements lists the binaries the configured transcoder needs.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	switch cfg.Upload.Transcoder {
	case config.TranscoderFFmpeg:
		return []Requirement{
			{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Required to shrink video uploads"},
			{Name: "FFprobe", Command: "ffprobe", Description: "Skips transcoding for clips that already fit", Optional: true},
		}
	case config.TranscoderDrapto:
		return []Requirement{
			{Name: "FFprobe", Command: "ffprobe", Description: "Used by the drapto encoder for analysis"},
		}
	}
	return nil
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []BinaryStatus {
	results := make([]BinaryStatus, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := BinaryStatus{Name: req.Name, Command: cmd, Optional: req.Optional}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			path, err := exec.LookPath(cmd)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				break
			}
			status.Command = path
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}
