package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/mkarpovs/tubecast/internal/logging"
)

// CommandRunner executes an external binary and returns its stdout. It
// exists so probing can be tested without ffmpeg installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return out, fmt.Errorf("%s: %v: %s", name, err, ee.Stderr)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// FFProber implements Prober on top of the ffprobe/ffmpeg binaries.
type FFProber struct {
	ffprobePath string
	ffmpegPath  string
	runner      CommandRunner
	logger      logging.Logger
}

func NewFFProber(ffprobePath, ffmpegPath string, runner CommandRunner, logger logging.Logger) *FFProber {
	return &FFProber{ffprobePath: ffprobePath, ffmpegPath: ffmpegPath, runner: runner, logger: logger}
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration inspects the first stream of kind "video". The duration is
// taken from the stream, falling back to the container-level format info.
// Absence of both yields ok=false; duration is advisory, never fatal.
func (p *FFProber) ProbeDuration(ctx context.Context, path string) (int64, bool) {
	out, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	if err != nil {
		p.logger.Warn(ctx, "ffprobe failed", "path", path, "error", err)
		return 0, false
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		p.logger.Warn(ctx, "ffprobe output not parseable", "path", path, "error", err)
		return 0, false
	}

	for _, s := range probed.Streams {
		if s.CodecType != "video" {
			continue
		}
		if ms, ok := parseSecondsToMS(s.Duration); ok {
			return ms, true
		}
		break
	}

	if ms, ok := parseSecondsToMS(probed.Format.Duration); ok {
		return ms, true
	}

	p.logger.Warn(ctx, "no duration in probe output", "path", path)
	return 0, false
}

// ExtractFrame emits exactly one frame at offsetSec into dst.
func (p *FFProber) ExtractFrame(ctx context.Context, src string, dst string, offsetSec float64) error {
	_, err := p.runner.Run(ctx, p.ffmpegPath,
		"-y",
		"-ss", strconv.FormatFloat(offsetSec, 'f', 3, 64),
		"-i", src,
		"-vframes", "1",
		"-q:v", "2",
		dst,
	)
	if err != nil {
		return fmt.Errorf("extract frame at %.3fs: %w", offsetSec, err)
	}
	return nil
}

func parseSecondsToMS(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil || sec < 0 {
		return 0, false
	}
	return int64(sec * 1000), true
}
