package media

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mkarpovs/tubecast/internal/filex"
	"github.com/mkarpovs/tubecast/internal/logging"
)

// Extractor derives a representative still frame from a media file. Every
// failure is soft: the overall upload proceeds without a thumbnail.
type Extractor struct {
	prober     Prober
	scratchDir string
	logger     logging.Logger
}

func NewExtractor(prober Prober, scratchDir string, logger logging.Logger) *Extractor {
	return &Extractor{prober: prober, scratchDir: scratchDir, logger: logger}
}

// Extract emits one frame at the temporal midpoint of the asset to a
// uniquely named scratch file and validates the result. When the duration is
// not supplied it is re-probed; still unknown means extraction fails soft.
func (e *Extractor) Extract(ctx context.Context, path string, durationMS int64, known bool) (string, bool) {
	if !known {
		durationMS, known = e.prober.ProbeDuration(ctx, path)
		if !known {
			e.logger.Warn(ctx, "thumbnail skipped: duration unknown", "path", path)
			return "", false
		}
	}

	offsetSec := float64(durationMS) / 2000.0

	dir, err := filex.EnsureDir(e.scratchDir)
	if err != nil {
		e.logger.Warn(ctx, "thumbnail skipped: scratch dir", "error", err)
		return "", false
	}

	// Concurrent invocations share scratch storage, so the name must be
	// collision-free.
	dst := filepath.Join(dir, "thumb-"+uuid.NewString()+".jpg")

	if err := e.prober.ExtractFrame(ctx, path, dst, offsetSec); err != nil {
		e.logger.Warn(ctx, "thumbnail extraction failed", "path", path, "error", err)
		_ = filex.RemoveIfExists(dst)
		return "", false
	}

	if !filex.NonEmptyFile(dst) {
		e.logger.Warn(ctx, "thumbnail missing or empty", "path", dst)
		_ = filex.RemoveIfExists(dst)
		return "", false
	}

	e.logger.Info(ctx, "thumbnail extracted", "path", dst, "offset_sec", offsetSec)
	return dst, true
}
