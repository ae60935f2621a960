// Package media fetches the source object into scratch storage and derives
// technical metadata (duration, thumbnail) from it via the ffmpeg tooling.
package media

import "context"

// Asset is the fetched media object living in scratch storage for the
// duration of one invocation.
type Asset struct {
	SourceKey   string
	LocalPath   string
	Size        int64
	ContentType string
}

// Prober is the media probing/decode capability. Implementations inspect
// stream metadata and extract single frames without the caller knowing the
// underlying engine.
type Prober interface {
	// ProbeDuration returns the duration of the first video stream in
	// milliseconds. ok is false when no video stream or no duration field is
	// available; that is advisory, never an error.
	ProbeDuration(ctx context.Context, path string) (durationMS int64, ok bool)

	// ExtractFrame decodes exactly one frame at offsetSec seconds into dst.
	ExtractFrame(ctx context.Context, src string, dst string, offsetSec float64) error
}
