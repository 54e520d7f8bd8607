package capture

import "os"

// ValidateArtifact checks that a structurally successful capture actually
// produced enough audio. A zero ffmpeg exit with a tiny or missing file
// happens when a stream redirects to error content mid-capture, so size is
// checked independently of the exit code. Returns the observed size and
// whether the artifact is acceptable.
func ValidateArtifact(path string, minBytes int64) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	if info.Size() < minBytes {
		return info.Size(), false
	}
	return info.Size(), true
}
