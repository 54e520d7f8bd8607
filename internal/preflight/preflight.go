// Package preflight runs cheap pre-checks against a stream source before a
// full capture window is reserved for it. A rejected source is skipped
// outright instead of burning the retry budget on something that can never
// produce audio, like an HTML error page served where a stream should be.
package preflight

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/audiolibrelab/aircheck/internal/station"
)

const (
	// ReasonNonAudio means the source advertised a content type outside the
	// audio/playlist allow-list.
	ReasonNonAudio = "looks_like_non_audio"
	// ReasonUndecodable means the stream probe could not parse the source as
	// decodable media within the timeout.
	ReasonUndecodable = "undecodable"
)

// Result is the outcome of a preflight check.
type Result struct {
	OK     bool
	Reason string
}

func ok() Result             { return Result{OK: true} }
func reject(r string) Result { return Result{Reason: r} }

// Checker validates a station before capture. Both probes share one deadline
// that is much shorter than the capture window.
type Checker struct {
	Client  *http.Client
	FFprobe string
	Timeout time.Duration
}

// New builds a checker around the given ffprobe command and probe timeout.
func New(ffprobe string, timeout time.Duration) *Checker {
	return &Checker{
		Client:  &http.Client{Timeout: timeout},
		FFprobe: ffprobe,
		Timeout: timeout,
	}
}

// Check runs the content-type probe and the decode probe against the station.
// Both must pass for the station to proceed to capture.
func (c *Checker) Check(ctx context.Context, spec station.Spec) Result {
	probeCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	if res := c.checkContentType(probeCtx, spec); !res.OK {
		return res
	}
	res := c.probeStream(probeCtx, spec)
	if !res.OK && ctx.Err() != nil {
		// The run was cancelled, which says nothing about the source. Let the
		// capture path observe the cancellation instead of skipping the
		// station. A probe timeout on a live run still rejects.
		return ok()
	}
	return res
}

// checkContentType issues a header-only request and rejects sources that
// declare a non-audio content type. A missing content type, or a failed
// request, is not a rejection; the decode probe has the final word.
func (c *Checker) checkContentType(ctx context.Context, spec station.Spec) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, spec.URL, nil)
	if err != nil {
		slog.Debug("Preflight could not build HEAD request", "station", spec.Name, "error", err)
		return ok()
	}
	if spec.UserAgent != "" {
		req.Header.Set("User-Agent", spec.UserAgent)
	}
	if spec.Referer != "" {
		req.Header.Set("Referer", spec.Referer)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Debug("Preflight HEAD request failed", "station", spec.Name, "error", err)
		return ok()
	}
	resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return ok()
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ok()
	}
	if !allowedContentType(mediaType) {
		slog.Debug("Preflight content type rejected", "station", spec.Name, "content_type", mediaType)
		return reject(ReasonNonAudio)
	}
	return ok()
}

// allowedContentType accepts audio types, HLS playlists and MPEG transport
// streams. Generic binary responses pass; many stream servers send those.
func allowedContentType(mediaType string) bool {
	mediaType = strings.ToLower(mediaType)
	if strings.HasPrefix(mediaType, "audio/") {
		return true
	}
	switch mediaType {
	case "application/vnd.apple.mpegurl",
		"application/x-mpegurl",
		"application/mpegurl",
		"video/mp2t",
		"application/octet-stream":
		return true
	}
	return false
}

// probeStream asks ffprobe to parse the stream header. Any non-zero exit,
// including a timeout kill, rejects the station as undecodable.
func (c *Checker) probeStream(ctx context.Context, spec station.Spec) Result {
	args := []string{"-v", "error"}
	if spec.UserAgent != "" {
		args = append(args, "-user_agent", spec.UserAgent)
	}
	if spec.Referer != "" {
		args = append(args, "-headers", "Referer: "+spec.Referer+"\r\n")
	}
	args = append(args, "-i", spec.URL)

	cmd := exec.CommandContext(ctx, c.FFprobe, args...)
	cmd.WaitDelay = 2 * time.Second
	if err := cmd.Run(); err != nil {
		slog.Debug("Preflight stream probe failed", "station", spec.Name, "error", err)
		return reject(ReasonUndecodable)
	}
	return ok()
}
