package extract

import (
	"errors"
	"fmt"
	"strings"

	"thirdcoast.systems/reeler/pkg/ytdlp"
)

var (
	// ErrAccountUnavailable means the account does not exist, is suspended,
	// is protected, or needs authentication we do not have.
	ErrAccountUnavailable = errors.New("account unavailable")

	// ErrRateLimited means the platform refused the request because of
	// request volume.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoVideos means the timeline was reachable but yielded no videos.
	ErrNoVideos = errors.New("no videos found")
)

var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"rate-limit",
}

var unavailableMarkers = []string{
	"404",
	"not exist",
	"no longer exists",
	"suspended",
	"protected",
	"login required",
	"authentication",
}

// classify maps yt-dlp failures onto the sentinel errors above so callers can
// react without parsing process output themselves. Errors that match no known
// stderr marker pass through unchanged.
func classify(err error) error {
	var execErr *ytdlp.ExecError
	if !errors.As(err, &execErr) {
		return err
	}

	stderr := strings.ToLower(execErr.Stderr)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(stderr, marker) {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	for _, marker := range unavailableMarkers {
		if strings.Contains(stderr, marker) {
			return fmt.Errorf("%w: %w", ErrAccountUnavailable, err)
		}
	}

	return err
}
