// Package account parses X/Twitter account references and derives stable
// identifiers for the videos on their timelines.
package account

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// CanonicalDomain is the domain all accepted profile hosts alias.
const CanonicalDomain = "x.com"

// Accepted profile hosts. Key: input host without port.
//
// Keep this intentionally conservative: only hosts that are truly the same
// site from a user perspective.
var profileHosts = map[string]bool{
	"x.com":              true,
	"www.x.com":          true,
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
}

// handleRe is the shape of a valid handle once the @ prefix is stripped.
var handleRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,50}$`)

// Parse normalizes an account reference to a bare handle. It accepts a plain
// handle, an @-prefixed handle, or a profile URL on any known host (scheme
// optional, extra path segments such as /media tolerated).
func Parse(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("account is required")
	}

	// Handles cannot contain slashes or dots, so anything with one is
	// treated as a URL form.
	if strings.ContainsAny(s, "/.") {
		return handleFromURL(s)
	}

	return validateHandle(s)
}

func handleFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Best effort: treat schemeless input as https.
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", fmt.Errorf("invalid account URL %q", raw)
		}
	}

	host := strings.ToLower(u.Hostname())
	if !profileHosts[host] {
		return "", fmt.Errorf("unsupported account host %q", host)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", fmt.Errorf("account URL %q has no handle", raw)
	}

	return validateHandle(segments[0])
}

func validateHandle(s string) (string, error) {
	s = strings.TrimPrefix(s, "@")
	if !handleRe.MatchString(s) {
		return "", fmt.Errorf("invalid account handle %q", s)
	}
	return s, nil
}

// MediaTimelineURLs returns the media-timeline URL candidates for a handle in
// preference order. The twitter.com fallback covers extractor versions that
// still resolve the old host more reliably.
func MediaTimelineURLs(handle string) []string {
	return []string{
		"https://" + CanonicalDomain + "/" + handle + "/media",
		"https://twitter.com/" + handle + "/media",
	}
}

// videoNamespace is the deterministic UUIDv5 namespace for the canonical
// domain: uuid.NewSHA1(uuid.NameSpaceDNS, []byte("x.com")).
var videoNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(CanonicalDomain))

// VideoUUID returns a deterministic UUIDv5 for a video ID, scoped to the
// canonical domain. Re-running against the same timeline therefore names the
// same video identically, which keeps temp files and archives idempotent.
func VideoUUID(videoID string) uuid.UUID {
	return uuid.NewSHA1(videoNamespace, []byte(strings.TrimSpace(videoID)))
}
