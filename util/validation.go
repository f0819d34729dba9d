package util

import (
	"regexp"
	"strings"
)

// Pre-compiled regex for content-graph addresses (EVM style)
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Post ids are opaque but must be safe inside a URL path segment
var postIdRegex = regexp.MustCompile(`^[A-Za-z0-9\-._~]+$`)

// IsValidAddress validates a thread or community address.
//
// Returns (true, "") if valid, or (false, "error message") if invalid.
func IsValidAddress(address string) (bool, string) {
	if len(address) == 0 {
		return false, "Address must not be empty"
	}
	if !strings.HasPrefix(address, "0x") {
		return false, "Address must start with 0x"
	}
	if !addressRegex.MatchString(address) {
		return false, "Address must be 0x followed by 40 hex characters"
	}
	return true, ""
}

// IsValidPostId validates a post or reply id before it is put into a request path
func IsValidPostId(id string) (bool, string) {
	if len(id) == 0 {
		return false, "Post id must not be empty"
	}
	if !postIdRegex.MatchString(id) {
		return false, "Post id contains invalid characters"
	}
	return true, ""
}
