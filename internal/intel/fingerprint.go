package intel

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeURL canonicalizes a source URL so host-equivalent spellings
// share a fingerprint: trim whitespace, lowercase, drop the scheme and
// a leading "www.", strip the trailing slash.
func NormalizeURL(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(normalized, scheme) {
			normalized = strings.TrimPrefix(normalized, scheme)
			break
		}
	}
	normalized = strings.TrimPrefix(normalized, "www.")
	normalized = strings.TrimSuffix(normalized, "/")
	return normalized
}

// Fingerprint returns the stable content address of a source URL: the
// sha256 hex digest of its normalized form.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(raw)))
	return hex.EncodeToString(sum[:])
}
