// Package filingkey derives stable identifiers for SEC filings from
// their source URLs. The same URL (modulo whitespace and scheme/host
// casing) always maps to the same key, so re-scraping a filing lands
// on the same record instead of creating a duplicate.
package filingkey

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidURL = errors.New("invalid filing url")

// Normalize trims surrounding whitespace and lowercases the scheme and
// host of a filing URL. The path and query are left untouched since
// EDGAR paths are case-sensitive.
func Normalize(rawurl string) (string, error) {
	trimmed := strings.TrimSpace(rawurl)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String(), nil
}

// Derive returns the filing key for a URL: the first 16 bytes of the
// sha256 of the normalized URL, hex encoded.
func Derive(rawurl string) (string, error) {
	normalized, err := Normalize(rawurl)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16]), nil
}
