package logger

import (
	"log/slog"
	"strings"
)

// Credential schemes whose payload is masked wherever it appears.
var credentialSchemes = []string{
	"Bearer ",
	"Basic ",
}

// Key substrings that mark an attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"authorization",
	"cookie",
	"password",
	"secret",
	"token",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credentials in a log attribute.
// Scheme-prefixed values keep the scheme; other values under a sensitive
// key are replaced entirely.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if scheme, ok := credentialScheme(v); ok {
			return slog.String(a.Key, scheme+redactedValue)
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func credentialScheme(v string) (string, bool) {
	for _, scheme := range credentialSchemes {
		if len(v) > len(scheme) && strings.EqualFold(v[:len(scheme)], scheme) {
			return v[:len(scheme)], true
		}
	}
	return "", false
}

// RedactString masks the payload of a scheme-prefixed credential.
func RedactString(value string) string {
	if scheme, ok := credentialScheme(value); ok {
		return scheme + redactedValue
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
