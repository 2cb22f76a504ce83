package urls

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseError describes a server base URL that could not be parsed.
type ParseError struct {
	// Input is the original URL string
	Input string

	// Reason is a human-readable description of what is wrong
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid server URL %q: %s", e.Input, e.Reason)
}

// BaseURL is a parsed server base URL.
type BaseURL struct {
	// Scheme is the URL scheme (e.g. "http", "https")
	Scheme string

	// Host is the bare host or IP, without port
	Host string

	// Port is the explicit port, or 0 if none was given
	Port int

	// Path is the base path, normalized to start with "/" ("" if absent)
	Path string

	// raw is the original input string
	raw string
}

// String returns the original URL string the BaseURL was parsed from.
func (u *BaseURL) String() string {
	return u.raw
}

// HostPort returns "host" or "host:port" depending on whether a port was set.
func (u *BaseURL) HostPort() string {
	if u.Port == 0 {
		return u.Host
	}
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// Parse validates a server base URL of the form scheme://host[:port]/path.
//
// The device setup flow substitutes these values verbatim into config files,
// so query strings and fragments are rejected rather than silently carried
// along.
func Parse(raw string) (*BaseURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Input: raw, Reason: "empty"}
	}
	if !strings.Contains(trimmed, "//") {
		return nil, &ParseError{Input: raw, Reason: "missing '//' authority separator"}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &ParseError{Input: raw, Reason: err.Error()}
	}
	if parsed.Scheme == "" {
		return nil, &ParseError{Input: raw, Reason: "missing scheme"}
	}
	if parsed.Hostname() == "" {
		return nil, &ParseError{Input: raw, Reason: "missing host"}
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return nil, &ParseError{Input: raw, Reason: "query and fragment are not allowed"}
	}

	base := &BaseURL{
		Scheme: parsed.Scheme,
		Host:   parsed.Hostname(),
		Path:   parsed.Path,
		raw:    trimmed,
	}
	if portStr := parsed.Port(); portStr != "" {
		port, err := parsePort(portStr)
		if err != nil {
			return nil, &ParseError{Input: raw, Reason: err.Error()}
		}
		base.Port = port
	}
	return base, nil
}

// Host derives the bare host/IP substring from a server base URL: everything
// after "//", up to the next "/". This mirrors the derivation the device
// configuration files were originally written with, so the synchronizer
// replaces exactly the substring that appears in them.
//
// Note the result keeps an explicit port if the URL carries one; config
// files reference the server as "host" or "host:port" consistently with the
// URL they were rendered from.
func Host(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	idx := strings.Index(trimmed, "//")
	if idx < 0 {
		return "", &ParseError{Input: raw, Reason: "missing '//' authority separator"}
	}
	rest := trimmed[idx+2:]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return "", &ParseError{Input: raw, Reason: "missing host"}
	}
	return rest, nil
}

func parsePort(s string) (int, error) {
	port := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid port %q", s)
		}
		port = port*10 + int(r-'0')
		if port > 65535 {
			return 0, fmt.Errorf("port %q out of range", s)
		}
	}
	if port == 0 {
		return 0, fmt.Errorf("port %q out of range", s)
	}
	return port, nil
}
