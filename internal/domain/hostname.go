package domain

import (
	"net/url"
	"strings"

	"github.com/totegamma/weird/leaf"
)

// NormalizeDomain trims, lowercases and strips the trailing root dot of a
// user supplied domain name.
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSuffix(s, ".")
}

// ValidateDomain checks that d is a bare host name (optionally with a port)
// that can be placed in the authority part of a URL.
func ValidateDomain(d string) error {
	if d == "" || strings.ContainsAny(d, "/?#@\\ \t\r\n") {
		return leaf.ValidationError{Component: "WeirdCustomDomain", Reason: "invalid domain name"}
	}
	u, err := url.Parse("http://" + d)
	if err != nil || u.Host != d || u.Hostname() == "" {
		return leaf.ValidationError{Component: "WeirdCustomDomain", Reason: "invalid domain name"}
	}
	return nil
}
