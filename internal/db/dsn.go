package db

import (
	"net/url"
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

var passwordRegex = regexp.MustCompile(`(?i)(password=)(\S+)`)

// Driver names returned by Split.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Split returns the driver and its connection string. "sqlite:" and
// "file:" prefixes and *.db paths select sqlite; everything else postgres.
func Split(raw string) (driver, dsn string) {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "sqlite:"):
		return DriverSQLite, s[len("sqlite:"):]
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), s == ":memory:":
		return DriverSQLite, s
	}
	return DriverPostgres, NormalizeDSN(s)
}

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a key=value list.
// It trims quotes and whitespace and, given key=value form, ensures sslmode is set.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	// not key=value either: let the driver report it
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// Mask hides the password of a DSN for logging.
func Mask(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			return u.Redacted()
		}
	}
	return passwordRegex.ReplaceAllString(dsn, `${1}***`)
}
